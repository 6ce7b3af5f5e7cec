package sema

import (
	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/types"
)

func (a *Analyzer) items(items []ast.BlockItem) {
	for _, it := range items {
		switch x := it.(type) {
		case *ast.Decl:
			a.declare(x)
		case ast.Stmt:
			a.stmt(x)
		}
	}
}

func (a *Analyzer) stmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.CompoundStmt:
		a.scope.Enter()
		a.items(x.Items)
		a.scope.Leave()
	case *ast.ExprStmt:
		if x.X != nil {
			a.expr(x.X)
		}
	case *ast.IfStmt:
		a.condition(x.Cond)
		a.stmt(x.Then)
	case *ast.IfElseStmt:
		a.condition(x.Cond)
		a.stmt(x.Then)
		a.stmt(x.Else)
	case *ast.WhileStmt:
		a.loops++
		a.scope.Enter()
		a.condition(x.Cond)
		a.stmt(x.Body)
		a.scope.Leave()
		a.loops--
	case *ast.LabeledStmt:
		if _, dup := a.labels[x.Label]; dup {
			a.errorf(x.Pos, "duplicate label '%s'", x.Label)
		} else {
			a.labels[x.Label] = x
		}
		a.stmt(x.Stmt)
	case *ast.GotoStmt:
		a.gotos = append(a.gotos, x)
	case *ast.BreakStmt:
		if a.loops == 0 {
			a.errorf(x.Pos, "break statement not within loop")
		}
	case *ast.ContinueStmt:
		if a.loops == 0 {
			a.errorf(x.Pos, "continue statement not within loop")
		}
	case *ast.ReturnStmt:
		a.ret(x)
	}
}

func (a *Analyzer) condition(e ast.Expr) {
	if t := a.expr(e); !t.IsError() && !t.IsScalar() {
		a.errorf(e.Position(), "used non-scalar type where scalar is required")
	}
}

func (a *Analyzer) ret(s *ast.ReturnStmt) {
	want := a.function().Type.Ret
	if s.X == nil {
		if !want.IsVoid() {
			a.errorf(s.Pos, "'return' with no value in function returning non-void")
		}
		return
	}
	t := a.expr(s.X)
	switch {
	case t.IsError():
	case want.IsVoid():
		a.errorf(s.Pos, "'return' with an expression in function returning void")
	case !types.AssignCompatible(want, t):
		a.errorf(s.Pos, "incompatible types when returning")
	}
}
