package sema

import (
	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/lexer"
	"github.com/tinyrange/c4/internal/types"
)

// expr resolves the type of e, records it on e and returns it. Operands of
// the error type yield the error type without a further diagnostic.
func (a *Analyzer) expr(e ast.Expr) *types.Type {
	t := a.check(e)
	e.SetType(t)
	return t
}

func (a *Analyzer) check(e ast.Expr) *types.Type {
	switch x := e.(type) {
	case *ast.PrimaryExpr:
		return a.primary(x)
	case *ast.SizeofExpr:
		return a.sizeof(x, a.expr(x.X))
	case *ast.SizeofTypeExpr:
		return a.sizeof(x, a.analyzeType(x.Name))
	case *ast.UnaryExpr:
		return a.unary(x)
	case *ast.BinaryExpr:
		return a.binary(x)
	case *ast.MemberExpr:
		return a.member(x)
	case *ast.IndexExpr:
		return a.index(x)
	case *ast.CallExpr:
		return a.call(x)
	case *ast.CondExpr:
		return a.cond(x)
	}
	return types.ErrorT()
}

func (a *Analyzer) primary(x *ast.PrimaryExpr) *types.Type {
	switch x.Tok.Type {
	case lexer.INT:
		if x.Tok.Lex == "0" {
			return types.Zero()
		}
		return types.IntT()
	case lexer.CHAR:
		return types.IntT()
	case lexer.STRING:
		return types.PointerTo(types.CharT())
	}
	d := a.scope.Lookup(x.Tok.Lex)
	if d == nil {
		a.errorf(x.Pos, "'%s' undeclared", x.Tok.Lex)
		return types.ErrorT()
	}
	x.Decl = d
	return d.Type
}

func (a *Analyzer) sizeof(e ast.Expr, t *types.Type) *types.Type {
	switch {
	case t.IsError():
		return t
	case t.IsFunction():
		a.errorf(e.Position(), "invalid application of 'sizeof' to a function type")
		return types.ErrorT()
	case !t.IsComplete():
		a.errorf(e.Position(), "invalid application of 'sizeof' to an incomplete type")
		return types.ErrorT()
	}
	return types.IntT()
}

func (a *Analyzer) unary(x *ast.UnaryExpr) *types.Type {
	t := a.expr(x.X)
	if t.IsError() {
		return t
	}
	switch x.Op {
	case lexer.BANG:
		if t.IsScalar() {
			return types.IntT()
		}
	case lexer.MINUS:
		if t.IsArithmetic() {
			return types.IntT()
		}
	case lexer.STAR:
		if t.IsPointer() {
			return t.Elem
		}
	case lexer.AMP:
		if t.IsFunction() || ast.IsLvalue(x.X) {
			return types.PointerTo(t)
		}
	}
	a.errorf(x.Pos, "invalid type argument to unary '%s'", x.Op)
	return types.ErrorT()
}

// The rules below are tried in order for each operator; the first that
// admits the operand types decides the result.

func pointerArith(p, i *types.Type) bool {
	return p.PointerToComplete() && i.IsArithmetic()
}

func bothArith(l, r *types.Type) bool {
	return l.IsArithmetic() && r.IsArithmetic()
}

func bothScalar(l, r *types.Type) bool {
	return l.IsScalar() && r.IsScalar()
}

func objectAndVoidPointers(l, r *types.Type) bool {
	return (l.PointerToObject() && r.PointerToVoid()) || (r.PointerToObject() && l.PointerToVoid())
}

func pointerAndNull(l, r *types.Type) bool {
	return (l.IsPointer() && r.IsZero()) || (r.IsPointer() && l.IsZero())
}

func equalObjectPointers(l, r *types.Type) bool {
	return l.PointerToObject() && r.PointerToObject() && types.Equal(l, r)
}

func equalCompletePointers(l, r *types.Type) bool {
	return l.PointerToComplete() && r.PointerToComplete() && types.Equal(l, r)
}

func binaryResult(op lexer.TokenType, l, r *types.Type) *types.Type {
	switch op {
	case lexer.PLUS:
		switch {
		case pointerArith(l, r):
			return l
		case pointerArith(r, l):
			return r
		case bothArith(l, r):
			return types.IntT()
		}
	case lexer.STAR:
		if bothArith(l, r) {
			return types.IntT()
		}
	case lexer.MINUS:
		switch {
		case bothArith(l, r):
			return types.IntT()
		case pointerArith(l, r):
			return l
		case equalCompletePointers(l, r):
			return types.IntT()
		}
	case lexer.EQEQ, lexer.NEQ:
		if objectAndVoidPointers(l, r) || pointerAndNull(l, r) || bothArith(l, r) || equalObjectPointers(l, r) {
			return types.IntT()
		}
	case lexer.LT:
		if bothArith(l, r) || equalObjectPointers(l, r) {
			return types.IntT()
		}
	case lexer.ANDAND, lexer.OROR:
		if bothScalar(l, r) {
			return types.IntT()
		}
	}
	return nil
}

func (a *Analyzer) binary(x *ast.BinaryExpr) *types.Type {
	l := a.expr(x.Left)
	r := a.expr(x.Right)
	if l.IsError() || r.IsError() {
		return types.ErrorT()
	}
	if x.Op == lexer.ASSIGN {
		if !l.IsComplete() || !ast.IsLvalue(x.Left) {
			a.errorf(x.Pos, "modifiable lvalue required as left operand of assignment")
			return types.ErrorT()
		}
		if !types.AssignCompatible(l, r) {
			a.errorf(x.Pos, "incompatible types for assignment")
			return types.ErrorT()
		}
		return l
	}
	if t := binaryResult(x.Op, l, r); t != nil {
		return t
	}
	a.errorf(x.Pos, "invalid operands to binary '%s'", x.Op)
	return types.ErrorT()
}

func (a *Analyzer) member(x *ast.MemberExpr) *types.Type {
	t := a.expr(x.X)
	if t.IsError() {
		return t
	}
	if x.Op == lexer.ARROW {
		if !t.IsPointer() || !t.Elem.IsStruct() {
			a.errorf(x.Pos, "invalid type argument of '->', expected pointer to struct")
			return types.ErrorT()
		}
		t = t.Elem
	} else if !t.IsStruct() {
		a.errorf(x.Pos, "invalid type argument of '.', expected struct")
		return types.ErrorT()
	}
	mt, _, ok := t.Lookup(x.Member)
	if !ok {
		a.errorf(x.Pos, "no member '%s' in given struct", x.Member)
		return types.ErrorT()
	}
	return mt
}

func (a *Analyzer) index(x *ast.IndexExpr) *types.Type {
	l := a.expr(x.X)
	r := a.expr(x.Index)
	switch {
	case l.IsError() || r.IsError():
		return types.ErrorT()
	case l.PointerToComplete() && r.IsArithmetic():
		return l.Elem
	case l.IsArithmetic() && r.PointerToComplete():
		return r.Elem
	}
	a.errorf(x.Pos, "invalid operands for array subscripting")
	return types.ErrorT()
}

func (a *Analyzer) call(x *ast.CallExpr) *types.Type {
	ft := a.expr(x.Fn)
	if ft.IsError() {
		return ft
	}
	if ft.PointerToFunc() {
		ft = ft.Elem
	} else if !ft.IsFunction() {
		a.errorf(x.Pos, "called object that is not a function or pointer to a function")
		return types.ErrorT()
	}
	params := ft.Args()
	if len(x.Args) != len(params) {
		a.errorf(x.Pos, "passed %d argument(s) to function expecting %d", len(x.Args), len(params))
		return types.ErrorT()
	}
	bad := false
	for i, arg := range x.Args {
		at := a.expr(arg)
		if at.IsError() {
			bad = true
			continue
		}
		if !types.AssignCompatible(params[i], at) {
			a.errorf(arg.Position(), "argument at position %d does not have expected type", i+1)
			bad = true
		}
	}
	if bad {
		return types.ErrorT()
	}
	return ft.Ret
}

// rightCompatible reports whether a conditional with branch types l and r
// takes the type of r.
func rightCompatible(l, r *types.Type) bool {
	return (r.IsPointer() && l.IsZero()) || (l.PointerToObject() && r.PointerToVoid())
}

func leftCompatible(l, r *types.Type) bool {
	return (!l.IsFunction() && types.Equal(l, r)) || rightCompatible(r, l)
}

func (a *Analyzer) cond(x *ast.CondExpr) *types.Type {
	c := a.expr(x.Cond)
	l := a.expr(x.Then)
	r := a.expr(x.Else)
	bad := c.IsError() || l.IsError() || r.IsError()
	if !c.IsError() && !c.IsScalar() {
		a.errorf(x.Cond.Position(), "used non-scalar type where scalar is required")
		bad = true
	}
	switch {
	case bad:
		return types.ErrorT()
	case bothArith(l, r):
		return types.IntT()
	case leftCompatible(l, r):
		return l
	case rightCompatible(l, r):
		return r
	}
	a.errorf(x.Pos, "type mismatch in conditional expression")
	return types.ErrorT()
}
