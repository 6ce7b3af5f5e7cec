package codegen

import (
	"fmt"

	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/ir"
)

// items lowers a block body. Once the current block is terminated the
// following statements are dropped, unless one of them holds a label that
// may still be jumped to. Declarations only reserve stack slots, so they are
// always processed.
func (g *Generator) items(items []ast.BlockItem) {
	for _, it := range items {
		switch x := it.(type) {
		case *ast.Decl:
			g.localDecl(x)
		case ast.Stmt:
			if g.bl.Terminated() {
				if !hasLabel(x) {
					continue
				}
				g.bl.SetBlock(g.bl.NewBlock("dead"))
			}
			g.stmt(x)
		}
	}
}

func (g *Generator) localDecl(d *ast.Decl) {
	switch {
	case d.Name() == "":
	case d.Type.IsFunction():
		g.declareFunc(d)
	default:
		g.slots[d] = g.bl.Alloca(g.lower(d.Type))
	}
}

func hasLabel(s ast.Stmt) bool {
	switch x := s.(type) {
	case *ast.LabeledStmt:
		return true
	case *ast.CompoundStmt:
		for _, it := range x.Items {
			if st, ok := it.(ast.Stmt); ok && hasLabel(st) {
				return true
			}
		}
	case *ast.IfStmt:
		return hasLabel(x.Then)
	case *ast.IfElseStmt:
		return hasLabel(x.Then) || hasLabel(x.Else)
	case *ast.WhileStmt:
		return hasLabel(x.Body)
	}
	return false
}

func (g *Generator) stmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.CompoundStmt:
		g.items(x.Items)
	case *ast.ExprStmt:
		if x.X != nil {
			g.value(x.X)
		}
	case *ast.IfStmt:
		then := g.bl.NewBlock("if.then")
		end := g.bl.NewBlock("if.end")
		g.branch(x.Cond, then, end)
		g.bl.SetBlock(then)
		g.stmt(x.Then)
		g.jmp(end)
		g.bl.SetBlock(end)
	case *ast.IfElseStmt:
		then := g.bl.NewBlock("if.then")
		els := g.bl.NewBlock("if.else")
		end := g.bl.NewBlock("if.end")
		g.branch(x.Cond, then, els)
		g.bl.SetBlock(then)
		g.stmt(x.Then)
		g.jmp(end)
		g.bl.SetBlock(els)
		g.stmt(x.Else)
		g.jmp(end)
		g.bl.SetBlock(end)
	case *ast.WhileStmt:
		header := g.bl.NewBlock("while.cond")
		body := g.bl.NewBlock("while.body")
		end := g.bl.NewBlock("while.end")
		g.jmp(header)
		g.bl.SetBlock(header)
		g.branch(x.Cond, body, end)
		g.bl.SetBlock(body)
		g.loops = append(g.loops, loop{header, end})
		g.stmt(x.Body)
		g.loops = g.loops[:len(g.loops)-1]
		g.jmp(header)
		g.bl.SetBlock(end)
	case *ast.LabeledStmt:
		b := g.labelBlock(x)
		g.jmp(b)
		g.bl.SetBlock(b)
		g.stmt(x.Stmt)
	case *ast.GotoStmt:
		g.bl.Jmp(g.labelBlock(x.Target))
	case *ast.BreakStmt:
		g.bl.Jmp(g.loops[len(g.loops)-1].end)
	case *ast.ContinueStmt:
		g.bl.Jmp(g.loops[len(g.loops)-1].header)
	case *ast.ReturnStmt:
		if x.X == nil {
			g.bl.RetVoid()
		} else {
			g.bl.Ret(g.convert(x.X, g.fn.Type.Ret))
		}
	default:
		panic(fmt.Sprintf("codegen: unexpected statement %T", s))
	}
}

// labelBlock returns the block of a labeled statement, creating it on the
// first goto or on the label itself, whichever comes first.
func (g *Generator) labelBlock(l *ast.LabeledStmt) *ir.BasicBlock {
	if b, ok := g.labels[l]; ok {
		return b
	}
	b := g.bl.NewBlock(l.Label)
	g.labels[l] = b
	return b
}

// jmp closes the current block with a jump unless it is already closed.
func (g *Generator) jmp(target *ir.BasicBlock) {
	if !g.bl.Terminated() {
		g.bl.Jmp(target)
	}
}

func (g *Generator) branch(cond ast.Expr, then, els *ir.BasicBlock) {
	g.bl.Br(g.cond(cond), then, els)
}
