// Package printer renders an AST back to C source with every expression
// fully parenthesised.
package printer

import (
	"io"
	"strings"

	"github.com/tinyrange/c4/internal/ast"
)

type printer struct {
	sb   strings.Builder
	tabs int
}

// Print renders a translation unit.
func Print(tu *ast.TranslationUnit) string {
	p := &printer{}
	for i, d := range tu.Decls {
		p.decl(d)
		if i != len(tu.Decls)-1 {
			p.sb.WriteByte('\n')
		}
		p.sb.WriteByte('\n')
	}
	return p.sb.String()
}

// Fprint writes Print(tu) to w.
func Fprint(w io.Writer, tu *ast.TranslationUnit) error {
	_, err := io.WriteString(w, Print(tu))
	return err
}

// Expr renders a single expression.
func Expr(e ast.Expr) string {
	p := &printer{}
	p.expr(e)
	return p.sb.String()
}

func (p *printer) newline() {
	p.sb.WriteByte('\n')
	for i := 0; i < p.tabs; i++ {
		p.sb.WriteByte('\t')
	}
}

func (p *printer) decl(d *ast.Decl) {
	if p.tabs != 0 {
		p.newline()
	}
	p.spec(d.Spec)
	if d.Declarator != nil {
		p.sb.WriteByte(' ')
		p.declarator(d.Declarator)
	}
	if d.Body != nil {
		p.sb.WriteString("\n{")
		p.body(d.Body)
	} else {
		p.sb.WriteByte(';')
	}
}

func (p *printer) spec(ts *ast.TypeSpec) {
	if ts == nil {
		return
	}
	if ts.Struct == nil {
		p.sb.WriteString(ts.Kind.String())
		return
	}
	s := ts.Struct
	p.sb.WriteString(ts.Kind.String())
	p.sb.WriteByte(' ')
	p.sb.WriteString(s.Tag)
	if len(s.Members) == 0 {
		return
	}
	p.newline()
	p.sb.WriteByte('{')
	p.tabs++
	for _, m := range s.Members {
		p.decl(m)
	}
	p.tabs--
	p.newline()
	p.sb.WriteByte('}')
}

func (p *printer) declarator(d *ast.Declarator) {
	parens := d.Pointer || d.Func
	if parens {
		p.sb.WriteByte('(')
	}
	if d.Pointer {
		p.sb.WriteByte('*')
	}
	p.sb.WriteString(d.Ident)
	if d.Inner != nil {
		p.declarator(d.Inner)
	}
	if d.Func {
		p.sb.WriteByte('(')
		for i, pd := range d.Params {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.param(pd)
		}
		p.sb.WriteByte(')')
	}
	if parens {
		p.sb.WriteByte(')')
	}
}

func (p *printer) param(d *ast.Decl) {
	if d.Variadic {
		p.sb.WriteString("...")
		return
	}
	p.spec(d.Spec)
	if d.Declarator != nil {
		p.sb.WriteByte(' ')
		p.declarator(d.Declarator)
	}
}

func (p *printer) body(cs *ast.CompoundStmt) {
	p.tabs++
	for _, it := range cs.Items {
		switch x := it.(type) {
		case *ast.Decl:
			p.decl(x)
		case ast.Stmt:
			p.stmt(x)
		}
	}
	p.tabs--
	p.newline()
	p.sb.WriteByte('}')
}

// nested prints the body of a loop or branch; it reports whether the body
// was a compound statement.
func (p *printer) nested(s ast.Stmt) bool {
	if cs, ok := s.(*ast.CompoundStmt); ok {
		p.sb.WriteString(" {")
		p.body(cs)
		return true
	}
	p.tabs++
	p.stmt(s)
	p.tabs--
	return false
}

func (p *printer) stmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.CompoundStmt:
		p.newline()
		p.sb.WriteByte('{')
		p.body(x)
	case *ast.BreakStmt:
		p.newline()
		p.sb.WriteString("break;")
	case *ast.ContinueStmt:
		p.newline()
		p.sb.WriteString("continue;")
	case *ast.ReturnStmt:
		p.newline()
		p.sb.WriteString("return")
		if x.X != nil {
			p.sb.WriteByte(' ')
			p.expr(x.X)
		}
		p.sb.WriteByte(';')
	case *ast.LabeledStmt:
		p.sb.WriteByte('\n')
		p.sb.WriteString(x.Label)
		p.sb.WriteByte(':')
		p.stmt(x.Stmt)
	case *ast.GotoStmt:
		p.newline()
		p.sb.WriteString("goto ")
		p.sb.WriteString(x.Label)
		p.sb.WriteByte(';')
	case *ast.WhileStmt:
		p.newline()
		p.sb.WriteString("while (")
		p.expr(x.Cond)
		p.sb.WriteByte(')')
		p.nested(x.Body)
	case *ast.IfStmt, *ast.IfElseStmt:
		p.newline()
		p.ifChain(x)
	case *ast.ExprStmt:
		p.newline()
		if x.X != nil {
			p.expr(x.X)
		}
		p.sb.WriteByte(';')
	}
}

func (p *printer) ifChain(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.IfStmt:
		p.sb.WriteString("if (")
		p.expr(x.Cond)
		p.sb.WriteByte(')')
		p.nested(x.Then)
	case *ast.IfElseStmt:
		p.sb.WriteString("if (")
		p.expr(x.Cond)
		p.sb.WriteByte(')')
		if p.nested(x.Then) {
			p.sb.WriteString(" else")
		} else {
			p.newline()
			p.sb.WriteString("else")
		}
		switch x.Else.(type) {
		case *ast.IfStmt, *ast.IfElseStmt:
			p.sb.WriteByte(' ')
			p.ifChain(x.Else)
		default:
			p.nested(x.Else)
		}
	}
}

func (p *printer) typeName(d *ast.Decl) {
	p.spec(d.Spec)
	if dl := d.Declarator; dl != nil && (dl.Pointer || dl.Inner != nil || dl.Func) {
		p.sb.WriteByte(' ')
		p.declarator(dl)
	}
}

func (p *printer) expr(e ast.Expr) {
	switch x := e.(type) {
	case *ast.PrimaryExpr:
		p.sb.WriteString(x.Tok.Lex)
	case *ast.SizeofExpr:
		p.sb.WriteString("(sizeof ")
		p.expr(x.X)
		p.sb.WriteByte(')')
	case *ast.SizeofTypeExpr:
		p.sb.WriteString("(sizeof(")
		p.typeName(x.Name)
		p.sb.WriteString("))")
	case *ast.UnaryExpr:
		p.sb.WriteByte('(')
		p.sb.WriteString(x.Op.String())
		p.expr(x.X)
		p.sb.WriteByte(')')
	case *ast.BinaryExpr:
		p.sb.WriteByte('(')
		p.expr(x.Left)
		p.sb.WriteString(" " + x.Op.String() + " ")
		p.expr(x.Right)
		p.sb.WriteByte(')')
	case *ast.MemberExpr:
		p.sb.WriteByte('(')
		p.expr(x.X)
		p.sb.WriteString(x.Op.String())
		p.sb.WriteString(x.Member)
		p.sb.WriteByte(')')
	case *ast.IndexExpr:
		p.sb.WriteByte('(')
		p.expr(x.X)
		p.sb.WriteByte('[')
		p.expr(x.Index)
		p.sb.WriteString("])")
	case *ast.CallExpr:
		p.sb.WriteByte('(')
		p.expr(x.Fn)
		p.sb.WriteByte('(')
		for i, a := range x.Args {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.expr(a)
		}
		p.sb.WriteString("))")
	case *ast.CondExpr:
		p.sb.WriteByte('(')
		p.expr(x.Cond)
		p.sb.WriteString(" ? ")
		p.expr(x.Then)
		p.sb.WriteString(" : ")
		p.expr(x.Else)
		p.sb.WriteByte(')')
	case *ast.BadExpr:
		p.sb.WriteString("<bad>")
	}
}
