package codegen

import (
	"fmt"
	"strconv"

	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/ir"
	"github.com/tinyrange/c4/internal/lexer"
	"github.com/tinyrange/c4/internal/types"
)

// value computes e. Integers are i32, chars i8; a call to a void function
// yields ir.NoValue.
func (g *Generator) value(e ast.Expr) ir.ValueID {
	switch x := e.(type) {
	case *ast.PrimaryExpr:
		return g.primary(x)
	case *ast.SizeofExpr:
		if p, ok := x.X.(*ast.PrimaryExpr); ok && p.Tok.Type == lexer.STRING {
			return g.int32(int64(len(lexer.Unquote(p.Tok.Lex)) + 1))
		}
		return g.int32(int64(x.X.Type().Size()))
	case *ast.SizeofTypeExpr:
		return g.int32(int64(x.Name.Type.Size()))
	case *ast.UnaryExpr:
		return g.unary(x)
	case *ast.BinaryExpr:
		return g.binary(x)
	case *ast.MemberExpr, *ast.IndexExpr:
		return g.bl.Load(g.address(e))
	case *ast.CallExpr:
		return g.call(x)
	case *ast.CondExpr:
		return g.ternary(x)
	}
	panic(fmt.Sprintf("codegen: unexpected expression %T", e))
}

func (g *Generator) int32(k int64) ir.ValueID { return g.bl.Const(ir.I32, k) }

func (g *Generator) primary(x *ast.PrimaryExpr) ir.ValueID {
	switch x.Tok.Type {
	case lexer.INT:
		return g.int32(intValue(x.Tok.Lex))
	case lexer.CHAR:
		s := lexer.Unquote(x.Tok.Lex)
		if s == "" {
			return g.int32(0)
		}
		return g.int32(int64(int8(s[0])))
	case lexer.STRING:
		str := g.m.AddString([]byte(lexer.Unquote(x.Tok.Lex)))
		addr := g.bl.Global(str.Name, ir.PointerTo(str.Type))
		return g.bl.GEP(addr, ir.PointerTo(ir.I8), g.int32(0), g.int32(0))
	}
	if x.Decl.Type.IsFunction() {
		return g.funcAddr(x.Decl)
	}
	return g.bl.Load(g.address(x))
}

// intValue parses a decimal constant, wrapping it to 32 bits.
func intValue(lit string) int64 {
	n, err := strconv.ParseUint(lit, 10, 64)
	if err != nil {
		n = 1<<64 - 1
	}
	return int64(int32(n))
}

func (g *Generator) funcAddr(d *ast.Decl) ir.ValueID {
	f := g.m.Func(d.Name())
	if f == nil {
		f = g.declareFunc(d)
	}
	return g.bl.Global(f.Name, ir.PointerTo(f.Type))
}

// address computes the location designated by an lvalue.
func (g *Generator) address(e ast.Expr) ir.ValueID {
	switch x := e.(type) {
	case *ast.PrimaryExpr:
		if slot, ok := g.slots[x.Decl]; ok {
			return slot
		}
		return g.bl.Global(x.Decl.Name(), ir.PointerTo(g.lower(x.Decl.Type)))
	case *ast.UnaryExpr:
		if x.Op == lexer.STAR {
			return g.value(x.X)
		}
	case *ast.MemberExpr:
		st := x.X.Type()
		var base ir.ValueID
		if x.Op == lexer.ARROW {
			base = g.value(x.X)
			st = st.Elem
		} else {
			base = g.objectAddr(x.X)
		}
		return g.memberAddr(base, st, x.Member)
	case *ast.IndexExpr:
		return g.ptrAdd(x.X, x.Index, false)
	}
	panic(fmt.Sprintf("codegen: %T is not an lvalue", e))
}

// objectAddr is the address of a struct operand, spilling a computed struct
// value to a temporary slot.
func (g *Generator) objectAddr(e ast.Expr) ir.ValueID {
	if ast.IsLvalue(e) {
		return g.address(e)
	}
	tmp := g.bl.Alloca(g.lower(e.Type()))
	g.bl.Store(g.value(e), tmp)
	return tmp
}

// memberAddr offsets base, a pointer to st, to the named member. Union
// members all start at offset zero.
func (g *Generator) memberAddr(base ir.ValueID, st *types.Type, name string) ir.ValueID {
	mt, idx, ok := st.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("codegen: no member %s in %s", name, st))
	}
	want := ir.PointerTo(g.lower(mt))
	if st.Union {
		return g.bl.Cast(ir.OpBitCast, base, want)
	}
	return g.bl.GEP(base, want, g.int32(0), g.int32(int64(idx)))
}

// ptrAdd offsets the pointer operand of a and b by the other operand, in
// units of the pointed-to type.
func (g *Generator) ptrAdd(a, b ast.Expr, sub bool) ir.ValueID {
	ptr, idx := a, b
	if !a.Type().IsPointer() {
		ptr, idx = b, a
	}
	p := g.value(ptr)
	i := g.asInt(idx)
	if sub {
		i = g.bl.Binary(ir.OpSub, g.int32(0), i)
	}
	return g.bl.GEP(p, g.typeOf(p), i)
}

// asInt computes an arithmetic or pointer operand widened to i32.
func (g *Generator) asInt(e ast.Expr) ir.ValueID {
	v := g.value(e)
	switch t := e.Type(); {
	case t.K == types.Char:
		return g.bl.Cast(ir.OpSExt, v, ir.I32)
	case t.IsPointer():
		return g.bl.Cast(ir.OpPtrToInt, v, ir.I32)
	}
	return v
}

// convert computes e as a value of type to, as for assignment.
func (g *Generator) convert(e ast.Expr, to *types.Type) ir.ValueID {
	switch {
	case to.IsPointer() && e.Type().IsZero():
		return g.bl.Zero(g.lower(to))
	case to.K == types.Char:
		v := g.value(e)
		if g.typeOf(v).Bits > 8 {
			v = g.bl.Cast(ir.OpTrunc, v, ir.I8)
		}
		return v
	case to.K == types.Int:
		return g.asInt(e)
	}
	v := g.value(e)
	if want := g.lower(to); !ir.Equal(g.typeOf(v), want) {
		v = g.bl.Cast(ir.OpBitCast, v, want)
	}
	return v
}

func (g *Generator) unary(x *ast.UnaryExpr) ir.ValueID {
	switch x.Op {
	case lexer.STAR:
		if x.Type().IsFunction() {
			return g.value(x.X)
		}
		return g.bl.Load(g.value(x.X))
	case lexer.AMP:
		if x.X.Type().IsFunction() {
			return g.value(x.X)
		}
		return g.address(x.X)
	case lexer.BANG:
		return g.bl.Cast(ir.OpZExt, g.cond(x), ir.I32)
	case lexer.MINUS:
		return g.bl.Binary(ir.OpSub, g.int32(0), g.asInt(x.X))
	}
	panic(fmt.Sprintf("codegen: unexpected unary %s", x.Op))
}

var arith = map[lexer.TokenType]ir.Op{
	lexer.PLUS:  ir.OpAdd,
	lexer.MINUS: ir.OpSub,
	lexer.STAR:  ir.OpMul,
}

func (g *Generator) binary(x *ast.BinaryExpr) ir.ValueID {
	switch x.Op {
	case lexer.ASSIGN:
		addr := g.address(x.Left)
		v := g.convert(x.Right, x.Left.Type())
		g.bl.Store(v, addr)
		return v
	case lexer.PLUS, lexer.MINUS, lexer.STAR:
		if x.Type().IsPointer() {
			return g.ptrAdd(x.Left, x.Right, x.Op == lexer.MINUS)
		}
		if x.Left.Type().IsPointer() && x.Right.Type().IsPointer() {
			return g.ptrDiff(x)
		}
		l := g.asInt(x.Left)
		r := g.asInt(x.Right)
		return g.bl.Binary(arith[x.Op], l, r)
	}
	return g.bl.Cast(ir.OpZExt, g.cond(x), ir.I32)
}

// ptrDiff subtracts two pointers as raw addresses.
func (g *Generator) ptrDiff(x *ast.BinaryExpr) ir.ValueID {
	l := g.bl.Cast(ir.OpPtrToInt, g.value(x.Left), ir.I64)
	r := g.bl.Cast(ir.OpPtrToInt, g.value(x.Right), ir.I64)
	return g.bl.Cast(ir.OpTrunc, g.bl.Binary(ir.OpSub, l, r), ir.I32)
}

// cond computes e as an i1 truth value.
func (g *Generator) cond(e ast.Expr) ir.ValueID {
	switch x := e.(type) {
	case *ast.BinaryExpr:
		switch x.Op {
		case lexer.ANDAND, lexer.OROR:
			return g.logical(x)
		case lexer.EQEQ, lexer.NEQ, lexer.LT:
			return g.compare(x)
		}
	case *ast.UnaryExpr:
		if x.Op == lexer.BANG {
			v := g.value(x.X)
			return g.bl.Cmp(ir.OpEq, v, g.bl.Zero(g.typeOf(v)))
		}
	}
	v := g.value(e)
	return g.bl.Cmp(ir.OpNe, v, g.bl.Zero(g.typeOf(v)))
}

func (g *Generator) compare(x *ast.BinaryExpr) ir.ValueID {
	lt, rt := x.Left.Type(), x.Right.Type()
	var l, r ir.ValueID
	switch {
	case lt.IsArithmetic() && rt.IsArithmetic():
		l = g.asInt(x.Left)
		r = g.asInt(x.Right)
	case lt.IsZero():
		r = g.value(x.Right)
		l = g.bl.Zero(g.typeOf(r))
	case rt.IsZero():
		l = g.value(x.Left)
		r = g.bl.Zero(g.typeOf(l))
	default:
		l = g.value(x.Left)
		r = g.value(x.Right)
		if !ir.Equal(g.typeOf(l), g.typeOf(r)) {
			r = g.bl.Cast(ir.OpBitCast, r, g.typeOf(l))
		}
	}
	switch x.Op {
	case lexer.EQEQ:
		return g.bl.Cmp(ir.OpEq, l, r)
	case lexer.NEQ:
		return g.bl.Cmp(ir.OpNe, l, r)
	}
	if lt.IsArithmetic() {
		return g.bl.Cmp(ir.OpSlt, l, r)
	}
	return g.bl.Cmp(ir.OpUlt, l, r)
}

// logical lowers && and || to a branch around the right operand and a phi
// merging the short-circuit constant with the right operand's truth value.
func (g *Generator) logical(x *ast.BinaryExpr) ir.ValueID {
	and := x.Op == lexer.ANDAND
	prefix := "lor"
	short := int64(1)
	if and {
		prefix = "land"
		short = 0
	}
	l := g.cond(x.Left)
	k := g.bl.Const(ir.I1, short)
	from := g.bl.Block()
	rhs := g.bl.NewBlock(prefix + ".rhs")
	end := g.bl.NewBlock(prefix + ".end")
	if and {
		g.bl.Br(l, rhs, end)
	} else {
		g.bl.Br(l, end, rhs)
	}
	g.bl.SetBlock(rhs)
	r := g.cond(x.Right)
	last := g.bl.Block()
	g.bl.Jmp(end)
	g.bl.SetBlock(end)
	return g.bl.Phi(ir.I1, ir.Incoming{Value: k, Pred: from}, ir.Incoming{Value: r, Pred: last})
}

func (g *Generator) call(x *ast.CallExpr) ir.ValueID {
	ft := x.Fn.Type()
	if ft.IsPointer() {
		ft = ft.Elem
	}
	callee := g.value(x.Fn)
	params := ft.Args()
	args := make([]ir.ValueID, len(x.Args))
	for i, a := range x.Args {
		args[i] = g.convert(a, params[i])
	}
	return g.bl.Call(callee, args...)
}

// ternary evaluates both branches and selects one. A void conditional only
// runs the chosen branch.
func (g *Generator) ternary(x *ast.CondExpr) ir.ValueID {
	t := x.Type()
	if t.IsVoid() {
		then := g.bl.NewBlock("cond.true")
		els := g.bl.NewBlock("cond.false")
		end := g.bl.NewBlock("cond.end")
		g.branch(x.Cond, then, els)
		g.bl.SetBlock(then)
		g.value(x.Then)
		g.bl.Jmp(end)
		g.bl.SetBlock(els)
		g.value(x.Else)
		g.bl.Jmp(end)
		g.bl.SetBlock(end)
		return ir.NoValue
	}
	c := g.cond(x.Cond)
	a := g.convert(x.Then, t)
	b := g.convert(x.Else, t)
	return g.bl.Select(c, a, b)
}
