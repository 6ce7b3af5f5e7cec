package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/c4/internal/diag"
	"github.com/tinyrange/c4/internal/ir"
	"github.com/tinyrange/c4/internal/parser"
	"github.com/tinyrange/c4/internal/sema"
	"github.com/tinyrange/c4/internal/source"
)

func generate(t *testing.T, src string) *ir.Module {
	t.Helper()
	r := diag.NewReporter(nil)
	tu := parser.ParseFile(source.FromString("t.c", src), r)
	require.False(t, r.HasErrors(), "syntax errors: %v", r.Messages())
	sema.Analyze(tu, r)
	require.False(t, r.HasErrors(), "semantic errors: %v", r.Messages())
	m, err := Generate(tu, "t.c")
	require.NoError(t, err)
	require.NoError(t, ir.Verify(m))
	return m
}

func instrs(f *ir.Function, op ir.Op) []ir.Instr {
	var out []ir.Instr
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			if in.Val.Op == op {
				out = append(out, in)
			}
		}
	}
	return out
}

func def(f *ir.Function, id ir.ValueID) ir.Instr {
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			if in.Res == id {
				return in
			}
		}
	}
	return ir.Instr{Res: ir.NoValue}
}

func block(f *ir.Function, name string) *ir.BasicBlock {
	for _, b := range f.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func TestMainReturnsZero(t *testing.T) {
	m := generate(t, "int main(void) { return 0; }")
	f := m.Func("main")
	require.NotNil(t, f)
	require.Len(t, f.Blocks, 1)
	term := f.Entry().Terminator()
	require.NotNil(t, term)
	require.Equal(t, ir.OpRet, term.Val.Op)
	k := def(f, term.Val.Args[0])
	assert.Equal(t, ir.OpConst, k.Val.Op)
	assert.EqualValues(t, 0, k.Val.Const)
	assert.True(t, ir.Equal(ir.I32, k.Val.Type))
}

func TestRepeatedGlobalHasOneSlot(t *testing.T) {
	m := generate(t, "int x; int x; int main(void) { x = 1; return x; }")
	require.Len(t, m.Globals, 1)
	assert.Equal(t, "x", m.Globals[0].Name)
	assert.False(t, m.Globals[0].Private())
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	m := generate(t, "int f(int a, int b) { if (a && b) return 1; return 0; }")
	f := m.Func("f")
	rhs := block(f, "land.rhs")
	end := block(f, "land.end")
	require.NotNil(t, rhs)
	require.NotNil(t, end)

	br := f.Entry().Terminator()
	require.Equal(t, ir.OpBr, br.Val.Op)
	assert.Equal(t, []*ir.BasicBlock{rhs, end}, br.Val.Targets)

	require.Len(t, end.Preds, 2)
	assert.Same(t, f.Entry(), end.Preds[0])
	assert.Same(t, rhs, end.Preds[1])
	phi := end.Instrs[0]
	require.Equal(t, ir.OpPhi, phi.Val.Op)
	short := def(f, phi.Val.Args[0])
	assert.Equal(t, ir.OpConst, short.Val.Op)
	assert.EqualValues(t, 0, short.Val.Const)

	// b is only loaded on the path through land.rhs.
	loads := 0
	for _, in := range rhs.Instrs {
		if in.Val.Op == ir.OpLoad {
			loads++
		}
	}
	assert.Equal(t, 1, loads)
}

func TestOrShortCircuitsOnTrue(t *testing.T) {
	m := generate(t, "int f(int a, int b) { return a || b; }")
	f := m.Func("f")
	end := block(f, "lor.end")
	require.NotNil(t, end)
	br := f.Entry().Terminator()
	assert.Same(t, end, br.Val.Targets[0])
	short := def(f, end.Instrs[0].Val.Args[0])
	assert.EqualValues(t, 1, short.Val.Const)
	assert.Len(t, instrs(f, ir.OpZExt), 1)
}

func TestWhileLoop(t *testing.T) {
	m := generate(t, `int sum(int n) {
	int s;
	s = 0;
	while (n) {
		if (n == 3) { n = n - 1; continue; }
		s = s + n;
		n = n - 1;
		if (s < 0) break;
	}
	return s;
}`)
	f := m.Func("sum")
	header := block(f, "while.cond")
	end := block(f, "while.end")
	require.NotNil(t, header)
	require.NotNil(t, end)
	assert.GreaterOrEqual(t, len(header.Preds), 3)
	assert.GreaterOrEqual(t, len(end.Preds), 2)
	assert.Len(t, instrs(f, ir.OpAlloca), 2)
}

func TestGotoForwardAndDeadCode(t *testing.T) {
	m := generate(t, `int f(void) {
	goto out;
	return 7;
out:
	return 2;
}`)
	f := m.Func("f")
	out := block(f, "out")
	require.NotNil(t, out)
	assert.Equal(t, []*ir.BasicBlock{out}, f.Entry().Succs)
	for _, in := range instrs(f, ir.OpConst) {
		assert.NotEqualValues(t, 7, in.Val.Const)
	}
}

func TestStatementsAfterReturnAreDropped(t *testing.T) {
	m := generate(t, "int g(void); int f(void) { return 1; g(); g(); }")
	f := m.Func("f")
	assert.Empty(t, instrs(f, ir.OpCall))
	assert.Len(t, f.Blocks, 1)
}

func TestLabelAfterReturnStaysReachable(t *testing.T) {
	m := generate(t, `int f(int a) {
	if (a) goto again;
	return 0;
again:
	return 1;
}`)
	f := m.Func("f")
	again := block(f, "again")
	require.NotNil(t, again)
	assert.Len(t, again.Preds, 1)
}

func TestPointerArithmeticScalesByElement(t *testing.T) {
	m := generate(t, "int *f(int *p) { return p + 2; } int *g(int *p) { return p - 1; } int h(int *p) { return p[3]; }")
	gep := instrs(m.Func("f"), ir.OpGEP)
	require.Len(t, gep, 1)
	assert.True(t, ir.Equal(ir.I32, gep[0].Val.Elem))
	assert.Len(t, gep[0].Val.Args, 2)

	g := m.Func("g")
	require.Len(t, instrs(g, ir.OpGEP), 1)
	assert.Len(t, instrs(g, ir.OpSub), 1)

	assert.Len(t, instrs(m.Func("h"), ir.OpGEP), 1)
}

func TestPointerDifferenceUsesAddresses(t *testing.T) {
	m := generate(t, "int f(char *a, char *b) { return a - b; }")
	f := m.Func("f")
	assert.Len(t, instrs(f, ir.OpPtrToInt), 2)
	assert.Len(t, instrs(f, ir.OpTrunc), 1)
}

func TestStructMemberOffsets(t *testing.T) {
	m := generate(t, `struct s { int a; char b; struct s *next; };
char f(struct s *p) { return p->next->b; }
int g(void) { struct s v; v.a = 1; return v.a; }`)
	require.Len(t, m.Structs, 1)
	st := m.Structs[0]
	assert.Equal(t, "struct.s", st.Name)
	require.Len(t, st.Fields, 3)
	assert.Same(t, st, st.Fields[2].Elem)

	geps := instrs(m.Func("f"), ir.OpGEP)
	require.Len(t, geps, 2)
	f := m.Func("f")
	idx := def(f, geps[1].Val.Args[2])
	assert.EqualValues(t, 1, idx.Val.Const)
	assert.Len(t, instrs(m.Func("g"), ir.OpGEP), 2)
}

func TestForwardStructCompletedLater(t *testing.T) {
	m := generate(t, `struct n *head;
struct n { int v; struct n *next; };
int first(void) { return head->next->v; }
struct late *q;
struct late { char c; };`)
	require.Len(t, m.Structs, 2)
	for _, st := range m.Structs {
		assert.False(t, st.Opaque, st.Name)
	}
	n := m.Structs[0]
	require.Len(t, n.Fields, 2)
	assert.Same(t, n, n.Fields[1].Elem)
}

func TestUnionMembersShareStorage(t *testing.T) {
	m := generate(t, "union u { char c; int i; }; int f(union u *p) { p->c = 'x'; return p->i; }")
	f := m.Func("f")
	assert.Len(t, instrs(f, ir.OpBitCast), 2)
	assert.Empty(t, instrs(f, ir.OpGEP))
	require.Len(t, m.Structs, 1)
	assert.Equal(t, "union.u", m.Structs[0].Name)
	assert.True(t, ir.Equal(ir.I32, m.Structs[0].Fields[0]))
}

func TestCharAssignmentTruncates(t *testing.T) {
	m := generate(t, "char c; int f(void) { c = 300; return c; }")
	f := m.Func("f")
	require.Len(t, instrs(f, ir.OpTrunc), 1)
	require.Len(t, instrs(f, ir.OpSExt), 1)
	store := instrs(f, ir.OpStore)[0]
	assert.True(t, ir.Equal(ir.I8, f.TypeOf(store.Val.Args[0])))
}

func TestSynthesizedReturns(t *testing.T) {
	m := generate(t, "int f(void) { } void g(void) { } char *h(void) { }")
	f := m.Func("f")
	ret := f.Entry().Terminator()
	require.Len(t, ret.Val.Args, 1)
	assert.EqualValues(t, 0, def(f, ret.Val.Args[0]).Val.Const)

	assert.Empty(t, m.Func("g").Entry().Terminator().Val.Args)

	h := m.Func("h")
	ret = h.Entry().Terminator()
	assert.True(t, h.TypeOf(ret.Val.Args[0]).IsPointer())
}

func TestStringLiterals(t *testing.T) {
	m := generate(t, `char *s(void) { return "hi"; } int n(void) { return sizeof "hi" + sizeof(int) + sizeof(char *); }`)
	require.Len(t, m.Globals, 1)
	g := m.Globals[0]
	assert.True(t, g.Private())
	assert.Equal(t, []byte("hi\x00"), g.Data)

	n := m.Func("n")
	var ks []int64
	for _, in := range instrs(n, ir.OpConst) {
		ks = append(ks, in.Val.Const)
	}
	assert.Equal(t, []int64{3, 4, 8}, ks)
}

func TestPrototypeThenDefinitionShareSymbol(t *testing.T) {
	m := generate(t, "int f(int); int main(void) { return f(2); } int f(int x) { return x * 2; }")
	require.Len(t, m.Funcs, 2)
	f := m.Func("f")
	assert.True(t, f.Defined())
	assert.Equal(t, []string{"x"}, f.Params)
	call := instrs(m.Func("main"), ir.OpCall)
	require.Len(t, call, 1)
}

func TestFunctionPointers(t *testing.T) {
	m := generate(t, "int (*fp)(int); int g(int a) { fp = &g; return fp(a) + (*fp)(a) + g(a); }")
	g := m.Func("g")
	assert.Len(t, instrs(g, ir.OpCall), 3)
	require.NotNil(t, m.Global("fp"))
}

func TestVariadicPrototypeCall(t *testing.T) {
	m := generate(t, `int put(int ch, ...); char c; int main(void) { return put(c); }`)
	main := m.Func("main")
	call := instrs(main, ir.OpCall)
	require.Len(t, call, 1)
	assert.Len(t, call[0].Val.Args, 2)
	assert.True(t, ir.Equal(ir.I32, main.TypeOf(call[0].Val.Args[1])))
	assert.True(t, m.Func("put").Type.Variadic)
}

func TestNullComparisonsAndConversions(t *testing.T) {
	m := generate(t, `void *v; int *p;
int f(void) {
	p = 0;
	v = p;
	p = v;
	if (p == 0) return 1;
	return v != p;
}`)
	f := m.Func("f")
	assert.GreaterOrEqual(t, len(instrs(f, ir.OpBitCast)), 3)
	assert.Len(t, instrs(f, ir.OpEq), 1)
}

func TestTernarySelects(t *testing.T) {
	m := generate(t, "int *p; int *f(int c) { return c ? p : 0; }")
	f := m.Func("f")
	sel := instrs(f, ir.OpSelect)
	require.Len(t, sel, 1)
	assert.True(t, f.TypeOf(sel[0].Res).IsPointer())
}

func TestOptimizedOutputStaysValid(t *testing.T) {
	m := generate(t, `int f(void) { int x; x = 2; return x * 21; }
int g(int n) { int s; s = 0; while (n) { s = s + n; n = n - 1; } return s; }`)
	ir.Optimize(m)
	require.NoError(t, ir.Verify(m))
	f := m.Func("f")
	ret := f.Entry().Terminator()
	assert.EqualValues(t, 42, def(f, ret.Val.Args[0]).Val.Const)
	assert.Empty(t, instrs(f, ir.OpAlloca))
}
