package llvm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyrange/c4/internal/codegen"
	"github.com/tinyrange/c4/internal/diag"
	"github.com/tinyrange/c4/internal/ir"
	"github.com/tinyrange/c4/internal/parser"
	"github.com/tinyrange/c4/internal/sema"
	"github.com/tinyrange/c4/internal/source"
)

func emit(t *testing.T, src string) string {
	t.Helper()
	r := diag.NewReporter(nil)
	tu := parser.ParseFile(source.FromString("t.c", src), r)
	sema.Analyze(tu, r)
	require.False(t, r.HasErrors(), "%v", r.Messages())
	m, err := codegen.Generate(tu, "t.c")
	require.NoError(t, err)
	m.Triple = "x86_64-unknown-linux-gnu"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m))
	return buf.String()
}

func TestReturnZero(t *testing.T) {
	out := emit(t, "int main(void) { return 0; }")
	assert.Contains(t, out, `source_filename = "t.c"`)
	assert.Contains(t, out, `target triple = "x86_64-unknown-linux-gnu"`)
	assert.Contains(t, out, "define i32 @main()")
	assert.Contains(t, out, "ret i32 0")
}

func TestGlobalsAndStrings(t *testing.T) {
	out := emit(t, `int x; char *s; int puts(char *s);
int main(void) { x = 1; s = "hi"; return puts(s); }`)
	assert.Contains(t, out, "@x = common global i32 0")
	assert.Contains(t, out, "@s = common global i8* null")
	assert.Contains(t, out, `@.str = private unnamed_addr constant [3 x i8] c"hi\00"`)
	assert.Contains(t, out, "declare i32 @puts(i8*")
}

func TestRecursiveStruct(t *testing.T) {
	out := emit(t, `struct node { int v; struct node *next; };
int sum(struct node *n) { return n->v + n->next->v; }`)
	assert.Contains(t, out, "%struct.node = type { i32, %struct.node* }")
	assert.Contains(t, out, "getelementptr %struct.node, %struct.node*")
}

func TestOpaqueStruct(t *testing.T) {
	out := emit(t, "struct s; struct s *p; int main(void) { return p == 0; }")
	assert.Contains(t, out, "%struct.s = type opaque")
	assert.Contains(t, out, "icmp eq %struct.s*")
}

func TestShortCircuitPhi(t *testing.T) {
	out := emit(t, "int f(int a, int b) { return a && b; }")
	assert.Contains(t, out, "land.rhs:")
	assert.Contains(t, out, "land.end:")
	assert.Contains(t, out, "phi i1 [ false, %entry ]")
}

func TestVariadicDeclaration(t *testing.T) {
	out := emit(t, `int printf(char *fmt, ...); int main(void) { printf("hi"); return 0; }`)
	assert.Contains(t, out, "declare i32 @printf(i8*")
	assert.Contains(t, out, "call i32 (i8*, ...) @printf(")
}

func TestBlockNamesDoNotCollideWithParams(t *testing.T) {
	out := emit(t, "int f(int entry) { return entry; }")
	assert.Contains(t, out, "define i32 @f(i32 %entry)")
	assert.Contains(t, out, "entry.1:")
}

func TestOptimizedModuleLowers(t *testing.T) {
	r := diag.NewReporter(nil)
	tu := parser.ParseFile(source.FromString("t.c", "int f(void) { int x; x = 6; return x * 7; }"), r)
	sema.Analyze(tu, r)
	require.False(t, r.HasErrors())
	m, err := codegen.Generate(tu, "t.c")
	require.NoError(t, err)
	ir.Optimize(m)

	out, err := Lower(m)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ret i32 42")
}
