package parser

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/tinyrange/c4/internal/ast"
    "github.com/tinyrange/c4/internal/diag"
    "github.com/tinyrange/c4/internal/lexer"
    "github.com/tinyrange/c4/internal/source"
)

func parse(t *testing.T, src string) (*ast.TranslationUnit, *diag.Reporter) {
    t.Helper()
    r := diag.NewReporter(nil)
    tu := ParseFile(source.FromString("t.c", src), r)
    require.NotNil(t, tu)
    return tu, r
}

func parseOK(t *testing.T, src string) *ast.TranslationUnit {
    t.Helper()
    tu, r := parse(t, src)
    require.False(t, r.HasErrors(), "unexpected errors: %v", r.Messages())
    return tu
}

// firstExpr returns the expression of the first statement of the first
// function body.
func firstExpr(t *testing.T, src string) ast.Expr {
    t.Helper()
    tu := parseOK(t, "int f(int a, int b, int c) { "+src+"; }")
    require.Len(t, tu.Decls, 1)
    body := tu.Decls[0].Body
    require.NotNil(t, body)
    require.NotEmpty(t, body.Items)
    es, ok := body.Items[0].(*ast.ExprStmt)
    require.True(t, ok)
    return es.X
}

func TestFunctionDefinition(t *testing.T) {
    tu := parseOK(t, "int main(void) { return 0; }")
    require.Len(t, tu.Decls, 1)
    d := tu.Decls[0]
    assert.Equal(t, "main", d.Name())
    assert.Equal(t, lexer.KW_INT, d.Spec.Kind)
    require.NotNil(t, d.Body)
    require.Len(t, d.Params(), 1)
    assert.Equal(t, lexer.KW_VOID, d.Params()[0].Spec.Kind)
    assert.Nil(t, d.Params()[0].Declarator)

    ret, ok := d.Body.Items[0].(*ast.ReturnStmt)
    require.True(t, ok)
    assert.Equal(t, "0", ret.X.(*ast.PrimaryExpr).Tok.Lex)
}

func TestEmptyParameterList(t *testing.T) {
    tu := parseOK(t, "int f() { return; }")
    dl := tu.Decls[0].Declarator
    assert.True(t, dl.Func)
    assert.Empty(t, dl.Params)
}

func TestDeclarators(t *testing.T) {
    tu := parseOK(t, "char **p; int *f(int); int (*fp)(char *, int);")
    require.Len(t, tu.Decls, 3)

    p := tu.Decls[0].Declarator
    assert.True(t, p.Pointer)
    assert.True(t, p.Inner.Pointer)
    assert.Equal(t, "p", p.Inner.Inner.Ident)

    f := tu.Decls[1].Declarator
    assert.True(t, f.Pointer)
    assert.Equal(t, "f", f.Inner.Ident)
    assert.True(t, f.Inner.Func)

    fp := tu.Decls[2].Declarator
    assert.True(t, fp.Func)
    assert.Len(t, fp.Params, 2)
    assert.True(t, fp.Inner.Pointer)
    assert.Equal(t, "fp", fp.Inner.Inner.Ident)
    assert.Equal(t, "fp", tu.Decls[2].Name())
}

func TestStructSpecifier(t *testing.T) {
    tu := parseOK(t, "struct node { int v; struct node *next; } *head; struct node;")
    require.Len(t, tu.Decls, 2)
    s := tu.Decls[0].Spec.Struct
    require.NotNil(t, s)
    assert.Equal(t, "node", s.Tag)
    require.Len(t, s.Members, 2)
    assert.Equal(t, "next", s.Members[1].Name())
    assert.Empty(t, tu.Decls[1].Spec.Struct.Members)
}

func TestPrecedence(t *testing.T) {
    cases := []struct {
        src  string
        op   lexer.TokenType
        left lexer.TokenType
    }{
        // a + b * c groups as a + (b * c)
        {"a + b * c", lexer.PLUS, lexer.IDENT},
        // a - b - c groups as (a - b) - c
        {"a - b - c", lexer.MINUS, lexer.MINUS},
        // a = b = c groups as a = (b = c)
        {"a = b = c", lexer.ASSIGN, lexer.IDENT},
        // a < b == c groups as (a < b) == c
        {"a < b == c", lexer.EQEQ, lexer.LT},
        // a || b && c groups as a || (b && c)
        {"a || b && c", lexer.OROR, lexer.IDENT},
    }
    for _, tc := range cases {
        t.Run(tc.src, func(t *testing.T) {
            b, ok := firstExpr(t, tc.src).(*ast.BinaryExpr)
            require.True(t, ok)
            assert.Equal(t, tc.op, b.Op)
            switch l := b.Left.(type) {
            case *ast.BinaryExpr:
                assert.Equal(t, tc.left, l.Op)
            case *ast.PrimaryExpr:
                assert.Equal(t, tc.left, l.Tok.Type)
            default:
                t.Fatalf("unexpected left operand %T", l)
            }
        })
    }
}

func TestTernaryAndPostfix(t *testing.T) {
    c, ok := firstExpr(t, "a ? b = 1 : c").(*ast.CondExpr)
    require.True(t, ok)
    assert.IsType(t, &ast.BinaryExpr{}, c.Then)
    assert.IsType(t, &ast.PrimaryExpr{}, c.Else)

    // the false branch binds tighter than assignment
    as, ok := firstExpr(t, "a ? b : c = 1").(*ast.BinaryExpr)
    require.True(t, ok)
    assert.Equal(t, lexer.ASSIGN, as.Op)
    assert.IsType(t, &ast.CondExpr{}, as.Left)

    call, ok := firstExpr(t, "f(a, b)[1]->x.y").(*ast.MemberExpr)
    require.True(t, ok)
    assert.Equal(t, lexer.DOT, call.Op)
    arrow := call.X.(*ast.MemberExpr)
    assert.Equal(t, lexer.ARROW, arrow.Op)
    idx := arrow.X.(*ast.IndexExpr)
    fn := idx.X.(*ast.CallExpr)
    assert.Len(t, fn.Args, 2)
}

func TestSizeof(t *testing.T) {
    st, ok := firstExpr(t, "sizeof(char *)").(*ast.SizeofTypeExpr)
    require.True(t, ok)
    assert.Equal(t, lexer.KW_CHAR, st.Name.Spec.Kind)
    assert.True(t, st.Name.Declarator.Pointer)

    se, ok := firstExpr(t, "sizeof (a)").(*ast.SizeofExpr)
    require.True(t, ok)
    assert.IsType(t, &ast.PrimaryExpr{}, se.X)
}

func TestStatements(t *testing.T) {
    tu := parseOK(t, `int f(int x) {
        int y;
        while (x) { if (x) break; else continue; }
        top: y = x;
        goto top;
        ;
        return y;
    }`)
    items := tu.Decls[0].Body.Items
    require.Len(t, items, 6)
    assert.IsType(t, &ast.Decl{}, items[0])
    w := items[1].(*ast.WhileStmt)
    ie := w.Body.(*ast.CompoundStmt).Items[0].(*ast.IfElseStmt)
    assert.IsType(t, &ast.BreakStmt{}, ie.Then)
    assert.IsType(t, &ast.ContinueStmt{}, ie.Else)
    l := items[2].(*ast.LabeledStmt)
    assert.Equal(t, "top", l.Label)
    assert.Equal(t, "top", items[3].(*ast.GotoStmt).Label)
    assert.Nil(t, items[4].(*ast.ExprStmt).X)
    assert.NotNil(t, items[5].(*ast.ReturnStmt).X)
}

func TestSyntaxErrors(t *testing.T) {
    cases := []struct {
        src  string
        want string
    }{
        {"", "empty translation unit"},
        {"int x", "expected token ';', got 'EOF'"},
        {"float x;", "expected a 'type-specifier', got 'float'"},
        {"int;", "declaration with empty declarator"},
        {"struct s {};", "struct has no members"},
        {"int f(...);", "require an argument before '...'"},
        {"int f(int a, ..., int b);", "'...' needs to be the last argument"},
        {"int f(void) { return ]; }", "expected expression before ']' token"},
    }
    for _, tc := range cases {
        t.Run(tc.want, func(t *testing.T) {
            _, r := parse(t, tc.src)
            assert.Contains(t, r.Messages(), tc.want)
        })
    }
}

func TestRecoveryTerminates(t *testing.T) {
    for _, src := range []string{
        "int a[broken syntax",
        "int f(int a ]) { }",
        "int f(void) { ] ] ) ( }",
        "struct s { ] };",
        "int f(void) { L: }",
        ") ) ) ,,,, int",
    } {
        t.Run(src, func(t *testing.T) {
            _, r := parse(t, src)
            assert.True(t, r.HasErrors())
        })
    }
}

func TestVariadicPrototype(t *testing.T) {
    tu := parseOK(t, "int printf(char *fmt, ...);")
    ps := tu.Decls[0].Params()
    require.Len(t, ps, 2)
    assert.True(t, ps[1].Variadic)
}
