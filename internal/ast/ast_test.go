package ast

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/tinyrange/c4/internal/diag"
    "github.com/tinyrange/c4/internal/lexer"
    "github.com/tinyrange/c4/internal/types"
)

func TestTypeSlotIsWriteOnce(t *testing.T) {
    e := NewPrimary(lexer.Token{Type: lexer.INT, Lex: "1", Pos: diag.Pos{Name: "a.c", Line: 1, Col: 1}})
    assert.False(t, e.Resolved())
    assert.Panics(t, func() { e.Type() })

    e.SetType(types.IntT())
    assert.True(t, e.Resolved())
    assert.Same(t, types.IntT(), e.Type())
    assert.Panics(t, func() { e.SetType(types.CharT()) })
}

func TestDeclNameAndParams(t *testing.T) {
    p := &Decl{Kind: DeclParam, Declarator: &Declarator{Ident: "a"}}
    // int (*f(int a))(char)
    d := &Decl{Declarator: &Declarator{
        Func:   true,
        Params: []*Decl{{Kind: DeclParam}},
        Inner: &Declarator{
            Pointer: true,
            Inner:   &Declarator{Ident: "f", Func: true, Params: []*Decl{p}},
        },
    }}
    assert.Equal(t, "f", d.Name())
    assert.Equal(t, []*Decl{p}, d.Params())
    assert.Equal(t, "", (&Decl{}).Name())
}

func TestIsLvalue(t *testing.T) {
    id := NewPrimary(lexer.Token{Type: lexer.IDENT, Lex: "x"})
    lit := NewPrimary(lexer.Token{Type: lexer.INT, Lex: "1"})
    assert.True(t, IsLvalue(id))
    assert.False(t, IsLvalue(lit))
    assert.True(t, IsLvalue(NewUnary(diag.Pos{}, lexer.STAR, id)))
    assert.False(t, IsLvalue(NewUnary(diag.Pos{}, lexer.AMP, id)))
    assert.True(t, IsLvalue(NewMember(diag.Pos{}, lexer.DOT, id, "m")))
    assert.True(t, IsLvalue(NewIndex(diag.Pos{}, id, lit)))
    assert.False(t, IsLvalue(NewCall(diag.Pos{}, id, nil)))
}
