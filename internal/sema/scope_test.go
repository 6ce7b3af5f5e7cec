package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/types"
)

func named(name string) *ast.Decl {
	return &ast.Decl{Declarator: &ast.Declarator{Ident: name}}
}

func TestScopeShadowing(t *testing.T) {
	var s Scope
	s.Enter()
	outer := named("x")
	assert.True(t, s.Put(outer))
	assert.False(t, s.Put(named("x")))

	s.Enter()
	assert.Same(t, outer, s.Lookup("x"))
	assert.Nil(t, s.LookupCurrent("x"))
	inner := named("x")
	assert.True(t, s.Put(inner))
	assert.Same(t, inner, s.Lookup("x"))
	s.Leave()

	assert.Same(t, outer, s.Lookup("x"))
	assert.Nil(t, s.Lookup("y"))
	s.Leave()
	assert.Nil(t, s.Lookup("x"))
}

func TestScopeTags(t *testing.T) {
	var s Scope
	s.Enter()
	a := types.NewStruct("a")
	s.PutTag(a)
	s.Enter()
	assert.Same(t, a, s.Tag("a"))
	assert.Nil(t, s.TagCurrent("a"))
	b := types.NewStruct("a")
	s.PutTag(b)
	assert.Same(t, b, s.TagCurrent("a"))
	s.Leave()
	assert.Same(t, a, s.TagCurrent("a"))
}
