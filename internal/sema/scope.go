package sema

import (
	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/types"
)

// Scope is a stack of ordinary identifiers and a parallel stack of struct
// tags. A nil entry marks the start of a frame in each stack.
type Scope struct {
	decls []*ast.Decl
	tags  []*types.Type
}

func (s *Scope) Enter() {
	s.decls = append(s.decls, nil)
	s.tags = append(s.tags, nil)
}

func (s *Scope) Leave() {
	for n := len(s.decls); n > 0; n-- {
		if s.decls[n-1] == nil {
			s.decls = s.decls[:n-1]
			break
		}
	}
	for n := len(s.tags); n > 0; n-- {
		if s.tags[n-1] == nil {
			s.tags = s.tags[:n-1]
			break
		}
	}
}

// Put adds d to the innermost frame. It fails when the frame already
// declares the same name.
func (s *Scope) Put(d *ast.Decl) bool {
	if s.LookupCurrent(d.Name()) != nil {
		return false
	}
	s.decls = append(s.decls, d)
	return true
}

func (s *Scope) Lookup(name string) *ast.Decl {
	for i := len(s.decls) - 1; i >= 0; i-- {
		if d := s.decls[i]; d != nil && d.Name() == name {
			return d
		}
	}
	return nil
}

func (s *Scope) LookupCurrent(name string) *ast.Decl {
	for i := len(s.decls) - 1; i >= 0 && s.decls[i] != nil; i-- {
		if s.decls[i].Name() == name {
			return s.decls[i]
		}
	}
	return nil
}

func (s *Scope) PutTag(t *types.Type) {
	s.tags = append(s.tags, t)
}

func (s *Scope) Tag(tag string) *types.Type {
	for i := len(s.tags) - 1; i >= 0; i-- {
		if t := s.tags[i]; t != nil && t.Tag == tag {
			return t
		}
	}
	return nil
}

func (s *Scope) TagCurrent(tag string) *types.Type {
	for i := len(s.tags) - 1; i >= 0 && s.tags[i] != nil; i-- {
		if s.tags[i].Tag == tag {
			return s.tags[i]
		}
	}
	return nil
}
