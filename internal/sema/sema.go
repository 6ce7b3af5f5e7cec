// Package sema resolves names and types over a parsed translation unit and
// reports semantic errors. It annotates the tree in place: declarations get
// their type and linkage, expressions their type, identifiers the
// declaration they refer to, and gotos their label.
package sema

import (
	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/diag"
)

// Analyzer carries the state of one pass over one translation unit.
type Analyzer struct {
	errs  *diag.Reporter
	scope Scope

	// funcs holds the enclosing function definitions; a nil entry stands
	// for a struct body.
	funcs []*ast.Decl
	loops int

	labels map[string]*ast.LabeledStmt
	gotos  []*ast.GotoStmt
}

func New(errs *diag.Reporter) *Analyzer {
	return &Analyzer{errs: errs}
}

// Analyze checks tu, reporting problems to errs.
func Analyze(tu *ast.TranslationUnit, errs *diag.Reporter) {
	New(errs).TranslationUnit(tu)
}

func (a *Analyzer) TranslationUnit(tu *ast.TranslationUnit) {
	a.scope = Scope{}
	a.funcs = nil
	a.loops = 0
	a.scope.Enter()
	for _, d := range tu.Decls {
		a.declare(d)
	}
	a.scope.Leave()
}

func (a *Analyzer) errorf(pos diag.Pos, format string, args ...any) {
	a.errs.Errorf(pos, format, args...)
}

// function returns the innermost enclosing function definition.
func (a *Analyzer) function() *ast.Decl {
	if len(a.funcs) == 0 {
		return nil
	}
	return a.funcs[len(a.funcs)-1]
}

func (a *Analyzer) linkage(d *ast.Decl) ast.Linkage {
	switch {
	case d.Kind == ast.DeclParam:
		return ast.LinkageNone
	case len(a.funcs) == 0:
		return ast.LinkageExternal
	}
	return ast.LinkageInternal
}
