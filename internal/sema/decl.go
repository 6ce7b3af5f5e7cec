package sema

import (
	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/lexer"
	"github.com/tinyrange/c4/internal/types"
)

func (a *Analyzer) declare(d *ast.Decl) {
	if d.Type == nil {
		a.analyzeType(d)
	}
	d.Linkage = a.linkage(d)
	name := d.Name()
	if name != "" && !a.scope.Put(d) {
		other := a.scope.LookupCurrent(name)
		switch {
		case !types.Equal(d.Type, other.Type):
			a.errorf(d.Pos, "'%s' redeclared with a different type", name)
		case d.Linkage != ast.LinkageExternal:
			a.errorf(d.Pos, "'%s' redeclared", name)
		case other.Body != nil && d.Body != nil:
			a.errorf(d.Pos, "'%s' redefined", name)
		}
	} else if name != "" && !d.Type.IsComplete() && !d.Type.IsFunction() && !d.Type.IsError() {
		a.errorf(d.Pos, "storage size of '%s' isn't known", name)
		d.Type = types.ErrorT()
	}
	if d.Type.IsFunction() {
		a.defineFunction(d)
	}
}

// defineFunction checks the parameters and, for a definition, the body.
// Parameters and the outermost block of the body share one frame.
func (a *Analyzer) defineFunction(d *ast.Decl) {
	a.scope.Enter()
	defer a.scope.Leave()

	hasBody := d.Body != nil
	if hasBody {
		a.funcs = append(a.funcs, d)
		a.labels = map[string]*ast.LabeledStmt{}
		a.gotos = nil
		a.loops = 0
	}

	params := d.Params()
	for i, p := range params {
		if p.Variadic {
			continue
		}
		if p.Type == nil {
			a.analyzeType(p)
		}
		p.Linkage = ast.LinkageNone
		if p.Name() == "" {
			if p.Type.IsVoid() {
				if len(params) != 1 {
					a.errorf(p.Pos, "'void' must be the only parameter")
				}
				continue
			}
			if hasBody {
				a.errorf(p.Pos, "parameter name omitted")
			}
		} else if !a.scope.Put(p) {
			a.errorf(p.Pos, "'%s' redeclared", p.Name())
		}
		if hasBody && !p.Type.IsComplete() && !p.Type.IsError() {
			a.errorf(p.Pos, "parameter %d has incomplete type", i+1)
		}
	}

	if !hasBody {
		return
	}
	a.items(d.Body.Items)
	for _, g := range a.gotos {
		if l, ok := a.labels[g.Label]; ok {
			g.Target = l
		} else {
			a.errorf(g.Pos, "label '%s' used but not defined", g.Label)
		}
	}
	a.labels = nil
	a.gotos = nil
	a.funcs = a.funcs[:len(a.funcs)-1]
}

// analyzeType resolves the type written by d's specifier and declarator
// chain and stores it on d.
func (a *Analyzer) analyzeType(d *ast.Decl) *types.Type {
	t := a.specType(d)
	for dl := d.Declarator; dl != nil; dl = dl.Inner {
		if dl.Pointer {
			t = types.PointerTo(t)
		}
		if dl.Func {
			t = a.funcType(t, dl.Params)
		}
	}
	d.Type = t
	return t
}

func (a *Analyzer) funcType(ret *types.Type, params []*ast.Decl) *types.Type {
	ft := types.NewFunc(ret)
	for _, p := range params {
		if p.Variadic {
			ft.Variadic = true
			continue
		}
		ft.Params = append(ft.Params, a.analyzeType(p))
	}
	return ft
}

func (a *Analyzer) specType(d *ast.Decl) *types.Type {
	if d.Spec == nil {
		panic("declaration without a type specifier reached semantic analysis")
	}
	switch d.Spec.Kind {
	case lexer.KW_INT:
		return types.IntT()
	case lexer.KW_CHAR:
		return types.CharT()
	case lexer.KW_VOID:
		return types.VoidT()
	}
	named := d.Name() != "" || d.Kind == ast.DeclTypeName
	return a.structType(d.Spec.Struct, named)
}

// structType resolves a struct specifier. A specifier with members defines
// the tag in the current frame, completing a forward declaration made in
// that frame. A bare tag refers to the visible struct of that name when
// something is being declared with it, and otherwise only to one in the
// current frame; when none is found a new incomplete struct is declared.
func (a *Analyzer) structType(ss *ast.StructSpec, named bool) *types.Type {
	if len(ss.Members) > 0 {
		st := a.scope.TagCurrent(ss.Tag)
		if st != nil && st.IsComplete() {
			a.errorf(ss.Pos, "'%s %s' redefined", kindName(ss), ss.Tag)
			return types.ErrorT()
		}
		if st == nil {
			st = types.NewStruct(ss.Tag)
			st.Union = ss.Union
			a.scope.PutTag(st)
		}
		a.defineStruct(ss, st)
		return st
	}
	var st *types.Type
	if named {
		st = a.scope.Tag(ss.Tag)
	} else {
		st = a.scope.TagCurrent(ss.Tag)
	}
	if st == nil {
		st = types.NewStruct(ss.Tag)
		st.Union = ss.Union
		a.scope.PutTag(st)
	}
	return st
}

func kindName(ss *ast.StructSpec) string {
	if ss.Union {
		return "union"
	}
	return "struct"
}

// defineStruct checks the member declarations in their own frame and then
// completes st. The struct stays incomplete while its members are checked.
func (a *Analyzer) defineStruct(ss *ast.StructSpec, st *types.Type) {
	for _, m := range ss.Members {
		a.analyzeType(m)
	}
	a.funcs = append(a.funcs, nil)
	a.scope.Enter()
	for _, m := range ss.Members {
		a.declare(m)
	}
	a.scope.Leave()
	a.funcs = a.funcs[:len(a.funcs)-1]

	var ms []types.Member
	for _, m := range ss.Members {
		if m.Name() != "" {
			ms = append(ms, types.Member{Name: m.Name(), Type: m.Type})
		}
	}
	st.SetMembers(ms)
}
