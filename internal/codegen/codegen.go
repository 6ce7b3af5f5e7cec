// Package codegen lowers an analysed, error-free translation unit into the
// basic-block form of package ir. It walks the tree exactly once.
package codegen

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tinyrange/c4/internal/ast"
	"github.com/tinyrange/c4/internal/ir"
	"github.com/tinyrange/c4/internal/types"
)

// Generator holds the module being built and the state of the function
// currently being lowered.
type Generator struct {
	m       *ir.Module
	structs map[*types.Type]*ir.Type
	tags    map[string]int

	fn     *ast.Decl
	bl     *ir.Builder
	slots  map[*ast.Decl]ir.ValueID
	labels map[*ast.LabeledStmt]*ir.BasicBlock
	loops  []loop
}

type loop struct {
	header, end *ir.BasicBlock
}

func New(name string) *Generator {
	return &Generator{
		m:       ir.NewModule(name),
		structs: map[*types.Type]*ir.Type{},
		tags:    map[string]int{},
	}
}

// Generate lowers tu into a new module named name.
func Generate(tu *ast.TranslationUnit, name string) (*ir.Module, error) {
	g := New(name)
	for _, d := range tu.Decls {
		if err := g.Decl(d); err != nil {
			return nil, err
		}
	}
	for t, st := range g.structs {
		if st.Opaque && t.IsComplete() {
			g.setBody(st, t)
		}
	}
	return g.Module(), nil
}

func (g *Generator) Module() *ir.Module { return g.m }

// Decl lowers one file-scope declaration. Objects become common globals,
// prototypes external declarations and definitions function bodies.
func (g *Generator) Decl(d *ast.Decl) error {
	name := d.Name()
	switch {
	case name == "":
	case d.Type.IsFunction():
		f := g.declareFunc(d)
		if d.Body != nil {
			return g.defineFunc(d, f)
		}
	case !d.Type.IsVoid():
		g.m.AddGlobal(name, g.lower(d.Type))
	}
	return nil
}

func (g *Generator) declareFunc(d *ast.Decl) *ir.Function {
	var names []string
	for _, p := range d.Params() {
		if p.Variadic || p.Type.IsVoid() {
			continue
		}
		names = append(names, p.Name())
	}
	return g.m.AddFunc(d.Name(), g.lower(d.Type), names)
}

func (g *Generator) defineFunc(d *ast.Decl, f *ir.Function) error {
	g.fn = d
	g.bl = ir.NewBuilder(f)
	g.slots = map[*ast.Decl]ir.ValueID{}
	g.labels = map[*ast.LabeledStmt]*ir.BasicBlock{}
	g.loops = nil

	i := 0
	for _, p := range d.Params() {
		if p.Variadic || p.Type.IsVoid() {
			continue
		}
		slot := g.bl.Alloca(g.lower(p.Type))
		g.bl.Store(g.bl.Param(i), slot)
		g.slots[p] = slot
		i++
	}

	g.items(d.Body.Items)
	if !g.bl.Terminated() {
		if ret := d.Type.Ret; ret.IsVoid() {
			g.bl.RetVoid()
		} else {
			g.bl.Ret(g.bl.Zero(g.lower(ret)))
		}
	}
	ir.RemoveUnreachable(f)
	g.fn, g.bl = nil, nil
	return errors.Wrapf(ir.VerifyFunc(f), "generating %s", d.Name())
}

// lower maps a C type to its machine type. void pointers become i8*.
func (g *Generator) lower(t *types.Type) *ir.Type {
	switch t.K {
	case types.Int:
		return ir.I32
	case types.Char:
		return ir.I8
	case types.Void:
		return ir.VoidT
	case types.Ptr:
		if t.Elem.IsVoid() {
			return ir.PointerTo(ir.I8)
		}
		return ir.PointerTo(g.lower(t.Elem))
	case types.Func:
		var ps []*ir.Type
		for _, p := range t.Args() {
			ps = append(ps, g.lower(p))
		}
		return ir.FuncOf(g.lower(t.Ret), ps, t.Variadic)
	case types.Struct:
		return g.structType(t)
	}
	panic(fmt.Sprintf("codegen: cannot lower %s", t))
}

// structType returns the named machine struct for t, creating it on first
// use. Structs that share a tag in different scopes get distinct names. A
// struct first seen incomplete stays opaque until its definition is seen.
func (g *Generator) structType(t *types.Type) *ir.Type {
	if st, ok := g.structs[t]; ok {
		if st.Opaque && t.IsComplete() {
			g.setBody(st, t)
		}
		return st
	}
	base := "struct."
	if t.Union {
		base = "union."
	}
	if t.Tag == "" {
		base += "anon"
	} else {
		base += t.Tag
	}
	name := base
	if n := g.tags[base]; n > 0 {
		name = fmt.Sprintf("%s.%d", base, n)
	}
	g.tags[base]++

	st := ir.NamedStruct(name)
	g.structs[t] = st
	g.m.AddStruct(st)
	if t.IsComplete() {
		g.setBody(st, t)
	}
	return st
}

// setBody lowers the members of t into st. st stops being opaque first so
// that members pointing back at t do not lower it again.
func (g *Generator) setBody(st *ir.Type, t *types.Type) {
	st.Opaque = false
	if t.Union {
		st.SetBody(g.unionFields(t))
		return
	}
	fields := make([]*ir.Type, len(t.Members))
	for i, m := range t.Members {
		fields[i] = g.lower(m.Type)
	}
	st.SetBody(fields)
}

// unionFields lays a union out as its most aligned member followed by byte
// padding up to the union's size.
func (g *Generator) unionFields(t *types.Type) []*ir.Type {
	widest := t.Members[0].Type
	for _, m := range t.Members[1:] {
		if m.Type.Align() > widest.Align() {
			widest = m.Type
		}
	}
	fields := []*ir.Type{g.lower(widest)}
	if pad := t.Size() - widest.Size(); pad > 0 {
		fields = append(fields, ir.ArrayOf(pad, ir.I8))
	}
	return fields
}

func (g *Generator) typeOf(v ir.ValueID) *ir.Type { return g.bl.Func().TypeOf(v) }
