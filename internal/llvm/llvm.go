// Package llvm serializes ir modules as textual LLVM IR using llir/llvm.
package llvm

import (
	"fmt"
	"io"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/tinyrange/c4/internal/ir"
)

type lowerer struct {
	out   *llir.Module
	types map[*ir.Type]types.Type
	syms  map[string]value.Value
	funcs map[*ir.Function]*llir.Func
}

// Lower converts m into an llir module ready for printing.
func Lower(m *ir.Module) (*llir.Module, error) {
	l := &lowerer{
		out:   llir.NewModule(),
		types: map[*ir.Type]types.Type{},
		syms:  map[string]value.Value{},
		funcs: map[*ir.Function]*llir.Func{},
	}
	l.out.SourceFilename = m.Name
	l.out.TargetTriple = m.Triple

	for _, st := range m.Structs {
		l.typ(st)
	}
	for _, g := range m.Globals {
		l.global(g)
	}
	for _, f := range m.Funcs {
		l.declare(f)
	}
	for _, f := range m.Funcs {
		if !f.Defined() {
			continue
		}
		if err := l.define(f); err != nil {
			return nil, errors.Wrapf(err, "lowering %s", f.Name)
		}
	}
	return l.out, nil
}

// Write prints m as LLVM assembly.
func Write(w io.Writer, m *ir.Module) error {
	out, err := Lower(m)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out.String())
	return errors.Wrap(err, "write llvm module")
}

func (l *lowerer) typ(t *ir.Type) types.Type {
	if lt, ok := l.types[t]; ok {
		return lt
	}
	var lt types.Type
	switch t.K {
	case ir.Void:
		lt = types.Void
	case ir.Int:
		lt = intType(t.Bits)
	case ir.Ptr:
		lt = types.NewPointer(l.typ(t.Elem))
	case ir.Array:
		lt = types.NewArray(uint64(t.Len), l.typ(t.Elem))
	case ir.Struct:
		// Registered before the fields are lowered so self references resolve.
		st := &types.StructType{}
		l.types[t] = st
		l.out.NewTypeDef(t.Name, st)
		if t.Opaque {
			st.Opaque = true
			return st
		}
		for _, f := range t.Fields {
			st.Fields = append(st.Fields, l.typ(f))
		}
		return st
	case ir.Func:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = l.typ(p)
		}
		ft := types.NewFunc(l.typ(t.Ret), params...)
		ft.Variadic = t.Variadic
		lt = ft
	default:
		panic(fmt.Sprintf("llvm: cannot lower type %s", t))
	}
	l.types[t] = lt
	return lt
}

func intType(bits int) *types.IntType {
	switch bits {
	case 1:
		return types.I1
	case 8:
		return types.I8
	case 32:
		return types.I32
	case 64:
		return types.I64
	}
	return types.NewInt(uint64(bits))
}

// constant returns k as a constant of type t; non-integer types only have
// their zero value.
func (l *lowerer) constant(t *ir.Type, k int64) constant.Constant {
	lt := l.typ(t)
	switch x := lt.(type) {
	case *types.IntType:
		return constant.NewInt(x, k)
	case *types.PointerType:
		return constant.NewNull(x)
	}
	return constant.NewZeroInitializer(lt)
}

func (l *lowerer) global(g *ir.Global) {
	if g.Private() {
		def := l.out.NewGlobalDef(g.Name, constant.NewCharArray(g.Data))
		def.Linkage = enum.LinkagePrivate
		def.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
		def.Immutable = true
		l.syms[g.Name] = def
		return
	}
	def := l.out.NewGlobalDef(g.Name, l.constant(g.Type, 0))
	def.Linkage = enum.LinkageCommon
	l.syms[g.Name] = def
}

func (l *lowerer) declare(f *ir.Function) {
	params := make([]*llir.Param, len(f.Type.Params))
	for i, pt := range f.Type.Params {
		name := ""
		if i < len(f.Params) {
			name = f.Params[i]
		}
		params[i] = llir.NewParam(name, l.typ(pt))
	}
	fn := l.out.NewFunc(f.Name, l.typ(f.Type.Ret), params...)
	fn.Sig.Variadic = f.Type.Variadic
	l.syms[f.Name] = fn
	l.funcs[f] = fn
}

type pendingPhi struct {
	phi  *llir.InstPhi
	args []ir.ValueID
}

type funcLowerer struct {
	*lowerer
	fn     *llir.Func
	blocks map[*ir.BasicBlock]*llir.Block
	vals   map[ir.ValueID]value.Value
	phis   []pendingPhi
}

func (l *lowerer) define(f *ir.Function) error {
	fl := &funcLowerer{
		lowerer: l,
		fn:      l.funcs[f],
		blocks:  map[*ir.BasicBlock]*llir.Block{},
		vals:    map[ir.ValueID]value.Value{},
	}
	used := map[string]bool{}
	for _, p := range f.Params {
		used[p] = true
	}
	for _, b := range f.Blocks {
		name := b.Name
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", b.Name, n)
		}
		used[name] = true
		fl.blocks[b] = fl.fn.NewBlock(name)
	}

	// Dominators come first in reverse postorder, so every operand other
	// than a phi input is lowered before its use.
	for _, b := range reversePostorder(f) {
		for _, in := range b.Instrs {
			if err := fl.instr(fl.blocks[b], b, in); err != nil {
				return errors.Wrapf(err, "block %s", b.Name)
			}
		}
	}
	for _, p := range fl.phis {
		for i, a := range p.args {
			v, err := fl.value(a)
			if err != nil {
				return err
			}
			p.phi.Incs[i].X = v
		}
	}
	return nil
}

func reversePostorder(f *ir.Function) []*ir.BasicBlock {
	seen := map[*ir.BasicBlock]bool{}
	var post []*ir.BasicBlock
	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		seen[b] = true
		for _, s := range b.Succs {
			if !seen[s] {
				visit(s)
			}
		}
		post = append(post, b)
	}
	visit(f.Entry())
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

func (fl *funcLowerer) value(id ir.ValueID) (value.Value, error) {
	v, ok := fl.vals[id]
	if !ok {
		return nil, errors.Errorf("use of undefined value %%%d", id)
	}
	return v, nil
}

func (fl *funcLowerer) args(ids []ir.ValueID) ([]value.Value, error) {
	out := make([]value.Value, len(ids))
	for i, id := range ids {
		v, err := fl.value(id)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var predicates = map[ir.Op]enum.IPred{
	ir.OpEq:  enum.IPredEQ,
	ir.OpNe:  enum.IPredNE,
	ir.OpSlt: enum.IPredSLT,
	ir.OpUlt: enum.IPredULT,
}

func (fl *funcLowerer) instr(blk *llir.Block, b *ir.BasicBlock, in ir.Instr) error {
	v := in.Val
	if v.Op == ir.OpPhi {
		t := fl.typ(v.Type)
		incs := make([]*llir.Incoming, len(b.Preds))
		for i, p := range b.Preds {
			incs[i] = llir.NewIncoming(fl.constant(v.Type, 0), fl.blocks[p])
		}
		phi := blk.NewPhi(incs...)
		phi.Typ = t
		fl.phis = append(fl.phis, pendingPhi{phi, v.Args})
		fl.vals[in.Res] = phi
		return nil
	}

	a, err := fl.args(v.Args)
	if err != nil {
		return errors.Wrapf(err, "%s", v.Op)
	}
	var res value.Value
	switch v.Op {
	case ir.OpConst:
		res = fl.constant(v.Type, v.Const)
	case ir.OpGlobal:
		sym, ok := fl.syms[v.Sym]
		if !ok {
			return errors.Errorf("unknown symbol @%s", v.Sym)
		}
		res = sym
	case ir.OpParam:
		res = fl.fn.Params[v.Const]
	case ir.OpAlloca:
		res = blk.NewAlloca(fl.typ(v.Elem))
	case ir.OpLoad:
		res = blk.NewLoad(fl.typ(v.Type), a[0])
	case ir.OpStore:
		blk.NewStore(a[0], a[1])
	case ir.OpAdd:
		res = blk.NewAdd(a[0], a[1])
	case ir.OpSub:
		res = blk.NewSub(a[0], a[1])
	case ir.OpMul:
		res = blk.NewMul(a[0], a[1])
	case ir.OpEq, ir.OpNe, ir.OpSlt, ir.OpUlt:
		res = blk.NewICmp(predicates[v.Op], a[0], a[1])
	case ir.OpZExt:
		res = blk.NewZExt(a[0], fl.typ(v.Type))
	case ir.OpSExt:
		res = blk.NewSExt(a[0], fl.typ(v.Type))
	case ir.OpTrunc:
		res = blk.NewTrunc(a[0], fl.typ(v.Type))
	case ir.OpPtrToInt:
		res = blk.NewPtrToInt(a[0], fl.typ(v.Type))
	case ir.OpBitCast:
		res = blk.NewBitCast(a[0], fl.typ(v.Type))
	case ir.OpGEP:
		res = blk.NewGetElementPtr(fl.typ(v.Elem), a[0], a[1:]...)
	case ir.OpCall:
		res = blk.NewCall(a[0], a[1:]...)
	case ir.OpSelect:
		res = blk.NewSelect(a[0], a[1], a[2])
	case ir.OpJmp:
		blk.NewBr(fl.blocks[v.Targets[0]])
	case ir.OpBr:
		blk.NewCondBr(a[0], fl.blocks[v.Targets[0]], fl.blocks[v.Targets[1]])
	case ir.OpRet:
		if len(a) == 0 {
			blk.NewRet(nil)
		} else {
			blk.NewRet(a[0])
		}
	default:
		return errors.Errorf("cannot lower %s", v.Op)
	}
	if in.Res != ir.NoValue {
		fl.vals[in.Res] = res
	}
	return nil
}
