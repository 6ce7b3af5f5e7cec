package ir

import "fmt"

// Builder appends instructions to the current block of one function.
type Builder struct {
    f *Function
    b *BasicBlock
}

// NewBuilder positions a builder in f's entry block, creating it if needed.
func NewBuilder(f *Function) *Builder {
    b := f.Entry()
    if b == nil {
        b = f.NewBlock("entry")
    }
    return &Builder{f: f, b: b}
}

func (bl *Builder) Func() *Function        { return bl.f }
func (bl *Builder) Block() *BasicBlock     { return bl.b }
func (bl *Builder) SetBlock(b *BasicBlock) { bl.b = b }

func (bl *Builder) NewBlock(name string) *BasicBlock { return bl.f.NewBlock(name) }

// Terminated reports whether the current block already ends in a
// terminator; nothing may be appended to it then.
func (bl *Builder) Terminated() bool { return bl.b.Terminated() }

func (bl *Builder) emit(v Value) ValueID {
    if bl.b.Terminated() {
        panic(fmt.Sprintf("ir: %s appended after terminator in %s.%s", v.Op, bl.f.Name, bl.b.Name))
    }
    v.ID = NoValue
    if v.Type != nil && !v.Type.IsVoid() {
        v.ID = bl.f.newValue(v.Type)
    }
    bl.b.Instrs = append(bl.b.Instrs, Instr{Res: v.ID, Val: v})
    return v.ID
}

func (bl *Builder) typeOf(id ValueID) *Type {
    t := bl.f.TypeOf(id)
    if t == nil {
        panic(fmt.Sprintf("ir: use of undefined value %%%d in %s", id, bl.f.Name))
    }
    return t
}

func (bl *Builder) Const(t *Type, k int64) ValueID {
    return bl.emit(Value{Op: OpConst, Type: t, Const: k})
}

// Zero is the zero value of t: null for pointers, zeroinitializer for
// aggregates.
func (bl *Builder) Zero(t *Type) ValueID { return bl.Const(t, 0) }

// Global yields the address of a module symbol; t is the pointer type.
func (bl *Builder) Global(name string, t *Type) ValueID {
    return bl.emit(Value{Op: OpGlobal, Type: t, Sym: name})
}

func (bl *Builder) Param(i int) ValueID {
    return bl.emit(Value{Op: OpParam, Type: bl.f.Type.Params[i], Const: int64(i)})
}

// Alloca reserves a stack slot of type t. Slots are always placed at the top
// of the entry block, after the parameters and earlier slots.
func (bl *Builder) Alloca(t *Type) ValueID {
    entry := bl.f.Entry()
    at := 0
    for at < len(entry.Instrs) {
        op := entry.Instrs[at].Val.Op
        if op != OpAlloca && op != OpParam {
            break
        }
        at++
    }
    id := bl.f.newValue(PointerTo(t))
    in := Instr{Res: id, Val: Value{ID: id, Op: OpAlloca, Type: PointerTo(t), Elem: t}}
    entry.Instrs = append(entry.Instrs, Instr{})
    copy(entry.Instrs[at+1:], entry.Instrs[at:])
    entry.Instrs[at] = in
    return id
}

func (bl *Builder) Load(addr ValueID) ValueID {
    pt := bl.typeOf(addr)
    return bl.emit(Value{Op: OpLoad, Type: pt.Elem, Args: []ValueID{addr}})
}

func (bl *Builder) Store(v, addr ValueID) {
    bl.emit(Value{Op: OpStore, Args: []ValueID{v, addr}})
}

// Binary emits add, sub or mul; the result has the type of l.
func (bl *Builder) Binary(op Op, l, r ValueID) ValueID {
    return bl.emit(Value{Op: op, Type: bl.typeOf(l), Args: []ValueID{l, r}})
}

func (bl *Builder) Cmp(op Op, l, r ValueID) ValueID {
    if !op.IsCompare() {
        panic(fmt.Sprintf("ir: %s is not a comparison", op))
    }
    return bl.emit(Value{Op: op, Type: I1, Args: []ValueID{l, r}})
}

func (bl *Builder) Cast(op Op, v ValueID, to *Type) ValueID {
    return bl.emit(Value{Op: op, Type: to, Args: []ValueID{v}})
}

// GEP computes an address from base; result is the resulting pointer type.
func (bl *Builder) GEP(base ValueID, result *Type, idx ...ValueID) ValueID {
    args := append([]ValueID{base}, idx...)
    return bl.emit(Value{Op: OpGEP, Type: result, Args: args, Elem: bl.typeOf(base).Elem})
}

// Call calls fn, a pointer to a function. The result is NoValue for a void
// function.
func (bl *Builder) Call(fn ValueID, args ...ValueID) ValueID {
    ft := bl.typeOf(fn).Elem
    return bl.emit(Value{Op: OpCall, Type: ft.Ret, Args: append([]ValueID{fn}, args...), Elem: ft})
}

func (bl *Builder) Select(c, a, b ValueID) ValueID {
    return bl.emit(Value{Op: OpSelect, Type: bl.typeOf(a), Args: []ValueID{c, a, b}})
}

// Incoming pairs a phi operand with the predecessor it flows from.
type Incoming struct {
    Value ValueID
    Pred  *BasicBlock
}

// Phi places a phi at the start of the current block. Operands are ordered
// to match the block's predecessors, which must already be connected.
func (bl *Builder) Phi(t *Type, in ...Incoming) ValueID {
    b := bl.b
    if len(in) != len(b.Preds) {
        panic(fmt.Sprintf("ir: phi in %s has %d operands for %d predecessors", b.Name, len(in), len(b.Preds)))
    }
    args := make([]ValueID, len(b.Preds))
    for i, p := range b.Preds {
        found := false
        for _, x := range in {
            if x.Pred == p {
                args[i] = x.Value
                found = true
                break
            }
        }
        if !found {
            panic(fmt.Sprintf("ir: phi in %s has no operand for %s", b.Name, p.Name))
        }
    }
    id := bl.f.newValue(t)
    phi := Instr{Res: id, Val: Value{ID: id, Op: OpPhi, Type: t, Args: args}}
    at := 0
    for at < len(b.Instrs) && b.Instrs[at].Val.Op == OpPhi {
        at++
    }
    b.Instrs = append(b.Instrs, Instr{})
    copy(b.Instrs[at+1:], b.Instrs[at:])
    b.Instrs[at] = phi
    return id
}

func (bl *Builder) Jmp(target *BasicBlock) {
    bl.emit(Value{Op: OpJmp, Targets: []*BasicBlock{target}})
    bl.f.addEdge(bl.b, target)
}

func (bl *Builder) Br(cond ValueID, then, els *BasicBlock) {
    bl.emit(Value{Op: OpBr, Args: []ValueID{cond}, Targets: []*BasicBlock{then, els}})
    bl.f.addEdge(bl.b, then)
    bl.f.addEdge(bl.b, els)
}

func (bl *Builder) Ret(v ValueID) {
    bl.emit(Value{Op: OpRet, Args: []ValueID{v}})
}

func (bl *Builder) RetVoid() {
    bl.emit(Value{Op: OpRet})
}
