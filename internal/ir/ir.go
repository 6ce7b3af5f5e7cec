// Package ir is the basic-block intermediate representation produced by code
// generation. Values are numbered per function; every instruction carries the
// value it defines (or -1) and the operands it reads by number.
package ir

import "fmt"

type Module struct {
    Name   string
    Triple string

    Structs []*Type
    Globals []*Global
    Funcs   []*Function

    strings int
}

func NewModule(name string) *Module { return &Module{Name: name} }

// Global is a module-level object. Data is set for private constant strings;
// other globals are zero-initialised common symbols.
type Global struct {
    Name string
    Type *Type
    Data []byte
}

func (g *Global) Private() bool { return g.Data != nil }

// Global returns the global object named name, or nil.
func (m *Module) Global(name string) *Global {
    for _, g := range m.Globals {
        if g.Name == name {
            return g
        }
    }
    return nil
}

// AddGlobal declares a common global, reusing an earlier one of the same
// name.
func (m *Module) AddGlobal(name string, t *Type) *Global {
    if g := m.Global(name); g != nil {
        return g
    }
    g := &Global{Name: name, Type: t}
    m.Globals = append(m.Globals, g)
    return g
}

// AddString adds a private constant holding data and a terminating NUL.
func (m *Module) AddString(data []byte) *Global {
    name := ".str"
    if m.strings > 0 {
        name = fmt.Sprintf(".str.%d", m.strings)
    }
    m.strings++
    buf := append(append([]byte(nil), data...), 0)
    g := &Global{Name: name, Type: ArrayOf(len(buf), I8), Data: buf}
    m.Globals = append(m.Globals, g)
    return g
}

// AddStruct registers a named struct type for emission.
func (m *Module) AddStruct(t *Type) { m.Structs = append(m.Structs, t) }

// Func returns the function named name, or nil.
func (m *Module) Func(name string) *Function {
    for _, f := range m.Funcs {
        if f.Name == name {
            return f
        }
    }
    return nil
}

// AddFunc declares a function, reusing an earlier declaration of the same
// name so that a later definition fills in the same symbol.
func (m *Module) AddFunc(name string, t *Type, params []string) *Function {
    if f := m.Func(name); f != nil {
        if params != nil && !f.Defined() {
            f.Params = params
        }
        return f
    }
    f := &Function{Name: name, Type: t, Params: params}
    m.Funcs = append(m.Funcs, f)
    return f
}

type Function struct {
    Name   string
    Type   *Type // Func
    Params []string
    Blocks []*BasicBlock

    nextID ValueID
    types  map[ValueID]*Type
    names  map[string]int
}

// Defined reports whether f has a body; functions without one are external
// declarations.
func (f *Function) Defined() bool { return len(f.Blocks) > 0 }

func (f *Function) Entry() *BasicBlock {
    if len(f.Blocks) == 0 {
        return nil
    }
    return f.Blocks[0]
}

// TypeOf returns the type of the value id, or nil if f never defined it.
func (f *Function) TypeOf(id ValueID) *Type { return f.types[id] }

// NewBlock appends a block whose name is unique within f.
func (f *Function) NewBlock(name string) *BasicBlock {
    if f.names == nil {
        f.names = map[string]int{}
    }
    n := f.names[name]
    f.names[name] = n + 1
    if n > 0 {
        name = fmt.Sprintf("%s%d", name, n)
    }
    b := &BasicBlock{Name: name}
    f.Blocks = append(f.Blocks, b)
    return b
}

func (f *Function) newValue(t *Type) ValueID {
    if f.types == nil {
        f.types = map[ValueID]*Type{}
    }
    id := f.nextID
    f.nextID++
    f.types[id] = t
    return id
}

func (f *Function) addEdge(pred, succ *BasicBlock) {
    pred.Succs = append(pred.Succs, succ)
    succ.Preds = append(succ.Preds, pred)
}

// removeEdge drops one pred->succ edge and the matching phi operands of succ.
func (f *Function) removeEdge(pred, succ *BasicBlock) {
    for i, s := range pred.Succs {
        if s == succ {
            pred.Succs = append(pred.Succs[:i:i], pred.Succs[i+1:]...)
            break
        }
    }
    for i, p := range succ.Preds {
        if p != pred {
            continue
        }
        succ.Preds = append(succ.Preds[:i:i], succ.Preds[i+1:]...)
        for j := range succ.Instrs {
            v := &succ.Instrs[j].Val
            if v.Op == OpPhi && i < len(v.Args) {
                v.Args = append(v.Args[:i:i], v.Args[i+1:]...)
            }
        }
        return
    }
}

func blockIndexOf(f *Function, b *BasicBlock) int {
    for i, bb := range f.Blocks {
        if bb == b {
            return i
        }
    }
    return -1
}

type BasicBlock struct {
    Name   string
    Instrs []Instr
    Preds  []*BasicBlock
    Succs  []*BasicBlock
}

// Terminator returns the last instruction if it ends the block.
func (b *BasicBlock) Terminator() *Instr {
    if len(b.Instrs) == 0 {
        return nil
    }
    last := &b.Instrs[len(b.Instrs)-1]
    if !last.Val.Op.IsTerminator() {
        return nil
    }
    return last
}

func (b *BasicBlock) Terminated() bool { return b.Terminator() != nil }

type ValueID int

// NoValue is the result of instructions that define nothing.
const NoValue ValueID = -1

type Op int

const (
    OpConst  Op = iota // Const; non-integer constants are the zero value
    OpGlobal           // address of the global or function Sym
    OpParam            // Const is the parameter index
    OpAlloca           // Elem is the slot type
    OpLoad
    OpStore // Args: value, address
    OpAdd
    OpSub
    OpMul
    // comparisons produce i1
    OpEq
    OpNe
    OpSlt
    OpUlt
    OpZExt
    OpSExt
    OpTrunc
    OpPtrToInt
    OpBitCast
    OpGEP    // Elem is the pointee of Args[0]; Args[1:] are indices
    OpCall   // Args[0] is the callee; Elem is its function type
    OpSelect // Args: cond, then, else
    OpPhi    // args aligned with the block's Preds
    OpJmp    // Targets[0]
    OpBr     // Args[0]=cond, Targets then and else
    OpRet    // optional Args[0]
)

var opNames = [...]string{
    OpConst: "const", OpGlobal: "global", OpParam: "param", OpAlloca: "alloca",
    OpLoad: "load", OpStore: "store", OpAdd: "add", OpSub: "sub", OpMul: "mul",
    OpEq: "eq", OpNe: "ne", OpSlt: "slt", OpUlt: "ult",
    OpZExt: "zext", OpSExt: "sext", OpTrunc: "trunc", OpPtrToInt: "ptrtoint",
    OpBitCast: "bitcast", OpGEP: "gep", OpCall: "call", OpSelect: "select",
    OpPhi: "phi", OpJmp: "jmp", OpBr: "br", OpRet: "ret",
}

func (o Op) String() string {
    if o >= 0 && int(o) < len(opNames) {
        return opNames[o]
    }
    return fmt.Sprintf("op(%d)", int(o))
}

func (o Op) IsTerminator() bool { return o == OpJmp || o == OpBr || o == OpRet }

func (o Op) IsCompare() bool { return o >= OpEq && o <= OpUlt }

func (o Op) IsCast() bool { return o >= OpZExt && o <= OpBitCast }

// HasSideEffects reports whether an instruction must stay even when its
// result is unused.
func (o Op) HasSideEffects() bool {
    return o == OpStore || o == OpCall || o == OpParam || o.IsTerminator()
}

type Value struct {
    ID      ValueID
    Op      Op
    Type    *Type
    Args    []ValueID
    Const   int64
    Sym     string
    Elem    *Type
    Targets []*BasicBlock
}

type Instr struct {
    Res ValueID // -1 if none
    Val Value
}
