package ir

import (
    "github.com/pkg/errors"
)

// Verify checks the structural invariants of every defined function in m.
func Verify(m *Module) error {
    for _, f := range m.Funcs {
        if err := VerifyFunc(f); err != nil {
            return err
        }
    }
    return nil
}

// VerifyFunc checks that every block of f ends in exactly one terminator
// whose targets match the recorded successors, that phis lead their block
// and cover its predecessors, and that operands refer to values of f.
func VerifyFunc(f *Function) error {
    if !f.Defined() {
        return nil
    }
    if f.Type == nil || f.Type.K != Func {
        return errors.Errorf("%s: function without a function type", f.Name)
    }
    if len(f.Entry().Preds) != 0 {
        return errors.Errorf("%s: entry block has predecessors", f.Name)
    }
    defined := map[ValueID]bool{}
    for _, b := range f.Blocks {
        for _, in := range b.Instrs {
            if in.Res == NoValue {
                continue
            }
            if defined[in.Res] {
                return errors.Errorf("%s: value %%%d defined twice", f.Name, in.Res)
            }
            defined[in.Res] = true
        }
    }
    for _, b := range f.Blocks {
        if err := verifyBlock(f, b, defined); err != nil {
            return errors.Wrapf(err, "%s.%s", f.Name, b.Name)
        }
    }
    return nil
}

func verifyBlock(f *Function, b *BasicBlock, defined map[ValueID]bool) error {
    if len(b.Instrs) == 0 {
        return errors.New("empty block")
    }
    inPhis := true
    for i, in := range b.Instrs {
        v := in.Val
        last := i == len(b.Instrs)-1
        if v.Op.IsTerminator() != last {
            if last {
                return errors.New("block does not end in a terminator")
            }
            return errors.Errorf("%s in the middle of a block", v.Op)
        }
        if v.Op == OpPhi {
            if !inPhis {
                return errors.New("phi after a non-phi instruction")
            }
            if len(v.Args) != len(b.Preds) {
                return errors.Errorf("phi has %d operands for %d predecessors", len(v.Args), len(b.Preds))
            }
        } else {
            inPhis = false
        }
        for _, a := range v.Args {
            if !defined[a] {
                return errors.Errorf("%s uses undefined value %%%d", v.Op, a)
            }
        }
        if err := verifyInstr(f, v); err != nil {
            return err
        }
    }
    term := b.Instrs[len(b.Instrs)-1].Val
    if len(term.Targets) != len(b.Succs) {
        return errors.Errorf("%s has %d targets but the block has %d successors", term.Op, len(term.Targets), len(b.Succs))
    }
    for i, t := range term.Targets {
        if b.Succs[i] != t {
            return errors.Errorf("successor %d does not match the %s target", i, term.Op)
        }
        if blockIndexOf(f, t) < 0 {
            return errors.Errorf("%s targets a block outside the function", term.Op)
        }
    }
    return nil
}

func verifyInstr(f *Function, v Value) error {
    arg := func(i int) *Type { return f.TypeOf(v.Args[i]) }
    switch v.Op {
    case OpLoad, OpStore:
        addr := 0
        if v.Op == OpStore {
            addr = 1
        }
        if len(v.Args) != addr+1 || !arg(addr).IsPointer() {
            return errors.Errorf("%s needs a pointer operand", v.Op)
        }
        if v.Op == OpStore && !Equal(arg(0), arg(1).Elem) {
            return errors.Errorf("store of %s through %s", arg(0), arg(1))
        }
    case OpAdd, OpSub, OpMul, OpEq, OpNe, OpSlt, OpUlt:
        if len(v.Args) != 2 || !Equal(arg(0), arg(1)) {
            return errors.Errorf("%s operands differ in type", v.Op)
        }
    case OpBr:
        if len(v.Args) != 1 || !Equal(arg(0), I1) {
            return errors.New("br needs an i1 condition")
        }
    case OpRet:
        want := f.Type.Ret
        if want.IsVoid() != (len(v.Args) == 0) {
            return errors.New("ret does not match the function result")
        }
        if len(v.Args) == 1 && !Equal(arg(0), want) {
            return errors.Errorf("ret of %s from a function returning %s", arg(0), want)
        }
    case OpCall:
        ft := v.Elem
        if len(v.Args) == 0 || ft == nil {
            return errors.New("call without a callee")
        }
        n := len(v.Args) - 1
        if n < len(ft.Params) || (n > len(ft.Params) && !ft.Variadic) {
            return errors.Errorf("call passes %d arguments to %s", n, ft)
        }
        for i, p := range ft.Params {
            if !Equal(arg(i+1), p) {
                return errors.Errorf("call argument %d is %s, want %s", i+1, arg(i+1), p)
            }
        }
    case OpSelect:
        if len(v.Args) != 3 || !Equal(arg(1), arg(2)) {
            return errors.New("select operands differ in type")
        }
    }
    if v.Op.IsCast() {
        if len(v.Args) != 1 {
            return errors.Errorf("%s takes one operand", v.Op)
        }
        from, to := arg(0), v.Type
        switch v.Op {
        case OpZExt, OpSExt:
            if !from.IsInt() || !to.IsInt() || from.Bits >= to.Bits {
                return errors.Errorf("%s from %s to %s", v.Op, from, to)
            }
        case OpTrunc:
            if !from.IsInt() || !to.IsInt() || from.Bits <= to.Bits {
                return errors.Errorf("%s from %s to %s", v.Op, from, to)
            }
        case OpPtrToInt:
            if !from.IsPointer() || !to.IsInt() {
                return errors.Errorf("%s from %s to %s", v.Op, from, to)
            }
        case OpBitCast:
            if !from.IsPointer() || !to.IsPointer() {
                return errors.Errorf("%s from %s to %s", v.Op, from, to)
            }
        }
    }
    return nil
}
