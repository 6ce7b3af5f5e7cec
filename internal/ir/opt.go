package ir

// Optimize promotes single-block stack slots to values, then folds constants
// and branches and removes dead code until nothing changes.
func Optimize(m *Module) {
    for _, f := range m.Funcs {
        if !f.Defined() {
            continue
        }
        promoteSlots(f)
        for changed := true; changed; {
            changed = constFoldFunc(f)
            changed = foldBranches(f) || changed
            changed = RemoveUnreachable(f) || changed
            changed = simplifyPhis(f) || changed
            changed = dceFunc(f) || changed
        }
    }
}

func buildUses(f *Function) map[ValueID]int {
    uses := map[ValueID]int{}
    for _, b := range f.Blocks {
        for _, ins := range b.Instrs {
            for _, a := range ins.Val.Args {
                uses[a]++
            }
        }
    }
    return uses
}

func replaceUses(f *Function, from, to ValueID) {
    for _, b := range f.Blocks {
        for i := range b.Instrs {
            args := b.Instrs[i].Val.Args
            for j, a := range args {
                if a == from {
                    args[j] = to
                }
            }
        }
    }
}

// promoteSlots replaces the loads of a stack slot by the value last stored
// to it when every access lives in one block and begins with a store.
func promoteSlots(f *Function) {
    var slots []ValueID
    for _, ins := range f.Entry().Instrs {
        if ins.Val.Op == OpAlloca {
            slots = append(slots, ins.Res)
        }
    }
    for _, s := range slots {
        promoteSlot(f, s)
    }
}

func promoteSlot(f *Function, slot ValueID) {
    var home *BasicBlock
    for _, b := range f.Blocks {
        for _, ins := range b.Instrs {
            v := ins.Val
            for i, a := range v.Args {
                if a != slot {
                    continue
                }
                if !(v.Op == OpLoad || (v.Op == OpStore && i == 1)) {
                    return
                }
                if home != nil && home != b {
                    return
                }
                home = b
            }
        }
    }
    if home == nil {
        return
    }

    repl := map[ValueID]ValueID{}
    resolve := func(id ValueID) ValueID {
        for {
            r, ok := repl[id]
            if !ok {
                return id
            }
            id = r
        }
    }
    cur := NoValue
    for _, ins := range home.Instrs {
        v := ins.Val
        switch {
        case v.Op == OpStore && v.Args[1] == slot:
            cur = resolve(v.Args[0])
        case v.Op == OpLoad && v.Args[0] == slot:
            if cur == NoValue {
                return
            }
            repl[ins.Res] = cur
        }
    }

    out := home.Instrs[:0]
    for _, ins := range home.Instrs {
        v := ins.Val
        if (v.Op == OpStore && v.Args[1] == slot) || (v.Op == OpLoad && v.Args[0] == slot) {
            continue
        }
        out = append(out, ins)
    }
    home.Instrs = out
    for from := range repl {
        replaceUses(f, from, resolve(from))
    }
    entry := f.Entry()
    for i, ins := range entry.Instrs {
        if ins.Res == slot {
            entry.Instrs = append(entry.Instrs[:i], entry.Instrs[i+1:]...)
            break
        }
    }
}

type konst struct {
    k int64
    t *Type
}

func findConsts(f *Function) map[ValueID]konst {
    cs := map[ValueID]konst{}
    for _, b := range f.Blocks {
        for _, ins := range b.Instrs {
            if ins.Val.Op == OpConst && ins.Val.Type.IsInt() {
                cs[ins.Res] = konst{ins.Val.Const, ins.Val.Type}
            }
        }
    }
    return cs
}

// wrap truncates k to the given width, keeping it sign-extended.
func wrap(k int64, bits int) int64 {
    switch bits {
    case 1:
        return k & 1
    case 8:
        return int64(int8(k))
    case 32:
        return int64(int32(k))
    }
    return k
}

func unsigned(k int64, bits int) uint64 {
    if bits >= 64 {
        return uint64(k)
    }
    return uint64(k) & (1<<uint(bits) - 1)
}

func b2i(b bool) int64 {
    if b {
        return 1
    }
    return 0
}

func constFoldFunc(f *Function) bool {
    cs := findConsts(f)
    changed := false
    for _, b := range f.Blocks {
        for i, ins := range b.Instrs {
            v := ins.Val
            var k int64
            switch {
            case v.Op == OpAdd || v.Op == OpSub || v.Op == OpMul || v.Op.IsCompare():
                a, ok1 := cs[v.Args[0]]
                c, ok2 := cs[v.Args[1]]
                if !ok1 || !ok2 {
                    continue
                }
                switch v.Op {
                case OpAdd:
                    k = wrap(a.k+c.k, v.Type.Bits)
                case OpSub:
                    k = wrap(a.k-c.k, v.Type.Bits)
                case OpMul:
                    k = wrap(a.k*c.k, v.Type.Bits)
                case OpEq:
                    k = b2i(a.k == c.k)
                case OpNe:
                    k = b2i(a.k != c.k)
                case OpSlt:
                    k = b2i(a.k < c.k)
                case OpUlt:
                    k = b2i(unsigned(a.k, a.t.Bits) < unsigned(c.k, c.t.Bits))
                }
            case v.Op == OpZExt || v.Op == OpSExt || v.Op == OpTrunc:
                a, ok := cs[v.Args[0]]
                if !ok || !v.Type.IsInt() {
                    continue
                }
                switch v.Op {
                case OpZExt:
                    k = int64(unsigned(a.k, a.t.Bits))
                default:
                    k = wrap(a.k, v.Type.Bits)
                }
            case v.Op == OpSelect:
                c, ok := cs[v.Args[0]]
                if !ok {
                    continue
                }
                pick := v.Args[2]
                if c.k != 0 {
                    pick = v.Args[1]
                }
                replaceUses(f, ins.Res, pick)
                changed = true
                continue
            default:
                continue
            }
            b.Instrs[i].Val.Op = OpConst
            b.Instrs[i].Val.Args = nil
            b.Instrs[i].Val.Const = k
            cs[ins.Res] = konst{k, v.Type}
            changed = true
        }
    }
    return changed
}

// foldBranches turns conditional branches on constants into jumps.
func foldBranches(f *Function) bool {
    cs := findConsts(f)
    changed := false
    for _, b := range f.Blocks {
        t := b.Terminator()
        if t == nil || t.Val.Op != OpBr {
            continue
        }
        c, ok := cs[t.Val.Args[0]]
        if !ok {
            continue
        }
        taken, dropped := t.Val.Targets[0], t.Val.Targets[1]
        if c.k == 0 {
            taken, dropped = dropped, taken
        }
        t.Val = Value{ID: NoValue, Op: OpJmp, Targets: []*BasicBlock{taken}}
        f.removeEdge(b, dropped)
        changed = true
    }
    return changed
}

// RemoveUnreachable deletes blocks that cannot be reached from the entry
// block and reports whether any were removed.
func RemoveUnreachable(f *Function) bool {
    if !f.Defined() {
        return false
    }
    seen := map[*BasicBlock]bool{}
    work := []*BasicBlock{f.Entry()}
    for len(work) > 0 {
        b := work[len(work)-1]
        work = work[:len(work)-1]
        if seen[b] {
            continue
        }
        seen[b] = true
        work = append(work, b.Succs...)
    }
    if len(seen) == len(f.Blocks) {
        return false
    }
    var live []*BasicBlock
    for _, b := range f.Blocks {
        if seen[b] {
            live = append(live, b)
            continue
        }
        for len(b.Succs) > 0 {
            f.removeEdge(b, b.Succs[0])
        }
    }
    f.Blocks = live
    return true
}

// simplifyPhis replaces phis whose operands are all the same value.
func simplifyPhis(f *Function) bool {
    changed := false
    for _, b := range f.Blocks {
        out := b.Instrs[:0]
        for _, ins := range b.Instrs {
            v := ins.Val
            if v.Op == OpPhi && len(v.Args) > 0 && samePhiArgs(v.Args) {
                replaceUses(f, ins.Res, v.Args[0])
                changed = true
                continue
            }
            out = append(out, ins)
        }
        b.Instrs = out
    }
    return changed
}

func samePhiArgs(args []ValueID) bool {
    for _, a := range args[1:] {
        if a != args[0] {
            return false
        }
    }
    return true
}

func dceFunc(f *Function) bool {
    // Iterate to a fixed point since removing can cascade.
    removed := false
    for changed := true; changed; {
        changed = false
        uses := buildUses(f)
        for _, b := range f.Blocks {
            out := b.Instrs[:0]
            for _, ins := range b.Instrs {
                if ins.Res >= 0 && uses[ins.Res] == 0 && !ins.Val.Op.HasSideEffects() {
                    changed = true
                    continue
                }
                out = append(out, ins)
            }
            b.Instrs = out
        }
        removed = removed || changed
    }
    return removed
}
