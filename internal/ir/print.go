package ir

import (
    "fmt"
    "strings"
)

// String renders m in a compact textual form used for debugging and tests.
func (m *Module) String() string {
    var sb strings.Builder
    fmt.Fprintf(&sb, "module %q\n", m.Name)
    for _, t := range m.Structs {
        if t.Opaque {
            fmt.Fprintf(&sb, "type %%%s opaque\n", t.Name)
            continue
        }
        fs := make([]string, len(t.Fields))
        for i, ft := range t.Fields {
            fs[i] = ft.String()
        }
        fmt.Fprintf(&sb, "type %%%s { %s }\n", t.Name, strings.Join(fs, ", "))
    }
    for _, g := range m.Globals {
        if g.Private() {
            fmt.Fprintf(&sb, "global @%s %s = %q\n", g.Name, g.Type, g.Data)
        } else {
            fmt.Fprintf(&sb, "global @%s %s\n", g.Name, g.Type)
        }
    }
    for _, f := range m.Funcs {
        sb.WriteString(f.String())
    }
    return sb.String()
}

func (f *Function) String() string {
    var sb strings.Builder
    kw := "declare"
    if f.Defined() {
        kw = "func"
    }
    fmt.Fprintf(&sb, "%s @%s %s", kw, f.Name, f.Type)
    if !f.Defined() {
        sb.WriteString("\n")
        return sb.String()
    }
    sb.WriteString(" {\n")
    for _, b := range f.Blocks {
        fmt.Fprintf(&sb, "%s:", b.Name)
        if len(b.Preds) > 0 {
            ps := make([]string, len(b.Preds))
            for i, p := range b.Preds {
                ps[i] = p.Name
            }
            fmt.Fprintf(&sb, " ; preds %s", strings.Join(ps, ", "))
        }
        sb.WriteString("\n")
        for _, in := range b.Instrs {
            sb.WriteString("    ")
            sb.WriteString(in.String())
            sb.WriteString("\n")
        }
    }
    sb.WriteString("}\n")
    return sb.String()
}

func (in Instr) String() string {
    v := in.Val
    var sb strings.Builder
    if in.Res != NoValue {
        fmt.Fprintf(&sb, "%%%d = ", in.Res)
    }
    sb.WriteString(v.Op.String())
    if v.Type != nil && !v.Op.IsTerminator() && v.Op != OpStore {
        fmt.Fprintf(&sb, " %s", v.Type)
    }
    switch v.Op {
    case OpConst, OpParam:
        fmt.Fprintf(&sb, " %d", v.Const)
    case OpGlobal:
        fmt.Fprintf(&sb, " @%s", v.Sym)
    case OpAlloca:
        fmt.Fprintf(&sb, " %s", v.Elem)
    }
    for i, a := range v.Args {
        if i == 0 {
            sb.WriteString(" ")
        } else {
            sb.WriteString(", ")
        }
        fmt.Fprintf(&sb, "%%%d", a)
    }
    for i, t := range v.Targets {
        if i == 0 && len(v.Args) == 0 {
            sb.WriteString(" ")
        } else {
            sb.WriteString(", ")
        }
        sb.WriteString(t.Name)
    }
    return sb.String()
}
