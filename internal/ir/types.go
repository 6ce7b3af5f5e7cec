package ir

import (
    "fmt"
    "strings"
)

type Kind int

const (
    Void Kind = iota
    Int
    Ptr
    Array
    Struct
    Func
)

// Type is a machine-level type. Named struct types compare by identity,
// everything else structurally.
type Type struct {
    K    Kind
    Bits int   // Int
    Elem *Type // Ptr, Array
    Len  int   // Array

    Name   string  // Struct
    Fields []*Type // Struct
    Opaque bool    // Struct without a body

    Ret      *Type // Func
    Params   []*Type
    Variadic bool
}

var (
    VoidT = &Type{K: Void}
    I1    = &Type{K: Int, Bits: 1}
    I8    = &Type{K: Int, Bits: 8}
    I32   = &Type{K: Int, Bits: 32}
    I64   = &Type{K: Int, Bits: 64}
)

func PointerTo(t *Type) *Type      { return &Type{K: Ptr, Elem: t} }
func ArrayOf(n int, t *Type) *Type { return &Type{K: Array, Len: n, Elem: t} }

func FuncOf(ret *Type, params []*Type, variadic bool) *Type {
    return &Type{K: Func, Ret: ret, Params: params, Variadic: variadic}
}

// NamedStruct returns an opaque struct; SetBody completes it.
func NamedStruct(name string) *Type { return &Type{K: Struct, Name: name, Opaque: true} }

func (t *Type) SetBody(fields []*Type) {
    t.Fields = fields
    t.Opaque = false
}

func (t *Type) IsInt() bool     { return t.K == Int }
func (t *Type) IsPointer() bool { return t.K == Ptr }
func (t *Type) IsVoid() bool    { return t.K == Void }

func Equal(a, b *Type) bool {
    if a == b {
        return true
    }
    if a == nil || b == nil || a.K != b.K {
        return false
    }
    switch a.K {
    case Void:
        return true
    case Int:
        return a.Bits == b.Bits
    case Ptr:
        return Equal(a.Elem, b.Elem)
    case Array:
        return a.Len == b.Len && Equal(a.Elem, b.Elem)
    case Func:
        if !Equal(a.Ret, b.Ret) || a.Variadic != b.Variadic || len(a.Params) != len(b.Params) {
            return false
        }
        for i := range a.Params {
            if !Equal(a.Params[i], b.Params[i]) {
                return false
            }
        }
        return true
    }
    return false
}

func (t *Type) String() string {
    if t == nil {
        return "<nil>"
    }
    switch t.K {
    case Void:
        return "void"
    case Int:
        return fmt.Sprintf("i%d", t.Bits)
    case Ptr:
        return t.Elem.String() + "*"
    case Array:
        return fmt.Sprintf("[%d x %s]", t.Len, t.Elem)
    case Struct:
        return "%" + t.Name
    case Func:
        var sb strings.Builder
        sb.WriteString(t.Ret.String())
        sb.WriteString(" (")
        for i, p := range t.Params {
            if i > 0 {
                sb.WriteString(", ")
            }
            sb.WriteString(p.String())
        }
        if t.Variadic {
            if len(t.Params) > 0 {
                sb.WriteString(", ")
            }
            sb.WriteString("...")
        }
        sb.WriteString(")")
        return sb.String()
    }
    return "?"
}
