// Package types models the C types seen by semantic analysis.
//
// Types are shared by pointer. int, char, void, the null constant and the
// error marker are canonical singletons; pointer and function types are
// built on demand and compared structurally; struct types are compared by
// identity.
package types

import "strings"

// Kind is the shape of a type.
type Kind int

const (
    Int Kind = iota
    Char
    Ptr
    Struct
    Func
    Void
    Error
)

// Member is a named struct member in declaration order.
type Member struct {
    Name string
    Type *Type
}

type Type struct {
    K Kind
    // zero marks the type of the literal 0, an int that also converts to
    // any pointer.
    zero bool

    Elem *Type // Ptr

    Tag     string   // Struct
    Union   bool     // Struct whose members share storage
    Members []Member // Struct, nil while incomplete

    Ret      *Type   // Func
    Params   []*Type // Func, as declared
    Variadic bool    // Func taking "..." after Params
}

var (
    intType   = &Type{K: Int}
    charType  = &Type{K: Char}
    zeroType  = &Type{K: Int, zero: true}
    voidType  = &Type{K: Void}
    errorType = &Type{K: Error}
)

func IntT() *Type   { return intType }
func CharT() *Type  { return charType }
func Zero() *Type   { return zeroType }
func VoidT() *Type  { return voidType }
func ErrorT() *Type { return errorType }

func PointerTo(elem *Type) *Type { return &Type{K: Ptr, Elem: elem} }

// NewStruct returns an incomplete struct; SetMembers completes it in place.
func NewStruct(tag string) *Type { return &Type{K: Struct, Tag: tag} }

func NewFunc(ret *Type, params ...*Type) *Type {
    return &Type{K: Func, Ret: ret, Params: params}
}

func (t *Type) SetMembers(ms []Member) { t.Members = ms }

func (t *Type) IsArithmetic() bool { return t.K == Int || t.K == Char }
func (t *Type) IsZero() bool       { return t.zero }
func (t *Type) IsPointer() bool    { return t.K == Ptr }
func (t *Type) IsStruct() bool     { return t.K == Struct }
func (t *Type) IsFunction() bool   { return t.K == Func }
func (t *Type) IsVoid() bool       { return t.K == Void }
func (t *Type) IsError() bool      { return t.K == Error }
func (t *Type) IsScalar() bool     { return t.IsArithmetic() || t.IsPointer() }

// IsObject reports whether t describes storage rather than a function.
func (t *Type) IsObject() bool {
    return t.IsScalar() || t.IsStruct() || t.IsVoid()
}

func (t *Type) IsComplete() bool {
    switch t.K {
    case Int, Char, Ptr:
        return true
    case Struct:
        return len(t.Members) > 0
    }
    return false
}

func (t *Type) PointerToComplete() bool { return t.IsPointer() && t.Elem.IsComplete() }
func (t *Type) PointerToObject() bool   { return t.IsPointer() && t.Elem.IsObject() }
func (t *Type) PointerToVoid() bool     { return t.IsPointer() && t.Elem.IsVoid() }
func (t *Type) PointerToFunc() bool     { return t.IsPointer() && t.Elem.IsFunction() }

// Args returns the parameter types, treating a lone void as no parameters.
func (t *Type) Args() []*Type {
    if len(t.Params) == 1 && t.Params[0].IsVoid() {
        return nil
    }
    return t.Params
}

// Lookup finds a struct member by name.
func (t *Type) Lookup(name string) (*Type, int, bool) {
    for i, m := range t.Members {
        if m.Name == name {
            return m.Type, i, true
        }
    }
    return nil, -1, false
}

// Equal is structural for every kind except struct, which is identity.
func Equal(a, b *Type) bool {
    if a == b {
        return true
    }
    if a.K != b.K {
        return false
    }
    switch a.K {
    case Int, Char, Void, Error:
        return true
    case Ptr:
        return Equal(a.Elem, b.Elem)
    case Func:
        if !Equal(a.Ret, b.Ret) || a.Variadic != b.Variadic {
            return false
        }
        aa, ba := a.Args(), b.Args()
        if len(aa) != len(ba) {
            return false
        }
        for i := range aa {
            if !Equal(aa[i], ba[i]) {
                return false
            }
        }
        return true
    }
    return false
}

// AssignCompatible reports whether a value of type r may be stored into an
// object of type l.
func AssignCompatible(l, r *Type) bool {
    switch {
    case l.IsArithmetic() && r.IsArithmetic():
        return true
    case Equal(l, r):
        return true
    case l.IsPointer() && r.IsZero():
        return true
    case l.PointerToObject() && r.PointerToVoid():
        return true
    case r.PointerToObject() && l.PointerToVoid():
        return true
    }
    return false
}

// Size is the storage size in bytes on an LP64 target.
func (t *Type) Size() int {
    switch t.K {
    case Char:
        return 1
    case Int:
        return 4
    case Ptr:
        return 8
    case Struct:
        size, align := 0, 1
        if t.Union {
            for _, m := range t.Members {
                if s := m.Type.Size(); s > size {
                    size = s
                }
                if a := m.Type.Align(); a > align {
                    align = a
                }
            }
            return (size + align - 1) / align * align
        }
        for _, m := range t.Members {
            a := m.Type.Align()
            size = (size + a - 1) / a * a
            size += m.Type.Size()
            if a > align {
                align = a
            }
        }
        return (size + align - 1) / align * align
    }
    return 0
}

func (t *Type) Align() int {
    if t.K == Struct {
        align := 1
        for _, m := range t.Members {
            if a := m.Type.Align(); a > align {
                align = a
            }
        }
        return align
    }
    if s := t.Size(); s > 0 {
        return s
    }
    return 1
}

func (t *Type) String() string {
    switch t.K {
    case Int:
        if t.zero {
            return "NULLTYPE"
        }
        return "int"
    case Char:
        return "char"
    case Ptr:
        return "pointer to " + t.Elem.String()
    case Struct:
        kw := "struct "
        if t.Union {
            kw = "union "
        }
        if t.IsComplete() {
            return kw + t.Tag + "{ complete }"
        }
        return kw + t.Tag + "{ incomplete }"
    case Func:
        var sb strings.Builder
        sb.WriteString("function returning ")
        sb.WriteString(t.Ret.String())
        sb.WriteString(" (")
        for i, p := range t.Params {
            if i > 0 {
                sb.WriteString(", ")
            }
            sb.WriteString(p.String())
        }
        if t.Variadic {
            sb.WriteString(", ...")
        }
        sb.WriteString(")")
        return sb.String()
    case Void:
        return "void"
    }
    return "error"
}
