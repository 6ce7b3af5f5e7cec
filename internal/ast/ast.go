package ast

import (
    "github.com/tinyrange/c4/internal/diag"
    "github.com/tinyrange/c4/internal/lexer"
    "github.com/tinyrange/c4/internal/types"
)

type Node interface{ Position() diag.Pos }

type TranslationUnit struct {
    Decls []*Decl
}

// TypeSpec is a primitive type keyword or a struct/union specifier.
type TypeSpec struct {
    Pos    diag.Pos
    Kind   lexer.TokenType // KW_VOID, KW_CHAR, KW_INT, KW_STRUCT or KW_UNION
    Struct *StructSpec     // set for struct and union
}

type StructSpec struct {
    Pos     diag.Pos
    Union   bool
    Tag     string
    Members []*Decl // empty when the specifier only names the tag
}

// Declarator is one link of a declarator chain, outermost first.
type Declarator struct {
    Pos     diag.Pos
    Pointer bool
    Inner   *Declarator
    Ident   string
    // Func is set when the link carries a parameter list, even an empty one.
    Func   bool
    Params []*Decl
}

type DeclKind int

const (
    DeclVar DeclKind = iota
    DeclParam
    DeclTypeName
)

type Linkage int

const (
    LinkageUnset Linkage = iota
    LinkageExternal
    LinkageInternal
    LinkageNone
)

type Decl struct {
    Pos        diag.Pos
    Kind       DeclKind
    Spec       *TypeSpec
    Declarator *Declarator
    Body       *CompoundStmt // function definitions only
    Variadic   bool          // a "..." parameter marker

    // Resolved by semantic analysis.
    Type    *types.Type
    Linkage Linkage

    name  string
    named bool
}

// Name is the identifier found in the declarator chain, or "".
func (d *Decl) Name() string {
    if !d.named {
        for dl := d.Declarator; dl != nil; dl = dl.Inner {
            if dl.Ident != "" {
                d.name = dl.Ident
                break
            }
        }
        d.named = true
    }
    return d.name
}

// Params returns the parameter list of the innermost declarator link that
// has one, which is the parameter list of a declared function.
func (d *Decl) Params() []*Decl {
    var ps []*Decl
    for dl := d.Declarator; dl != nil; dl = dl.Inner {
        if dl.Func {
            ps = dl.Params
        }
    }
    return ps
}

func (d *Decl) Position() diag.Pos { return d.Pos }
func (*Decl) isBlockItem()         {}

// BlockItem is a declaration or a statement inside a compound statement.
type BlockItem interface {
    Node
    isBlockItem()
}

type Stmt interface {
    BlockItem
    isStmt()
}

type stmtNode struct{ Pos diag.Pos }

func (s *stmtNode) Position() diag.Pos { return s.Pos }
func (*stmtNode) isBlockItem()         {}
func (*stmtNode) isStmt()              {}

type CompoundStmt struct {
    stmtNode
    Items []BlockItem
}

type ExprStmt struct {
    stmtNode
    X Expr // nil for an empty statement
}

type IfStmt struct {
    stmtNode
    Cond Expr
    Then Stmt
}

type IfElseStmt struct {
    stmtNode
    Cond Expr
    Then Stmt
    Else Stmt
}

type WhileStmt struct {
    stmtNode
    Cond Expr
    Body Stmt
}

type LabeledStmt struct {
    stmtNode
    Label string
    Stmt  Stmt
}

type GotoStmt struct {
    stmtNode
    Label string
    // Target is filled once the whole function body has been seen.
    Target *LabeledStmt
}

type BreakStmt struct{ stmtNode }

type ContinueStmt struct{ stmtNode }

type ReturnStmt struct {
    stmtNode
    X Expr // may be nil
}

func NewCompound(pos diag.Pos, items []BlockItem) *CompoundStmt {
    return &CompoundStmt{stmtNode{pos}, items}
}
func NewExprStmt(pos diag.Pos, x Expr) *ExprStmt { return &ExprStmt{stmtNode{pos}, x} }
func NewIf(pos diag.Pos, cond Expr, then Stmt) *IfStmt {
    return &IfStmt{stmtNode{pos}, cond, then}
}
func NewIfElse(pos diag.Pos, cond Expr, then, els Stmt) *IfElseStmt {
    return &IfElseStmt{stmtNode{pos}, cond, then, els}
}
func NewWhile(pos diag.Pos, cond Expr, body Stmt) *WhileStmt {
    return &WhileStmt{stmtNode{pos}, cond, body}
}
func NewLabeled(pos diag.Pos, label string, s Stmt) *LabeledStmt {
    return &LabeledStmt{stmtNode{pos}, label, s}
}
func NewGoto(pos diag.Pos, label string) *GotoStmt   { return &GotoStmt{stmtNode: stmtNode{pos}, Label: label} }
func NewBreak(pos diag.Pos) *BreakStmt               { return &BreakStmt{stmtNode{pos}} }
func NewContinue(pos diag.Pos) *ContinueStmt         { return &ContinueStmt{stmtNode{pos}} }
func NewReturn(pos diag.Pos, x Expr) *ReturnStmt     { return &ReturnStmt{stmtNode{pos}, x} }
