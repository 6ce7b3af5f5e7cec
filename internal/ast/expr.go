package ast

import (
    "fmt"

    "github.com/tinyrange/c4/internal/diag"
    "github.com/tinyrange/c4/internal/lexer"
    "github.com/tinyrange/c4/internal/types"
)

type Expr interface {
    Node
    // Type panics until semantic analysis has resolved the expression.
    Type() *types.Type
    SetType(t *types.Type)
    Resolved() bool
    isExpr()
}

// exprNode holds the position and the write-once type of an expression.
type exprNode struct {
    Pos diag.Pos
    t   *types.Type
}

func (e *exprNode) Position() diag.Pos { return e.Pos }
func (*exprNode) isExpr()              {}
func (e *exprNode) Resolved() bool     { return e.t != nil }

func (e *exprNode) Type() *types.Type {
    if e.t == nil {
        panic(fmt.Sprintf("%s: expression type read before it was resolved", e.Pos))
    }
    return e.t
}

func (e *exprNode) SetType(t *types.Type) {
    if e.t != nil {
        panic(fmt.Sprintf("%s: expression type assigned twice", e.Pos))
    }
    if t == nil {
        panic(fmt.Sprintf("%s: nil expression type", e.Pos))
    }
    e.t = t
}

// BadExpr stands in for an expression that failed to parse.
type BadExpr struct{ exprNode }

// PrimaryExpr is an identifier or a literal.
type PrimaryExpr struct {
    exprNode
    Tok lexer.Token
    // Decl is the declaration an identifier resolved to.
    Decl *Decl
}

type SizeofExpr struct {
    exprNode
    X Expr
}

type SizeofTypeExpr struct {
    exprNode
    Name *Decl // DeclTypeName
}

type UnaryExpr struct {
    exprNode
    Op lexer.TokenType // AMP, MINUS, STAR or BANG
    X  Expr
}

type BinaryExpr struct {
    exprNode
    Op          lexer.TokenType
    Left, Right Expr
}

// MemberExpr is s.m or p->m.
type MemberExpr struct {
    exprNode
    Op     lexer.TokenType // DOT or ARROW
    X      Expr
    Member string
}

type IndexExpr struct {
    exprNode
    X, Index Expr
}

type CallExpr struct {
    exprNode
    Fn   Expr
    Args []Expr
}

type CondExpr struct {
    exprNode
    Cond, Then, Else Expr
}

func NewBad(pos diag.Pos) *BadExpr { return &BadExpr{exprNode{Pos: pos}} }
func NewPrimary(tok lexer.Token) *PrimaryExpr {
    return &PrimaryExpr{exprNode: exprNode{Pos: tok.Pos}, Tok: tok}
}
func NewSizeof(pos diag.Pos, x Expr) *SizeofExpr { return &SizeofExpr{exprNode{Pos: pos}, x} }
func NewSizeofType(pos diag.Pos, name *Decl) *SizeofTypeExpr {
    return &SizeofTypeExpr{exprNode{Pos: pos}, name}
}
func NewUnary(pos diag.Pos, op lexer.TokenType, x Expr) *UnaryExpr {
    return &UnaryExpr{exprNode{Pos: pos}, op, x}
}
func NewBinary(pos diag.Pos, op lexer.TokenType, l, r Expr) *BinaryExpr {
    return &BinaryExpr{exprNode{Pos: pos}, op, l, r}
}
func NewMember(pos diag.Pos, op lexer.TokenType, x Expr, member string) *MemberExpr {
    return &MemberExpr{exprNode{Pos: pos}, op, x, member}
}
func NewIndex(pos diag.Pos, x, index Expr) *IndexExpr { return &IndexExpr{exprNode{Pos: pos}, x, index} }
func NewCall(pos diag.Pos, fn Expr, args []Expr) *CallExpr {
    return &CallExpr{exprNode{Pos: pos}, fn, args}
}
func NewCond(pos diag.Pos, cond, then, els Expr) *CondExpr {
    return &CondExpr{exprNode{Pos: pos}, cond, then, els}
}

// IsLvalue reports whether e designates an object.
func IsLvalue(e Expr) bool {
    switch x := e.(type) {
    case *PrimaryExpr:
        return x.Tok.Type == lexer.IDENT
    case *MemberExpr, *IndexExpr:
        return true
    case *UnaryExpr:
        return x.Op == lexer.STAR
    }
    return false
}
