package parser

import (
    "github.com/tinyrange/c4/internal/ast"
    "github.com/tinyrange/c4/internal/lexer"
)

// declaratorKind says whether a declarator must, may or must not name an
// identifier.
type declaratorKind int

const (
    nonAbstract declaratorKind = iota
    abstract
    either
)

func (p *Parser) parseTypeSpec() *ast.TypeSpec {
    ts := &ast.TypeSpec{Pos: p.tok.Pos, Kind: p.tok.Type}
    switch p.tok.Type {
    case lexer.KW_VOID, lexer.KW_CHAR, lexer.KW_INT:
        p.next()
        return ts
    case lexer.KW_STRUCT, lexer.KW_UNION:
        ts.Struct = p.parseStruct()
        return ts
    }
    p.errorf("expected a 'type-specifier', got '%s'", p.tok.Text())
    return nil
}

func (p *Parser) parseStruct() *ast.StructSpec {
    s := &ast.StructSpec{Pos: p.tok.Pos, Union: p.tok.Type == lexer.KW_UNION}
    p.next()
    if p.tok.Type == lexer.IDENT {
        s.Tag = p.tok.Lex
        p.next()
    } else {
        p.expect(lexer.IDENT)
    }
    if p.tok.Type != lexer.LBRACE {
        return s
    }
    open := p.tok.Pos
    p.next()
    for p.tok.Type != lexer.RBRACE && p.tok.Type != lexer.EOF {
        m := p.mark()
        d := p.parseDecl(ast.DeclVar)
        if d.Declarator != nil || (d.Spec != nil && d.Spec.Struct != nil) {
            s.Members = append(s.Members, d)
        }
        p.expect(lexer.SEMI)
        p.skipIfStuck(m)
    }
    if len(s.Members) == 0 {
        p.errs.Errorf(open, "struct has no members")
    }
    p.expect(lexer.RBRACE)
    return s
}

// parseDecl reads a type specifier and a declarator. Function bodies and
// the terminating semicolon are left to the caller.
func (p *Parser) parseDecl(kind ast.DeclKind) *ast.Decl {
    d := &ast.Decl{Pos: p.tok.Pos, Kind: kind}
    d.Spec = p.parseTypeSpec()
    switch kind {
    case ast.DeclParam:
        d.Declarator = p.parseDeclarator(either)
    case ast.DeclTypeName:
        d.Declarator = p.parseDeclarator(abstract)
    default:
        d.Declarator = p.parseDeclarator(nonAbstract)
    }
    if d.Spec == nil && d.Declarator == nil && p.tok.Type != lexer.EOF {
        p.next()
    }
    if kind == ast.DeclVar && d.Declarator == nil && (d.Spec == nil || d.Spec.Struct == nil) {
        p.errs.Errorf(d.Pos, "declaration with empty declarator")
    }
    return d
}

func (p *Parser) parseDeclarator(kind declaratorKind) *ast.Declarator {
    pos := p.tok.Pos
    if p.possibly(lexer.STAR) {
        return &ast.Declarator{Pos: pos, Pointer: true, Inner: p.parseDeclarator(kind)}
    }
    var d *ast.Declarator
    switch {
    case p.tok.Type == lexer.LPAREN:
        if kind != nonAbstract {
            if nt := p.peek().Type; nt.IsTypeSpecifier() || nt == lexer.RPAREN || nt == lexer.ELLIPSIS {
                return &ast.Declarator{Pos: pos, Func: true, Params: p.parseParams()}
            }
        }
        p.next()
        d = &ast.Declarator{Pos: pos, Inner: p.parseDeclarator(kind)}
        p.expect(lexer.RPAREN)
    case p.tok.Type == lexer.IDENT && kind != abstract:
        d = &ast.Declarator{Pos: pos, Ident: p.tok.Lex}
        p.next()
    }
    if p.tok.Type == lexer.LPAREN {
        if d == nil {
            d = &ast.Declarator{Pos: p.tok.Pos}
        }
        d.Func = true
        d.Params = p.parseParams()
    }
    return d
}

// parseParams reads a parenthesised parameter list. "()" is an empty list.
func (p *Parser) parseParams() []*ast.Decl {
    p.expect(lexer.LPAREN)
    var ps []*ast.Decl
    if p.possibly(lexer.RPAREN) {
        return ps
    }
    if p.tok.Type == lexer.ELLIPSIS {
        p.errorf("require an argument before '...'")
        p.next()
        p.expect(lexer.RPAREN)
        return ps
    }
    ps = append(ps, p.parseParam())
    for p.tok.Type != lexer.RPAREN && p.tok.Type != lexer.EOF {
        m := p.mark()
        p.expect(lexer.COMMA)
        ps = append(ps, p.parseParam())
        p.skipIfStuck(m)
    }
    p.expect(lexer.RPAREN)
    return ps
}

func (p *Parser) parseParam() *ast.Decl {
    if p.tok.Type != lexer.ELLIPSIS {
        return p.parseDecl(ast.DeclParam)
    }
    d := &ast.Decl{Pos: p.tok.Pos, Kind: ast.DeclParam, Variadic: true}
    p.next()
    if p.tok.Type != lexer.RPAREN {
        p.errs.Errorf(d.Pos, "'...' needs to be the last argument")
    }
    return d
}
