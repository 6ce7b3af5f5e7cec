// Package parser builds the AST of a translation unit. Errors go to the
// shared reporter and parsing continues, so one pass surfaces as many
// independent errors as it can.
package parser

import (
    "github.com/tinyrange/c4/internal/ast"
    "github.com/tinyrange/c4/internal/diag"
    "github.com/tinyrange/c4/internal/lexer"
    "github.com/tinyrange/c4/internal/source"
)

type Parser struct {
    lx   *lexer.Lexer
    tok  lexer.Token
    errs *diag.Reporter
}

func New(f *source.File, errs *diag.Reporter) *Parser {
    p := &Parser{lx: lexer.New(f.Name, f.Data, errs), errs: errs}
    p.next()
    return p
}

// ParseFile parses a whole translation unit. The tree is returned even
// when errors were reported.
func ParseFile(f *source.File, errs *diag.Reporter) *ast.TranslationUnit {
    return New(f, errs).ParseTranslationUnit()
}

func (p *Parser) next() { p.tok = p.lx.Next() }

func (p *Parser) peek() lexer.Token { return p.lx.Peek() }

func (p *Parser) errorf(format string, args ...any) {
    p.errs.Errorf(p.tok.Pos, format, args...)
}

// possibly consumes the current token if it has type tt.
func (p *Parser) possibly(tt lexer.TokenType) bool {
    if p.tok.Type != tt {
        return false
    }
    p.next()
    return true
}

// expect consumes tt or reports it missing. A stray comma in its place is
// dropped so the caller can carry on.
func (p *Parser) expect(tt lexer.TokenType) bool {
    if p.possibly(tt) {
        return true
    }
    p.errorf("expected token '%s', got '%s'", tt, p.tok.Text())
    if p.tok.Type == lexer.COMMA {
        p.next()
    }
    return false
}

// mark returns an opaque position; moved reports whether tokens were
// consumed since.
func (p *Parser) mark() int { return p.lx.Offset() }

func (p *Parser) moved(m int) bool { return p.lx.Offset() != m }

// skipIfStuck consumes one token when nothing was consumed since m.
func (p *Parser) skipIfStuck(m int) {
    if !p.moved(m) && p.tok.Type != lexer.EOF {
        p.next()
    }
}

func (p *Parser) ParseTranslationUnit() *ast.TranslationUnit {
    tu := &ast.TranslationUnit{}
    if p.tok.Type == lexer.EOF {
        p.errorf("empty translation unit")
        return tu
    }
    for p.tok.Type != lexer.EOF {
        m := p.mark()
        d := p.parseDecl(ast.DeclVar)
        if p.tok.Type == lexer.LBRACE {
            d.Body = p.parseCompound()
        } else {
            p.expect(lexer.SEMI)
        }
        tu.Decls = append(tu.Decls, d)
        p.skipIfStuck(m)
    }
    return tu
}
