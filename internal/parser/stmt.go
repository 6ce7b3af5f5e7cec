package parser

import (
    "github.com/tinyrange/c4/internal/ast"
    "github.com/tinyrange/c4/internal/lexer"
)

func (p *Parser) parseCompound() *ast.CompoundStmt {
    pos := p.tok.Pos
    p.expect(lexer.LBRACE)
    var items []ast.BlockItem
    for p.tok.Type != lexer.RBRACE && p.tok.Type != lexer.EOF {
        m := p.mark()
        if p.tok.Type.IsTypeSpecifier() {
            items = append(items, p.parseDecl(ast.DeclVar))
            p.expect(lexer.SEMI)
        } else {
            items = append(items, p.parseStmt())
        }
        p.skipIfStuck(m)
    }
    p.expect(lexer.RBRACE)
    return ast.NewCompound(pos, items)
}

func (p *Parser) parseStmt() ast.Stmt {
    pos := p.tok.Pos
    switch p.tok.Type {
    case lexer.LBRACE:
        return p.parseCompound()
    case lexer.IDENT:
        if p.peek().Type == lexer.COLON {
            label := p.tok.Lex
            p.next()
            p.next()
            return ast.NewLabeled(pos, label, p.parseStmt())
        }
    case lexer.KW_IF:
        p.next()
        cond := p.parseCond()
        then := p.parseStmt()
        if p.possibly(lexer.KW_ELSE) {
            return ast.NewIfElse(pos, cond, then, p.parseStmt())
        }
        return ast.NewIf(pos, cond, then)
    case lexer.KW_WHILE:
        p.next()
        cond := p.parseCond()
        return ast.NewWhile(pos, cond, p.parseStmt())
    case lexer.KW_GOTO, lexer.KW_BREAK, lexer.KW_CONTINUE, lexer.KW_RETURN:
        return p.parseJump()
    }
    return p.parseExprStmt()
}

func (p *Parser) parseCond() ast.Expr {
    p.expect(lexer.LPAREN)
    cond := p.parseExpr()
    p.expect(lexer.RPAREN)
    return cond
}

func (p *Parser) parseJump() ast.Stmt {
    pos := p.tok.Pos
    kw := p.tok.Type
    p.next()
    var s ast.Stmt
    switch kw {
    case lexer.KW_GOTO:
        label := p.tok.Lex
        if !p.expect(lexer.IDENT) {
            label = ""
        }
        s = ast.NewGoto(pos, label)
    case lexer.KW_BREAK:
        s = ast.NewBreak(pos)
    case lexer.KW_CONTINUE:
        s = ast.NewContinue(pos)
    default:
        var x ast.Expr
        if p.tok.Type != lexer.SEMI {
            x = p.parseExpr()
        }
        s = ast.NewReturn(pos, x)
    }
    p.expect(lexer.SEMI)
    return s
}

func (p *Parser) parseExprStmt() ast.Stmt {
    pos := p.tok.Pos
    if p.possibly(lexer.SEMI) {
        return ast.NewExprStmt(pos, nil)
    }
    x := p.parseExpr()
    if !p.expect(lexer.SEMI) && p.tok.Type == lexer.RPAREN {
        p.next()
    }
    return ast.NewExprStmt(pos, x)
}
