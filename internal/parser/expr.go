package parser

import (
    "github.com/tinyrange/c4/internal/ast"
    "github.com/tinyrange/c4/internal/lexer"
)

// Binding powers of the binary operators. An operator keeps absorbing the
// operand to its right while the next operator's right power exceeds its
// own left power; equal or lower powers associate to the left.
func leftPower(tt lexer.TokenType) int {
    switch tt {
    case lexer.STAR:
        return 15
    case lexer.PLUS, lexer.MINUS:
        return 13
    case lexer.LT:
        return 11
    case lexer.EQEQ, lexer.NEQ:
        return 9
    case lexer.ANDAND:
        return 7
    case lexer.OROR:
        return 5
    case lexer.QUESTION:
        return 3
    case lexer.ASSIGN:
        return 0
    }
    return -1
}

func rightPower(tt lexer.TokenType) int {
    switch tt {
    case lexer.STAR:
        return 14
    case lexer.PLUS, lexer.MINUS:
        return 12
    case lexer.LT:
        return 10
    case lexer.EQEQ, lexer.NEQ:
        return 8
    case lexer.ANDAND:
        return 6
    case lexer.OROR:
        return 4
    case lexer.QUESTION:
        return 2
    case lexer.ASSIGN:
        return 1
    }
    return -1
}

func (p *Parser) parseExpr() ast.Expr {
    return p.parseSubexpr(p.parseUnary(), 0)
}

func (p *Parser) parseSubexpr(left ast.Expr, min int) ast.Expr {
    for rightPower(p.tok.Type) >= min {
        op := p.tok
        p.next()
        if op.Type == lexer.QUESTION {
            then := p.parseExpr()
            p.expect(lexer.COLON)
            els := p.parseSubexpr(p.parseUnary(), rightPower(lexer.QUESTION))
            left = ast.NewCond(op.Pos, left, then, els)
            continue
        }
        right := p.parseUnary()
        for rightPower(p.tok.Type) > leftPower(op.Type) {
            right = p.parseSubexpr(right, rightPower(p.tok.Type))
        }
        left = ast.NewBinary(op.Pos, op.Type, left, right)
    }
    return left
}

func (p *Parser) parseUnary() ast.Expr {
    pos := p.tok.Pos
    switch p.tok.Type {
    case lexer.KW_SIZEOF:
        p.next()
        if p.tok.Type == lexer.LPAREN && p.peek().Type.IsTypeSpecifier() {
            p.next()
            name := p.parseDecl(ast.DeclTypeName)
            p.expect(lexer.RPAREN)
            return ast.NewSizeofType(pos, name)
        }
        return ast.NewSizeof(pos, p.parseUnary())
    case lexer.AMP, lexer.MINUS, lexer.STAR, lexer.BANG:
        op := p.tok.Type
        p.next()
        return ast.NewUnary(pos, op, p.parseUnary())
    }
    return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePostfix(x ast.Expr) ast.Expr {
    for {
        pos := p.tok.Pos
        switch p.tok.Type {
        case lexer.DOT, lexer.ARROW:
            op := p.tok.Type
            p.next()
            name := p.tok.Lex
            if !p.expect(lexer.IDENT) {
                name = ""
            }
            x = ast.NewMember(pos, op, x, name)
        case lexer.LBRACK:
            p.next()
            idx := p.parseExpr()
            p.expect(lexer.RBRACK)
            x = ast.NewIndex(pos, x, idx)
        case lexer.LPAREN:
            p.next()
            var args []ast.Expr
            if p.tok.Type != lexer.RPAREN {
                args = append(args, p.parseExpr())
                for p.possibly(lexer.COMMA) {
                    args = append(args, p.parseExpr())
                }
            }
            p.expect(lexer.RPAREN)
            x = ast.NewCall(pos, x, args)
        default:
            return x
        }
    }
}

func (p *Parser) parsePrimary() ast.Expr {
    switch p.tok.Type {
    case lexer.IDENT, lexer.INT, lexer.CHAR, lexer.STRING:
        e := ast.NewPrimary(p.tok)
        p.next()
        return e
    case lexer.LPAREN:
        p.next()
        e := p.parseExpr()
        p.expect(lexer.RPAREN)
        return e
    }
    p.errorf("expected expression before '%s' token", p.tok.Text())
    return ast.NewBad(p.tok.Pos)
}
