package lexer

import (
	"fmt"

	"github.com/tinyrange/c4/internal/diag"
)

// Lexer produces tokens lazily from a source buffer. It keeps only the
// current token; Peek scans ahead on a copy.
type Lexer struct {
	src  []byte
	name string
	off  int // offset just past tok
	line int
	col  int
	tok  Token
	errs *diag.Reporter
}

func New(name string, src []byte, errs *diag.Reporter) *Lexer {
	return &Lexer{src: src, name: name, line: 1, col: 1, errs: errs}
}

// Token returns the current token.
func (l *Lexer) Token() Token {
	return l.tok
}

// Offset is the byte offset just past the current token.
func (l *Lexer) Offset() int {
	return l.off
}

// Peek returns the token after the current one without advancing and
// without reporting anything.
func (l *Lexer) Peek() Token {
	cp := *l
	cp.errs = nil
	return cp.Next()
}

func (l *Lexer) errorf(pos diag.Pos, format string, args ...any) {
	if l.errs != nil {
		l.errs.Errorf(pos, format, args...)
	}
}

func (l *Lexer) pos() diag.Pos {
	return diag.Pos{Name: l.name, Line: l.line, Col: l.col}
}

// newline returns the length of the newline sequence at i, or 0.
func (l *Lexer) newline(i int) int {
	if i >= len(l.src) {
		return 0
	}
	c := l.src[i]
	if c != '\n' && c != '\r' {
		return 0
	}
	if i+1 < len(l.src) {
		d := l.src[i+1]
		if (d == '\n' || d == '\r') && d != c {
			return 2
		}
	}
	return 1
}

// Next advances to the next token, skipping whitespace and comments.
func (l *Lexer) Next() Token {
	for {
		if l.off >= len(l.src) {
			l.tok = Token{Type: EOF, Pos: l.pos()}
			return l.tok
		}
		c := l.src[l.off]
		if n := l.newline(l.off); n > 0 {
			l.off += n
			l.line++
			l.col = 1
			continue
		}
		switch {
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			l.off++
			l.col++
			continue
		case c == '\\':
			if n := l.newline(l.off + 1); n > 0 {
				l.off += 1 + n
				l.line++
				l.col = 1
				continue
			}
			l.errorf(l.pos(), "stray '\\' in program")
			l.off++
			l.col++
			continue
		case c < 0x20 || c == 0x7f:
			l.errorf(l.pos(), "stray '\\%d' in program", c)
			l.off++
			l.col++
			continue
		}

		m := munch(l.src[l.off:])
		start := l.pos()
		if m.typ == ILLEGAL {
			if c >= 0x20 && c < 0x7f {
				l.errorf(start, "stray '%c' in program", c)
			} else {
				l.errorf(start, "stray '\\%d' in program", c)
			}
			l.off++
			l.col++
			continue
		}
		text := l.src[l.off : l.off+m.n]
		l.off += m.n
		if m.typ == COMMENT {
			for _, e := range m.errs {
				l.errorf(start, "%s", e)
			}
			l.advance(text)
			continue
		}
		l.col += m.n
		l.tok = Token{Type: m.typ, Lex: string(text), Pos: start, Errors: m.errs}
		for _, e := range m.errs {
			l.errorf(start, "%s", e)
		}
		return l.tok
	}
}

// advance moves the position over text that may span lines.
func (l *Lexer) advance(text []byte) {
	for i := 0; i < len(text); {
		if c := text[i]; c == '\n' || c == '\r' {
			n := 1
			if i+1 < len(text) && (text[i+1] == '\n' || text[i+1] == '\r') && text[i+1] != c {
				n = 2
			}
			i += n
			l.line++
			l.col = 1
			continue
		}
		i++
		l.col++
	}
}

type match struct {
	typ  TokenType
	n    int
	errs []string
}

type muncher func(b []byte) match

var munchers = []muncher{punctuator, identifier, decimal, literal, comment}

// munch runs every recognizer at the same position and keeps the longest
// valid match. An invalid placeholder is replaced by any valid match, and of
// two invalid matches the longer one wins.
func munch(b []byte) match {
	best := match{typ: ILLEGAL}
	for _, fn := range munchers {
		m := fn(b)
		if best.typ == ILLEGAL {
			if m.typ != ILLEGAL || m.n > best.n {
				best = m
			}
		} else if m.typ != ILLEGAL && m.n > best.n {
			best = m
		}
	}
	return best
}

var punctuators = map[string]TokenType{
	"<:": LBRACK, ":>": RBRACK, "<%": LBRACE, "%>": RBRACE, "%:": HASH, "%:%:": HASHHASH,
}

func init() {
	for tt := LBRACK; tt <= HASHHASH; tt++ {
		punctuators[tokenNames[tt]] = tt
	}
}

func punctuator(b []byte) match {
	for n := 4; n > 0; n-- {
		if n > len(b) {
			continue
		}
		if tt, ok := punctuators[string(b[:n])]; ok {
			return match{typ: tt, n: n}
		}
	}
	return match{typ: ILLEGAL}
}

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func identifier(b []byte) match {
	if !isLetter(b[0]) {
		return match{typ: ILLEGAL}
	}
	n := 1
	for n < len(b) && (isLetter(b[n]) || isDigit(b[n])) {
		n++
	}
	if kw, ok := keywords[string(b[:n])]; ok {
		return match{typ: kw, n: n}
	}
	return match{typ: IDENT, n: n}
}

// decimal recognizes a lone 0 or a run of digits not starting with 0.
func decimal(b []byte) match {
	if !isDigit(b[0]) {
		return match{typ: ILLEGAL}
	}
	if b[0] == '0' {
		return match{typ: INT, n: 1}
	}
	n := 1
	for n < len(b) && isDigit(b[n]) {
		n++
	}
	return match{typ: INT, n: n}
}

func isEscape(c byte) bool {
	switch c {
	case '\'', '"', '?', '\\', 'a', 'b', 'f', 'n', 'r', 't', 'v':
		return true
	}
	return false
}

// literal recognizes string and character literals. An unterminated
// literal still yields a token carrying the error.
func literal(b []byte) match {
	q := b[0]
	if q != '"' && q != '\'' {
		return match{typ: ILLEGAL}
	}
	m := match{typ: STRING}
	if q == '\'' {
		m.typ = CHAR
	}
	chars := 0
	i := 1
	for {
		if i >= len(b) || b[i] == '\n' || b[i] == '\r' {
			m.errs = append(m.errs, fmt.Sprintf("missing terminating %c character", q))
			m.n = i
			return m
		}
		c := b[i]
		if c == q {
			i++
			break
		}
		if c == '\\' && i+1 < len(b) && b[i+1] != '\n' && b[i+1] != '\r' {
			if !isEscape(b[i+1]) {
				m.errs = append(m.errs, fmt.Sprintf("unknown escape sequence \\%c", b[i+1]))
			}
			i += 2
		} else {
			i++
		}
		chars++
	}
	m.n = i
	if q == '\'' && chars != 1 {
		m.errs = append(m.errs, "invalid length character constant")
	}
	return m
}

func comment(b []byte) match {
	if len(b) < 2 || b[0] != '/' {
		return match{typ: ILLEGAL}
	}
	switch b[1] {
	case '/':
		n := 2
		for n < len(b) && b[n] != '\n' && b[n] != '\r' {
			n++
		}
		return match{typ: COMMENT, n: n}
	case '*':
		for n := 2; n+1 < len(b); n++ {
			if b[n] == '*' && b[n+1] == '/' {
				return match{typ: COMMENT, n: n + 2}
			}
		}
		return match{typ: COMMENT, n: len(b), errs: []string{"unterminated comment"}}
	}
	return match{typ: ILLEGAL}
}

// Unquote decodes the escapes of a string or character literal's text,
// including its quotes.
func Unquote(lit string) string {
	if len(lit) < 2 {
		return ""
	}
	body := lit[1:]
	if body[len(body)-1] == lit[0] {
		body = body[:len(body)-1]
	}
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			out = append(out, c)
			continue
		}
		i++
		switch e := body[i]; e {
		case 'a':
			out = append(out, '\a')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'v':
			out = append(out, '\v')
		default:
			out = append(out, e)
		}
	}
	return string(out)
}
