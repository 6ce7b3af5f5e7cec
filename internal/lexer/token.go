package lexer

import "github.com/tinyrange/c4/internal/diag"

type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Literals
	INT
	CHAR
	STRING
	COMMENT
	IDENT

	// Punctuators
	LBRACK     // [
	RBRACK     // ]
	LPAREN     // (
	RPAREN     // )
	LBRACE     // {
	RBRACE     // }
	DOT        // .
	ARROW      // ->
	INC        // ++
	DEC        // --
	AMP        // &
	STAR       // *
	PLUS       // +
	MINUS      // -
	TILDE      // ~
	BANG       // !
	SLASH      // /
	PERCENT    // %
	SHL        // <<
	SHR        // >>
	LT         // <
	GT         // >
	LE         // <=
	GE         // >=
	EQEQ       // ==
	NEQ        // !=
	CARET      // ^
	PIPE       // |
	ANDAND     // &&
	OROR       // ||
	QUESTION   // ?
	COLON      // :
	SEMI       // ;
	ELLIPSIS   // ...
	ASSIGN     // =
	MUL_ASSIGN // *=
	DIV_ASSIGN // /=
	MOD_ASSIGN // %=
	ADD_ASSIGN // +=
	SUB_ASSIGN // -=
	SHL_ASSIGN // <<=
	SHR_ASSIGN // >>=
	AND_ASSIGN // &=
	XOR_ASSIGN // ^=
	OR_ASSIGN  // |=
	COMMA      // ,
	HASH       // #
	HASHHASH   // ##

	// Keywords
	KW_AUTO
	KW_BREAK
	KW_CASE
	KW_CHAR
	KW_CONST
	KW_CONTINUE
	KW_DEFAULT
	KW_DO
	KW_DOUBLE
	KW_ELSE
	KW_ENUM
	KW_EXTERN
	KW_FLOAT
	KW_FOR
	KW_GOTO
	KW_IF
	KW_INLINE
	KW_INT
	KW_LONG
	KW_REGISTER
	KW_RESTRICT
	KW_RETURN
	KW_SHORT
	KW_SIGNED
	KW_SIZEOF
	KW_STATIC
	KW_STRUCT
	KW_SWITCH
	KW_TYPEDEF
	KW_UNION
	KW_UNSIGNED
	KW_VOID
	KW_VOLATILE
	KW_WHILE
	KW_ALIGNAS
	KW_ALIGNOF
	KW_ATOMIC
	KW_BOOL
	KW_COMPLEX
	KW_GENERIC
	KW_IMAGINARY
	KW_NORETURN
	KW_STATIC_ASSERT
	KW_THREAD_LOCAL

	numTokenTypes
)

var tokenNames = [numTokenTypes]string{
	EOF:     "EOF",
	ILLEGAL: "INVALID",
	INT:     "integer constant",
	CHAR:    "character constant",
	STRING:  "string-literal",
	COMMENT: "comment",
	IDENT:   "identifier",

	LBRACK:     "[",
	RBRACK:     "]",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACE:     "{",
	RBRACE:     "}",
	DOT:        ".",
	ARROW:      "->",
	INC:        "++",
	DEC:        "--",
	AMP:        "&",
	STAR:       "*",
	PLUS:       "+",
	MINUS:      "-",
	TILDE:      "~",
	BANG:       "!",
	SLASH:      "/",
	PERCENT:    "%",
	SHL:        "<<",
	SHR:        ">>",
	LT:         "<",
	GT:         ">",
	LE:         "<=",
	GE:         ">=",
	EQEQ:       "==",
	NEQ:        "!=",
	CARET:      "^",
	PIPE:       "|",
	ANDAND:     "&&",
	OROR:       "||",
	QUESTION:   "?",
	COLON:      ":",
	SEMI:       ";",
	ELLIPSIS:   "...",
	ASSIGN:     "=",
	MUL_ASSIGN: "*=",
	DIV_ASSIGN: "/=",
	MOD_ASSIGN: "%=",
	ADD_ASSIGN: "+=",
	SUB_ASSIGN: "-=",
	SHL_ASSIGN: "<<=",
	SHR_ASSIGN: ">>=",
	AND_ASSIGN: "&=",
	XOR_ASSIGN: "^=",
	OR_ASSIGN:  "|=",
	COMMA:      ",",
	HASH:       "#",
	HASHHASH:   "##",

	KW_AUTO:          "auto",
	KW_BREAK:         "break",
	KW_CASE:          "case",
	KW_CHAR:          "char",
	KW_CONST:         "const",
	KW_CONTINUE:      "continue",
	KW_DEFAULT:       "default",
	KW_DO:            "do",
	KW_DOUBLE:        "double",
	KW_ELSE:          "else",
	KW_ENUM:          "enum",
	KW_EXTERN:        "extern",
	KW_FLOAT:         "float",
	KW_FOR:           "for",
	KW_GOTO:          "goto",
	KW_IF:            "if",
	KW_INLINE:        "inline",
	KW_INT:           "int",
	KW_LONG:          "long",
	KW_REGISTER:      "register",
	KW_RESTRICT:      "restrict",
	KW_RETURN:        "return",
	KW_SHORT:         "short",
	KW_SIGNED:        "signed",
	KW_SIZEOF:        "sizeof",
	KW_STATIC:        "static",
	KW_STRUCT:        "struct",
	KW_SWITCH:        "switch",
	KW_TYPEDEF:       "typedef",
	KW_UNION:         "union",
	KW_UNSIGNED:      "unsigned",
	KW_VOID:          "void",
	KW_VOLATILE:      "volatile",
	KW_WHILE:         "while",
	KW_ALIGNAS:       "_Alignas",
	KW_ALIGNOF:       "_Alignof",
	KW_ATOMIC:        "_Atomic",
	KW_BOOL:          "_Bool",
	KW_COMPLEX:       "_Complex",
	KW_GENERIC:       "_Generic",
	KW_IMAGINARY:     "_Imaginary",
	KW_NORETURN:      "_Noreturn",
	KW_STATIC_ASSERT: "_Static_assert",
	KW_THREAD_LOCAL:  "_Thread_local",
}

var keywords = map[string]TokenType{}

func init() {
	for tt := KW_AUTO; tt <= KW_THREAD_LOCAL; tt++ {
		keywords[tokenNames[tt]] = tt
	}
}

// String returns the canonical spelling of punctuators and keywords and a
// description of every other class.
func (tt TokenType) String() string {
	if tt >= 0 && tt < numTokenTypes {
		return tokenNames[tt]
	}
	return "unknown"
}

func (tt TokenType) IsKeyword() bool {
	return tt >= KW_AUTO && tt <= KW_THREAD_LOCAL
}

func (tt TokenType) IsPunctuator() bool {
	return tt >= LBRACK && tt <= HASHHASH
}

// IsTypeSpecifier reports whether tt starts a type specifier this
// front end accepts.
func (tt TokenType) IsTypeSpecifier() bool {
	switch tt {
	case KW_VOID, KW_CHAR, KW_INT, KW_STRUCT, KW_UNION:
		return true
	}
	return false
}

type Token struct {
	Type TokenType
	Lex  string
	Pos  diag.Pos
	// Errors found while scanning, reported at Pos.
	Errors []string
}

func (t Token) Is(tt TokenType) bool {
	return t.Type == tt
}

// digraphs may be spelled differently in the source; the printed form keeps
// the source spelling for them.
func hasDigraph(tt TokenType) bool {
	switch tt {
	case LBRACK, RBRACK, LBRACE, RBRACE, HASH, HASHHASH:
		return true
	}
	return false
}

// Describe renders the token the way the tokenize mode prints it.
func (t Token) Describe() string {
	switch {
	case t.Type == INT || t.Type == CHAR:
		return "constant " + t.Lex
	case t.Type == STRING:
		return "string-literal " + t.Lex
	case t.Type == IDENT:
		return "identifier " + t.Lex
	case t.Type.IsPunctuator():
		if hasDigraph(t.Type) {
			return "punctuator " + t.Lex
		}
		return "punctuator " + t.Type.String()
	case t.Type.IsKeyword():
		return "keyword " + t.Type.String()
	}
	return t.Type.String()
}

// Text is the spelling used in parser diagnostics.
func (t Token) Text() string {
	if t.Type == EOF {
		return "EOF"
	}
	return t.Lex
}
