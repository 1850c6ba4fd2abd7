// token.go
package aslang

import "fmt"

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Literals & identifiers
	NUMBER
	STRING
	IDENT
	BOOLEAN

	// Keywords
	LET
	FN
	IF
	ELSE
	ELSEIF
	WHILE
	FOR
	DO
	BREAK
	CONTINUE
	RETURN
	OUTPUT
	INPUT
	IMPORT

	// Operators
	PLUS       // "+"
	MINUS      // "-"
	STAR       // "*"
	SLASH      // "/"
	PERCENT    // "%"
	CARET      // "^"
	ASSIGN     // "="
	EQ         // "=="
	NE         // "!="
	LT         // "<"
	LE         // "<="
	GT         // ">"
	GE         // ">="
	AND        // "&&"
	OR         // "||"
	NOT        // "!"
	BITAND     // "&"
	BITOR      // "|"
	LSHIFT     // "<<"
	RSHIFT     // ">>"
	INC        // "++" (reserved; lexed, not parsed)
	DEC        // "--" (reserved; lexed, not parsed)

	// Delimiters
	LPAREN    // "("
	RPAREN    // ")"
	LBRACE    // "{"
	RBRACE    // "}"
	LBRACKET  // "["
	RBRACKET  // "]"
	COMMA     // ","
	SEMICOLON // ";"
	COLON     // ":"
)

// Token is a lexical token with optional literal value and the 1-based
// line/column where it started.
type Token struct {
	Type    TokenType
	Lexeme  string // raw text slice
	Literal any    // float64 for NUMBER, string for STRING/IDENT, bool for BOOLEAN
	Line    int
	Col     int
}

// keywords map
var keywords = map[string]TokenType{
	"let":      LET,
	"fn":       FN,
	"if":       IF,
	"else":     ELSE,
	"elseif":   ELSEIF,
	"while":    WHILE,
	"for":      FOR,
	"do":       DO,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
	"output":   OUTPUT,
	"input":    INPUT,
	"import":   IMPORT,
}

var tokenNames = map[TokenType]string{
	EOF:       "EOF",
	NUMBER:    "NUMBER",
	STRING:    "STRING",
	IDENT:     "IDENT",
	BOOLEAN:   "BOOLEAN",
	LET:       "let",
	FN:        "fn",
	IF:        "if",
	ELSE:      "else",
	ELSEIF:    "elseif",
	WHILE:     "while",
	FOR:       "for",
	DO:        "do",
	BREAK:     "break",
	CONTINUE:  "continue",
	RETURN:    "return",
	OUTPUT:    "output",
	INPUT:     "input",
	IMPORT:    "import",
	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
	CARET:     "^",
	ASSIGN:    "=",
	EQ:        "==",
	NE:        "!=",
	LT:        "<",
	LE:        "<=",
	GT:        ">",
	GE:        ">=",
	AND:       "&&",
	OR:        "||",
	NOT:       "!",
	BITAND:    "&",
	BITOR:     "|",
	LSHIFT:    "<<",
	RSHIFT:    ">>",
	INC:       "++",
	DEC:       "--",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COMMA:     ",",
	SEMICOLON: ";",
	COLON:     ":",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Describe renders a token the way diagnostics refer to it: keyword and
// operator tokens by their spelling, literal tokens by kind and value.
func (t Token) Describe() string {
	switch t.Type {
	case NUMBER, BOOLEAN:
		return t.Lexeme
	case STRING:
		return fmt.Sprintf("string %q", t.Literal)
	case IDENT:
		return fmt.Sprintf("identifier %q", t.Literal)
	case EOF:
		return "end of input"
	default:
		return fmt.Sprintf("'%s'", t.Type)
	}
}
