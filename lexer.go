// lexer.go — source text to token stream.
//
// The scanner walks the source as a slice of Unicode scalars, tracking
// 1-based line/column. Every token records the position of its first
// character. Two-character operators win over their single-character
// prefixes. "//" comments run to the next newline without consuming it,
// so the main loop still advances the line counter. String literals may
// span lines; an unterminated string reports the opening quote's
// location. The stream always ends in exactly one EOF sentinel.
package aslang

import "strconv"

// Lexer scans one source string into tokens.
type Lexer struct {
	src  []rune
	pos  int
	line int
	col  int
	toks []Token
}

// NewLexer returns a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

// Tokenize is a convenience wrapper: lex the whole of src in one call.
func Tokenize(src string) ([]Token, error) {
	return NewLexer(src).Scan()
}

// Scan consumes the entire input and returns the token stream terminated
// by a single EOF token, or a SyntaxError at the offending character.
func (l *Lexer) Scan() ([]Token, error) {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		startLine, startCol := l.line, l.col

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.advance()
		case ch == '\n':
			l.advanceLine()

		case ch == '(':
			l.emitSimple(LPAREN, "(")
		case ch == ')':
			l.emitSimple(RPAREN, ")")
		case ch == '{':
			l.emitSimple(LBRACE, "{")
		case ch == '}':
			l.emitSimple(RBRACE, "}")
		case ch == '[':
			l.emitSimple(LBRACKET, "[")
		case ch == ']':
			l.emitSimple(RBRACKET, "]")
		case ch == ',':
			l.emitSimple(COMMA, ",")
		case ch == ';':
			l.emitSimple(SEMICOLON, ";")
		case ch == ':':
			l.emitSimple(COLON, ":")

		case ch == '+':
			if l.matchNext('+') {
				l.emitAt(INC, "++", startLine, startCol)
			} else {
				l.emitAt(PLUS, "+", startLine, startCol)
			}
		case ch == '-':
			if l.matchNext('-') {
				l.emitAt(DEC, "--", startLine, startCol)
			} else {
				l.emitAt(MINUS, "-", startLine, startCol)
			}
		case ch == '*':
			l.emitSimple(STAR, "*")
		case ch == '/':
			if l.peekNext() == '/' {
				l.skipComment()
			} else {
				l.emitSimple(SLASH, "/")
			}
		case ch == '%':
			l.emitSimple(PERCENT, "%")
		case ch == '^':
			l.emitSimple(CARET, "^")
		case ch == '=':
			if l.matchNext('=') {
				l.emitAt(EQ, "==", startLine, startCol)
			} else {
				l.emitAt(ASSIGN, "=", startLine, startCol)
			}
		case ch == '!':
			if l.matchNext('=') {
				l.emitAt(NE, "!=", startLine, startCol)
			} else {
				l.emitAt(NOT, "!", startLine, startCol)
			}
		case ch == '<':
			if l.matchNext('=') {
				l.emitAt(LE, "<=", startLine, startCol)
			} else if l.pos < len(l.src) && l.src[l.pos] == '<' {
				l.advance()
				l.emitAt(LSHIFT, "<<", startLine, startCol)
			} else {
				l.emitAt(LT, "<", startLine, startCol)
			}
		case ch == '>':
			if l.matchNext('=') {
				l.emitAt(GE, ">=", startLine, startCol)
			} else if l.pos < len(l.src) && l.src[l.pos] == '>' {
				l.advance()
				l.emitAt(RSHIFT, ">>", startLine, startCol)
			} else {
				l.emitAt(GT, ">", startLine, startCol)
			}
		case ch == '&':
			if l.matchNext('&') {
				l.emitAt(AND, "&&", startLine, startCol)
			} else {
				l.emitAt(BITAND, "&", startLine, startCol)
			}
		case ch == '|':
			if l.matchNext('|') {
				l.emitAt(OR, "||", startLine, startCol)
			} else {
				l.emitAt(BITOR, "|", startLine, startCol)
			}

		case ch == '"':
			if err := l.readString(); err != nil {
				return nil, err
			}
		case isDigit(ch):
			if err := l.readNumber(); err != nil {
				return nil, err
			}
		case isAlpha(ch):
			l.readIdentifier()

		default:
			return nil, NewError(SyntaxError,
				"Unexpected character: "+string(ch),
				Loc(l.line, l.col))
		}
	}

	l.toks = append(l.toks, Token{Type: EOF, Line: l.line, Col: l.col})
	return l.toks, nil
}

func (l *Lexer) advance() {
	l.pos++
	l.col++
}

func (l *Lexer) advanceLine() {
	l.pos++
	l.line++
	l.col = 1
}

// matchNext reports whether the character after the current one is
// expected. On a match both characters are consumed; otherwise only the
// current one is.
func (l *Lexer) matchNext(expected rune) bool {
	if l.pos+1 < len(l.src) && l.src[l.pos+1] == expected {
		l.advance()
		l.advance()
		return true
	}
	l.advance()
	return false
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) emitSimple(t TokenType, lexeme string) {
	l.toks = append(l.toks, Token{Type: t, Lexeme: lexeme, Line: l.line, Col: l.col})
	l.advance()
}

func (l *Lexer) emitAt(t TokenType, lexeme string, line, col int) {
	l.toks = append(l.toks, Token{Type: t, Lexeme: lexeme, Line: line, Col: col})
}

// skipComment discards "//" to the next newline. The newline is left for
// the main loop so the line counter still advances.
func (l *Lexer) skipComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
		l.col++
	}
}

func (l *Lexer) readString() error {
	startLine, startCol := l.line, l.col
	l.advance() // opening quote

	var value []rune
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		if l.src[l.pos] == '\n' {
			value = append(value, '\n')
			l.advanceLine()
		} else {
			value = append(value, l.src[l.pos])
			l.advance()
		}
	}

	if l.pos >= len(l.src) {
		return NewError(SyntaxError, "Unterminated string literal", Loc(startLine, startCol))
	}

	l.advance() // closing quote
	s := string(value)
	l.emitAt(STRING, `"`+s+`"`, startLine, startCol)
	l.toks[len(l.toks)-1].Literal = s
	return nil
}

func (l *Lexer) readNumber() error {
	startLine, startCol := l.line, l.col

	var raw []rune
	hasDot := false
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if isDigit(ch) {
			raw = append(raw, ch)
			l.advance()
		} else if ch == '.' && !hasDot {
			hasDot = true
			raw = append(raw, ch)
			l.advance()
		} else {
			break
		}
	}

	text := string(raw)
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return NewError(SyntaxError, "Invalid number: "+text, Loc(startLine, startCol))
	}
	l.emitAt(NUMBER, text, startLine, startCol)
	l.toks[len(l.toks)-1].Literal = n
	return nil
}

func (l *Lexer) readIdentifier() {
	startLine, startCol := l.line, l.col

	var raw []rune
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if isAlpha(ch) || isDigit(ch) {
			raw = append(raw, ch)
			l.advance()
		} else {
			break
		}
	}

	name := string(raw)
	switch {
	case name == "true" || name == "false":
		l.emitAt(BOOLEAN, name, startLine, startCol)
		l.toks[len(l.toks)-1].Literal = name == "true"
	default:
		if kw, ok := keywords[name]; ok {
			l.emitAt(kw, name, startLine, startCol)
		} else {
			l.emitAt(IDENT, name, startLine, startCol)
			l.toks[len(l.toks)-1].Literal = name
		}
	}
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
