// parser.go — token stream to AST.
//
// OVERVIEW
// --------
// Statements are parsed by recursive descent keyed on the leading
// keyword; expressions by precedence climbing (Pratt). The ladder, low
// to high:
//
//	assignment (reserved) < || < && < equality < comparison
//	< term < factor < power < unary < call/index < primary
//
// All infix operators are left-associative except '^' (power), which is
// right-associative. '=' outside a let, '++'/'--', and the bitwise
// operators '& | << >>' are lexed but carry no prefix/infix rule, so
// using them in an expression reports a SyntaxError at that token.
//
// Every error carries the offending token's line/column. The returned
// tree contains no parser-internal sentinels.
package aslang

// Precedence levels for the Pratt expression parser.
type precedence int

const (
	precNone precedence = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precPower
	precUnary
	precCall
	precPrimary
)

// Parser consumes a token stream and produces a Program.
type Parser struct {
	tokens  []Token
	current int
}

// Parse lexes and parses src in one step.
func Parse(src string) (*Program, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses an already-lexed stream. The stream must end in an
// EOF sentinel (Tokenize guarantees this).
func ParseTokens(tokens []Token) (*Program, error) {
	p := &Parser{tokens: tokens}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*Program, error) {
	prog := &Program{}
	for !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

// ----- statements -----

func (p *Parser) parseStatement() (Stmt, error) {
	switch p.peek().Type {
	case LET:
		return p.parseLet()
	case OUTPUT:
		return p.parseOutput()
	case INPUT:
		return p.parseInput()
	case FN:
		return p.parseFunction()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case BREAK:
		tok := p.advance()
		p.consumeSemicolon()
		return &BreakStmt{node: at(tok)}, nil
	case CONTINUE:
		tok := p.advance()
		p.consumeSemicolon()
		return &ContinueStmt{node: at(tok)}, nil
	case RETURN:
		return p.parseReturn()
	case IMPORT:
		return p.parseImport()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLet() (Stmt, error) {
	tok := p.advance() // let

	name := p.advance()
	if name.Type != IDENT {
		return nil, p.errAt(name, "Expected variable name")
	}

	var ann *Type
	if p.peek().Type == COLON {
		p.advance()
		t, err := p.parseTypeAnn()
		if err != nil {
			return nil, err
		}
		ann = &t
	}

	if eq := p.advance(); eq.Type != ASSIGN {
		return nil, p.errAt(eq, "Expected '=' after variable name")
	}

	value, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	p.consumeSemicolon()

	return &LetStmt{node: at(tok), Name: name.Literal.(string), Type: ann, Value: value}, nil
}

func (p *Parser) parseOutput() (Stmt, error) {
	tok := p.advance() // output
	expr, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	p.consumeSemicolon()
	return &OutputStmt{node: at(tok), Value: expr}, nil
}

func (p *Parser) parseInput() (Stmt, error) {
	tok := p.advance() // input

	var prompt Expr
	if p.peek().Type == STRING {
		s := p.advance()
		prompt = &StringLit{node: at(s), Value: s.Literal.(string)}
	}

	target := p.advance()
	if target.Type != IDENT {
		return nil, p.errAt(target, "Expected variable name for input target")
	}
	p.consumeSemicolon()

	return &InputStmt{node: at(tok), Prompt: prompt, Target: target.Literal.(string)}, nil
}

func (p *Parser) parseFunction() (Stmt, error) {
	tok := p.advance() // fn

	name := p.advance()
	if name.Type != IDENT {
		return nil, p.errAt(name, "Expected function name")
	}
	if lp := p.advance(); lp.Type != LPAREN {
		return nil, p.errAt(lp, "Expected '(' after function name")
	}

	var params []string
	if p.peek().Type != RPAREN {
		for {
			param := p.advance()
			if param.Type != IDENT {
				return nil, p.errAt(param, "Expected parameter name")
			}
			params = append(params, param.Literal.(string))
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if rp := p.advance(); rp.Type != RPAREN {
		return nil, p.errAt(rp, "Expected ')' after parameters")
	}

	var ret *Type
	if p.peek().Type == COLON {
		p.advance()
		t, err := p.parseTypeAnn()
		if err != nil {
			return nil, err
		}
		ret = &t
	}

	if lb := p.advance(); lb.Type != LBRACE {
		return nil, p.errAt(lb, "Expected '{' before function body")
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &FuncStmt{node: at(tok), Name: name.Literal.(string), Params: params, Return: ret, Body: body}, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	tok := p.advance() // if

	cond, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	if lb := p.advance(); lb.Type != LBRACE {
		return nil, p.errAt(lb, "Expected '{' after if condition")
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{node: at(tok), Cond: cond, Then: then}

	for p.peek().Type == ELSEIF {
		p.advance()
		elifCond, err := p.parseExpression(precNone)
		if err != nil {
			return nil, err
		}
		if lb := p.advance(); lb.Type != LBRACE {
			return nil, p.errAt(lb, "Expected '{' after elseif condition")
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Elifs = append(stmt.Elifs, ElifArm{Cond: elifCond, Body: body})
	}

	if p.peek().Type == ELSE {
		p.advance()
		if lb := p.advance(); lb.Type != LBRACE {
			return nil, p.errAt(lb, "Expected '{' after else")
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = body
	}

	return stmt, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	tok := p.advance() // while

	cond, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	if lb := p.advance(); lb.Type != LBRACE {
		return nil, p.errAt(lb, "Expected '{' after while condition")
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{node: at(tok), Cond: cond, Body: body}, nil
}

// for (init? ; cond? ; update?) { body }
func (p *Parser) parseFor() (Stmt, error) {
	tok := p.advance() // for
	if lp := p.advance(); lp.Type != LPAREN {
		return nil, p.errAt(lp, "Expected '(' after for")
	}

	stmt := &ForStmt{node: at(tok)}

	if p.peek().Type == SEMICOLON {
		p.advance()
	} else {
		init, err := p.parseStatement() // eats its optional ';'
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	}

	if p.peek().Type != SEMICOLON {
		cond, err := p.parseExpression(precNone)
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	p.consumeSemicolon()

	if p.peek().Type != RPAREN {
		update, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Update = update
	}

	if rp := p.advance(); rp.Type != RPAREN {
		return nil, p.errAt(rp, "Expected ')' after for clauses")
	}
	if lb := p.advance(); lb.Type != LBRACE {
		return nil, p.errAt(lb, "Expected '{' before for body")
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

func (p *Parser) parseReturn() (Stmt, error) {
	tok := p.advance() // return
	stmt := &ReturnStmt{node: at(tok)}

	switch p.peek().Type {
	case SEMICOLON, RBRACE, EOF:
	default:
		value, err := p.parseExpression(precNone)
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	p.consumeSemicolon()
	return stmt, nil
}

func (p *Parser) parseImport() (Stmt, error) {
	tok := p.advance() // import
	path := p.advance()
	if path.Type != STRING {
		return nil, p.errAt(path, "Expected string literal import path")
	}
	p.consumeSemicolon()
	return &ImportStmt{node: at(tok), Path: path.Literal.(string)}, nil
}

// parseBlock reads statements up to and including the closing '}'.
// The opening '{' has already been consumed by the caller.
func (p *Parser) parseBlock() ([]Stmt, error) {
	var stmts []Stmt
	for p.peek().Type != RBRACE && !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if rb := p.advance(); rb.Type != RBRACE {
		return nil, p.errAt(rb, "Expected '}'")
	}
	return stmts, nil
}

func (p *Parser) parseExpressionStatement() (Stmt, error) {
	tok := p.peek()
	expr, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	p.consumeSemicolon()
	return &ExprStmt{node: at(tok), Value: expr}, nil
}

// Type annotation grammar: Number | String | Boolean | Any | Void | [T]
func (p *Parser) parseTypeAnn() (Type, error) {
	tok := p.advance()
	switch tok.Type {
	case IDENT:
		switch tok.Literal.(string) {
		case "Number":
			return NumberType, nil
		case "String":
			return StringType, nil
		case "Boolean":
			return BooleanType, nil
		case "Any":
			return AnyType, nil
		case "Void":
			return VoidType, nil
		}
		return UnknownType, p.errAt(tok, "Unknown type name "+tok.Literal.(string))
	case LBRACKET:
		elem, err := p.parseTypeAnn()
		if err != nil {
			return UnknownType, err
		}
		if rb := p.advance(); rb.Type != RBRACKET {
			return UnknownType, p.errAt(rb, "Expected ']' in array type")
		}
		return ArrayOf(elem), nil
	default:
		return UnknownType, p.errAt(tok, "Expected type name")
	}
}

// ----- expressions (Pratt) -----

func (p *Parser) parseExpression(prec precedence) (Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for prec < p.precedenceOf(p.peek().Type) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parsePrefix() (Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case NUMBER:
		return &NumberLit{node: at(tok), Value: tok.Literal.(float64)}, nil
	case STRING:
		return &StringLit{node: at(tok), Value: tok.Literal.(string)}, nil
	case BOOLEAN:
		return &BoolLit{node: at(tok), Value: tok.Literal.(bool)}, nil
	case IDENT:
		return &Ident{node: at(tok), Name: tok.Literal.(string)}, nil
	case LPAREN:
		inner, err := p.parseExpression(precNone)
		if err != nil {
			return nil, err
		}
		if rp := p.advance(); rp.Type != RPAREN {
			return nil, p.errAt(rp, "Expected ')'")
		}
		return &GroupExpr{node: at(tok), Inner: inner}, nil
	case LBRACKET:
		return p.parseArray(tok)
	case MINUS:
		return p.parseUnary(tok, OpNegate)
	case NOT:
		return p.parseUnary(tok, OpNot)
	default:
		return nil, p.errAt(tok, "Expected expression, found "+tok.Describe())
	}
}

func (p *Parser) parseUnary(tok Token, op UnOp) (Expr, error) {
	operand, err := p.parseExpression(precUnary)
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{node: at(tok), Op: op, Operand: operand}, nil
}

func (p *Parser) parseArray(tok Token) (Expr, error) {
	lit := &ArrayLit{node: at(tok)}
	if p.peek().Type != RBRACKET {
		for {
			elem, err := p.parseExpression(precNone)
			if err != nil {
				return nil, err
			}
			lit.Elems = append(lit.Elems, elem)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if rb := p.advance(); rb.Type != RBRACKET {
		return nil, p.errAt(rb, "Expected ']'")
	}
	return lit, nil
}

func (p *Parser) parseInfix(left Expr) (Expr, error) {
	tok := p.advance()
	switch tok.Type {
	case PLUS:
		return p.binary(left, tok, OpAdd)
	case MINUS:
		return p.binary(left, tok, OpSubtract)
	case STAR:
		return p.binary(left, tok, OpMultiply)
	case SLASH:
		return p.binary(left, tok, OpDivide)
	case PERCENT:
		return p.binary(left, tok, OpModulo)
	case CARET:
		// Right-associative: parse the right side one level below power.
		right, err := p.parseExpression(precPower - 1)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{node: at(tok), Left: left, Op: OpPower, Right: right}, nil
	case EQ:
		return p.binary(left, tok, OpEq)
	case NE:
		return p.binary(left, tok, OpNe)
	case LT:
		return p.binary(left, tok, OpLt)
	case LE:
		return p.binary(left, tok, OpLe)
	case GT:
		return p.binary(left, tok, OpGt)
	case GE:
		return p.binary(left, tok, OpGe)
	case AND:
		return p.binary(left, tok, OpAnd)
	case OR:
		return p.binary(left, tok, OpOr)
	case LPAREN:
		return p.parseCall(left, tok)
	case LBRACKET:
		return p.parseIndex(left, tok)
	default:
		return nil, p.errAt(tok, "Unknown infix operator "+tok.Describe())
	}
}

func (p *Parser) binary(left Expr, tok Token, op BinOp) (Expr, error) {
	right, err := p.parseExpression(p.precedenceOf(tok.Type))
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{node: at(tok), Left: left, Op: op, Right: right}, nil
}

func (p *Parser) parseCall(callee Expr, tok Token) (Expr, error) {
	call := &CallExpr{node: at(tok), Callee: callee}
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression(precNone)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if rp := p.advance(); rp.Type != RPAREN {
		return nil, p.errAt(rp, "Expected ')' after arguments")
	}
	return call, nil
}

func (p *Parser) parseIndex(array Expr, tok Token) (Expr, error) {
	index, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	if rb := p.advance(); rb.Type != RBRACKET {
		return nil, p.errAt(rb, "Expected ']'")
	}
	return &IndexExpr{node: at(tok), Array: array, Index: index}, nil
}

func (p *Parser) precedenceOf(t TokenType) precedence {
	switch t {
	case OR:
		return precOr
	case AND:
		return precAnd
	case EQ, NE:
		return precEquality
	case LT, LE, GT, GE:
		return precComparison
	case PLUS, MINUS:
		return precTerm
	case STAR, SLASH, PERCENT:
		return precFactor
	case CARET:
		return precPower
	case LPAREN, LBRACKET:
		return precCall
	default:
		return precNone
	}
}

// ----- plumbing -----

func at(tok Token) node { return node{Line: tok.Line, Col: tok.Col} }

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		// Clamp to the EOF sentinel so reported locations stay real.
		if n := len(p.tokens); n > 0 {
			return p.tokens[n-1]
		}
		return Token{Type: EOF, Line: 1, Col: 1}
	}
	return p.tokens[p.current]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}

func (p *Parser) atEnd() bool { return p.peek().Type == EOF }

// Semicolons after simple statements are accepted but never required.
func (p *Parser) consumeSemicolon() {
	if p.peek().Type == SEMICOLON {
		p.advance()
	}
}

func (p *Parser) errAt(tok Token, msg string) *Error {
	return NewError(SyntaxError, msg, Loc(tok.Line, tok.Col))
}
