// ast.go — statements and expressions produced by the parser.
//
// Every node records the line/column of its leading token so later
// stages (type checker, compiler spans) can report real locations.
// Nodes own their children exclusively; the tree has no sharing.
package aslang

// BinOp enumerates binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	// Reserved: lexed but not yet accepted by the expression grammar.
	OpBitAnd
	OpBitOr
	OpLShift
	OpRShift
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpModulo:
		return "%"
	case OpPower:
		return "^"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpLShift:
		return "<<"
	case OpRShift:
		return ">>"
	default:
		return "?"
	}
}

// UnOp enumerates unary operators. Increment, Decrement and BitNot are
// reserved for a future revision: the lexer knows "++"/"--" but the
// grammar does not accept them.
type UnOp int

const (
	OpNegate UnOp = iota
	OpNot
	OpBitNot
	OpIncrement
	OpDecrement
)

func (op UnOp) String() string {
	switch op {
	case OpNegate:
		return "-"
	case OpNot:
		return "!"
	case OpBitNot:
		return "~"
	case OpIncrement:
		return "++"
	case OpDecrement:
		return "--"
	default:
		return "?"
	}
}

// Expr is an expression node.
type Expr interface {
	exprNode()
	Pos() SourceLocation
}

// Stmt is a statement node.
type Stmt interface {
	stmtNode()
	Pos() SourceLocation
}

// Program is the root of a parse: the ordered top-level statements.
type Program struct {
	Statements []Stmt
}

// node carries the leading token's position, embedded by every AST node.
type node struct {
	Line int
	Col  int
}

func (n node) Pos() SourceLocation { return Loc(n.Line, n.Col) }

// ----- expressions -----

type NumberLit struct {
	node
	Value float64
}

type StringLit struct {
	node
	Value string
}

type BoolLit struct {
	node
	Value bool
}

type Ident struct {
	node
	Name string
}

type CallExpr struct {
	node
	Callee Expr
	Args   []Expr
}

type ArrayLit struct {
	node
	Elems []Expr
}

type IndexExpr struct {
	node
	Array Expr
	Index Expr
}

type BinaryExpr struct {
	node
	Left  Expr
	Op    BinOp
	Right Expr
}

type UnaryExpr struct {
	node
	Op      UnOp
	Operand Expr
}

type GroupExpr struct {
	node
	Inner Expr
}

func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*Ident) exprNode()      {}
func (*CallExpr) exprNode()   {}
func (*ArrayLit) exprNode()   {}
func (*IndexExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*GroupExpr) exprNode()  {}

// ----- statements -----

type LetStmt struct {
	node
	Name  string
	Type  *Type // optional annotation; nil when absent
	Value Expr
}

type OutputStmt struct {
	node
	Value Expr
}

type InputStmt struct {
	node
	Prompt Expr // optional string literal; nil when absent
	Target string
}

type FuncStmt struct {
	node
	Name   string
	Params []string
	Return *Type // optional annotation; nil when absent
	Body   []Stmt
}

// ElifArm is one "elseif cond { body }" arm of an if statement.
type ElifArm struct {
	Cond Expr
	Body []Stmt
}

type IfStmt struct {
	node
	Cond  Expr
	Then  []Stmt
	Elifs []ElifArm
	Else  []Stmt // nil when absent
}

type WhileStmt struct {
	node
	Cond Expr
	Body []Stmt
}

type ForStmt struct {
	node
	Init   Stmt // optional
	Cond   Expr // optional
	Update Stmt // optional
	Body   []Stmt
}

type BreakStmt struct{ node }

type ContinueStmt struct{ node }

type ReturnStmt struct {
	node
	Value Expr // optional
}

type ImportStmt struct {
	node
	Path string
}

type ExprStmt struct {
	node
	Value Expr
}

func (*LetStmt) stmtNode()      {}
func (*OutputStmt) stmtNode()   {}
func (*InputStmt) stmtNode()    {}
func (*FuncStmt) stmtNode()     {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()   {}
func (*ImportStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()     {}
