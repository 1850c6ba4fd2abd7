// compiler.go — one-pass AST to bytecode lowering.
//
// OVERVIEW
// --------
// The compiler walks the tree once and appends typed opcodes with inline
// operands to a flat Chunk; addresses are indices into that vector.
// Control flow uses absolute jumps emitted with a placeholder target and
// patched to the current instruction index once the destination is
// known. break/continue are lowered the same way through a loop-context
// stack; continue inside a for loop targets the update clause.
//
// Function bodies live inline in the main stream behind a skip jump, so
// straight-line execution never falls into them. The entry address and
// parameter names of each function are recorded in Chunk.Funcs for the
// VM's Call dispatch.
//
// Every emitted instruction carries a source location in Chunk.Spans
// (parallel to Chunk.Code), which is how VM errors report real
// line/column positions.
package aslang

// Opcode identifies one VM instruction.
type Opcode uint8

const (
	LoadConst Opcode = iota // push Num
	LoadString              // push Str
	LoadBool                // push Bool
	LoadVar                 // push binding of Str
	StoreVar                // pop and bind Str
	Call                    // call Str with N args
	MakeArray               // pop N values, push array
	GetIndex                // pop idx, arr; push arr[idx]
	SetIndex                // pop value, idx, arr; store element
	Return                  // pop return value, restore caller PC
	Output                  // pop, print line
	Input                   // read line, push string
	Import                  // run program at path Str in this environment
	Add
	Subtract
	Multiply
	Divide
	Modulo
	Power
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	Not
	Negate
	Jump        // set PC to N
	JumpIfFalse // pop; set PC to N when falsy
	Pop         // pop and discard
)

var opcodeNames = [...]string{
	LoadConst: "LoadConst", LoadString: "LoadString", LoadBool: "LoadBool",
	LoadVar: "LoadVar", StoreVar: "StoreVar", Call: "Call",
	MakeArray: "MakeArray", GetIndex: "GetIndex", SetIndex: "SetIndex",
	Return: "Return", Output: "Output", Input: "Input", Import: "Import",
	Add: "Add", Subtract: "Subtract", Multiply: "Multiply", Divide: "Divide",
	Modulo: "Modulo", Power: "Power", Eq: "Eq", Ne: "Ne", Lt: "Lt", Le: "Le",
	Gt: "Gt", Ge: "Ge", And: "And", Or: "Or", Not: "Not", Negate: "Negate",
	Jump: "Jump", JumpIfFalse: "JumpIfFalse", Pop: "Pop",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "Opcode(?)"
}

// Instr is one typed instruction with inline operands. Which operand
// field is meaningful depends on Op; the rest stay zero.
type Instr struct {
	Op   Opcode
	Num  float64 // LoadConst
	Str  string  // LoadString / LoadVar / StoreVar / Call / Import
	Bool bool    // LoadBool
	N    int     // MakeArray count, Call argc, jump target
}

// FuncInfo records a compiled user function: its entry address and the
// parameter names Call binds, in source order.
type FuncInfo struct {
	Entry  int
	Params []string
}

// Chunk is the compiled form of one program. Spans runs parallel to
// Code: Spans[i] is the source location of the construct that emitted
// Code[i].
type Chunk struct {
	Code  []Instr
	Spans []SourceLocation
	Funcs map[string]FuncInfo
}

// CompileProgram lowers a checked AST to bytecode.
func CompileProgram(prog *Program) (*Chunk, error) {
	c := &compiler{chunk: &Chunk{Funcs: map[string]FuncInfo{}}}
	for _, stmt := range prog.Statements {
		if err := c.statement(stmt); err != nil {
			return nil, err
		}
	}
	return c.chunk, nil
}

type loopCtx struct {
	// continueTarget is the backward target when already known (while
	// loops); -1 means forward-patch via continues (for loops).
	continueTarget int
	breaks         []int
	continues      []int
}

type compiler struct {
	chunk *Chunk
	loops []*loopCtx
}

func (c *compiler) emit(in Instr, loc SourceLocation) int {
	c.chunk.Code = append(c.chunk.Code, in)
	c.chunk.Spans = append(c.chunk.Spans, loc)
	return len(c.chunk.Code) - 1
}

// patch overwrites the placeholder target of the jump at addr with the
// current instruction index.
func (c *compiler) patch(addr int) {
	c.chunk.Code[addr].N = len(c.chunk.Code)
}

func (c *compiler) patchTo(addr, target int) {
	c.chunk.Code[addr].N = target
}

func (c *compiler) here() int { return len(c.chunk.Code) }

// ----- statements -----

func (c *compiler) statement(stmt Stmt) error {
	switch s := stmt.(type) {
	case *LetStmt:
		if err := c.expression(s.Value); err != nil {
			return err
		}
		c.emit(Instr{Op: StoreVar, Str: s.Name}, s.Pos())
		return nil

	case *OutputStmt:
		if err := c.expression(s.Value); err != nil {
			return err
		}
		c.emit(Instr{Op: Output}, s.Pos())
		return nil

	case *InputStmt:
		if s.Prompt != nil {
			if err := c.expression(s.Prompt); err != nil {
				return err
			}
			c.emit(Instr{Op: Output}, s.Pos())
		}
		c.emit(Instr{Op: Input}, s.Pos())
		c.emit(Instr{Op: StoreVar, Str: s.Target}, s.Pos())
		return nil

	case *ImportStmt:
		c.emit(Instr{Op: Import, Str: s.Path}, s.Pos())
		return nil

	case *ExprStmt:
		if err := c.expression(s.Value); err != nil {
			return err
		}
		c.emit(Instr{Op: Pop}, s.Pos())
		return nil

	case *FuncStmt:
		// Skip jump so straight-line execution never enters the body.
		skip := c.emit(Instr{Op: Jump}, s.Pos())
		c.chunk.Funcs[s.Name] = FuncInfo{Entry: c.here(), Params: s.Params}
		if err := c.block(s.Body); err != nil {
			return err
		}
		// Implicit epilogue for bodies that fall off the end.
		c.emit(Instr{Op: LoadConst, Num: 0}, s.Pos())
		c.emit(Instr{Op: Return}, s.Pos())
		c.patch(skip)
		return nil

	case *IfStmt:
		var exits []int

		if err := c.expression(s.Cond); err != nil {
			return err
		}
		next := c.emit(Instr{Op: JumpIfFalse}, s.Cond.Pos())
		if err := c.block(s.Then); err != nil {
			return err
		}
		exits = append(exits, c.emit(Instr{Op: Jump}, s.Pos()))
		c.patch(next)

		for _, arm := range s.Elifs {
			if err := c.expression(arm.Cond); err != nil {
				return err
			}
			next = c.emit(Instr{Op: JumpIfFalse}, arm.Cond.Pos())
			if err := c.block(arm.Body); err != nil {
				return err
			}
			exits = append(exits, c.emit(Instr{Op: Jump}, s.Pos()))
			c.patch(next)
		}

		if s.Else != nil {
			if err := c.block(s.Else); err != nil {
				return err
			}
		}
		for _, exit := range exits {
			c.patch(exit)
		}
		return nil

	case *WhileStmt:
		loopStart := c.here()
		c.pushLoop(loopStart)
		if err := c.expression(s.Cond); err != nil {
			return err
		}
		exit := c.emit(Instr{Op: JumpIfFalse}, s.Cond.Pos())
		if err := c.block(s.Body); err != nil {
			return err
		}
		c.emit(Instr{Op: Jump, N: loopStart}, s.Pos())
		c.patch(exit)
		c.popLoop(c.here(), loopStart)
		return nil

	case *ForStmt:
		if s.Init != nil {
			if err := c.statement(s.Init); err != nil {
				return err
			}
		}
		loopStart := c.here()
		c.pushLoop(-1) // continue target is the update clause, patched later
		exit := -1
		if s.Cond != nil {
			if err := c.expression(s.Cond); err != nil {
				return err
			}
			exit = c.emit(Instr{Op: JumpIfFalse}, s.Cond.Pos())
		}
		if err := c.block(s.Body); err != nil {
			return err
		}
		updateStart := c.here()
		if s.Update != nil {
			if err := c.statement(s.Update); err != nil {
				return err
			}
		}
		c.emit(Instr{Op: Jump, N: loopStart}, s.Pos())
		if exit >= 0 {
			c.patch(exit)
		}
		c.popLoop(c.here(), updateStart)
		return nil

	case *BreakStmt:
		loop := c.currentLoop()
		if loop == nil {
			return NewError(SyntaxError, "'break' outside of loop", s.Pos())
		}
		loop.breaks = append(loop.breaks, c.emit(Instr{Op: Jump}, s.Pos()))
		return nil

	case *ContinueStmt:
		loop := c.currentLoop()
		if loop == nil {
			return NewError(SyntaxError, "'continue' outside of loop", s.Pos())
		}
		if loop.continueTarget >= 0 {
			c.emit(Instr{Op: Jump, N: loop.continueTarget}, s.Pos())
		} else {
			loop.continues = append(loop.continues, c.emit(Instr{Op: Jump}, s.Pos()))
		}
		return nil

	case *ReturnStmt:
		if s.Value != nil {
			if err := c.expression(s.Value); err != nil {
				return err
			}
		} else {
			c.emit(Instr{Op: LoadConst, Num: 0}, s.Pos())
		}
		c.emit(Instr{Op: Return}, s.Pos())
		return nil

	default:
		return NewError(SyntaxError, "Statement not supported by the compiler", stmt.Pos())
	}
}

func (c *compiler) block(stmts []Stmt) error {
	for _, stmt := range stmts {
		if err := c.statement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) pushLoop(continueTarget int) {
	c.loops = append(c.loops, &loopCtx{continueTarget: continueTarget})
}

// popLoop patches the loop's pending break jumps to breakTarget and its
// pending continue jumps to continueTarget.
func (c *compiler) popLoop(breakTarget, continueTarget int) {
	loop := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, addr := range loop.breaks {
		c.patchTo(addr, breakTarget)
	}
	for _, addr := range loop.continues {
		c.patchTo(addr, continueTarget)
	}
}

func (c *compiler) currentLoop() *loopCtx {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}

// ----- expressions -----

// expression compiles post-order: subexpressions left to right, then the
// operator opcode.
func (c *compiler) expression(expr Expr) error {
	switch e := expr.(type) {
	case *NumberLit:
		c.emit(Instr{Op: LoadConst, Num: e.Value}, e.Pos())
	case *StringLit:
		c.emit(Instr{Op: LoadString, Str: e.Value}, e.Pos())
	case *BoolLit:
		c.emit(Instr{Op: LoadBool, Bool: e.Value}, e.Pos())
	case *Ident:
		c.emit(Instr{Op: LoadVar, Str: e.Name}, e.Pos())

	case *BinaryExpr:
		if err := c.expression(e.Left); err != nil {
			return err
		}
		if err := c.expression(e.Right); err != nil {
			return err
		}
		op, ok := binaryOpcode(e.Op)
		if !ok {
			return NewError(SyntaxError,
				"Operator "+e.Op.String()+" is not supported", e.Pos())
		}
		c.emit(Instr{Op: op}, e.Pos())

	case *UnaryExpr:
		if err := c.expression(e.Operand); err != nil {
			return err
		}
		switch e.Op {
		case OpNegate:
			c.emit(Instr{Op: Negate}, e.Pos())
		case OpNot:
			c.emit(Instr{Op: Not}, e.Pos())
		default:
			return NewError(SyntaxError,
				"Operator "+e.Op.String()+" is not supported", e.Pos())
		}

	case *CallExpr:
		id, ok := e.Callee.(*Ident)
		if !ok {
			return NewError(SyntaxError, "Only named functions can be called", e.Pos())
		}
		for _, arg := range e.Args {
			if err := c.expression(arg); err != nil {
				return err
			}
		}
		c.emit(Instr{Op: Call, Str: id.Name, N: len(e.Args)}, e.Pos())

	case *ArrayLit:
		for _, elem := range e.Elems {
			if err := c.expression(elem); err != nil {
				return err
			}
		}
		c.emit(Instr{Op: MakeArray, N: len(e.Elems)}, e.Pos())

	case *IndexExpr:
		if err := c.expression(e.Array); err != nil {
			return err
		}
		if err := c.expression(e.Index); err != nil {
			return err
		}
		c.emit(Instr{Op: GetIndex}, e.Pos())

	case *GroupExpr:
		return c.expression(e.Inner)

	default:
		return NewError(SyntaxError, "Expression not supported by the compiler", expr.Pos())
	}
	return nil
}

func binaryOpcode(op BinOp) (Opcode, bool) {
	switch op {
	case OpAdd:
		return Add, true
	case OpSubtract:
		return Subtract, true
	case OpMultiply:
		return Multiply, true
	case OpDivide:
		return Divide, true
	case OpModulo:
		return Modulo, true
	case OpPower:
		return Power, true
	case OpEq:
		return Eq, true
	case OpNe:
		return Ne, true
	case OpLt:
		return Lt, true
	case OpLe:
		return Le, true
	case OpGt:
		return Gt, true
	case OpGe:
		return Ge, true
	case OpAnd:
		return And, true
	case OpOr:
		return Or, true
	default:
		return 0, false
	}
}
