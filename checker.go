// checker.go — structural pre-pass that assigns a type to every
// expression and rejects obviously ill-typed programs before the
// compiler runs.
//
// The checker keeps one flat symbol table, no nested scopes; function
// parameters are bound as Any around the body and the shadowed entries
// restored afterwards. Imports are resolved and checked
// transitively, exactly once per canonical path.
package aslang

import "fmt"

// TypeChecker walks a Program once, maintaining a flat symbol table.
type TypeChecker struct {
	variables map[string]Type
	functions map[string]Type
	resolver  *Resolver
	visited   map[string]bool

	// currentFile anchors relative import paths; empty for anonymous
	// sources (REPL, Execute on a raw string).
	currentFile string
	// currentReturn is the declared return type while inside a function
	// body with an annotation, nil otherwise.
	currentReturn *Type
}

// NewTypeChecker returns a checker with an empty symbol table.
func NewTypeChecker() *TypeChecker {
	return &TypeChecker{
		variables: map[string]Type{},
		functions: map[string]Type{},
		resolver:  NewResolver(),
		visited:   map[string]bool{},
	}
}

// SetFile anchors relative import resolution to the given source file.
func (tc *TypeChecker) SetFile(path string) { tc.currentFile = path }

// Check type-checks a whole program. The first violation aborts the pass.
func (tc *TypeChecker) Check(prog *Program) error {
	for _, stmt := range prog.Statements {
		if err := tc.checkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (tc *TypeChecker) checkStatement(stmt Stmt) error {
	switch s := stmt.(type) {
	case *LetStmt:
		inferred, err := tc.infer(s.Value)
		if err != nil {
			return err
		}
		if s.Type != nil {
			if !s.Type.Compatible(inferred) {
				return NewError(TypeError,
					fmt.Sprintf("Type mismatch: expected %s, got %s", s.Type, inferred),
					s.Pos())
			}
			tc.variables[s.Name] = *s.Type
		} else {
			tc.variables[s.Name] = inferred
		}
		return nil

	case *OutputStmt:
		_, err := tc.infer(s.Value)
		return err

	case *InputStmt:
		if s.Prompt != nil {
			if _, err := tc.infer(s.Prompt); err != nil {
				return err
			}
		}
		tc.variables[s.Target] = StringType
		return nil

	case *IfStmt:
		if err := tc.checkCondition(s.Cond, "If"); err != nil {
			return err
		}
		if err := tc.checkBlock(s.Then); err != nil {
			return err
		}
		for _, arm := range s.Elifs {
			if err := tc.checkCondition(arm.Cond, "Elseif"); err != nil {
				return err
			}
			if err := tc.checkBlock(arm.Body); err != nil {
				return err
			}
		}
		return tc.checkBlock(s.Else)

	case *WhileStmt:
		if err := tc.checkCondition(s.Cond, "While"); err != nil {
			return err
		}
		return tc.checkBlock(s.Body)

	case *ForStmt:
		if s.Init != nil {
			if err := tc.checkStatement(s.Init); err != nil {
				return err
			}
		}
		if s.Cond != nil {
			if err := tc.checkCondition(s.Cond, "For"); err != nil {
				return err
			}
		}
		if err := tc.checkBlock(s.Body); err != nil {
			return err
		}
		if s.Update != nil {
			return tc.checkStatement(s.Update)
		}
		return nil

	case *FuncStmt:
		params := make([]Type, len(s.Params))
		for i := range params {
			params[i] = AnyType
		}
		ret := AnyType
		if s.Return != nil {
			ret = *s.Return
		}
		tc.functions[s.Name] = FuncOf(params, ret)

		// Bind parameters as Any for the body; the table is flat, so
		// shadowed outer entries are saved and restored.
		saved := make(map[string]*Type, len(s.Params))
		for _, p := range s.Params {
			if prev, ok := tc.variables[p]; ok {
				cp := prev
				saved[p] = &cp
			} else {
				saved[p] = nil
			}
			tc.variables[p] = AnyType
		}
		prevRet := tc.currentReturn
		tc.currentReturn = s.Return

		err := tc.checkBlock(s.Body)

		tc.currentReturn = prevRet
		for name, prev := range saved {
			if prev == nil {
				delete(tc.variables, name)
			} else {
				tc.variables[name] = *prev
			}
		}
		return err

	case *ReturnStmt:
		got := VoidType
		if s.Value != nil {
			t, err := tc.infer(s.Value)
			if err != nil {
				return err
			}
			got = t
		}
		if tc.currentReturn != nil && !tc.currentReturn.Compatible(got) {
			return NewError(TypeError,
				fmt.Sprintf("Return type mismatch: expected %s, got %s", tc.currentReturn, got),
				s.Pos())
		}
		return nil

	case *ImportStmt:
		return tc.checkImport(s)

	case *BreakStmt, *ContinueStmt:
		return nil

	case *ExprStmt:
		_, err := tc.infer(s.Value)
		return err

	default:
		return nil
	}
}

func (tc *TypeChecker) checkBlock(stmts []Stmt) error {
	for _, stmt := range stmts {
		if err := tc.checkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (tc *TypeChecker) checkCondition(cond Expr, construct string) error {
	t, err := tc.infer(cond)
	if err != nil {
		return err
	}
	if t.Kind != TypeBoolean && t.Kind != TypeAny {
		return NewError(TypeError,
			fmt.Sprintf("%s condition must be Boolean, got %s", construct, t),
			cond.Pos())
	}
	return nil
}

// checkImport resolves the path and checks the imported program exactly
// once per canonical path; the visited set also breaks import cycles.
func (tc *TypeChecker) checkImport(s *ImportStmt) error {
	resolved, err := tc.resolver.Resolve(s.Path, tc.currentFile)
	if err != nil {
		return NewError(IOError, fmt.Sprintf("Import failed: %v", err), s.Pos())
	}
	if tc.visited[resolved] {
		return nil
	}
	tc.visited[resolved] = true

	source, err := tc.resolver.ReadFile(resolved)
	if err != nil {
		return NewError(IOError, fmt.Sprintf("Read failed: %v", err), s.Pos())
	}
	prog, err := Parse(source)
	if err != nil {
		if e, ok := err.(*Error); ok {
			return e.WithFile(resolved)
		}
		return err
	}

	prevFile := tc.currentFile
	tc.currentFile = resolved
	err = tc.Check(prog)
	tc.currentFile = prevFile
	if err != nil {
		if e, ok := err.(*Error); ok && e.Location.File == "" {
			return e.WithFile(resolved)
		}
	}
	return err
}

// ----- expression typing -----

func (tc *TypeChecker) infer(expr Expr) (Type, error) {
	switch e := expr.(type) {
	case *NumberLit:
		return NumberType, nil
	case *StringLit:
		return StringType, nil
	case *BoolLit:
		return BooleanType, nil

	case *Ident:
		if t, ok := tc.variables[e.Name]; ok {
			return t, nil
		}
		return UnknownType, NewError(UndefinedVariable, "Undefined variable: "+e.Name, e.Pos())

	case *BinaryExpr:
		return tc.inferBinary(e)

	case *UnaryExpr:
		return tc.inferUnary(e)

	case *CallExpr:
		for _, arg := range e.Args {
			if _, err := tc.infer(arg); err != nil {
				return UnknownType, err
			}
		}
		if id, ok := e.Callee.(*Ident); ok {
			if fn, ok := tc.functions[id.Name]; ok && fn.Kind == TypeFunction {
				return *fn.Ret, nil
			}
		}
		return AnyType, nil

	case *ArrayLit:
		if len(e.Elems) == 0 {
			return ArrayOf(AnyType), nil
		}
		first, err := tc.infer(e.Elems[0])
		if err != nil {
			return UnknownType, err
		}
		for _, elem := range e.Elems[1:] {
			if _, err := tc.infer(elem); err != nil {
				return UnknownType, err
			}
		}
		return ArrayOf(first), nil

	case *IndexExpr:
		base, err := tc.infer(e.Array)
		if err != nil {
			return UnknownType, err
		}
		idx, err := tc.infer(e.Index)
		if err != nil {
			return UnknownType, err
		}
		if idx.Kind != TypeNumber && idx.Kind != TypeAny {
			return UnknownType, NewError(TypeError,
				"Array index must be Number, got "+idx.String(), e.Index.Pos())
		}
		switch base.Kind {
		case TypeArray:
			return *base.Elem, nil
		case TypeAny:
			return AnyType, nil
		default:
			return UnknownType, NewError(TypeError,
				"Cannot index into "+base.String(), e.Pos())
		}

	case *GroupExpr:
		return tc.infer(e.Inner)

	default:
		return AnyType, nil
	}
}

func (tc *TypeChecker) inferBinary(e *BinaryExpr) (Type, error) {
	left, err := tc.infer(e.Left)
	if err != nil {
		return UnknownType, err
	}
	right, err := tc.infer(e.Right)
	if err != nil {
		return UnknownType, err
	}

	switch e.Op {
	case OpAdd:
		switch {
		case left.Kind == TypeNumber && right.Kind == TypeNumber:
			return NumberType, nil
		case left.Kind == TypeString && right.Kind == TypeString:
			return StringType, nil
		case left.Kind == TypeAny || right.Kind == TypeAny:
			return AnyType, nil
		}
		return UnknownType, tc.binaryErr(e, left, right)

	case OpSubtract, OpMultiply, OpDivide, OpModulo, OpPower:
		ok := (left.Kind == TypeNumber || left.Kind == TypeAny) &&
			(right.Kind == TypeNumber || right.Kind == TypeAny)
		if !ok {
			return UnknownType, tc.binaryErr(e, left, right)
		}
		return NumberType, nil

	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return BooleanType, nil

	case OpAnd, OpOr:
		ok := (left.Kind == TypeBoolean || left.Kind == TypeAny) &&
			(right.Kind == TypeBoolean || right.Kind == TypeAny)
		if !ok {
			return UnknownType, NewError(TypeError,
				"Logical operators require Boolean operands", e.Pos())
		}
		return BooleanType, nil

	default:
		return AnyType, nil
	}
}

func (tc *TypeChecker) inferUnary(e *UnaryExpr) (Type, error) {
	operand, err := tc.infer(e.Operand)
	if err != nil {
		return UnknownType, err
	}
	switch e.Op {
	case OpNegate:
		if operand.Kind != TypeNumber && operand.Kind != TypeAny {
			return UnknownType, NewError(TypeError, "Cannot negate non-number", e.Pos())
		}
		return NumberType, nil
	case OpNot:
		if operand.Kind != TypeBoolean && operand.Kind != TypeAny {
			return UnknownType, NewError(TypeError, "Cannot apply '!' to non-boolean", e.Pos())
		}
		return BooleanType, nil
	default:
		return operand, nil
	}
}

func (tc *TypeChecker) binaryErr(e *BinaryExpr, left, right Type) *Error {
	return NewError(TypeError,
		fmt.Sprintf("Cannot apply %s to %s and %s", e.Op, left, right),
		e.Pos())
}
