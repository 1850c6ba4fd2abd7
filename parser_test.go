package aslang

import (
	"strings"
	"testing"
)

func parse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return prog
}

// parseExpr parses src as a single output statement and returns its value.
func parseExpr(t *testing.T, src string) Expr {
	t.Helper()
	prog := parse(t, "output "+src)
	return prog.Statements[0].(*OutputStmt).Value
}

func wantParseErr(t *testing.T, src, substr string) *Error {
	t.Helper()
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected parse error for %q", src)
	}
	e, ok := err.(*Error)
	if !ok {
		t.Fatalf("want *Error, got %T: %v", err, err)
	}
	if e.Kind != SyntaxError {
		t.Fatalf("want SyntaxError, got %s", e.Kind)
	}
	if !strings.Contains(e.Message, substr) {
		t.Fatalf("want message containing %q, got %q", substr, e.Message)
	}
	if e.Location.Line < 1 {
		t.Fatalf("parse error must carry a location, got %#v", e.Location)
	}
	return e
}

func Test_Parser_Precedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3).
	e := parseExpr(t, "1 + 2 * 3").(*BinaryExpr)
	if e.Op != OpAdd {
		t.Fatalf("top op = %s", e.Op)
	}
	right := e.Right.(*BinaryExpr)
	if right.Op != OpMultiply {
		t.Fatalf("right op = %s", right.Op)
	}

	// Comparison binds tighter than &&.
	e = parseExpr(t, "1 < 2 && 3 < 4").(*BinaryExpr)
	if e.Op != OpAnd {
		t.Fatalf("top op = %s", e.Op)
	}
	if e.Left.(*BinaryExpr).Op != OpLt || e.Right.(*BinaryExpr).Op != OpLt {
		t.Fatal("comparisons should nest under &&")
	}
}

func Test_Parser_PowerRightAssociative(t *testing.T) {
	// 2 ^ 3 ^ 2 parses as 2 ^ (3 ^ 2).
	e := parseExpr(t, "2 ^ 3 ^ 2").(*BinaryExpr)
	if e.Op != OpPower {
		t.Fatalf("top op = %s", e.Op)
	}
	if _, ok := e.Left.(*NumberLit); !ok {
		t.Fatalf("left should be a literal, got %T", e.Left)
	}
	if e.Right.(*BinaryExpr).Op != OpPower {
		t.Fatal("right side should be the nested power")
	}
}

func Test_Parser_UnaryBindsTight(t *testing.T) {
	// !true == false parses as (!true) == false.
	e := parseExpr(t, "!true == false").(*BinaryExpr)
	if e.Op != OpEq {
		t.Fatalf("top op = %s", e.Op)
	}
	u := e.Left.(*UnaryExpr)
	if u.Op != OpNot {
		t.Fatalf("left op = %s", u.Op)
	}

	neg := parseExpr(t, "-x + 1").(*BinaryExpr)
	if neg.Op != OpAdd {
		t.Fatalf("top op = %s", neg.Op)
	}
	if neg.Left.(*UnaryExpr).Op != OpNegate {
		t.Fatal("negate should bind to x only")
	}
}

func Test_Parser_CallAndIndexPostfix(t *testing.T) {
	e := parseExpr(t, "f(1, 2)[0]").(*IndexExpr)
	call := e.Array.(*CallExpr)
	if call.Callee.(*Ident).Name != "f" || len(call.Args) != 2 {
		t.Fatalf("call = %#v", call)
	}
	if e.Index.(*NumberLit).Value != 0 {
		t.Fatalf("index = %#v", e.Index)
	}
}

func Test_Parser_ArrayLiteral(t *testing.T) {
	e := parseExpr(t, `[1, "two", [3]]`).(*ArrayLit)
	if len(e.Elems) != 3 {
		t.Fatalf("want 3 elements, got %d", len(e.Elems))
	}
	if _, ok := e.Elems[2].(*ArrayLit); !ok {
		t.Fatalf("nested array expected, got %T", e.Elems[2])
	}

	empty := parseExpr(t, "[]").(*ArrayLit)
	if len(empty.Elems) != 0 {
		t.Fatalf("empty literal has %d elements", len(empty.Elems))
	}
}

func Test_Parser_LetAnnotation(t *testing.T) {
	prog := parse(t, "let x: Number = 1")
	let := prog.Statements[0].(*LetStmt)
	if let.Type == nil || let.Type.Kind != TypeNumber {
		t.Fatalf("annotation = %#v", let.Type)
	}

	prog = parse(t, "let xs: [String] = []")
	let = prog.Statements[0].(*LetStmt)
	if let.Type == nil || let.Type.Kind != TypeArray || let.Type.Elem.Kind != TypeString {
		t.Fatalf("annotation = %#v", let.Type)
	}

	wantParseErr(t, "let x: Widget = 1", "Unknown type name")
}

func Test_Parser_Function(t *testing.T) {
	prog := parse(t, "fn add(a, b): Number { return a + b }")
	fn := prog.Statements[0].(*FuncStmt)
	if fn.Name != "add" {
		t.Fatalf("name = %q", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Fatalf("params = %v", fn.Params)
	}
	if fn.Return == nil || fn.Return.Kind != TypeNumber {
		t.Fatalf("return annotation = %#v", fn.Return)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("body = %d statements", len(fn.Body))
	}
}

func Test_Parser_IfChain(t *testing.T) {
	prog := parse(t, `if a { output 1 } elseif b { output 2 } elseif c { output 3 } else { output 4 }`)
	ifs := prog.Statements[0].(*IfStmt)
	if len(ifs.Elifs) != 2 {
		t.Fatalf("want 2 elseif arms, got %d", len(ifs.Elifs))
	}
	if ifs.Else == nil || len(ifs.Else) != 1 {
		t.Fatalf("else = %#v", ifs.Else)
	}
}

func Test_Parser_ForClauses(t *testing.T) {
	prog := parse(t, "for (let i = 0; i < 3; let i = i + 1) { output i }")
	f := prog.Statements[0].(*ForStmt)
	if f.Init == nil || f.Cond == nil || f.Update == nil {
		t.Fatalf("for = %#v", f)
	}
	if _, ok := f.Init.(*LetStmt); !ok {
		t.Fatalf("init = %T", f.Init)
	}

	// All three clauses are optional.
	prog = parse(t, "for (;;) { break }")
	f = prog.Statements[0].(*ForStmt)
	if f.Init != nil || f.Cond != nil || f.Update != nil {
		t.Fatalf("empty-clause for = %#v", f)
	}
}

func Test_Parser_InputForms(t *testing.T) {
	prog := parse(t, `input name`)
	in := prog.Statements[0].(*InputStmt)
	if in.Prompt != nil || in.Target != "name" {
		t.Fatalf("input = %#v", in)
	}

	prog = parse(t, `input "Name?" name`)
	in = prog.Statements[0].(*InputStmt)
	if in.Prompt == nil || in.Prompt.(*StringLit).Value != "Name?" {
		t.Fatalf("prompt = %#v", in.Prompt)
	}
}

func Test_Parser_OptionalSemicolons(t *testing.T) {
	with := parse(t, "let x = 1; output x;")
	without := parse(t, "let x = 1 output x")
	if len(with.Statements) != 2 || len(without.Statements) != 2 {
		t.Fatalf("statement counts = %d / %d",
			len(with.Statements), len(without.Statements))
	}
}

func Test_Parser_Errors(t *testing.T) {
	wantParseErr(t, "output (1 + 2", "Expected ')'")
	wantParseErr(t, "let = 5", "Expected variable name")
	wantParseErr(t, "let x 5", "Expected '='")
	wantParseErr(t, "if x output 1", "Expected '{'")
	wantParseErr(t, "if x { output 1", "Expected '}'")
	wantParseErr(t, "output [1, 2", "Expected ']'")
	wantParseErr(t, `import lib`, "Expected string literal")
	wantParseErr(t, "fn f( { }", "Expected parameter name")

	// Reserved operators are lexed but have no expression rule.
	wantParseErr(t, "let a = ++1", "Expected expression")
	wantParseErr(t, "output 1 & 2", "Expected expression")

	// A truncated expression reports at the EOF sentinel's real position.
	e := wantParseErr(t, "let x =", "Expected expression")
	if e.Location.Line != 1 || e.Location.Column != 8 {
		t.Fatalf("want error at 1:8, got %d:%d", e.Location.Line, e.Location.Column)
	}
}
