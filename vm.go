// vm.go — the stack-based bytecode interpreter.
//
// A Runtime owns the operand stack, the flat global environment shared
// by the whole running program (imports included), and a stack of call
// frames. Dispatch is linear: fetch the instruction at PC, advance,
// execute, loop until PC runs off the end of the chunk or a Return pops
// the outermost frame of the current run.
//
// Per the call-frame model, Call pushes a frame binding the top k stack
// values to the callee's parameter names; LoadVar resolves local-then-
// global; StoreVar updates an existing local, else an existing global,
// else creates a local in the current frame (a global at top level).
//
// Every error is reported with the source span recorded for the failing
// instruction (see Chunk.Spans in compiler.go).
//
// A single Runtime is not safe for concurrent use; callers that want
// parallelism run independent Runtimes.
package aslang

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Runtime executes compiled chunks against one shared environment.
type Runtime struct {
	stack   []Value
	globals map[string]Value
	frames  []frame
	funcs   map[string]*boundFunc

	resolver *Resolver
	checker  *TypeChecker
	visited  map[string]bool

	output strings.Builder
	stdout io.Writer
	stdin  *bufio.Reader

	// Trace dumps each executed instruction to stderr (--debug).
	Trace bool

	// file is the source path of the program currently executing,
	// used to anchor relative imports; empty for anonymous sources.
	file string
}

// frame is the per-call record: where to resume, in which chunk, and the
// callee's parameters-plus-locals.
type frame struct {
	retChunk *Chunk
	retPC    int
	locals   map[string]Value
}

// boundFunc ties a compiled function to the chunk its body lives in, so
// functions defined by an imported program stay callable afterwards.
type boundFunc struct {
	chunk  *Chunk
	entry  int
	params []string
}

// NewRuntime returns a runtime wired to the host's standard streams.
func NewRuntime() *Runtime {
	return &Runtime{
		globals:  map[string]Value{},
		funcs:    map[string]*boundFunc{},
		resolver: NewResolver(),
		checker:  NewTypeChecker(),
		visited:  map[string]bool{},
		stdout:   os.Stdout,
		stdin:    bufio.NewReader(os.Stdin),
	}
}

// SetOutput redirects the host stdout mirror of `output`.
func (rt *Runtime) SetOutput(w io.Writer) { rt.stdout = w }

// SetInput redirects the `input` primitive.
func (rt *Runtime) SetInput(r io.Reader) { rt.stdin = bufio.NewReader(r) }

// SetFile anchors relative imports to the given source file path.
func (rt *Runtime) SetFile(path string) { rt.file = path }

// Execute drives the full pipeline — lex, parse, type-check, compile,
// run — and returns the captured output text. On any error the partial
// output is discarded in favor of the error.
func (rt *Runtime) Execute(source string) (string, error) {
	prog, err := Parse(source)
	if err != nil {
		return "", err
	}

	// The checker persists across calls so bindings made by one Execute
	// (a REPL line, say) stay visible to the next.
	rt.checker.SetFile(rt.file)
	if err := rt.checker.Check(prog); err != nil {
		return "", err
	}

	chunk, err := CompileProgram(prog)
	if err != nil {
		return "", err
	}

	rt.output.Reset()
	rt.stack = rt.stack[:0]
	if err := rt.RunChunk(chunk); err != nil {
		return "", err
	}
	return rt.output.String(), nil
}

// RunChunk interprets one compiled chunk to completion. The chunk's
// functions are registered first so later chunks (importers, subsequent
// REPL lines) can call them.
func (rt *Runtime) RunChunk(chunk *Chunk) error {
	for name, fi := range chunk.Funcs {
		rt.funcs[name] = &boundFunc{chunk: chunk, entry: fi.Entry, params: fi.Params}
	}

	cur := chunk
	pc := 0
	frameBase := len(rt.frames)

	for pc < len(cur.Code) {
		in := cur.Code[pc]
		loc := span(cur, pc)
		if rt.Trace {
			fmt.Fprintf(os.Stderr, "%04d %s\n", pc, instrString(in))
		}
		pc++

		switch in.Op {
		case LoadConst:
			rt.push(Num(in.Num))
		case LoadString:
			rt.push(Str(in.Str))
		case LoadBool:
			rt.push(Bool(in.Bool))

		case LoadVar:
			v, ok := rt.lookup(in.Str)
			if !ok {
				return NewError(UndefinedVariable, "Undefined variable: "+in.Str, loc)
			}
			rt.push(v)

		case StoreVar:
			v, err := rt.pop(loc)
			if err != nil {
				return err
			}
			rt.store(in.Str, v)

		case Pop:
			if _, err := rt.pop(loc); err != nil {
				return err
			}

		case Add:
			b, err := rt.pop(loc)
			if err != nil {
				return err
			}
			a, err := rt.pop(loc)
			if err != nil {
				return err
			}
			switch {
			case a.Tag == VTNumber && b.Tag == VTNumber:
				rt.push(Num(a.Data.(float64) + b.Data.(float64)))
			case a.Tag == VTString && b.Tag == VTString:
				rt.push(Str(a.Data.(string) + b.Data.(string)))
			default:
				return NewError(TypeError,
					fmt.Sprintf("Cannot add %s and %s", a.TypeName(), b.TypeName()), loc)
			}

		case Subtract:
			a, b, err := rt.popNumbers(loc)
			if err != nil {
				return err
			}
			rt.push(Num(a - b))
		case Multiply:
			a, b, err := rt.popNumbers(loc)
			if err != nil {
				return err
			}
			rt.push(Num(a * b))
		case Divide:
			a, b, err := rt.popNumbers(loc)
			if err != nil {
				return err
			}
			if b == 0 {
				return NewError(RuntimeError, "Division by zero", loc)
			}
			rt.push(Num(a / b))
		case Modulo:
			a, b, err := rt.popNumbers(loc)
			if err != nil {
				return err
			}
			if b == 0 {
				return NewError(RuntimeError, "Modulo by zero", loc)
			}
			rt.push(Num(math.Mod(a, b)))
		case Power:
			a, b, err := rt.popNumbers(loc)
			if err != nil {
				return err
			}
			rt.push(Num(math.Pow(a, b)))

		case Negate:
			v, err := rt.pop(loc)
			if err != nil {
				return err
			}
			n, ok := v.AsNumber()
			if !ok {
				return NewError(TypeError, "Cannot negate "+v.TypeName(), loc)
			}
			rt.push(Num(-n))

		case Eq:
			b, err := rt.pop(loc)
			if err != nil {
				return err
			}
			a, err := rt.pop(loc)
			if err != nil {
				return err
			}
			rt.push(Bool(ValuesEqual(a, b)))
		case Ne:
			b, err := rt.pop(loc)
			if err != nil {
				return err
			}
			a, err := rt.pop(loc)
			if err != nil {
				return err
			}
			rt.push(Bool(!ValuesEqual(a, b)))

		case Lt:
			a, b, err := rt.popNumbers(loc)
			if err != nil {
				return err
			}
			rt.push(Bool(a < b))
		case Le:
			a, b, err := rt.popNumbers(loc)
			if err != nil {
				return err
			}
			rt.push(Bool(a <= b))
		case Gt:
			a, b, err := rt.popNumbers(loc)
			if err != nil {
				return err
			}
			rt.push(Bool(a > b))
		case Ge:
			a, b, err := rt.popNumbers(loc)
			if err != nil {
				return err
			}
			rt.push(Bool(a >= b))

		case And:
			a, b, err := rt.popBools(loc)
			if err != nil {
				return err
			}
			rt.push(Bool(a && b))
		case Or:
			a, b, err := rt.popBools(loc)
			if err != nil {
				return err
			}
			rt.push(Bool(a || b))
		case Not:
			v, err := rt.pop(loc)
			if err != nil {
				return err
			}
			if v.Tag != VTBool {
				return NewError(TypeError, "Cannot apply '!' to "+v.TypeName(), loc)
			}
			rt.push(Bool(!v.Data.(bool)))

		case Output:
			v, err := rt.pop(loc)
			if err != nil {
				return err
			}
			line := FormatValue(v)
			rt.output.WriteString(line)
			rt.output.WriteByte('\n')
			fmt.Fprintln(rt.stdout, line)

		case Input:
			line, err := rt.readLine()
			if err != nil {
				return NewError(IOError, "Failed to read standard input", loc)
			}
			rt.push(Str(line))

		case MakeArray:
			n := in.N
			if len(rt.stack) < n {
				return NewError(RuntimeError, "Stack underflow", loc)
			}
			elems := make([]Value, n)
			copy(elems, rt.stack[len(rt.stack)-n:])
			rt.stack = rt.stack[:len(rt.stack)-n]
			rt.push(Arr(elems))

		case GetIndex:
			idx, err := rt.pop(loc)
			if err != nil {
				return err
			}
			v, err := rt.pop(loc)
			if err != nil {
				return err
			}
			arr, i, err := rt.indexInto(v, idx, loc)
			if err != nil {
				return err
			}
			rt.push(arr.Elems[i])

		case SetIndex:
			val, err := rt.pop(loc)
			if err != nil {
				return err
			}
			idx, err := rt.pop(loc)
			if err != nil {
				return err
			}
			v, err := rt.pop(loc)
			if err != nil {
				return err
			}
			arr, i, err := rt.indexInto(v, idx, loc)
			if err != nil {
				return err
			}
			arr.Elems[i] = val

		case Jump:
			pc = in.N
		case JumpIfFalse:
			v, err := rt.pop(loc)
			if err != nil {
				return err
			}
			if !Truthy(v) {
				pc = in.N
			}

		case Call:
			fn, ok := rt.funcs[in.Str]
			if !ok {
				return NewError(UndefinedFunction, "Undefined function: "+in.Str, loc)
			}
			if in.N != len(fn.params) {
				return NewError(RuntimeError,
					fmt.Sprintf("Function %s expects %d arguments, got %d",
						in.Str, len(fn.params), in.N), loc)
			}
			if len(rt.stack) < in.N {
				return NewError(RuntimeError, "Stack underflow", loc)
			}
			locals := make(map[string]Value, in.N)
			args := rt.stack[len(rt.stack)-in.N:]
			for i, name := range fn.params {
				locals[name] = args[i]
			}
			rt.stack = rt.stack[:len(rt.stack)-in.N]
			rt.frames = append(rt.frames, frame{retChunk: cur, retPC: pc, locals: locals})
			cur = fn.chunk
			pc = fn.entry

		case Return:
			rv, err := rt.pop(loc)
			if err != nil {
				return err
			}
			if len(rt.frames) == frameBase {
				// Outermost frame of this run: stop execution.
				return nil
			}
			f := rt.frames[len(rt.frames)-1]
			rt.frames = rt.frames[:len(rt.frames)-1]
			cur = f.retChunk
			pc = f.retPC
			rt.push(rv)

		case Import:
			if err := rt.runImport(in.Str, loc); err != nil {
				return err
			}

		default:
			return NewError(RuntimeError, "Bad opcode "+in.Op.String(), loc)
		}
	}
	return nil
}

// runImport resolves, reads, and runs an imported program in the same
// environment. The visited set is consulted before the file is read, so
// diamond imports execute exactly once.
func (rt *Runtime) runImport(path string, loc SourceLocation) error {
	resolved, err := rt.resolver.Resolve(path, rt.file)
	if err != nil {
		return NewError(IOError, fmt.Sprintf("Import failed: %v", err), loc)
	}
	if rt.visited[resolved] {
		return nil
	}
	rt.visited[resolved] = true

	source, err := rt.resolver.ReadFile(resolved)
	if err != nil {
		return NewError(IOError, fmt.Sprintf("Read failed: %v", err), loc)
	}
	prog, err := Parse(source)
	if err != nil {
		if e, ok := err.(*Error); ok {
			return e.WithFile(resolved)
		}
		return err
	}
	chunk, err := CompileProgram(prog)
	if err != nil {
		if e, ok := err.(*Error); ok {
			return e.WithFile(resolved)
		}
		return err
	}

	prevFile := rt.file
	rt.file = resolved
	err = rt.RunChunk(chunk)
	rt.file = prevFile
	if err != nil {
		if e, ok := err.(*Error); ok && e.Location.File == "" {
			return e.WithFile(resolved)
		}
	}
	return err
}

// ----- environment -----

func (rt *Runtime) lookup(name string) (Value, bool) {
	if n := len(rt.frames); n > 0 {
		if v, ok := rt.frames[n-1].locals[name]; ok {
			return v, true
		}
	}
	v, ok := rt.globals[name]
	return v, ok
}

func (rt *Runtime) store(name string, v Value) {
	if n := len(rt.frames); n > 0 {
		locals := rt.frames[n-1].locals
		if _, ok := locals[name]; ok {
			locals[name] = v
			return
		}
		if _, ok := rt.globals[name]; ok {
			rt.globals[name] = v
			return
		}
		locals[name] = v
		return
	}
	rt.globals[name] = v
}

// Global returns a top-level binding, mostly for embedders and tests.
func (rt *Runtime) Global(name string) (Value, bool) {
	v, ok := rt.globals[name]
	return v, ok
}

// StackDepth reports the operand stack depth (empty after any normally
// terminated run).
func (rt *Runtime) StackDepth() int { return len(rt.stack) }

// ----- stack -----

func (rt *Runtime) push(v Value) { rt.stack = append(rt.stack, v) }

func (rt *Runtime) pop(loc SourceLocation) (Value, error) {
	if len(rt.stack) == 0 {
		return None, NewError(RuntimeError, "Stack underflow", loc)
	}
	v := rt.stack[len(rt.stack)-1]
	rt.stack = rt.stack[:len(rt.stack)-1]
	return v, nil
}

// popNumbers pops b then a and requires both numeric.
func (rt *Runtime) popNumbers(loc SourceLocation) (a, b float64, err error) {
	bv, err := rt.pop(loc)
	if err != nil {
		return 0, 0, err
	}
	av, err := rt.pop(loc)
	if err != nil {
		return 0, 0, err
	}
	bn, ok := bv.AsNumber()
	if !ok {
		return 0, 0, NewError(TypeError, "Expected Number, got "+bv.TypeName(), loc)
	}
	an, ok := av.AsNumber()
	if !ok {
		return 0, 0, NewError(TypeError, "Expected Number, got "+av.TypeName(), loc)
	}
	return an, bn, nil
}

func (rt *Runtime) popBools(loc SourceLocation) (a, b bool, err error) {
	bv, err := rt.pop(loc)
	if err != nil {
		return false, false, err
	}
	av, err := rt.pop(loc)
	if err != nil {
		return false, false, err
	}
	if bv.Tag != VTBool {
		return false, false, NewError(TypeError, "Expected Boolean, got "+bv.TypeName(), loc)
	}
	if av.Tag != VTBool {
		return false, false, NewError(TypeError, "Expected Boolean, got "+av.TypeName(), loc)
	}
	return av.Data.(bool), bv.Data.(bool), nil
}

// indexInto validates an array/index pair and returns the boxed array
// with the integer index.
func (rt *Runtime) indexInto(v, idx Value, loc SourceLocation) (*ArrayObject, int, error) {
	arr, ok := v.AsArray()
	if !ok {
		return nil, 0, NewError(TypeError, "Cannot index into "+v.TypeName(), loc)
	}
	n, ok := idx.AsNumber()
	if !ok {
		return nil, 0, NewError(TypeError, "Array index must be Number, got "+idx.TypeName(), loc)
	}
	i := int(n)
	if float64(i) != n {
		return nil, 0, NewError(RuntimeError, "Array index must be an integer", loc)
	}
	if i < 0 || i >= len(arr.Elems) {
		return nil, 0, NewError(RuntimeError,
			fmt.Sprintf("Array index out of range: %d", i), loc)
	}
	return arr, i, nil
}

// ----- misc -----

func (rt *Runtime) readLine() (string, error) {
	line, err := rt.stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

func span(chunk *Chunk, pc int) SourceLocation {
	if pc < len(chunk.Spans) {
		return chunk.Spans[pc]
	}
	return SourceLocation{}
}

func instrString(in Instr) string {
	switch in.Op {
	case LoadConst:
		return fmt.Sprintf("%s %s", in.Op, FormatValue(Num(in.Num)))
	case LoadString, Import:
		return fmt.Sprintf("%s %q", in.Op, in.Str)
	case LoadBool:
		return fmt.Sprintf("%s %v", in.Op, in.Bool)
	case LoadVar, StoreVar:
		return fmt.Sprintf("%s %s", in.Op, in.Str)
	case Call:
		return fmt.Sprintf("%s %s/%d", in.Op, in.Str, in.N)
	case MakeArray, Jump, JumpIfFalse:
		return fmt.Sprintf("%s %d", in.Op, in.N)
	default:
		return in.Op.String()
	}
}
