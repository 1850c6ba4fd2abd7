// engine.go — the one-shot entry points exposed to embedders.
//
// Execute drives the whole pipeline on a fresh Runtime. ParseInfo and
// CompileInfo run the front half only and report a result record with a
// human-readable message instead of a Go error, which is the shape the
// foreign-call and language-server surfaces consume.
package aslang

// Version and Author feed the CLI's --version output.
const (
	Version = "0.1.0"
	Author  = "Ashutosh Sharma <ashutoshsharmawhy@gmail.com>"
)

// ParseResult reports a parse-only run.
type ParseResult struct {
	OK         bool
	Statements int
	Message    string
}

// CompileResult reports a parse+check+compile run.
type CompileResult struct {
	OK          bool
	BytecodeLen int
	Message     string
}

// Execute runs source on a fresh Runtime and returns the captured
// output text, or the first pipeline error.
func Execute(source string) (string, error) {
	return NewRuntime().Execute(source)
}

// ParseInfo parses source without executing it.
func ParseInfo(source string) ParseResult {
	prog, err := Parse(source)
	if err != nil {
		return ParseResult{Message: err.Error()}
	}
	return ParseResult{OK: true, Statements: len(prog.Statements)}
}

// CompileInfo compiles source without executing it. The type checker
// runs first: compilation is only attempted for well-typed programs.
func CompileInfo(source string) CompileResult {
	prog, err := Parse(source)
	if err != nil {
		return CompileResult{Message: err.Error()}
	}
	if err := NewTypeChecker().Check(prog); err != nil {
		return CompileResult{Message: err.Error()}
	}
	chunk, err := CompileProgram(prog)
	if err != nil {
		return CompileResult{Message: err.Error()}
	}
	return CompileResult{OK: true, BytecodeLen: len(chunk.Code)}
}
