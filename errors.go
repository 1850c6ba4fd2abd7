// errors.go — the error record shared by every pipeline stage, plus the
// caret-snippet renderer used by the CLI and REPL.
//
// Every diagnostic in the package is an *Error{Kind, Message, Location}.
// The lexer, parser, and type checker attach the offending token's
// line/column; the VM attaches the span recorded for the failing
// instruction (see compiler.go). Rendering rules:
//
//	[line:col] Kind: message             no file attached
//	file:line:col: Kind: message         file attached
//	Kind: message                        no location at all
//
// WrapErrorWithSource upgrades an *Error into a multi-line, plain-text
// snippet with one line of context on each side and a caret under the
// offending column:
//
//	[3:12] Syntax Error: Expected ')'
//
//	   2 | let x = (1 + 2
//	   3 |              )
//	     |            ^
//	   4 | output x
//
// Coordinates are clamped so rendering never fails on short or empty
// sources. Non-*Error values pass through unchanged.
package aslang

import (
	"fmt"
	"strings"
)

// ErrorKind tags the failure class of a diagnostic.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	TypeError
	RuntimeError
	UndefinedVariable
	UndefinedFunction
	IOError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "Syntax Error"
	case TypeError:
		return "Type Error"
	case RuntimeError:
		return "Runtime Error"
	case UndefinedVariable:
		return "Undefined Variable"
	case UndefinedFunction:
		return "Undefined Function"
	case IOError:
		return "I/O Error"
	default:
		return "Error"
	}
}

// SourceLocation is a 1-based line/column pair with an optional file.
// The zero value means "no location" and renders as bare Kind: message.
type SourceLocation struct {
	Line   int
	Column int
	File   string
}

// Loc builds a file-less location.
func Loc(line, col int) SourceLocation {
	return SourceLocation{Line: line, Column: col}
}

// Error is the single diagnostic record of the language pipeline.
type Error struct {
	Kind     ErrorKind
	Message  string
	Location SourceLocation
}

// NewError builds an *Error.
func NewError(kind ErrorKind, message string, loc SourceLocation) *Error {
	return &Error{Kind: kind, Message: message, Location: loc}
}

func (e *Error) Error() string {
	if e.Location.Line > 0 {
		if e.Location.File != "" {
			return fmt.Sprintf("%s:%d:%d: %s: %s",
				e.Location.File, e.Location.Line, e.Location.Column, e.Kind, e.Message)
		}
		return fmt.Sprintf("[%d:%d] %s: %s",
			e.Location.Line, e.Location.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithFile returns a copy of e with the file attached to its location.
func (e *Error) WithFile(file string) *Error {
	cp := *e
	cp.Location.File = file
	return &cp
}

// WrapErrorWithSource returns err augmented with a caret-annotated snippet
// of src. Only *Error values with a location are rewritten; anything else
// is returned untouched.
func WrapErrorWithSource(err error, src string) error {
	e, ok := err.(*Error)
	if !ok || e.Location.Line < 1 {
		return err
	}
	return fmt.Errorf("%s", snippet(src, e))
}

// snippet builds the caret view. Line/column are clamped to the source
// bounds so a stale location can never break rendering.
func snippet(src string, e *Error) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	line := e.Location.Line
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	col := e.Location.Column
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", e.Error())
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
