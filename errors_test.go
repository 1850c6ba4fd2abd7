package aslang

import (
	"errors"
	"strings"
	"testing"
)

func Test_Error_Formats(t *testing.T) {
	cases := []struct {
		err  *Error
		want string
	}{
		{NewError(SyntaxError, "Expected ')'", Loc(3, 12)), "[3:12] Syntax Error: Expected ')'"},
		{NewError(TypeError, "bad", Loc(2, 4)).WithFile("lib.as"), "lib.as:2:4: Type Error: bad"},
		{NewError(IOError, "read failed", SourceLocation{}), "I/O Error: read failed"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Fatalf("want %q, got %q", c.want, got)
		}
	}
}

func Test_Error_KindNames(t *testing.T) {
	kinds := map[ErrorKind]string{
		SyntaxError:       "Syntax Error",
		TypeError:         "Type Error",
		RuntimeError:      "Runtime Error",
		UndefinedVariable: "Undefined Variable",
		UndefinedFunction: "Undefined Function",
		IOError:           "I/O Error",
	}
	for kind, want := range kinds {
		if kind.String() != want {
			t.Fatalf("kind %d: want %q, got %q", kind, want, kind.String())
		}
	}
}

func Test_Error_WithFileCopies(t *testing.T) {
	orig := NewError(RuntimeError, "boom", Loc(1, 1))
	withFile := orig.WithFile("a.as")
	if orig.Location.File != "" {
		t.Fatal("WithFile must not mutate the original")
	}
	if withFile.Location.File != "a.as" {
		t.Fatalf("file = %q", withFile.Location.File)
	}
}

func Test_WrapErrorWithSource_Snippet(t *testing.T) {
	src := "let a = 1\nlet b = @\nlet c = 3"
	err := NewError(SyntaxError, "Unexpected character: @", Loc(2, 9))
	wrapped := WrapErrorWithSource(err, src).Error()

	for _, want := range []string{
		"[2:9] Syntax Error: Unexpected character: @",
		"   1 | let a = 1",
		"   2 | let b = @",
		"     |         ^",
		"   3 | let c = 3",
	} {
		if !strings.Contains(wrapped, want) {
			t.Fatalf("snippet missing %q:\n%s", want, wrapped)
		}
	}
}

func Test_WrapErrorWithSource_EdgeLines(t *testing.T) {
	// First line: no context line above.
	one := WrapErrorWithSource(NewError(SyntaxError, "x", Loc(1, 1)), "only").Error()
	if !strings.Contains(one, "   1 | only") {
		t.Fatalf("got:\n%s", one)
	}

	// Out-of-range coordinates clamp instead of panicking.
	clamped := WrapErrorWithSource(NewError(RuntimeError, "late", Loc(99, 99)), "a\nb").Error()
	if !strings.Contains(clamped, "   2 | b") {
		t.Fatalf("got:\n%s", clamped)
	}

	WrapErrorWithSource(NewError(RuntimeError, "x", Loc(1, 1)), "")
}

func Test_WrapErrorWithSource_Passthrough(t *testing.T) {
	plain := errors.New("plain")
	if got := WrapErrorWithSource(plain, "src"); got != plain {
		t.Fatalf("non-*Error should pass through, got %v", got)
	}

	// *Error without a location passes through too.
	bare := NewError(IOError, "read failed", SourceLocation{})
	if got := WrapErrorWithSource(bare, "src"); got != error(bare) {
		t.Fatalf("location-less error should pass through, got %v", got)
	}
}

func Test_Lexer_ErrorWrapsToSnippet(t *testing.T) {
	src := "let ok = 1\nlet bad = \"oops"
	_, err := Tokenize(src)
	if err == nil {
		t.Fatal("expected lex error")
	}
	wrapped := WrapErrorWithSource(err, src).Error()
	if !strings.Contains(wrapped, "Unterminated string") || !strings.Contains(wrapped, "   2 | let bad = \"oops") {
		t.Fatalf("got:\n%s", wrapped)
	}
}
