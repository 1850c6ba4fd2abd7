package aslang

import (
	"strings"
	"testing"
)

func Test_Engine_Execute(t *testing.T) {
	out, err := Execute(`let x = 20 let y = 22 output x + y`)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "42\n" {
		t.Fatalf("got %q", out)
	}

	_, err = Execute(`output 1 / 0`)
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if err.(*Error).Kind != RuntimeError {
		t.Fatalf("want RuntimeError, got %s", err.(*Error).Kind)
	}
}

func Test_Engine_ParseInfo(t *testing.T) {
	res := ParseInfo("let x = 1 output x")
	if !res.OK || res.Statements != 2 || res.Message != "" {
		t.Fatalf("got %#v", res)
	}

	res = ParseInfo("let = 1")
	if res.OK || res.Statements != 0 {
		t.Fatalf("got %#v", res)
	}
	if !strings.Contains(res.Message, "Syntax Error") {
		t.Fatalf("message = %q", res.Message)
	}
}

func Test_Engine_CompileInfo(t *testing.T) {
	res := CompileInfo("let x = 1 output x")
	if !res.OK || res.BytecodeLen == 0 || res.Message != "" {
		t.Fatalf("got %#v", res)
	}

	// The type checker gates compilation.
	res = CompileInfo(`if 5 { output 1 }`)
	if res.OK {
		t.Fatal("ill-typed program must not compile")
	}
	if !strings.Contains(res.Message, "Type Error") {
		t.Fatalf("message = %q", res.Message)
	}

	res = CompileInfo("output (")
	if res.OK || !strings.Contains(res.Message, "Syntax Error") {
		t.Fatalf("got %#v", res)
	}
}

func Test_Engine_VersionInfo(t *testing.T) {
	if Version == "" || Author == "" {
		t.Fatal("version metadata must be set")
	}
}
