package aslang

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func writeFrame(t *testing.T, buf *bytes.Buffer, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	fmt.Fprintf(buf, "Content-Length: %d\r\n\r\n%s", len(data), data)
}

func Test_LSP_DiagnosticsFor(t *testing.T) {
	if diags := DiagnosticsFor("let x = 1 output x"); len(diags) != 0 {
		t.Fatalf("clean source produced diagnostics: %#v", diags)
	}

	diags := DiagnosticsFor("let x =")
	if len(diags) != 1 {
		t.Fatalf("want one diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Severity != 1 || d.Source != "aslang" {
		t.Fatalf("diagnostic = %#v", d)
	}
	// The parse error sits at 1:8; LSP coordinates are 0-based.
	if d.Range.Start.Line != 0 || d.Range.Start.Character != 7 {
		t.Fatalf("range start = %#v", d.Range.Start)
	}
	if d.Range.End.Character != d.Range.Start.Character+1 {
		t.Fatalf("range end = %#v", d.Range.End)
	}
	if !strings.Contains(d.Message, "Expected expression") {
		t.Fatalf("message = %q", d.Message)
	}
}

func Test_LSP_Session(t *testing.T) {
	var in bytes.Buffer
	writeFrame(t, &in, map[string]any{"jsonrpc": "2.0", "id": 1, "method": "initialize"})
	writeFrame(t, &in, map[string]any{"jsonrpc": "2.0", "method": "initialized"})
	writeFrame(t, &in, map[string]any{
		"jsonrpc": "2.0", "method": "textDocument/didOpen",
		"params": map[string]any{
			"textDocument": map[string]any{
				"uri":  "file:///tmp/broken.as",
				"text": "let = 1",
			},
		},
	})
	writeFrame(t, &in, map[string]any{
		"jsonrpc": "2.0", "method": "textDocument/didChange",
		"params": map[string]any{
			"textDocument":   map[string]any{"uri": "file:///tmp/broken.as"},
			"contentChanges": []any{map[string]any{"text": "let x = 1"}},
		},
	})
	writeFrame(t, &in, map[string]any{"jsonrpc": "2.0", "id": 7, "method": "workspace/bogus"})
	writeFrame(t, &in, map[string]any{"jsonrpc": "2.0", "id": 2, "method": "shutdown"})
	writeFrame(t, &in, map[string]any{"jsonrpc": "2.0", "method": "exit"})

	var out bytes.Buffer
	if err := RunLSP(&in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		`"textDocumentSync":1`,
		`"textDocument/publishDiagnostics"`,
		`"Expected variable name"`,
		`"diagnostics":[]`,
		`"method not found"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %s:\n%s", want, got)
		}
	}

	// Every frame must carry a correct Content-Length header.
	if !strings.HasPrefix(got, "Content-Length: ") {
		t.Fatalf("output not framed:\n%s", got)
	}
}

func Test_LSP_EOFTerminates(t *testing.T) {
	// A stream that just ends (no exit notification) is a clean shutdown.
	var in bytes.Buffer
	writeFrame(t, &in, map[string]any{"jsonrpc": "2.0", "id": 1, "method": "initialize"})
	var out bytes.Buffer
	if err := RunLSP(&in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "capabilities") {
		t.Fatalf("missing initialize response:\n%s", out.String())
	}
}

func Test_LSP_MalformedFrameIgnored(t *testing.T) {
	var in bytes.Buffer
	fmt.Fprintf(&in, "Content-Length: 9\r\n\r\nnot json!")
	writeFrame(t, &in, map[string]any{"jsonrpc": "2.0", "id": 1, "method": "shutdown"})
	var out bytes.Buffer
	if err := RunLSP(&in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `"id":1`) {
		t.Fatalf("server should keep serving after a bad frame:\n%s", out.String())
	}
}
