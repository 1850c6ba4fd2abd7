// lsp.go — minimal language-server front-end.
//
// ROLE: framed JSON-RPC loop over arbitrary reader/writer pairs (the CLI
// wires stdin/stdout). The server re-parses a document on open/change
// and publishes either an empty diagnostic list or a single error
// diagnostic at (line-1, col-1)..(line-1, col). No document state is
// kept beyond the current request; parsing is the only analysis.
package aslang

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// ----- JSON-RPC envelope and LSP wire structs -----

type lspRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type lspResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *lspError       `json:"error,omitempty"`
}

type lspError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// Position and Range use 0-based LSP coordinates.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is the published error shape.
type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Source   string `json:"source"`
}

type publishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// LSPServer serves the diagnostic subset of the protocol.
type LSPServer struct {
	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex // serializes writes
}

// NewLSPServer wraps a transport pair.
func NewLSPServer(in io.Reader, out io.Writer) *LSPServer {
	return &LSPServer{in: bufio.NewReader(in), out: out}
}

// RunLSP serves LSP over the given streams until exit or EOF.
func RunLSP(in io.Reader, out io.Writer) error {
	return NewLSPServer(in, out).Run()
}

// Run is the dispatch loop: decode, switch on method, reply.
func (s *LSPServer) Run() error {
	for {
		payload, err := s.readMsg()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var req lspRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			continue // malformed frame; stay up
		}

		switch req.Method {
		case "initialize":
			s.respond(req.ID, map[string]any{
				"capabilities": map[string]any{
					"textDocumentSync": 1, // full sync
				},
			}, nil)
		case "initialized":
			// no-op
		case "shutdown":
			s.respond(req.ID, nil, nil)
		case "exit":
			return nil

		case "textDocument/didOpen":
			var p struct {
				TextDocument struct {
					URI  string `json:"uri"`
					Text string `json:"text"`
				} `json:"textDocument"`
			}
			if err := json.Unmarshal(req.Params, &p); err == nil {
				s.publishDiagnostics(p.TextDocument.URI, p.TextDocument.Text)
			}
		case "textDocument/didChange":
			var p struct {
				TextDocument struct {
					URI string `json:"uri"`
				} `json:"textDocument"`
				ContentChanges []struct {
					Text string `json:"text"`
				} `json:"contentChanges"`
			}
			if err := json.Unmarshal(req.Params, &p); err == nil && len(p.ContentChanges) > 0 {
				s.publishDiagnostics(p.TextDocument.URI, p.ContentChanges[0].Text)
			}

		default:
			if len(req.ID) > 0 {
				s.respond(req.ID, nil, &lspError{Code: -32601, Message: "method not found"})
			}
		}
	}
}

// DiagnosticsFor computes the diagnostics published for a document: an
// empty list for a clean parse, one error entry otherwise.
func DiagnosticsFor(text string) []Diagnostic {
	_, err := Parse(text)
	if err == nil {
		return []Diagnostic{}
	}

	line, col := 0, 0
	msg := err.Error()
	if e, ok := err.(*Error); ok {
		msg = e.Message
		if e.Location.Line > 0 {
			line = e.Location.Line - 1
		}
		if e.Location.Column > 0 {
			col = e.Location.Column - 1
		}
	}
	return []Diagnostic{{
		Range: Range{
			Start: Position{Line: line, Character: col},
			End:   Position{Line: line, Character: col + 1},
		},
		Severity: 1,
		Message:  msg,
		Source:   "aslang",
	}}
}

func (s *LSPServer) publishDiagnostics(uri, text string) {
	s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: DiagnosticsFor(text),
	})
}

// ----- framing -----

func (s *LSPServer) readMsg() ([]byte, error) {
	contentLen := -1
	for {
		line, err := s.in.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break // end of headers
		}
		if v, ok := strings.CutPrefix(line, "Content-Length:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("bad Content-Length: %w", err)
			}
			contentLen = n
		}
	}
	if contentLen < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	payload := make([]byte, contentLen)
	if _, err := io.ReadFull(s.in, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *LSPServer) writeMsg(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n%s", len(data), data)
}

func (s *LSPServer) respond(id json.RawMessage, result any, e *lspError) {
	s.writeMsg(lspResponse{JSONRPC: "2.0", ID: id, Result: result, Error: e})
}

func (s *LSPServer) notify(method string, params any) {
	s.writeMsg(lspNotification{JSONRPC: "2.0", Method: method, Params: params})
}
