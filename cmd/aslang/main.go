// Command aslang is the process entry point: script runner, REPL,
// language server, and version banner.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	aslang "github.com/ashuwhy/lang.as"
)

const (
	appName     = "aslang"
	historyFile = ".aslang_history"
	prompt      = "as > "
)

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return cmdRepl()
	}

	switch args[0] {
	case "--version":
		fmt.Printf("%s version %s\n", appName, aslang.Version)
		fmt.Printf("Author: %s\n", aslang.Author)
		return 0
	case "--repl":
		return cmdRepl()
	case "lsp":
		if err := aslang.RunLSP(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, "lsp:", err)
			return 1
		}
		return 0
	case "--debug":
		if len(args) < 2 {
			usage()
			return 1
		}
		return runFile(args[1], true)
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		if strings.HasPrefix(args[0], "-") {
			usage()
			return 1
		}
		return runFile(args[0], false)
	}
}

func usage() {
	fmt.Printf(`ASLang %s

Usage:
  %s                  Start the REPL.
  %s <file.as>        Run a script.
  %s --debug <file>   Run a script with the VM trace enabled.
  %s --repl           Start the REPL.
  %s lsp              Run the language server on stdin/stdout.
  %s --version        Print version information.

`, aslang.Version, appName, appName, appName, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run a file
// -----------------------------------------------------------------------------

func runFile(file string, trace bool) int {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read file '%s': %v\n", file, err)
		return 1
	}

	rt := aslang.NewRuntime()
	rt.Trace = trace
	if abs, err := filepath.Abs(file); err == nil {
		rt.SetFile(abs)
	} else {
		rt.SetFile(file)
	}

	if _, err := rt.Execute(string(src)); err != nil {
		fmt.Fprintln(os.Stderr, red(aslang.WrapErrorWithSource(err, string(src)).Error()))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl() int {
	fmt.Printf("ASLang %s - Interactive Mode\n", aslang.Version)
	fmt.Println("Type 'exit' to quit")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	rt := aslang.NewRuntime()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		if code == "exit" || code == ":quit" {
			return 0
		}

		// Output statements already write to stdout; only errors need
		// printing here.
		if _, err := rt.Execute(code); err != nil {
			fmt.Fprintln(os.Stderr, red(aslang.WrapErrorWithSource(err, code).Error()))
			continue
		}
		ln.AppendHistory(line)
	}
}
