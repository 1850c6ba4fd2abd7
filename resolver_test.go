package aslang

import (
	"os"
	"path/filepath"
	"testing"
)

func canonical(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatalf("abs %s: %v", path, err)
	}
	c, err := filepath.EvalSymlinks(abs)
	if err != nil {
		t.Fatalf("eval symlinks %s: %v", abs, err)
	}
	return c
}

func Test_Resolver_RelativeToImporter(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.as", "let x = 1\n")
	importer := filepath.Join(dir, "main.as")

	r := NewResolver()
	got, err := r.Resolve("lib.as", importer)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != canonical(t, lib) {
		t.Fatalf("want %q, got %q", canonical(t, lib), got)
	}
}

func Test_Resolver_SubdirectoryAndDotDot(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "modules")
	lib := writeSource(t, dir, "top.as", "let x = 1\n")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	importer := filepath.Join(sub, "inner.as")

	r := NewResolver()
	got, err := r.Resolve("../top.as", importer)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != canonical(t, lib) {
		t.Fatalf("want %q, got %q", canonical(t, lib), got)
	}
}

func Test_Resolver_AbsolutePassthrough(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.as", "let x = 1\n")

	r := NewResolver()
	got, err := r.Resolve(lib, "/somewhere/else/main.as")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != canonical(t, lib) {
		t.Fatalf("want %q, got %q", canonical(t, lib), got)
	}
}

func Test_Resolver_MissingFile(t *testing.T) {
	r := NewResolver()
	if _, err := r.Resolve("definitely_not_here.as", ""); err == nil {
		t.Fatal("expected error for nonexistent path")
	}
}

func Test_Resolver_ReadFile(t *testing.T) {
	dir := t.TempDir()
	lib := writeSource(t, dir, "lib.as", "output 1\n")

	r := NewResolver()
	src, err := r.ReadFile(canonical(t, lib))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if src != "output 1\n" {
		t.Fatalf("got %q", src)
	}

	if _, err := r.ReadFile(filepath.Join(dir, "gone.as")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
