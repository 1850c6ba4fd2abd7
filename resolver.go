// resolver.go — import path resolution.
//
// An import path is resolved against the importing file's directory when
// one is known, else against the process working directory captured at
// construction time; absolute paths pass through. The result is
// canonicalized (symlinks followed, "."/".." collapsed) so the visited
// sets in the checker and VM key on one identity per file.
package aslang

import (
	"os"
	"path/filepath"
)

// Resolver turns import paths into canonical absolute paths.
type Resolver struct {
	rootDir string
}

// NewResolver captures the current working directory as the fallback
// root for relative imports.
func NewResolver() *Resolver {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Resolver{rootDir: cwd}
}

// Resolve computes the canonical absolute path of importPath.
// currentFile is the importing source file; empty for anonymous sources.
// A path that does not exist resolves to an error.
func (r *Resolver) Resolve(importPath, currentFile string) (string, error) {
	var target string
	switch {
	case filepath.IsAbs(importPath):
		target = importPath
	case currentFile != "":
		target = filepath.Join(filepath.Dir(currentFile), importPath)
	default:
		target = filepath.Join(r.rootDir, importPath)
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return canonical, nil
}

// ReadFile loads a resolved source file.
func (r *Resolver) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
