package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var allowed = map[string]map[string]bool{
	"cmd": {
		"cli": true,
	},
	"cli": {
		"artifacts": true,
		"batch":     true,
		"browser":   true,
		"model":     true,
		"runstore":  true,
		"settings":  true,
		"telemetry": true,
	},
	"batch": {
		"artifacts": true,
		"model":     true,
		"phase":     true,
		"runstore":  true,
		"surface":   true,
		"telemetry": true,
		"wait":      true,
	},
	"settings": {
		"interact": true,
		"model":    true,
		"phase":    true,
		"runstore": true,
		"surface":  true,
	},
	"phase": {
		"interact": true,
		"model":    true,
		"surface":  true,
		"wait":     true,
	},
	"interact": {
		"surface": true,
	},
	"browser": {
		"surface": true,
	},
	"runstore": {
		"model": true,
	},
	"wait": {
		"model": true,
	},
	"artifacts": {},
	"model":     {},
	"surface":   {},
	"telemetry": {},
}

// testOnly packages exist to support tests and must not be linked into the
// binary.
var testOnly = map[string]bool{
	"surface/surfacetest": true,
}

func main() {
	violations := []string{}
	for _, root := range []string{"cmd", "internal"} {
		vs, err := checkTree(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "boundary walk failed: %v\n", err)
			os.Exit(1)
		}
		violations = append(violations, vs...)
	}

	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "architecture boundary violations detected:")
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "- %s\n", v)
		}
		os.Exit(1)
	}

	fmt.Println("architecture boundary check: OK")
}

func checkTree(root string) ([]string, error) {
	violations := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		srcPkg, srcDir := sourcePackage(path)
		if srcPkg == "" {
			return nil
		}
		allowMap, ok := allowed[srcPkg]
		if !ok {
			violations = append(violations, fmt.Sprintf("%s: unknown source package %q", path, srcPkg))
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}

		for _, imp := range file.Imports {
			rest, ok := internalImport(strings.Trim(imp.Path.Value, "\""))
			if !ok {
				continue
			}
			if testOnly[rest] && rest != srcDir {
				violations = append(violations, fmt.Sprintf("%s: %s is test-only", path, rest))
				continue
			}
			tgtPkg := strings.Split(rest, "/")[0]
			if tgtPkg == srcPkg {
				continue
			}
			if !allowMap[tgtPkg] {
				violations = append(violations, fmt.Sprintf("%s: %s -> %s is forbidden", path, srcPkg, tgtPkg))
			}
		}
		return nil
	})
	return violations, err
}

// sourcePackage maps a file to its top-level package name and its package
// directory relative to internal/. Every binary under cmd/ counts as "cmd".
func sourcePackage(path string) (string, string) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) < 3 {
		return "", ""
	}
	switch parts[0] {
	case "cmd":
		return "cmd", ""
	case "internal":
		return parts[1], strings.Join(parts[1:len(parts)-1], "/")
	}
	return "", ""
}

func internalImport(importPath string) (string, bool) {
	const prefix = "lineup-runner/internal/"
	if !strings.HasPrefix(importPath, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(importPath, prefix)
	return rest, rest != ""
}
