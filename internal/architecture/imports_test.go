package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Engines stay pure; infrastructure never reaches up into services or HTTP.
func TestImportBoundaries(t *testing.T) {
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}

	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()

	type violation struct {
		file string
		imp  string
		rule string
	}
	var violations []violation

	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		allowed, ok := allowedInternal(rel)
		if !ok {
			return nil
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil || !strings.HasPrefix(imp, modulePath+"/internal/") {
				continue
			}
			sub := strings.TrimPrefix(imp, modulePath+"/")
			if !hasAnyPrefix(sub, allowed) {
				violations = append(violations, violation{file: rel, imp: imp, rule: strings.Join(allowed, ", ")})
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}

	if len(violations) > 0 {
		var b strings.Builder
		b.WriteString("import boundary violations:\n")
		for _, v := range violations {
			fmt.Fprintf(&b, "- %s imports %q (allowed: %s)\n", v.file, v.imp, v.rule)
		}
		t.Fatal(b.String())
	}
}

// allowedInternal lists the internal package prefixes a file may import.
func allowedInternal(rel string) ([]string, bool) {
	switch {
	case strings.HasPrefix(rel, "internal/domain/"):
		return []string{"internal/domain/"}, true
	case strings.HasPrefix(rel, "internal/platform/"):
		return []string{"internal/platform/", "internal/domain/gate"}, true
	case strings.HasPrefix(rel, "internal/realtime/"):
		return []string{"internal/platform/", "internal/realtime/"}, true
	case strings.HasPrefix(rel, "internal/observability/"):
		return []string{"internal/platform/"}, true
	case strings.HasPrefix(rel, "internal/data/"):
		return []string{"internal/data/", "internal/domain/", "internal/pkg/", "internal/platform/", "internal/observability"}, true
	case strings.HasPrefix(rel, "internal/services/"):
		return []string{
			"internal/data/", "internal/domain/", "internal/pkg/", "internal/platform/",
			"internal/observability", "internal/realtime/",
		}, true
	default:
		return nil, false
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		if mp := strings.TrimSpace(strings.TrimPrefix(line, "module ")); mp != "" {
			return mp, nil
		}
		return "", fmt.Errorf("empty module path in %s", goModPath)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
