package filesystem

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// defaultIgnores are never worth a catalog reload: VCS metadata, interpreter
// caches, virtualenvs, editor backups and logs.
var defaultIgnores = []string{
	".git",
	".hg",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
	".venv",
	"venv",
	"node_modules",
	".lazyremote",
	".DS_Store",
	"*.pyc",
	"*.log",
	"*.swp",
	"*~",
}

// Ignorer decides which paths under a root are skipped, from the default
// patterns plus the root's .gitignore.
type Ignorer struct {
	root     string
	patterns []string
}

// NewIgnorer creates an Ignorer for root and loads its .gitignore if present.
func NewIgnorer(root string) *Ignorer {
	ign := &Ignorer{
		root:     root,
		patterns: append([]string(nil), defaultIgnores...),
	}

	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err == nil {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
				continue
			}
			ign.patterns = append(ign.patterns, line)
		}
	}
	return ign
}

// Root returns the directory the patterns are relative to.
func (i *Ignorer) Root() string {
	return i.root
}

// ShouldIgnore checks the base name and every path component of path,
// relative to the root, against the patterns.
func (i *Ignorer) ShouldIgnore(path string) bool {
	relPath, err := filepath.Rel(i.root, path)
	if err != nil || strings.HasPrefix(relPath, "..") {
		relPath = filepath.Base(path)
	}
	if relPath == "." {
		return false
	}
	parts := strings.Split(relPath, string(os.PathSeparator))

	for _, p := range i.patterns {
		cleanP := strings.TrimSuffix(p, "/")

		// Anchored patterns only match from the root.
		if strings.HasPrefix(cleanP, "/") {
			cleanP = strings.TrimPrefix(cleanP, "/")
			if relPath == cleanP || strings.HasPrefix(relPath, cleanP+string(os.PathSeparator)) {
				return true
			}
			continue
		}

		if strings.Contains(cleanP, "/") {
			if relPath == cleanP || strings.HasPrefix(relPath, cleanP+string(os.PathSeparator)) {
				return true
			}
			continue
		}

		for _, part := range parts {
			if matched, _ := filepath.Match(cleanP, part); matched {
				return true
			}
		}
	}
	return false
}
