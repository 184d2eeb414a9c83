package filesystem

import (
	"path/filepath"
	"strings"
)

// IsSourceFile checks if a file is a Python source file.
func IsSourceFile(name string) bool {
	return strings.HasSuffix(name, ".py")
}

// IsConfigFile checks if a file configures test collection.
func IsConfigFile(name string) bool {
	switch filepath.Base(name) {
	case "conftest.py", "pytest.ini", "pyproject.toml", "setup.cfg", "tox.ini":
		return true
	}
	return false
}

// Relevant reports whether a change to path can alter the server's test
// catalog. Paths without an extension are treated as directories.
func Relevant(path string) bool {
	return IsSourceFile(path) || IsConfigFile(path) || filepath.Ext(path) == ""
}
