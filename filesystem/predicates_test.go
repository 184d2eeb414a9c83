package filesystem

import "testing"

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"test module", "/src/tests/test_login.py", true},
		{"helper module", "/src/tests/helpers.py", true},
		{"pytest config", "/src/pytest.ini", true},
		{"pyproject", "/src/pyproject.toml", true},
		{"directory", "/src/tests/api", true},
		{"readme", "/src/README.md", false},
		{"json fixture", "/src/tests/data.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relevant(tt.path); got != tt.want {
				t.Errorf("Relevant(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
