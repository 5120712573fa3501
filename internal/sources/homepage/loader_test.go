package homepage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeFile(t, `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
          description: Code hosting
- Social:
    - Reddit:
        - icon: reddit.png
          href: https://reddit.com/
`)

	loader := NewLoader(path)
	if loader.Path() != path {
		t.Errorf("Path() = %s, want %s", loader.Path(), path)
	}
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(config) != 2 {
		t.Fatalf("Load() returned %d groups, want 2", len(config))
	}
	entry := config[0]["Developer"][0]["Github"][0]
	if entry.Href != "https://github.com/" || entry.Abbr != "GH" || entry.Description != "Code hosting" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestLoaderLoadWithTemplateVariables(t *testing.T) {
	path := writeFile(t, `---
- Homelab:
    - Gitea:
        - href: {{HOMEPAGE_VAR_GITEA_URL}}
`)

	config, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := config[0]["Homelab"][0]["Gitea"][0].Href; got != "" {
		t.Errorf("template variable should be blanked, got %q", got)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	if _, err := NewLoader("/nonexistent/path/bookmarks.yaml").Load(); err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("- [unclosed")); err == nil {
		t.Error("Parse() should reject malformed yaml")
	}
}

func TestStripTemplateVariables(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "single template variable",
			input:    []byte("url: {{HOMEPAGE_VAR_URL}}"),
			expected: "url: \"\"",
		},
		{
			name:     "no template variables",
			input:    []byte("plain text"),
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := stripTemplateVariables(tt.input)
			if string(result) != tt.expected {
				t.Errorf("stripTemplateVariables() = %q, want %q", string(result), tt.expected)
			}
		})
	}
}
