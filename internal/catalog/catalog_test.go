package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(c.All()) != 9 {
		t.Errorf("expected 9 built-in subjects, got %d", len(c.All()))
	}

	eco, ok := c.Get("economie")
	if !ok {
		t.Fatal("economie should be in the built-in catalog")
	}
	if eco.Name != "Economie" {
		t.Errorf("expected name Economie, got %q", eco.Name)
	}
	if eco.PromptContext == "" {
		t.Error("promptContext should not be empty")
	}
	if len(eco.ExamDomains) == 0 {
		t.Error("examDomains should not be empty")
	}

	if _, ok := c.Get("latijn"); ok {
		t.Error("unknown subject should not resolve")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subjects.json")
	content := `[{"id": "aardrijkskunde", "name": "Aardrijkskunde", "icon": "🌍",
		"colorTag": "teal", "description": "d", "promptContext": "p",
		"examDomains": ["Wereld"]}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.All()) != 1 {
		t.Fatalf("expected 1 subject, got %d", len(c.All()))
	}
	if _, ok := c.Get("aardrijkskunde"); !ok {
		t.Error("file subject should resolve")
	}
}

func TestLoadRejectsBadCatalog(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"empty list", `[]`},
		{"missing id", `[{"name": "X"}]`},
		{"duplicate id", `[{"id": "a", "name": "A"}, {"id": "a", "name": "B"}]`},
		{"not JSON", `{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
