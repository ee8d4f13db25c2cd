package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"single", "Sheet1", []string{"Sheet1"}},
		{"multiple", "Sheet1,Summary", []string{"Sheet1", "Summary"}},
		{"spaces around commas", " Sheet1 , Summary ", []string{"Sheet1", "Summary"}},
		{"empty segments dropped", "Sheet1,,Summary,", []string{"Sheet1", "Summary"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("splitList(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_explicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != path {
		t.Errorf("resolved path: got %q, want %q", resolved, path)
	}
	if !cfg.Debug || cfg.Server.Port != 9090 {
		t.Errorf("config: got debug=%v port=%d", cfg.Debug, cfg.Server.Port)
	}
}

func TestLoadConfig_missingFile(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
