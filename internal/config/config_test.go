package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Failed to load missing config: %v", err)
	}
	if cfg.Database.Path != filepath.Join(DefaultDir, DefaultDatabaseFile) {
		t.Errorf("Expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Export.Path != filepath.Join(DefaultDir, DefaultExportFile) {
		t.Errorf("Expected default export path, got %s", cfg.Export.Path)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database:\n  path: /tmp/custom.db\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.Path != "/tmp/custom.db" {
		t.Errorf("Expected overridden database path, got %s", cfg.Database.Path)
	}
	// Fields the file omits keep their defaults
	if cfg.Export.Path != filepath.Join(DefaultDir, DefaultExportFile) {
		t.Errorf("Expected default export path, got %s", cfg.Export.Path)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database: [oops"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Errorf("Expected parse error for malformed config")
	}
}
