package config

import (
	"path/filepath"
	"testing"
)

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg := &Config{
		Version: "1",
		DBPath:  filepath.Join(dir, "items.db"),
		Project: "payments-rewrite",
	}

	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.DBPath != cfg.DBPath {
		t.Errorf("DBPath = %q, want %q", loaded.DBPath, cfg.DBPath)
	}
	if loaded.Project != "payments-rewrite" {
		t.Errorf("Project = %q, want payments-rewrite", loaded.Project)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config")
	}
}
