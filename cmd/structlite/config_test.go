package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "structlite.yaml")
	data := []byte("database: /tmp/app.db\nlog:\n  level: debug\n  format: json\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Cleanup(func() { cfg = nil })
	if err := loadConfig(path); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg == nil {
		t.Fatal("cfg not set")
	}
	if cfg.Database != "/tmp/app.db" {
		t.Errorf("Database = %q", cfg.Database)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadConfigOptional(t *testing.T) {
	t.Cleanup(func() { cfg = nil })
	if err := loadConfig(""); err != nil {
		t.Fatalf("loadConfig(\"\") = %v, want nil", err)
	}
	if cfg != nil {
		t.Error("cfg should stay nil without a config file")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("loadConfig should fail on a missing named file")
	}
}
