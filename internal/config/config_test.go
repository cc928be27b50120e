package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.RequireDivision {
		t.Fatal("require_division should default to false")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("addr: \":9000\"\nlog_format: text\nrequire_division: true\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ADDR", ":7000")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// Env beats file, file beats default.
	if cfg.Addr != ":7000" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "text" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if !cfg.RequireDivision {
		t.Fatal("require_division should come from the file")
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := Load(""); err == nil {
		t.Fatal("unknown log level should fail")
	}
}
