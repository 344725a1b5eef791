package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "file: /tmp/tasks.txt\nsort: priority\nmode: pc\ncolor: false\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.File != "/tmp/tasks.txt" || cfg.Sort != "priority" || cfg.Mode != "pc" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.ColorEnabled() {
		t.Fatal("expected colour disabled")
	}
	if cfg.Source != path {
		t.Fatalf("expected source %s, got %s", path, cfg.Source)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", "file = \"/tmp/tasks.txt\"\nsort = \"due\"\nexport_dir = \"/tmp/out\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.File != "/tmp/tasks.txt" || cfg.Sort != "due" || cfg.ExportDir != "/tmp/out" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.ColorEnabled() {
		t.Fatal("expected colour enabled by default")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	if _, err := Load(writeFile(t, "config.yaml", "flie: typo\n")); err == nil {
		t.Fatal("expected error for unknown yaml key")
	}
	if _, err := Load(writeFile(t, "config.toml", "flie = \"typo\"\n")); err == nil {
		t.Fatal("expected error for unknown toml key")
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.File != "" {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadExplicitMissingFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadDefaultMissingGivesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv(EnvConfig, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Source != "" {
		t.Fatalf("expected defaults, got source %s", cfg.Source)
	}
}

func TestResolveFilePrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvFile, "")

	cfg := &Config{}
	got, err := cfg.ResolveFile("")
	if err != nil || got != filepath.Join(home, DefaultFileName) {
		t.Fatalf("expected home default, got %q (%v)", got, err)
	}

	cfg.File = "/from/config.txt"
	if got, _ := cfg.ResolveFile(""); got != "/from/config.txt" {
		t.Fatalf("expected config file, got %q", got)
	}

	t.Setenv(EnvFile, "/from/env.txt")
	if got, _ := cfg.ResolveFile(""); got != "/from/env.txt" {
		t.Fatalf("expected env file, got %q", got)
	}

	if got, _ := cfg.ResolveFile("~/flag.txt"); got != filepath.Join(home, "flag.txt") {
		t.Fatalf("expected expanded flag path, got %q", got)
	}
}

func TestResolveFileWithoutHome(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv(EnvFile, "")
	if _, err := (&Config{}).ResolveFile(""); err != ErrNoFile {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
}

func TestResolveExportDir(t *testing.T) {
	cfg := &Config{}
	if got := cfg.ResolveExportDir("", "/data/todo.txt"); got != "/data/exports" {
		t.Fatalf("unexpected export dir %q", got)
	}
	cfg.ExportDir = "/cfg/out"
	if got := cfg.ResolveExportDir("", "/data/todo.txt"); got != "/cfg/out" {
		t.Fatalf("unexpected export dir %q", got)
	}
	if got := cfg.ResolveExportDir("/flag/out", "/data/todo.txt"); got != "/flag/out" {
		t.Fatalf("unexpected export dir %q", got)
	}
}
