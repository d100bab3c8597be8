package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"discern/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "library") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	wantCache := filepath.Join(tempHome, ".local", "share", "discern", "cache")
	if cfg.Paths.CacheDir != wantCache {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, wantCache)
	}
	if cfg.Merge.DeleteSources {
		t.Fatal("expected delete_sources disabled by default")
	}
	if cfg.Catalog.MaxCandidates != 5 {
		t.Fatalf("unexpected max candidates: %d", cfg.Catalog.MaxCandidates)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadExplicitFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "discern.toml")
	body := strings.Join([]string{
		"[paths]",
		`library_dir = "` + filepath.Join(dir, "roms") + `"`,
		"[merge]",
		"delete_sources = true",
		"flatten = true",
		"[scan]",
		`extensions = ["CUE", "bin"]`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Paths.LibraryDir != filepath.Join(dir, "roms") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if !cfg.Merge.DeleteSources || !cfg.Merge.Flatten {
		t.Fatal("expected merge overrides applied")
	}
	want := []string{".cue", ".bin"}
	if len(cfg.Scan.Extensions) != len(want) {
		t.Fatalf("unexpected extensions: %v", cfg.Scan.Extensions)
	}
	for i, ext := range want {
		if cfg.Scan.Extensions[i] != ext {
			t.Fatalf("extension %d: got %q want %q", i, cfg.Scan.Extensions[i], ext)
		}
	}
}

func TestValidateRejectsBadLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad log format")
	}
}

func TestValidateRejectsConflictingMergeFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Merge.DeleteSources = true
	cfg.Merge.KeepOriginals = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for conflicting merge flags")
	}
}
