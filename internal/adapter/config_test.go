package adapter

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/cachegen/internal/domain"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}

	cat, err := cfg.DefaultCategory()
	if err != nil || cat != domain.CategoryImages {
		t.Errorf("DefaultCategory() = %v, %v", cat, err)
	}
	mode, err := cfg.DefaultMode()
	if err != nil || mode != domain.ModeIndividual {
		t.Errorf("DefaultMode() = %v, %v", mode, err)
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled by default")
	}
	if cfg.Logging.File != "" {
		t.Errorf("logging file = %q, want disabled by default", cfg.Logging.File)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "defaults:\n  category: music\n  mode: pack\nhistory:\n  enabled: false\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.Defaults.Category != "music" {
		t.Errorf("category = %q", cfg.Defaults.Category)
	}
	if cfg.Defaults.Mode != "pack" {
		t.Errorf("mode = %q", cfg.Defaults.Mode)
	}
	if cfg.HistoryPath() != "" {
		t.Errorf("HistoryPath() = %q, want in-memory when disabled", cfg.HistoryPath())
	}
	// Keys absent from the file keep their defaults
	if cfg.Logging.Level != "INFO" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CACHEGEN_DEFAULTS_CATEGORY", "advert")

	cfg, err := LoadConfigFrom(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.Category != "advert" {
		t.Errorf("category = %q, want advert from env", cfg.Defaults.Category)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Defaults.Category = "sounds"
	cfg.Logging.Level = "DEBUG"

	if err := SaveConfigTo(cfg, dir); err != nil {
		t.Fatalf("SaveConfigTo() error = %v", err)
	}

	loaded, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Defaults.Category != "sounds" || loaded.Logging.Level != "DEBUG" {
		t.Errorf("loaded config = %+v", loaded)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cachegen.log")
	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "INFO"})
	if err != nil {
		t.Fatalf("SetupLogger() error = %v", err)
	}
	logger.Info("hello", "k", "v")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("expected log output in file")
	}
}

func TestSetupLoggerDisabled(t *testing.T) {
	logger, err := SetupLogger(&LoggingConfig{})
	if err != nil || logger == nil {
		t.Fatalf("SetupLogger() = %v, %v", logger, err)
	}
}
