package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultFile_Validates(t *testing.T) {
	f := DefaultFile()
	if err := f.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if f.Opacity != 0.6 || !f.Enabled || f.AutoStart || f.AnimationDuration != AnimationMedium || f.Language != "zh" {
		t.Fatalf("unexpected defaults: %+v", f.Config)
	}
}

func TestClampOpacity(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.7, 0.7},
		{1, 1},
		{1.3, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ClampOpacity(tt.in); got != tt.want {
			t.Errorf("ClampOpacity(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate_RejectsUnknownEnums(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnimationDuration = 250
	err := cfg.Validate()
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Path != "animation_duration" {
		t.Fatalf("expected animation_duration validation error, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Language = "pt"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "language") {
		t.Fatalf("expected language validation error, got %v", err)
	}
}

func TestValidate_ClampsOpacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Opacity = 4
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Opacity != 1 {
		t.Fatalf("expected opacity clamped to 1, got %v", cfg.Opacity)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	f, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Config != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", f.Config)
	}
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := strings.Join([]string{
		"opacity: 0.3",
		"language: en",
		"daemon:",
		"  log_level: debug",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Opacity != 0.3 || f.Language != "en" {
		t.Fatalf("unexpected config: %+v", f.Config)
	}
	if !f.Enabled || f.AnimationDuration != AnimationMedium {
		t.Fatalf("defaults lost: %+v", f.Config)
	}
	if f.Daemon.LogLevel != "debug" || f.Daemon.PointerPollMS != 100 {
		t.Fatalf("unexpected daemon config: %+v", f.Daemon)
	}
}

func TestLoadFromPath_UnknownKeyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("theme: dark\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestStore_UpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	store := NewStore(path)

	got, err := store.Update(func(c *Config) error {
		c.Opacity = 0.7
		c.Language = "ja"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Opacity != 0.7 || got.Language != "ja" {
		t.Fatalf("unexpected result: %+v", got)
	}

	f, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if f.Opacity != 0.7 || f.Language != "ja" {
		t.Fatalf("update not persisted: %+v", f.Config)
	}
}

func TestStore_UpdateRejectsInvalidWithoutWriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := NewStore(path)

	_, err := store.Update(func(c *Config) error {
		c.AnimationDuration = 999
		return nil
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected no file to be written, stat err=%v", statErr)
	}
}

func TestDir_UsesXDGConfigHome(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", td)

	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath: %v", err)
	}
	if path != filepath.Join(td, "monofocus", "config.yaml") {
		t.Fatalf("DefaultConfigPath() = %q", path)
	}
}
