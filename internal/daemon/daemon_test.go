package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		debug bool
	}{
		{"debug", true},
		{"info", false},
		{"bogus", false},
	}
	for _, tt := range tests {
		l := NewLogger(tt.level)
		if got := l.Enabled(context.Background(), slog.LevelDebug); got != tt.debug {
			t.Errorf("NewLogger(%q) debug enabled = %v, want %v", tt.level, got, tt.debug)
		}
	}
}

func TestWritePIDFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	remove := writePIDFile(logger)
	path := filepath.Join(dir, "monofocus.pid")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	if want := strconv.Itoa(os.Getpid()) + "\n"; string(data) != want {
		t.Fatalf("pid file = %q, want %q", data, want)
	}

	remove()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("pid file should be removed, stat err = %v", err)
	}
}

func TestWritePIDFile_KeepsForeignPID(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	remove := writePIDFile(logger)
	path := filepath.Join(dir, "monofocus.pid")
	if err := os.WriteFile(path, []byte("1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	remove()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("foreign pid file removed: %v", err)
	}
}
