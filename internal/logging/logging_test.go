package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelWarn)
	l.Info("hidden")
	l.Warn("shown", "key", "0,0")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=0,0") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestNewFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.log")
	l, closer, err := NewFile(path, "info")
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	l.Info("first")
	_ = closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "first") {
		t.Fatalf("expected record in file, got %q", data)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil).Enabled(context.Background(), slog.LevelError) {
		t.Fatal("discard logger should not be enabled")
	}
	if h := Discard().Handler(); h != slog.DiscardHandler {
		t.Fatalf("expected the standard discard handler, got %T", h)
	}
	l := New(io.Discard, slog.LevelInfo)
	if OrDiscard(l) != l {
		t.Fatal("expected a non-nil logger to pass through")
	}
}
