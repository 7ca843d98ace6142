package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(New(&buf, "DEBUG", "json"))
	Debug("CODE: abc, STATE: ")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "CODE: abc, STATE: " {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
}

func TestNewTextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(New(&buf, "ERROR", "text"))
	Info("hidden")
	Error("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("error line missing: %q", out)
	}
}

func TestInitWritesToStderr(t *testing.T) {
	prevLogger, prevStderr := Logger(), os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	t.Cleanup(func() {
		os.Stderr = prevStderr
		SetLogger(prevLogger)
	})

	Init("INFO", "json")
	Info("Starting CLI")
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"msg":"Starting CLI"`) {
		t.Fatalf("expected log line on stderr, got %q", out)
	}
}
