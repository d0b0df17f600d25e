package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriterTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "studyvault-api", "debug")

	logger.Debug("pipeline stage", "stage", "chunking")

	line := buf.String()
	if !strings.Contains(line, `"service":"studyvault-api"`) {
		t.Fatalf("service attribute missing: %q", line)
	}
	if !strings.Contains(line, `"stage":"chunking"`) {
		t.Fatalf("attributes dropped: %q", line)
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "studyvault-worker", "chatty")

	logger.Debug("suppressed")
	logger.Info("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Fatalf("debug line emitted at fallback level: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("info line missing: %q", out)
	}
}

func TestParseLevelAliases(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
