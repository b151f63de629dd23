package logging

import (
	"strings"
	"testing"
)

func TestLoggerFormatsFieldsSorted(t *testing.T) {
	var output strings.Builder
	logger := NewLoggerWithOutput(LevelDebug, &output)

	logger.Info("record emitted", map[string]string{
		"path":   "/tmp/data.csv",
		"fields": "3",
	})

	line := output.String()
	if !strings.Contains(line, `msg="record emitted"`) {
		t.Fatalf("missing message in %q", line)
	}
	fieldsIdx := strings.Index(line, "fields=")
	pathIdx := strings.Index(line, "path=")
	if fieldsIdx < 0 || pathIdx < 0 || fieldsIdx > pathIdx {
		t.Fatalf("fields not sorted in %q", line)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var output strings.Builder
	logger := NewLoggerWithOutput(LevelWarning, &output)

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("visible", nil)

	if strings.Contains(output.String(), "hidden") {
		t.Fatalf("low level entries leaked: %q", output.String())
	}
	if !strings.Contains(output.String(), "visible") {
		t.Fatalf("warning entry dropped: %q", output.String())
	}
}

func TestLoggerWithAttachesBaseFields(t *testing.T) {
	var output strings.Builder
	logger := NewLoggerWithOutput(LevelInfo, &output).With(map[string]string{
		"component": "watcher",
	})

	logger.Info("started", nil)

	if !strings.Contains(output.String(), `component="watcher"`) {
		t.Fatalf("base field missing: %q", output.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info("no panic", nil)
	logger.With(map[string]string{"a": "b"}).Error("still fine", nil)
	if logger.Enabled(LevelError) {
		t.Fatal("nil logger should report disabled")
	}
}

func TestBufferKeepsMostRecent(t *testing.T) {
	buffer := NewBuffer(2)
	buffer.Add(Entry{Message: "one"})
	buffer.Add(Entry{Message: "two"})
	buffer.Add(Entry{Message: "three"})

	entries := buffer.List()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "two" || entries[1].Message != "three" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": LevelDebug,
		"INFO":  LevelInfo,
		"warn":  LevelWarning,
		" error ": LevelError,
	}
	for input, want := range cases {
		got, ok := ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %q, %v; want %q", input, got, ok, want)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatal("unknown level should not parse")
	}
}
