package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_LevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLoggerWithWriter("s3fs", Warn, buf)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below Warn must be dropped: %q", out)
	}
	if !strings.Contains(out, "WARN  [s3fs] shown 3") {
		t.Errorf("expected warning line, got %q", out)
	}
	if !strings.Contains(out, "ERROR [s3fs] shown 4") {
		t.Errorf("expected error line, got %q", out)
	}
}

func TestLogger_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewLoggerWithWriter("s3fs", Debug, buf)
	l.JSON = true

	l.Named("lookup").Warn("listing failed: %s", "boom")

	var entry logEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry.Level != "WARN" || entry.Service != "s3fs/lookup" || entry.Message != "listing failed: boom" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestParse(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   Debug,
		"INFO":    Info,
		"":        Info,
		"warning": Warn,
		"Error":   Error,
	}

	for input, want := range tests {
		got, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := Parse("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("never written")
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	base := NewLoggerWithWriter("s3fs", Debug, buf)

	scoped := base.With("bucket", "media").With("transport", "memory")
	scoped.Info("opened")
	base.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.HasSuffix(lines[0], "opened bucket=media transport=memory") {
		t.Errorf("expected fields on scoped logger, got %q", lines[0])
	}
	if strings.Contains(lines[1], "bucket=") {
		t.Errorf("fields must not leak into the parent logger, got %q", lines[1])
	}
}

func TestNewLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "s3fs.log")

	l := NewLogger(Options{
		Name:       "s3fs",
		Level:      Info,
		File:       file,
		NoTerminal: true,
	})
	l.Info("written to %s", "file")

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("expected log file, got %v", err)
	}
	if !strings.Contains(string(content), "INFO  [s3fs] written to file") {
		t.Errorf("unexpected file content %q", content)
	}
	if strings.Contains(string(content), "\033[") {
		t.Errorf("file output must not be colored: %q", content)
	}
}

func TestNewLogger_Output(t *testing.T) {
	var buf bytes.Buffer

	l := NewLogger(Options{
		Name:    "cli",
		Level:   Debug,
		Output:  &buf,
		NoColor: true,
	})
	l.Debug("routed to %s", "stderr")

	if !strings.Contains(buf.String(), "DEBUG [cli] routed to stderr") {
		t.Errorf("expected line on the configured output, got %q", buf.String())
	}
}
