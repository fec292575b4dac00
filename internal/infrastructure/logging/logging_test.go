package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := parseLevel(raw); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestInitWritesConsoleAndFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "batchsend.log")
	writer, err := initWith(&console, Config{Level: "info", File: path, NoColor: true})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	defer writer.Close()

	slog.Info("Transaction successful", "address", "0xAAA")
	slog.Debug("hidden detail")

	if !strings.Contains(console.String(), "Transaction successful") || !strings.Contains(console.String(), "address=0xAAA") {
		t.Fatalf("unexpected console output %q", console.String())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), `msg="Transaction successful"`) {
		t.Fatalf("unexpected file output %q", raw)
	}
	if strings.Contains(console.String()+string(raw), "hidden detail") {
		t.Fatalf("debug record should be filtered at info level")
	}
}

func TestInitWithoutFileReturnsNilWriter(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	writer, err := initWith(&bytes.Buffer{}, Config{NoColor: true})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if writer != nil {
		t.Fatalf("expected nil writer without file")
	}
}

func TestRotatingWriterRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	writer, err := newRotatingWriter(path, 10, 2)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer writer.Close()

	for _, line := range []string{"first-line\n", "second-line\n", "third-line\n"} {
		if _, err := writer.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	assertFile(t, path, "third-line\n")
	assertFile(t, path+".1", "second-line\n")
	assertFile(t, path+".2", "first-line\n")
}

func TestRotatingWriterWithoutBackupsTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	writer, err := newRotatingWriter(path, 8, 0)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer writer.Close()

	_, _ = writer.Write([]byte("aaaaaaa\n"))
	_, _ = writer.Write([]byte("bbbbbbb\n"))

	assertFile(t, path, "bbbbbbb\n")
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Fatalf("expected no backup file, got %v", err)
	}
}

func TestNewRotatingWriterRequiresPath(t *testing.T) {
	if _, err := NewRotatingWriter("", 1, 1); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(raw) != want {
		t.Fatalf("%s: expected %q, got %q", path, want, raw)
	}
}
