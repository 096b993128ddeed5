package logs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bootstrap.log")
	l := New(path, 10)
	l.Infof("clean", "removed %s", "tests")
	l.Successf("scaffold", "merged %d entries", 3)
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], "[INFO] clean: removed tests") {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "[ OK ] scaffold: merged 3 entries") {
		t.Errorf("unexpected second line: %s", lines[1])
	}
}

func TestLogger_DebugFiltered(t *testing.T) {
	l := New("", 10)
	l.Debugf("tools", "hidden")
	if got := len(l.Snapshot()); got != 0 {
		t.Fatalf("expected debug entry to be dropped, got %d entries", got)
	}

	l.SetDebug(true)
	l.Debugf("tools", "visible")
	snap := l.Snapshot()
	if len(snap) != 1 || snap[0].Message != "visible" {
		t.Fatalf("expected one visible debug entry, got %+v", snap)
	}
}

func TestLogger_RingWraps(t *testing.T) {
	l := New("", 3)
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		l.Infof("", "%s", m)
	}
	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snap))
	}
	got := snap[0].Message + snap[1].Message + snap[2].Message
	if got != "cde" {
		t.Errorf("expected oldest-first cde, got %s", got)
	}
}

func TestLogger_UnopenablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	os.WriteFile(blocker, []byte("x"), 0644)

	// parent is a regular file, so the log cannot be created
	l := New(filepath.Join(blocker, "bootstrap.log"), 5)
	l.Warnf("clean", "still buffered")
	if len(l.Snapshot()) != 1 {
		t.Fatal("expected entry to be buffered without a file")
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() on memory-only logger: %v", err)
	}
}

func TestParseLogLine(t *testing.T) {
	e := parseLogLine("2026-01-02 03:04:05 [WARN] tools: poetry not found")
	if e.Level != LevelWarn {
		t.Errorf("Level = %d, want %d", e.Level, LevelWarn)
	}
	if e.Step != "tools" {
		t.Errorf("Step = %q", e.Step)
	}
	if e.Message != "poetry not found" {
		t.Errorf("Message = %q", e.Message)
	}
	if e.Time.Year() != 2026 || e.Time.Second() != 5 {
		t.Errorf("Time = %v", e.Time)
	}

	noStep := parseLogLine("2026-01-02 03:04:05 [ERR ] -: boom")
	if noStep.Step != "" || noStep.Level != LevelError || noStep.Message != "boom" {
		t.Errorf("unexpected entry: %+v", noStep)
	}

	if !parseLogLine("garbage").Time.IsZero() {
		t.Error("expected zero time for malformed line")
	}
}

func TestCleanupLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.log")
	old := time.Now().AddDate(0, 0, -40).Format(timeLayout)
	recent := time.Now().Add(-time.Hour).Format(timeLayout)
	content := old + " [INFO] clean: old entry\n" + recent + " [INFO] clean: recent entry\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	CleanupLogs(path, 30)

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "old entry") {
		t.Error("old entry should have been removed")
	}
	if !strings.Contains(string(data), "recent entry") {
		t.Error("recent entry should have been kept")
	}
}

func TestLogEntry_String(t *testing.T) {
	e := LogEntry{
		Time:    time.Date(2026, 3, 1, 9, 5, 0, 0, time.Local),
		Step:    "tools",
		Level:   LevelWarn,
		Message: "pre-commit installed\nbut not runnable",
	}
	want := "2026-03-01 09:05:00 [WARN] tools: pre-commit installed but not runnable"
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
