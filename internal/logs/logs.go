package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// DefaultPath returns ~/.config/pybootstrap/bootstrap.log.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pybootstrap", "bootstrap.log")
}

type LogLevel int

const (
	LevelDebug LogLevel = iota - 1
	LevelInfo
	LevelSuccess
	LevelWarn
	LevelError
)

var levelTag = map[LogLevel]string{
	LevelDebug:   "DBG ",
	LevelInfo:    "INFO",
	LevelSuccess: " OK ",
	LevelWarn:    "WARN",
	LevelError:   "ERR ",
}

type LogEntry struct {
	Time    time.Time
	Step    string
	Message string
	Level   LogLevel
}

// Logger keeps the most recent entries in memory and appends every entry
// to the log file, if one could be opened.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
	head    int
	size    int
	cap     int
	file    *os.File
	debug   bool
	now     func() time.Time
}

// New opens path for appending. An empty path or an unopenable file leaves
// the logger memory-only; logging never fails the run.
func New(path string, capacity int) *Logger {
	if capacity <= 0 {
		capacity = 100
	}
	l := &Logger{
		entries: make([]LogEntry, capacity),
		cap:     capacity,
		now:     time.Now,
	}
	if path == "" {
		return l
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return l
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err == nil {
		l.file = f
	}
	return l
}

func (l *Logger) SetDebug(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = on
}

func (l *Logger) Add(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e.Level == LevelDebug && !l.debug {
		return
	}
	if e.Time.IsZero() {
		e.Time = l.now()
	}
	l.entries[l.head] = e
	l.head = (l.head + 1) % l.cap
	if l.size < l.cap {
		l.size++
	}
	if l.file != nil {
		l.file.WriteString(formatLine(e))
	}
}

func (l *Logger) logf(level LogLevel, step, format string, args ...any) {
	l.Add(LogEntry{Step: step, Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *Logger) Debugf(step, format string, args ...any) {
	l.logf(LevelDebug, step, format, args...)
}

func (l *Logger) Infof(step, format string, args ...any) {
	l.logf(LevelInfo, step, format, args...)
}

func (l *Logger) Successf(step, format string, args ...any) {
	l.logf(LevelSuccess, step, format, args...)
}

func (l *Logger) Warnf(step, format string, args ...any) {
	l.logf(LevelWarn, step, format, args...)
}

func (l *Logger) Errorf(step, format string, args ...any) {
	l.logf(LevelError, step, format, args...)
}

// Snapshot returns the buffered entries, oldest first.
func (l *Logger) Snapshot() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.size == 0 {
		return nil
	}
	result := make([]LogEntry, l.size)
	start := (l.head - l.size + l.cap) % l.cap
	for i := 0; i < l.size; i++ {
		result[i] = l.entries[(start+i)%l.cap]
	}
	return result
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// String formats e as a log file line without the trailing newline.
func (e LogEntry) String() string {
	return strings.TrimSuffix(formatLine(e), "\n")
}

// Format: 2006-01-02 15:04:05 [TAG ] step: message
func formatLine(e LogEntry) string {
	tag, ok := levelTag[e.Level]
	if !ok {
		tag = levelTag[LevelInfo]
	}
	msg := strings.ReplaceAll(e.Message, "\n", " ")
	step := e.Step
	if step == "" {
		step = "-"
	}
	return fmt.Sprintf("%s [%s] %s: %s\n", e.Time.Format(timeLayout), tag, step, msg)
}

func parseLogLine(line string) LogEntry {
	var e LogEntry
	if len(line) < 27 {
		return e
	}

	t, err := time.ParseInLocation(timeLayout, line[:19], time.Local)
	if err != nil {
		return e
	}
	e.Time = t

	if line[20] != '[' || line[25] != ']' {
		return e
	}
	switch strings.TrimSpace(line[21:25]) {
	case "OK":
		e.Level = LevelSuccess
	case "WARN":
		e.Level = LevelWarn
	case "ERR":
		e.Level = LevelError
	case "DBG":
		e.Level = LevelDebug
	default:
		e.Level = LevelInfo
	}

	rest := line[27:]
	if idx := strings.Index(rest, ": "); idx >= 0 {
		e.Step = rest[:idx]
		e.Message = rest[idx+2:]
	} else {
		e.Message = rest
	}
	if e.Step == "-" {
		e.Step = ""
	}
	return e
}

// CleanupLogs drops entries older than retentionDays from the log file at path.
func CleanupLogs(path string, retentionDays int) {
	if retentionDays <= 0 || path == "" {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	var kept []string
	for _, line := range lines {
		e := parseLogLine(line)
		if !e.Time.IsZero() && !e.Time.Before(cutoff) {
			kept = append(kept, line)
		}
	}
	if len(kept) == len(lines) {
		return
	}
	out := ""
	if len(kept) > 0 {
		out = strings.Join(kept, "\n") + "\n"
	}
	os.WriteFile(path, []byte(out), 0644)
}
