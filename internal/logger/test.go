package logger

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/arloliu/shadowslot/types"
)

// Entry is one message captured by a TestLogger.
type Entry struct {
	Level   string
	Message string
	Fields  []any
}

// Field returns the value logged under key.
func (e Entry) Field(key string) (any, bool) {
	for i := 0; i+1 < len(e.Fields); i += 2 {
		if k, ok := e.Fields[i].(string); ok && k == key {
			return e.Fields[i+1], true
		}
	}

	return nil, false
}

// TestLogger writes to a testing.TB and keeps every entry so tests can
// assert on what was logged.
type TestLogger struct {
	tb testing.TB

	mu      sync.Mutex
	entries []Entry
}

var _ types.Logger = (*TestLogger)(nil)

// NewTest creates a logger that writes through tb.Logf.
//
// Parameters:
//   - tb: Test or benchmark to write logs to
//
// Returns:
//   - *TestLogger: Logger capturing every entry
//
// Example:
//
//	func TestDuplicateRegistration(t *testing.T) {
//	    log := logger.NewTest(t)
//	    // ...
//	    require.Len(t, log.Entries("WARN"), 1)
//	}
func NewTest(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

// Debug logs a debug-level message.
func (l *TestLogger) Debug(msg string, keysAndValues ...any) {
	l.log("DEBUG", msg, keysAndValues)
}

// Info logs an info-level message.
func (l *TestLogger) Info(msg string, keysAndValues ...any) {
	l.log("INFO", msg, keysAndValues)
}

// Warn logs a warning-level message.
func (l *TestLogger) Warn(msg string, keysAndValues ...any) {
	l.log("WARN", msg, keysAndValues)
}

// Error logs an error-level message.
func (l *TestLogger) Error(msg string, keysAndValues ...any) {
	l.log("ERROR", msg, keysAndValues)
}

// Fatal logs the message and fails the test.
func (l *TestLogger) Fatal(msg string, keysAndValues ...any) {
	l.record("FATAL", msg, keysAndValues)
	l.tb.Helper()
	l.tb.Fatalf("FATAL: %s %s", msg, formatKeyValues(keysAndValues))
}

// Entries returns the captured entries of a level ("" for all levels).
func (l *TestLogger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Entry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}

	return out
}

func (l *TestLogger) log(level, msg string, keysAndValues []any) {
	l.record(level, msg, keysAndValues)
	l.tb.Helper()
	l.tb.Logf("%s: %s %s", level, msg, formatKeyValues(keysAndValues))
}

func (l *TestLogger) record(level, msg string, keysAndValues []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: msg, Fields: keysAndValues})
}

// formatKeyValues renders key/value pairs as "k=v" separated by spaces.
func formatKeyValues(keysAndValues []any) string {
	var sb strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&sb, "%v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&sb, "%v=<missing>", keysAndValues[i])
		}
	}

	return sb.String()
}
