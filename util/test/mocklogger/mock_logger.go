package mocklogger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/chetch/services/ulogger"
)

// Entry is one recorded log call.
type Entry struct {
	Level   string
	EventID int
	Message string
}

type store struct {
	mu      sync.Mutex
	calls   map[string]int
	entries []Entry
}

// MockLogger is a mock implementation of ulogger.Logger for testing purposes,
// providing call tracking and thread-safe operation. Loggers returned by Duplicate
// write into the same record as their parent.
type MockLogger struct {
	*store
	eventID int
}

// NewTestLogger creates a new instance of MockLogger.
func NewTestLogger() *MockLogger {
	return &MockLogger{
		store: &store{calls: make(map[string]int)},
	}
}

// LogLevel returns the current log level (always 0 for mock).
func (l *MockLogger) LogLevel() int {
	return 0
}

// SetLogLevel sets the log level (no-op for mock).
func (l *MockLogger) SetLogLevel(_ string) {
	// ignore
}

// New creates a new MockLogger instance with its own record.
func (l *MockLogger) New(_ string, _ ...ulogger.Option) ulogger.Logger {
	return NewTestLogger()
}

// Duplicate returns a logger sharing this record. Only the event id option is honoured.
func (l *MockLogger) Duplicate(options ...ulogger.Option) ulogger.Logger {
	opts := ulogger.DefaultOptions()
	ulogger.WithEventID(l.eventID)(opts)

	for _, o := range options {
		o(opts)
	}

	return &MockLogger{store: l.store, eventID: ulogger.EventIDOf(opts)}
}

// Debugf records a debug level log call.
func (l *MockLogger) Debugf(format string, args ...interface{}) {
	l.record("Debugf", "debug", format, args...)
}

// Infof records an info level log call.
func (l *MockLogger) Infof(format string, args ...interface{}) {
	l.record("Infof", "info", format, args...)
}

// Warnf records a warning level log call.
func (l *MockLogger) Warnf(format string, args ...interface{}) {
	l.record("Warnf", "warn", format, args...)
}

// Errorf records an error level log call.
func (l *MockLogger) Errorf(format string, args ...interface{}) {
	l.record("Errorf", "error", format, args...)
}

// Fatalf records a fatal level log call.
func (l *MockLogger) Fatalf(format string, args ...interface{}) {
	l.record("Fatalf", "fatal", format, args...)
}

func (l *MockLogger) record(methodName, level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls[methodName]++
	l.entries = append(l.entries, Entry{
		Level:   level,
		EventID: l.eventID,
		Message: fmt.Sprintf(format, args...),
	})
}

// Entries returns a copy of everything logged so far, in order.
func (l *MockLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Entry(nil), l.entries...)
}

// EntriesAt returns the recorded entries of one level.
func (l *MockLogger) EntriesAt(level string) []Entry {
	var out []Entry

	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}

	return out
}

// Calls returns how often the named method was called.
func (l *MockLogger) Calls(methodName string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.calls[methodName]
}

// AssertNumberOfCalls is a test helper that verifies the expected number of calls to a method.
func (l *MockLogger) AssertNumberOfCalls(t *testing.T, methodName string, expectedCalls int) {
	t.Helper()

	if actualCalls := l.Calls(methodName); actualCalls != expectedCalls {
		t.Errorf("Expected %v calls to %s, got %v", expectedCalls, methodName, actualCalls)
	}
}

// Reset clears all recorded method calls and entries.
func (l *MockLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = make(map[string]int)
	l.entries = nil
}
