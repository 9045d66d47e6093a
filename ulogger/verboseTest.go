package ulogger

import (
	"fmt"
	"sync"
	"testing"
)

type VerboseTestLogger struct {
	t       *testing.T
	mutex   *sync.Mutex
	eventID int
}

func NewVerboseTestLogger(t *testing.T) *VerboseTestLogger {
	return &VerboseTestLogger{t: t, mutex: &sync.Mutex{}}
}

func (l *VerboseTestLogger) LogLevel() int {
	return 0
}

func (l *VerboseTestLogger) SetLogLevel(string) {}

func (l *VerboseTestLogger) New(string, ...Option) Logger {
	return l
}

// Duplicate shares the test and the mutex, only the event id differs.
func (l *VerboseTestLogger) Duplicate(options ...Option) Logger {
	opts := &Options{eventID: l.eventID}
	for _, o := range options {
		o(opts)
	}

	return &VerboseTestLogger{t: l.t, mutex: l.mutex, eventID: opts.eventID}
}

func (l *VerboseTestLogger) Debugf(format string, args ...interface{}) {
	l.logf("DEBUG", format, args...)
}

func (l *VerboseTestLogger) Infof(format string, args ...interface{}) {
	l.logf("INFO", format, args...)
}

func (l *VerboseTestLogger) Warnf(format string, args ...interface{}) {
	l.logf("WARN", format, args...)
}

func (l *VerboseTestLogger) Errorf(format string, args ...interface{}) {
	l.logf("ERROR", format, args...)
}

func (l *VerboseTestLogger) Fatalf(format string, args ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.t.Fatalf(l.prefix("FATAL")+format, args...)
}

func (l *VerboseTestLogger) logf(level, format string, args ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.t.Logf(l.prefix(level)+format, args...)
}

func (l *VerboseTestLogger) prefix(level string) string {
	if l.eventID == 0 {
		return fmt.Sprintf("[%s] ", level)
	}

	return fmt.Sprintf("[%s:%d] ", level, l.eventID)
}
