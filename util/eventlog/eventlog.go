// Package eventlog forwards log entries to the operating system event log. Entries arrive as the
// JSON lines written by ulogger sinks; the event id of an entry becomes the event log id.
package eventlog

import (
	"runtime"
	"sync"

	"github.com/chetch/services/ulogger"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Eventlog is the subset of the Windows event log API the sink writes to.
type Eventlog interface {
	Info(uint32, string) error
	Warning(uint32, string) error
	Error(uint32, string) error
	Close() error
}

// Supported reports whether this platform has an event log to write to.
func Supported() bool {
	return runtime.GOOS == "windows"
}

type entry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	EventID uint32 `json:"event_id"`
}

// Sink is an io.Writer and zerolog.LevelWriter that writes entries at or above its threshold to
// an Eventlog. Lines it cannot decode are dropped.
type Sink struct {
	mu        sync.Mutex
	evtLog    Eventlog
	threshold zerolog.Level
}

// NewSink filters at the given level name (Warning, Error, Information, ...).
func NewSink(evtLog Eventlog, level string) *Sink {
	return &Sink{
		evtLog:    evtLog,
		threshold: ulogger.ZerologLevel(level),
	}
}

// Close closes the eventlog
func (s *Sink) Close() error {
	return s.evtLog.Close()
}

func (s *Sink) Write(p []byte) (int, error) {
	e, ok := decode(p)
	if !ok {
		return len(p), nil
	}

	level, err := zerolog.ParseLevel(e.Level)
	if err != nil {
		return len(p), nil
	}

	return len(p), s.write(level, e)
}

func (s *Sink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	e, ok := decode(p)
	if !ok {
		return len(p), nil
	}

	return len(p), s.write(level, e)
}

func decode(p []byte) (entry, bool) {
	var e entry
	if err := json.Unmarshal(p, &e); err != nil {
		return e, false
	}

	return e, true
}

func (s *Sink) allowed(level zerolog.Level) bool {
	if s.threshold == zerolog.Disabled || level == zerolog.NoLevel || level == zerolog.Disabled {
		return false
	}

	return level >= s.threshold
}

func (s *Sink) write(level zerolog.Level, e entry) error {
	if !s.allowed(level) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case level >= zerolog.ErrorLevel:
		return s.evtLog.Error(e.EventID, e.Message)
	case level == zerolog.WarnLevel:
		return s.evtLog.Warning(e.EventID, e.Message)
	default:
		return s.evtLog.Info(e.EventID, e.Message)
	}
}
