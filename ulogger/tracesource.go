package ulogger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SourceLevel is the severity threshold of a TraceSource.
type SourceLevel int

const (
	SourceLevelOff SourceLevel = iota
	SourceLevelCritical
	SourceLevelError
	SourceLevelWarning
	SourceLevelInformation
	SourceLevelVerbose
	SourceLevelAll
)

var sourceLevelNames = map[SourceLevel]string{
	SourceLevelOff:         "Off",
	SourceLevelCritical:    "Critical",
	SourceLevelError:       "Error",
	SourceLevelWarning:     "Warning",
	SourceLevelInformation: "Information",
	SourceLevelVerbose:     "Verbose",
	SourceLevelAll:         "All",
}

func (l SourceLevel) String() string {
	if name, ok := sourceLevelNames[l]; ok {
		return name
	}

	return fmt.Sprintf("SourceLevel(%d)", int(l))
}

// ParseSourceLevel accepts the source level names and the logging level aliases that share
// their meaning (Trace and Debug map to Verbose, Warn to Warning, Info to Information).
func ParseSourceLevel(s string) (SourceLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OFF":
		return SourceLevelOff, true
	case "CRITICAL", "FATAL":
		return SourceLevelCritical, true
	case "ERROR":
		return SourceLevelError, true
	case "WARNING", "WARN":
		return SourceLevelWarning, true
	case "INFORMATION", "INFO":
		return SourceLevelInformation, true
	case "VERBOSE", "DEBUG", "TRACE":
		return SourceLevelVerbose, true
	case "ALL":
		return SourceLevelAll, true
	default:
		return SourceLevelOff, false
	}
}

// zerologLevel is the level an event of severity l is written at.
func (l SourceLevel) zerologLevel() zerolog.Level {
	switch l {
	case SourceLevelCritical:
		return zerolog.FatalLevel
	case SourceLevelError:
		return zerolog.ErrorLevel
	case SourceLevelWarning:
		return zerolog.WarnLevel
	case SourceLevelInformation:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// TraceListener receives the events a TraceSource lets through.
type TraceListener interface {
	TraceEvent(source string, level SourceLevel, id int, message string)
}

// TraceSource is a named diagnostic channel with its own threshold, separate from the
// service logger.
type TraceSource struct {
	name  string
	level SourceLevel

	mu        sync.RWMutex
	listeners []TraceListener
}

func NewTraceSource(name string, level SourceLevel) *TraceSource {
	return &TraceSource{name: name, level: level}
}

func (s *TraceSource) Name() string {
	return s.name
}

func (s *TraceSource) Level() SourceLevel {
	return s.level
}

func (s *TraceSource) AddListener(l TraceListener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, l)
}

func (s *TraceSource) Listeners() []TraceListener {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]TraceListener(nil), s.listeners...)
}

// ShouldTrace reports whether an event of the given severity passes the threshold.
func (s *TraceSource) ShouldTrace(level SourceLevel) bool {
	if s.level == SourceLevelOff || level == SourceLevelOff {
		return false
	}

	return level <= s.level
}

func (s *TraceSource) TraceEvent(level SourceLevel, id int, format string, args ...interface{}) {
	if !s.ShouldTrace(level) {
		return
	}

	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}

	for _, l := range s.Listeners() {
		l.TraceEvent(s.name, level, id, message)
	}
}

func (s *TraceSource) TraceInformation(format string, args ...interface{}) {
	s.TraceEvent(SourceLevelInformation, 0, format, args...)
}

// ConsoleTraceListener writes trace events through a zerolog console writer.
type ConsoleTraceListener struct {
	logger zerolog.Logger
}

// NewConsoleTraceListener writes to w, or to stdout when w is nil.
func NewConsoleTraceListener(w io.Writer) *ConsoleTraceListener {
	if w == nil {
		w = os.Stdout
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.TimeOnly,
	}

	return &ConsoleTraceListener{
		logger: zerolog.New(output).With().Timestamp().Logger(),
	}
}

func (c *ConsoleTraceListener) TraceEvent(source string, level SourceLevel, id int, message string) {
	c.logger.WithLevel(level.zerologLevel()).
		Str("source", source).
		Int(EventIDFieldName, id).
		Msg(message)
}
