// Package ulogger is the logging facade used by every hosted service. Entries can carry an
// event identifier so that lifecycle transitions are recognisable in the console, in JSON sinks and
// in the operating system event log.
package ulogger

import (
	"strings"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
)

const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
	colorCyan
	colorWhite

	colorBold     = 1
	colorDarkGray = 90
)

// EventIDFieldName is the structured field that carries the event identifier of an entry.
const EventIDFieldName = "event_id"

// ServiceFieldName is the structured field that carries the logger's service name.
const ServiceFieldName = "service"

type Logger interface {
	LogLevel() int
	SetLogLevel(level string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	New(service string, options ...Option) Logger
	Duplicate(options ...Option) Logger
}

func New(service string, options ...Option) Logger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	switch opts.loggerType {
	case "gocore":
		return NewGoCoreLogger(service, options...)
	default:
		return NewZeroLogger(service, options...)
	}
}

// ZerologLevel maps a level name to a zerolog level. Both the short names (DEBUG, INFO, WARN,
// ERROR, FATAL) and the hosting names (Trace, Debug, Information, Warning, Error, Critical, None)
// are accepted, case-insensitively. Unknown names map to info.
func ZerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO", "INFORMATION":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "FATAL", "CRITICAL":
		return zerolog.FatalLevel
	case "PANIC":
		return zerolog.PanicLevel
	case "NONE", "OFF", "DISABLED":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// gocoreLevel places a zerolog level on the gocore scale returned by Logger.LogLevel.
func gocoreLevel(level zerolog.Level) int {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return int(gocore.DEBUG)
	case zerolog.InfoLevel:
		return int(gocore.INFO)
	case zerolog.WarnLevel:
		return int(gocore.WARN)
	case zerolog.ErrorLevel:
		return int(gocore.ERROR)
	case zerolog.FatalLevel:
		return int(gocore.FATAL)
	case zerolog.PanicLevel, zerolog.Disabled:
		return int(gocore.PANIC)
	default:
		return int(gocore.INFO)
	}
}
