package ulogger

import (
	"io"
	"os"
)

type Options struct {
	logLevel   string
	loggerType string
	writer     io.Writer
	writerSet  bool
	skip       int
	eventID    int
	pretty     bool
	sinks      []io.Writer
}

type Option func(*Options)

func DefaultOptions() *Options {
	return &Options{
		logLevel:   "INFO",
		loggerType: "zerolog",
		writer:     os.Stdout,
		pretty:     true,
	}
}

func WithLevel(level string) Option {
	return func(o *Options) {
		o.logLevel = level
	}
}

func WithLoggerType(loggerType string) Option {
	return func(o *Options) {
		o.loggerType = loggerType
	}
}

func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.writer = w
		o.writerSet = true
	}
}

func WithSkipFrame(skip int) Option {
	return func(o *Options) {
		o.skip = skip
	}
}

// WithEventID tags every entry of the resulting logger with the given event identifier.
// It is normally passed to Duplicate.
func WithEventID(eventID int) Option {
	return func(o *Options) {
		o.eventID = eventID
	}
}

// WithPrettyOutput switches between the coloured console format and one JSON object per line.
func WithPrettyOutput(pretty bool) Option {
	return func(o *Options) {
		o.pretty = pretty
	}
}

// WithSink adds a writer that receives every entry as a JSON line, independent of the console
// format. Writers implementing zerolog.LevelWriter also receive the entry level.
func WithSink(w io.Writer) Option {
	return func(o *Options) {
		o.sinks = append(o.sinks, w)
	}
}

// EventIDOf returns the event id the options carry. Logger implementations outside this package
// use it to honour WithEventID.
func EventIDOf(o *Options) int {
	return o.eventID
}
