package ulogger

import (
	"fmt"
	"io"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
)

// GoCoreLogger prints through gocore. gocore has no structured output, so sinks and an explicit
// writer receive the same entries as JSON lines from a side zerolog logger.
type GoCoreLogger struct {
	*gocore.Logger
	service   string
	opts      *Options
	level     zerolog.Level
	skipFrame int
	eventID   int
	forward   *zerolog.Logger
}

func NewGoCoreLogger(service string, options ...Option) *GoCoreLogger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	return newGoCoreLogger(service, opts)
}

func newGoCoreLogger(service string, opts *Options) *GoCoreLogger {
	if service == "" {
		service = "chetch"
	}

	// gocore keeps the level a name was first registered with, so the threshold is applied here
	return &GoCoreLogger{
		Logger:    gocore.Log(service, gocore.DEBUG),
		service:   service,
		opts:      opts,
		level:     ZerologLevel(opts.logLevel),
		skipFrame: opts.skip,
		eventID:   opts.eventID,
		forward:   forwardingLogger(service, opts),
	}
}

func forwardingLogger(service string, opts *Options) *zerolog.Logger {
	writers := append([]io.Writer(nil), opts.sinks...)
	if opts.writerSet {
		writers = append(writers, opts.writer)
	}

	if len(writers) == 0 {
		return nil
	}

	zctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().
		Timestamp().
		Str(ServiceFieldName, service)

	if opts.eventID != 0 {
		zctx = zctx.Int(EventIDFieldName, opts.eventID)
	}

	l := zctx.Logger()

	return &l
}

func (g *GoCoreLogger) cloneOptions() *Options {
	opts := *g.opts
	opts.sinks = append([]io.Writer(nil), g.opts.sinks...)
	opts.logLevel = g.level.String()

	return &opts
}

func (g *GoCoreLogger) New(service string, options ...Option) Logger {
	opts := g.cloneOptions()
	opts.eventID = 0

	for _, o := range options {
		o(opts)
	}

	return newGoCoreLogger(service, opts)
}

func (g *GoCoreLogger) Duplicate(options ...Option) Logger {
	opts := g.cloneOptions()

	for _, o := range options {
		o(opts)
	}

	return newGoCoreLogger(g.service, opts)
}

func (g *GoCoreLogger) SetLogLevel(level string) {
	g.opts.logLevel = level
	g.level = ZerologLevel(level)
}

func (g *GoCoreLogger) LogLevel() int {
	return gocoreLevel(g.level)
}

func (g *GoCoreLogger) Debugf(format string, args ...interface{}) {
	g.output(zerolog.DebugLevel, g.Logger.Debugf, format, args...)
}

func (g *GoCoreLogger) Infof(format string, args ...interface{}) {
	g.output(zerolog.InfoLevel, g.Logger.Infof, format, args...)
}

func (g *GoCoreLogger) Warnf(format string, args ...interface{}) {
	g.output(zerolog.WarnLevel, g.Logger.Warnf, format, args...)
}

func (g *GoCoreLogger) Errorf(format string, args ...interface{}) {
	g.output(zerolog.ErrorLevel, g.Logger.Errorf, format, args...)
}

// Fatalf exits the process after the entry has been forwarded.
func (g *GoCoreLogger) Fatalf(format string, args ...interface{}) {
	g.output(zerolog.FatalLevel, g.Logger.Fatalf, format, args...)
}

func (g *GoCoreLogger) output(level zerolog.Level, print func(string, ...interface{}), format string, args ...interface{}) {
	if level < g.level {
		return
	}

	if g.forward != nil {
		g.forward.WithLevel(level).Msgf(format, args...)
	}

	print(g.prefix(format), args...)
}

// gocore has no structured fields, so the event id travels in the message.
func (g *GoCoreLogger) prefix(format string) string {
	if g.eventID == 0 {
		return format
	}

	return fmt.Sprintf("[%d] %s", g.eventID, format)
}
