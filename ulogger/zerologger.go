package ulogger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

type ZLoggerWrapper struct {
	zerolog.Logger
	service string
	w       io.Writer
	opts    *Options
}

func NewZeroLogger(service string, options ...Option) *ZLoggerWrapper {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	return newZeroLogger(service, opts)
}

func newZeroLogger(service string, opts *Options) *ZLoggerWrapper {
	if service == "" {
		service = "chetch"
	}

	var console io.Writer = opts.writer
	if opts.pretty {
		console = prettyConsoleWriter(opts.writer, service)
	}

	out := console
	if len(opts.sinks) > 0 {
		writers := make([]io.Writer, 0, len(opts.sinks)+1)
		writers = append(writers, console)
		writers = append(writers, opts.sinks...)
		out = zerolog.MultiLevelWriter(writers...)
	}

	zctx := zerolog.New(out).With().
		CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1 + opts.skip).
		Timestamp().
		Str(ServiceFieldName, service)

	if opts.eventID != 0 {
		zctx = zctx.Int(EventIDFieldName, opts.eventID)
	}

	z := &ZLoggerWrapper{
		Logger:  zctx.Logger(),
		service: service,
		w:       opts.writer,
		opts:    opts,
	}

	z.SetLogLevel(opts.logLevel)

	return z
}

func prettyConsoleWriter(writer io.Writer, service string) zerolog.ConsoleWriter {
	isTerminal := false
	if f, ok := writer.(*os.File); ok {
		isTerminal = term.IsTerminal(int(f.Fd()))
	}

	output := zerolog.ConsoleWriter{
		Out:           writer,
		NoColor:       !isTerminal,
		TimeFormat:    time.RFC3339,
		FieldsExclude: []string{ServiceFieldName},
	}

	output.FormatTimestamp = func(i interface{}) string {
		s, _ := i.(string)
		parse, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return s
		}

		return parse.Format("15:04:05")
	}

	output.FormatLevel = func(i interface{}) string {
		l := strings.ToUpper(fmt.Sprintf("%-6s", i))

		// colorize the levels in same way as gocore
		switch i {
		case "debug", "trace":
			l = colorize(l, colorBlue, !isTerminal)
		case "info":
			l = colorize(l, colorGreen, !isTerminal)
		case "warn":
			l = colorize(l, colorYellow, !isTerminal)
		case "error", "fatal", "panic":
			l = colorize(l, colorRed, !isTerminal)
		default:
			l = colorize(l, colorWhite, !isTerminal)
		}

		return fmt.Sprintf("| %s|", l)
	}

	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %-6s| %s", service, i)
	}

	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	output.FormatFieldValue = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("%s", i))
	}

	output.FormatCaller = func(i interface{}) string {
		c, _ := i.(string)
		if len(c) == 0 {
			return c
		}

		if cwd, err := os.Getwd(); err == nil {
			if rel, err := filepath.Rel(cwd, c); err == nil {
				c = rel
			}
		}

		split := strings.Split(filepath.ToSlash(c), "/")
		currentElement := len(split) - 1
		c = split[currentElement]
		currentElement--

		for currentElement >= 0 && len(c)+len(split[currentElement])+1 <= 32 {
			c = split[currentElement] + "/" + c
			currentElement--
		}

		return colorize(fmt.Sprintf("%-32s", c), colorBold, !isTerminal)
	}

	return output
}

// cloneOptions copies o so that a derived logger never shares the sink slice of its parent.
func (z *ZLoggerWrapper) cloneOptions() *Options {
	opts := *z.opts
	opts.sinks = append([]io.Writer(nil), z.opts.sinks...)
	opts.logLevel = z.Logger.GetLevel().String()

	return &opts
}

func (z *ZLoggerWrapper) New(service string, options ...Option) Logger {
	opts := z.cloneOptions()
	opts.eventID = 0

	for _, o := range options {
		o(opts)
	}

	return newZeroLogger(service, opts)
}

func (z *ZLoggerWrapper) Duplicate(options ...Option) Logger {
	opts := z.cloneOptions()

	for _, o := range options {
		o(opts)
	}

	return newZeroLogger(z.service, opts)
}

func (z *ZLoggerWrapper) SetLogLevel(logLevel string) {
	z.opts.logLevel = logLevel
	z.Logger = z.Logger.Level(ZerologLevel(logLevel))
}

func (z *ZLoggerWrapper) LogLevel() int {
	return gocoreLevel(z.Logger.GetLevel())
}

func (z *ZLoggerWrapper) Debugf(format string, args ...interface{}) {
	z.Logger.Debug().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Infof(format string, args ...interface{}) {
	z.Logger.Info().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Warnf(format string, args ...interface{}) {
	z.Logger.Warn().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Errorf(format string, args ...interface{}) {
	z.Logger.Error().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Fatalf(format string, args ...interface{}) {
	z.Logger.Fatal().Msgf(format, args...)
}

// Service returns the name the logger was created for.
func (z *ZLoggerWrapper) Service() string {
	return z.service
}

// Write implements the io.Writer interface. This is useful to set as a writer
// for the standard library log.
func (z *ZLoggerWrapper) Write(p []byte) (n int, err error) {
	return z.Logger.Write(p)
}

// colorize returns the string s wrapped in ANSI code c, unless disabled is true or c is 0.
func colorize(s interface{}, c int, disabled bool) string {
	e := os.Getenv("NO_COLOR")
	if e != "" || c == 0 {
		disabled = true
	}

	if disabled {
		return fmt.Sprintf("%s", s)
	}

	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
