package daemon

import (
	"context"
	"io"

	"github.com/chetch/services/settings"
	"github.com/chetch/services/ulogger"
)

// Option is a functional option type for configuring the Daemon.
type Option func(*Daemon)

// WithContext allows setting a custom context for the Daemon. Cancelling it stops the host.
func WithContext(ctx context.Context) Option {
	return func(d *Daemon) {
		d.Ctx = ctx
	}
}

// WithProgname sets the program name shown in the command line help.
func WithProgname(progname string) Option {
	return func(d *Daemon) {
		d.progname = progname
	}
}

// WithOutput redirects the command line help and version output.
func WithOutput(w io.Writer) Option {
	return func(d *Daemon) {
		d.output = w
	}
}

// WithLogWriter redirects the console log output of the host.
func WithLogWriter(w io.Writer) Option {
	return func(d *Daemon) {
		d.logOptions = append(d.logOptions, ulogger.WithWriter(w))
	}
}

// WithLogger replaces the host logger. The settings no longer influence logging.
func WithLogger(logger ulogger.Logger) Option {
	return func(d *Daemon) {
		d.logger = logger
	}
}

// WithLoadOptions is passed to settings.Load when reading the settings file.
func WithLoadOptions(opts ...settings.LoadOption) Option {
	return func(d *Daemon) {
		d.loadOptions = append(d.loadOptions, opts...)
	}
}
