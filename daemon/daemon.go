// Package daemon is the process bootstrap: it reads appsettings.json, derives the service
// identity, wires logging, tracing and the event log, and runs one supervised unit of work in the
// host until the process is asked to stop.
package daemon

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/service"
	"github.com/chetch/services/settings"
	"github.com/chetch/services/tracing"
	"github.com/chetch/services/ulogger"
	"github.com/chetch/services/util/eventlog"
	"github.com/chetch/services/util/servicemanager"
	"github.com/urfave/cli/v2"
)

// DefaultSettingsFile is read when no --config flag is given.
const DefaultSettingsFile = "appsettings.json"

// DefaultServiceName is the identity used when Logging:EventLog:SourceName is absent.
const DefaultServiceName = settings.DefaultServiceName

// Factory creates the unit of work hosted by the daemon.
type Factory func(hc *servicemanager.HostContext) (service.Unit, error)

type Daemon struct {
	Ctx context.Context

	progname    string
	output      io.Writer
	logger      ulogger.Logger
	logOptions  []ulogger.Option
	loadOptions []settings.LoadOption

	ServiceManager *servicemanager.ServiceManager
	Service        *service.Service
	traceSource    *ulogger.TraceSource
}

func New(opts ...Option) *Daemon {
	d := &Daemon{
		Ctx:      context.Background(),
		progname: filepath.Base(os.Args[0]),
		output:   os.Stdout,
	}

	// Apply functional options
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run is New().Run(args, factory).
func Run(args []string, factory Factory) error {
	return New().Run(args, factory)
}

// TraceSource is the diagnostic source created from Tracing:Level, nil when tracing is off.
func (d *Daemon) TraceSource() *ulogger.TraceSource {
	return d.traceSource
}

// Run parses args, loads the settings and hosts the unit created by factory until the host is
// stopped. Arguments that are not flags are handed to the host builder. Configuration errors are
// returned before anything is started.
func (d *Daemon) Run(args []string, factory Factory) error {
	app := &cli.App{
		Name:                      d.progname,
		Usage:                     "runs a supervised background service",
		Writer:                    d.output,
		ErrWriter:                 d.output,
		HideVersion:               true,
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   DefaultSettingsFile,
				Usage:   "path of the JSON settings file",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "override a setting, as Section:Key=value (repeatable)",
			},
		},
		Action: func(c *cli.Context) error {
			return d.start(c.String("config"), c.StringSlice("set"), c.Args().Slice(), factory)
		},
	}

	return app.Run(append([]string{d.progname}, args...))
}

func (d *Daemon) start(configFile string, overrides, args []string, factory Factory) error {
	cfg, err := GetAppSettings(configFile, d.loadOptions...)
	if err != nil {
		return err
	}

	if err = cfg.ApplyOverrides(overrides); err != nil {
		return err
	}

	tSettings := settings.NewSettings(cfg)
	identity := ResolveServiceName(tSettings)

	if d.traceSource, err = CreateTraceSource(cfg, identity.ServiceName); err != nil {
		return err
	}

	shutdownTracer, err := tracing.InitTracer(d.Ctx, identity.ServiceName, tSettings.Tracing)
	if err != nil {
		return err
	}

	builder := servicemanager.NewBuilder(args, identity, tSettings).
		WithContext(d.Ctx).
		UseServiceManager().
		ConfigureLogging(d.logOptions...)

	if d.logger != nil {
		builder.WithLogger(d.logger)
	}

	var eventLogErr error

	if eventlog.Supported() {
		sink, err := eventlog.Open(identity.ServiceName, tSettings.Logging.EventLog.Level)
		if err != nil {
			eventLogErr = err
		} else {
			defer sink.Close()

			builder.AddLoggingSink(sink)
		}
	}

	builder.AddHostedService(identity.ServiceName, func(hc *servicemanager.HostContext) (servicemanager.Service, error) {
		unit, err := factory(hc)
		if err != nil {
			return nil, err
		}

		d.Service = service.New(identity.ServiceName, unit, hc.Logger)

		return d.Service, nil
	})

	sm, err := builder.Build()
	if err != nil {
		return err
	}

	d.ServiceManager = sm
	logger := sm.Logger()

	if eventLogErr != nil {
		logger.Warnf("Event log unavailable, logging to the console only: %v", eventLogErr)
	}

	d.trace(ulogger.SourceLevelInformation, "%s host starting with %s", identity.ServiceName, cfg.File())

	runErr := sm.Run()

	d.trace(ulogger.SourceLevelInformation, "%s host stopped", identity.ServiceName)

	if err := shutdownTracer(context.Background()); err != nil {
		logger.Warnf("Failed to flush traces: %v", err)
	}

	return runErr
}

func (d *Daemon) trace(level ulogger.SourceLevel, format string, args ...interface{}) {
	if d.traceSource != nil {
		d.traceSource.TraceEvent(level, 0, format, args...)
	}
}

// GetAppSettings reads the settings file. A relative filename that does not exist in the working
// directory is looked up next to the executable. An empty filename means DefaultSettingsFile.
// A missing or malformed file is an ERR_CONFIGURATION error.
func GetAppSettings(filename string, opts ...settings.LoadOption) (*settings.Config, error) {
	if filename == "" {
		filename = DefaultSettingsFile
	}

	return settings.Load(resolveSettingsPath(filename), opts...)
}

func resolveSettingsPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}

	if _, err := os.Stat(filename); err == nil {
		return filename
	}

	exe, err := os.Executable()
	if err != nil {
		return filename
	}

	candidate := filepath.Join(filepath.Dir(exe), filename)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return filename
}

// ResolveServiceName derives the process identity from Logging:EventLog:SourceName.
func ResolveServiceName(tSettings *settings.Settings) servicemanager.Identity {
	name := strings.TrimSpace(tSettings.ServiceName)
	if name == "" {
		name = DefaultServiceName
	}

	return servicemanager.Identity{ServiceName: name}
}

// CreateTraceSource returns a trace source named name with one console listener at the level set
// by Tracing:Level. It returns nil when the level is absent, empty or None, and an
// ERR_CONFIGURATION error when the level is not recognised.
func CreateTraceSource(cfg *settings.Config, name string) (*ulogger.TraceSource, error) {
	value, found := cfg.GetString(settings.KeyTracingLevel)
	value = strings.TrimSpace(value)

	if !found || value == "" || strings.EqualFold(value, "None") {
		return nil, nil
	}

	level, ok := ulogger.ParseSourceLevel(value)
	if !ok {
		return nil, errors.NewConfigurationError("unknown %s %q", settings.KeyTracingLevel, value)
	}

	source := ulogger.NewTraceSource(name, level)
	source.AddListener(ulogger.NewConsoleTraceListener(nil))

	return source, nil
}
