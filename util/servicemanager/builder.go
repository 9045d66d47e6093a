package servicemanager

import (
	"context"
	"io"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/settings"
	"github.com/chetch/services/ulogger"
)

// ServiceFactory creates a hosted service once the host's logger and lifetime exist.
type ServiceFactory func(hc *HostContext) (Service, error)

type namedFactory struct {
	name    string
	factory ServiceFactory
}

// Builder assembles a ServiceManager: logging, optional OS service registration and the hosted
// services.
type Builder struct {
	args              []string
	identity          Identity
	settings          *settings.Settings
	ctx               context.Context
	useServiceManager bool
	loggerOptions     []ulogger.Option
	logger            ulogger.Logger
	factories         []namedFactory
}

// NewBuilder starts a host description. args are the process arguments left after the
// command line has been parsed; they are kept for the hosted services.
func NewBuilder(args []string, identity Identity, tSettings *settings.Settings) *Builder {
	return &Builder{
		args:     args,
		identity: identity,
		settings: tSettings,
		ctx:      context.Background(),
	}
}

func (b *Builder) Args() []string {
	return b.args
}

func (b *Builder) WithContext(ctx context.Context) *Builder {
	b.ctx = ctx
	return b
}

// UseServiceManager lets Run hand control to the Windows service control manager when the process
// was started by it. It has no effect elsewhere.
func (b *Builder) UseServiceManager() *Builder {
	b.useServiceManager = true
	return b
}

// ConfigureLogging adds options to the host logger, after the ones derived from the settings.
func (b *Builder) ConfigureLogging(options ...ulogger.Option) *Builder {
	b.loggerOptions = append(b.loggerOptions, options...)
	return b
}

// AddLoggingSink adds a writer that receives every log entry as a JSON line.
func (b *Builder) AddLoggingSink(w io.Writer) *Builder {
	return b.ConfigureLogging(ulogger.WithSink(w))
}

// WithLogger replaces the host logger entirely. Logging options are ignored.
func (b *Builder) WithLogger(logger ulogger.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) AddHostedService(name string, factory ServiceFactory) *Builder {
	b.factories = append(b.factories, namedFactory{name: name, factory: factory})
	return b
}

func (b *Builder) hostLogger() ulogger.Logger {
	if b.logger != nil {
		return b.logger
	}

	options := []ulogger.Option{
		ulogger.WithLevel(b.settings.Logging.Level),
		ulogger.WithLoggerType(b.settings.Logging.Type),
		ulogger.WithPrettyOutput(b.settings.Logging.PrettyLogs),
	}

	return ulogger.New(b.identity.ServiceName, append(options, b.loggerOptions...)...)
}

// Build creates the logger and instantiates every hosted service. A metrics service is added
// first when Metrics:ListenAddress is set, so that it is stopped last.
func (b *Builder) Build() (*ServiceManager, error) {
	if b.settings == nil {
		return nil, errors.NewInvalidArgumentError("settings are required to build the host")
	}

	if b.identity.ServiceName == "" {
		return nil, errors.NewInvalidArgumentError("service name is required to build the host")
	}

	logger := b.hostLogger()

	sm := NewServiceManager(b.ctx, b.identity, b.settings, logger)
	sm.useServiceManager = b.useServiceManager

	hc := &HostContext{
		Args:     b.args,
		Identity: b.identity,
		Settings: b.settings,
		Logger:   logger,
		Lifetime: sm.lifetime,
	}

	if b.settings.Metrics.ListenAddress != "" {
		sm.AddService("Metrics", NewMetricsService(hc.NewLogger("metrics"), b.settings.Metrics, sm.HealthHandler))
	}

	for _, f := range b.factories {
		service, err := f.factory(hc)
		if err != nil {
			return nil, errors.NewServiceError("[%s] failed to create service", f.name, err)
		}

		sm.AddService(f.name, service)
	}

	return sm, nil
}
