package servicemanager

import (
	"context"
	"sync"

	"github.com/chetch/services/settings"
	"github.com/chetch/services/ulogger"
)

// Service is anything the ServiceManager starts and stops. Start must not block for the lifetime
// of the service; long running work belongs in a goroutine that Stop ends.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// HealthChecker is implemented by services that report their health through HealthHandler.
type HealthChecker interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)
}

// Identity is the process-wide name of the hosted application. It names the console logger, the
// event log source and the OS service registration, and never changes after the host is built.
type Identity struct {
	ServiceName string
}

// HostContext is what a service factory receives from the Builder.
type HostContext struct {
	// Args are the process arguments the command line parser did not consume.
	Args     []string
	Identity Identity
	Settings *settings.Settings
	Logger   ulogger.Logger
	Lifetime *Lifetime
}

// NewLogger returns a logger for a named component, sharing the host's output and sinks.
func (h *HostContext) NewLogger(name string) ulogger.Logger {
	return h.Logger.New(name)
}

// Lifetime exposes the host's lifecycle to the services it runs.
type Lifetime struct {
	started       chan struct{}
	stopping      chan struct{}
	stopped       chan struct{}
	stopRequested chan struct{}

	startedOnce   sync.Once
	stoppingOnce  sync.Once
	stoppedOnce   sync.Once
	requestedOnce sync.Once
}

func newLifetime() *Lifetime {
	return &Lifetime{
		started:       make(chan struct{}),
		stopping:      make(chan struct{}),
		stopped:       make(chan struct{}),
		stopRequested: make(chan struct{}),
	}
}

// Started is closed once every service has started.
func (l *Lifetime) Started() <-chan struct{} {
	return l.started
}

// Stopping is closed when the host begins stopping its services.
func (l *Lifetime) Stopping() <-chan struct{} {
	return l.stopping
}

// Stopped is closed when every service has been stopped.
func (l *Lifetime) Stopped() <-chan struct{} {
	return l.stopped
}

// StopRequested is closed by StopApplication.
func (l *Lifetime) StopRequested() <-chan struct{} {
	return l.stopRequested
}

// StopApplication asks the host to shut down. It returns immediately.
func (l *Lifetime) StopApplication() {
	l.requestedOnce.Do(func() { close(l.stopRequested) })
}

func (l *Lifetime) notifyStarted() {
	l.startedOnce.Do(func() { close(l.started) })
}

func (l *Lifetime) notifyStopping() {
	l.stoppingOnce.Do(func() { close(l.stopping) })
}

func (l *Lifetime) notifyStopped() {
	l.stoppedOnce.Do(func() { close(l.stopped) })
}
