package servicemanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/settings"
	"github.com/chetch/services/ulogger"
	"golang.org/x/sync/errgroup"
)

var (
	defaultSignalNotify = signal.Notify
	defaultSignalStop   = signal.Stop

	// replaced in tests
	signalNotify = defaultSignalNotify
	signalStop   = defaultSignalStop
)

type serviceWrapper struct {
	name     string
	instance Service
}

var (
	mu        sync.RWMutex
	listeners []string
)

// ServiceManager hosts a set of services for the lifetime of the process: it starts them in
// registration order, waits for a shutdown signal and stops them in reverse order.
type ServiceManager struct {
	identity          Identity
	settings          *settings.Settings
	logger            ulogger.Logger
	lifetime          *Lifetime
	useServiceManager bool
	ctx               context.Context

	services []serviceWrapper

	startedMu sync.Mutex
	started   []serviceWrapper

	stopOnce sync.Once
	stopErr  error
}

// NewServiceManager creates a host for the given identity. Services are added with AddService
// or through a Builder.
func NewServiceManager(ctx context.Context, identity Identity, tSettings *settings.Settings, logger ulogger.Logger) *ServiceManager {
	if tSettings == nil {
		tSettings = settings.NewSettings(settings.NewConfig(nil, settings.WithoutEnv()))
	}

	return &ServiceManager{
		identity: identity,
		settings: tSettings,
		logger:   logger,
		lifetime: newLifetime(),
		ctx:      ctx,
		services: make([]serviceWrapper, 0),
	}
}

// AddListenerInfo adds a listener name to the global listeners list in a thread-safe manner.
// This function is used to track active listeners for monitoring and debugging purposes.
func AddListenerInfo(name string) {
	mu.Lock()
	defer mu.Unlock()

	listeners = append(listeners, name)
}

// GetListenerInfos returns a sorted copy of all registered listener names.
func GetListenerInfos() []string {
	mu.RLock()
	defer mu.RUnlock()

	sortedListeners := make([]string, len(listeners))
	copy(sortedListeners, listeners)
	sort.Strings(sortedListeners)

	return sortedListeners
}

func (sm *ServiceManager) Identity() Identity {
	return sm.identity
}

func (sm *ServiceManager) Logger() ulogger.Logger {
	return sm.logger
}

func (sm *ServiceManager) Lifetime() *Lifetime {
	return sm.lifetime
}

// AddService registers a service. Services must be added before Start.
func (sm *ServiceManager) AddService(name string, service Service) {
	sm.logger.Infof("⚪️ Registering service %s...", name)

	sm.services = append(sm.services, serviceWrapper{
		name:     name,
		instance: service,
	})
}

// StopApplication asks Run to stop the services and return.
func (sm *ServiceManager) StopApplication() {
	sm.lifetime.StopApplication()
}

// Run starts every service and blocks until SIGINT, SIGTERM, StopApplication or, when running
// under the Windows service control manager, a stop request. It then stops the services within
// the configured shutdown timeout.
func (sm *ServiceManager) Run() error {
	if sm.useServiceManager && IsWindows() {
		isService, err := isWindowsService()
		if err != nil {
			return errors.NewServiceError("[%s] failed to determine whether running as a service", sm.identity.ServiceName, err)
		}

		if isService {
			return sm.runService()
		}
	}

	return sm.runConsole()
}

func (sm *ServiceManager) runConsole() error {
	sigs := make(chan os.Signal, 1)
	signalNotify(sigs, syscall.SIGINT, syscall.SIGTERM)

	defer signalStop(sigs)

	if err := sm.Start(sm.ctx); err != nil {
		return err
	}

	select {
	case <-sigs:
		sm.logger.Infof("🟠 Received shutdown signal. Stopping services...")
	case <-sm.lifetime.StopRequested():
		sm.logger.Infof("🟠 Application stop requested. Stopping services...")
	case <-sm.ctx.Done():
		sm.logger.Infof("🟠 Host context done. Stopping services...")
	}

	return sm.shutdown()
}

func (sm *ServiceManager) shutdown() error {
	stopCtx, stopCancel := context.WithTimeout(context.Background(), sm.settings.Host.ShutdownTimeout)
	defer stopCancel()

	return sm.Stop(stopCtx)
}

// Start starts the registered services, one after the other or concurrently when
// Host:ServicesStartConcurrently is set. When a service fails to start, the services already
// started are stopped again and the start error is returned.
func (sm *ServiceManager) Start(ctx context.Context) error {
	var err error

	if sm.settings.Host.ServicesStartConcurrently {
		err = sm.startConcurrently(ctx)
	} else {
		err = sm.startSequentially(ctx)
	}

	if err != nil {
		sm.logger.Errorf("Error starting services: %v", err)

		stopCtx, stopCancel := context.WithTimeout(context.Background(), sm.settings.Host.ShutdownTimeout)
		defer stopCancel()

		if stopErr := sm.Stop(stopCtx); stopErr != nil {
			sm.logger.Warnf("Failed to stop services after start error: %v", stopErr)
		}

		return err
	}

	sm.lifetime.notifyStarted()

	return nil
}

func (sm *ServiceManager) startSequentially(ctx context.Context) error {
	for _, service := range sm.services {
		if err := sm.startService(ctx, service); err != nil {
			return err
		}
	}

	return nil
}

func (sm *ServiceManager) startConcurrently(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	for _, service := range sm.services {
		g.Go(func() error {
			return sm.startService(gCtx, service)
		})
	}

	return g.Wait()
}

func (sm *ServiceManager) startService(ctx context.Context, service serviceWrapper) error {
	sm.logger.Infof("🟢 Starting service %s...", service.name)

	if err := service.instance.Start(ctx); err != nil {
		return errors.NewServiceError("[%s] failed to start service", service.name, err)
	}

	sm.startedMu.Lock()
	sm.started = append(sm.started, service)
	sm.startedMu.Unlock()

	return nil
}

// Stop stops every started service in reverse start order, or concurrently when
// Host:ServicesStopConcurrently is set, and returns the joined stop errors. Only the first call
// stops anything; later calls return the same result.
func (sm *ServiceManager) Stop(ctx context.Context) error {
	sm.stopOnce.Do(func() {
		sm.lifetime.notifyStopping()

		sm.startedMu.Lock()
		started := append([]serviceWrapper(nil), sm.started...)
		sm.startedMu.Unlock()

		var errs []error
		if sm.settings.Host.ServicesStopConcurrently {
			errs = sm.stopConcurrently(ctx, started)
		} else {
			errs = sm.stopSequentially(ctx, started)
		}

		sm.logger.Infof("🛑 All services stopped.")
		sm.lifetime.notifyStopped()

		if len(errs) > 0 {
			sm.stopErr = errors.Join(errs...)
		}
	})

	return sm.stopErr
}

func (sm *ServiceManager) stopSequentially(ctx context.Context, started []serviceWrapper) []error {
	var errs []error

	for i := len(started) - 1; i >= 0; i-- {
		if err := sm.stopService(ctx, started[i]); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func (sm *ServiceManager) stopConcurrently(ctx context.Context, started []serviceWrapper) []error {
	var (
		errsMu sync.Mutex
		errs   []error
		g      errgroup.Group
	)

	for _, service := range started {
		g.Go(func() error {
			if err := sm.stopService(ctx, service); err != nil {
				errsMu.Lock()
				errs = append(errs, err)
				errsMu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	return errs
}

func (sm *ServiceManager) stopService(ctx context.Context, service serviceWrapper) error {
	sm.logger.Infof("🟠 Stopping service %s...", service.name)

	start := time.Now()

	if err := service.instance.Stop(ctx); err != nil {
		sm.logger.Warnf("[%s] Failed to stop service: %v", service.name, err)
		return errors.NewServiceError("[%s] failed to stop service", service.name, err)
	}

	sm.logger.Infof("[%s] Service stopped gracefully in %s", service.name, time.Since(start))

	return nil
}

// HealthHandler aggregates health status from all registered services and returns
// an overall health status code, JSON response, and error. It checks each service's
// health and returns HTTP 503 if any service is unhealthy, otherwise HTTP 200.
// Services that do not implement HealthChecker are left out.
func (sm *ServiceManager) HealthHandler(ctx context.Context, checkLiveness bool) (int, string, error) {
	overallStatus := http.StatusOK
	msgs := make([]string, 0, len(sm.services))

	for _, service := range sm.services {
		checker, ok := service.instance.(HealthChecker)
		if !ok {
			continue
		}

		status, details, err := checker.Health(ctx, checkLiveness)

		if err != nil || status != http.StatusOK {
			overallStatus = http.StatusServiceUnavailable
		}

		if details == "" {
			details = "{}"
		}

		serviceName, _ := json.Marshal(service.name)

		jsonStr := fmt.Sprintf(`{"service": %s,"status": "%d","details": %s}`, serviceName, status, details)

		msgs = append(msgs, jsonStr)
	}

	jsonStr := fmt.Sprintf(`{"status": "%d", "services": [%s]}`, overallStatus, strings.Join(msgs, ",\n"))

	var jsonFormatted bytes.Buffer

	err := json.Indent(&jsonFormatted, []byte(jsonStr), "", "  ")
	if err == nil {
		jsonStr = jsonFormatted.String()
	}

	return overallStatus, jsonStr, nil
}
