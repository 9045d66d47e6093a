package servicemanager

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"runtime"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/settings"
	"github.com/chetch/services/ulogger"
	"github.com/chetch/services/util/test/mocklogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.events...)
}

type fakeService struct {
	name     string
	rec      *recorder
	startErr error
	stopErr  error
	health   int
}

func (f *fakeService) Start(context.Context) error {
	f.rec.add("start " + f.name)
	return f.startErr
}

func (f *fakeService) Stop(context.Context) error {
	f.rec.add("stop " + f.name)
	return f.stopErr
}

func (f *fakeService) Health(context.Context, bool) (int, string, error) {
	return f.health, `{"name": "` + f.name + `"}`, nil
}

func testSettings(values map[string]interface{}) *settings.Settings {
	return settings.NewSettings(settings.NewConfig(values, settings.WithoutEnv()))
}

func newTestManager(t *testing.T, values map[string]interface{}) *ServiceManager {
	t.Helper()

	return NewServiceManager(context.Background(), Identity{ServiceName: "Chetch"}, testSettings(values), mocklogger.NewTestLogger())
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestStartAndStopOrder(t *testing.T) {
	rec := &recorder{}
	sm := newTestManager(t, nil)

	sm.AddService("A", &fakeService{name: "A", rec: rec})
	sm.AddService("B", &fakeService{name: "B", rec: rec})
	sm.AddService("C", &fakeService{name: "C", rec: rec})

	require.NoError(t, sm.Start(context.Background()))
	assert.True(t, closed(sm.Lifetime().Started()))
	assert.False(t, closed(sm.Lifetime().Stopping()))

	require.NoError(t, sm.Stop(context.Background()))
	assert.True(t, closed(sm.Lifetime().Stopping()))
	assert.True(t, closed(sm.Lifetime().Stopped()))

	assert.Equal(t, []string{"start A", "start B", "start C", "stop C", "stop B", "stop A"}, rec.all())

	// a second stop does nothing
	require.NoError(t, sm.Stop(context.Background()))
	assert.Len(t, rec.all(), 6)
}

func TestStartFailureStopsStartedServices(t *testing.T) {
	rec := &recorder{}
	sm := newTestManager(t, nil)

	sm.AddService("A", &fakeService{name: "A", rec: rec})
	sm.AddService("B", &fakeService{name: "B", rec: rec, startErr: errors.NewProcessingError("no port")})
	sm.AddService("C", &fakeService{name: "C", rec: rec})

	err := sm.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServiceError))
	assert.True(t, errors.Is(err, errors.ErrProcessing))

	assert.Equal(t, []string{"start A", "start B", "stop A"}, rec.all())
	assert.False(t, closed(sm.Lifetime().Started()))
	assert.True(t, closed(sm.Lifetime().Stopped()))
}

func TestStopJoinsErrors(t *testing.T) {
	rec := &recorder{}
	sm := newTestManager(t, nil)

	sm.AddService("A", &fakeService{name: "A", rec: rec, stopErr: errors.NewContextError("A timed out")})
	sm.AddService("B", &fakeService{name: "B", rec: rec})
	sm.AddService("C", &fakeService{name: "C", rec: rec, stopErr: errors.NewProcessingError("C failed")})

	require.NoError(t, sm.Start(context.Background()))

	err := sm.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A timed out")
	assert.Contains(t, err.Error(), "C failed")

	// every service was still asked to stop
	assert.Equal(t, []string{"start A", "start B", "start C", "stop C", "stop B", "stop A"}, rec.all())
}

func TestConcurrentStartAndStop(t *testing.T) {
	rec := &recorder{}
	sm := newTestManager(t, map[string]interface{}{
		"Host": map[string]interface{}{
			"ServicesStartConcurrently": true,
			"ServicesStopConcurrently":  true,
		},
	})

	for _, name := range []string{"A", "B", "C", "D"} {
		sm.AddService(name, &fakeService{name: name, rec: rec})
	}

	require.NoError(t, sm.Start(context.Background()))
	require.NoError(t, sm.Stop(context.Background()))

	assert.ElementsMatch(t, []string{
		"start A", "start B", "start C", "start D",
		"stop A", "stop B", "stop C", "stop D",
	}, rec.all())
}

func TestRunStopsOnStopApplication(t *testing.T) {
	rec := &recorder{}
	sm := newTestManager(t, nil)
	sm.AddService("A", &fakeService{name: "A", rec: rec})

	done := make(chan error, 1)

	go func() {
		done <- sm.Run()
	}()

	select {
	case <-sm.Lifetime().Started():
	case <-time.After(5 * time.Second):
		t.Fatal("host did not start")
	}

	sm.StopApplication()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("host did not stop")
	}

	assert.Equal(t, []string{"start A", "stop A"}, rec.all())
}

func TestRunStopsOnSignal(t *testing.T) {
	notified := make(chan chan<- os.Signal, 1)

	signalNotify = func(c chan<- os.Signal, _ ...os.Signal) { notified <- c }
	signalStop = func(chan<- os.Signal) {}

	t.Cleanup(func() {
		signalNotify = defaultSignalNotify
		signalStop = defaultSignalStop
	})

	rec := &recorder{}
	logger := mocklogger.NewTestLogger()
	sm := NewServiceManager(context.Background(), Identity{ServiceName: "Chetch"}, testSettings(nil), logger)
	sm.AddService("A", &fakeService{name: "A", rec: rec})

	done := make(chan error, 1)

	go func() {
		done <- sm.Run()
	}()

	sigs := <-notified
	<-sm.Lifetime().Started()
	sigs <- syscall.SIGTERM

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("host did not stop")
	}

	assert.Equal(t, []string{"start A", "stop A"}, rec.all())

	var messages []string
	for _, e := range logger.Entries() {
		messages = append(messages, e.Message)
	}

	assert.Contains(t, messages, "🟠 Received shutdown signal. Stopping services...")
	assert.Contains(t, messages, "🛑 All services stopped.")
}

func TestRunReturnsStartError(t *testing.T) {
	sm := newTestManager(t, nil)
	sm.AddService("A", &fakeService{name: "A", rec: &recorder{}, startErr: errors.NewProcessingError("nope")})

	err := sm.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServiceError))
}

func TestRunWithServiceManagerOutsideSCM(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("svc.IsWindowsService inspects the parent process")
	}

	sm := newTestManager(t, nil)
	sm.useServiceManager = true
	sm.AddService("A", &fakeService{name: "A", rec: &recorder{}})

	go func() {
		<-sm.Lifetime().Started()
		sm.StopApplication()
	}()

	require.NoError(t, sm.Run())
}

func TestHealthHandler(t *testing.T) {
	rec := &recorder{}
	sm := newTestManager(t, nil)

	healthy := &fakeService{name: "A", rec: rec, health: http.StatusOK}
	sm.AddService("A", healthy)

	status, body, err := sm.HealthHandler(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"service": "A"`)

	sm.AddService("B", &fakeService{name: "B", rec: rec, health: http.StatusServiceUnavailable})

	status, _, err = sm.HealthHandler(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestHealthHandlerEscapesServiceNames(t *testing.T) {
	sm := newTestManager(t, nil)
	sm.AddService(`Quoted "svc" \ path`, &fakeService{name: "A", rec: &recorder{}, health: http.StatusOK})

	status, body, err := sm.HealthHandler(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	require.True(t, json.Valid([]byte(body)), body)

	var report struct {
		Services []struct {
			Service string `json:"service"`
		} `json:"services"`
	}

	require.NoError(t, json.Unmarshal([]byte(body), &report))
	require.Len(t, report.Services, 1)
	assert.Equal(t, `Quoted "svc" \ path`, report.Services[0].Service)
}

func TestAddListenerInfo(t *testing.T) {
	mu.Lock()
	listeners = make([]string, 0)
	mu.Unlock()

	AddListenerInfo("b")
	AddListenerInfo("a")

	assert.Equal(t, []string{"a", "b"}, GetListenerInfos())
}

func TestIsWindows(t *testing.T) {
	assert.Equal(t, runtime.GOOS == "windows", IsWindows())
}

func TestBuilder(t *testing.T) {
	rec := &recorder{}
	tSettings := testSettings(map[string]interface{}{
		"Logging": map[string]interface{}{"LogLevel": map[string]interface{}{"Default": "Warning"}},
	})

	var captured *HostContext

	sm, err := NewBuilder([]string{"extra"}, Identity{ServiceName: "Acme"}, tSettings).
		ConfigureLogging(ulogger.WithWriter(io.Discard)).
		UseServiceManager().
		AddHostedService("A", func(hc *HostContext) (Service, error) {
			captured = hc
			return &fakeService{name: "A", rec: rec}, nil
		}).
		Build()
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "Acme", captured.Identity.ServiceName)
	assert.Same(t, tSettings, captured.Settings)
	assert.Same(t, sm.Lifetime(), captured.Lifetime)
	assert.NotNil(t, captured.NewLogger("component"))

	assert.True(t, sm.useServiceManager)
	assert.Equal(t, "Acme", sm.Identity().ServiceName)
	assert.Equal(t, "warn", sm.Logger().(*ulogger.ZLoggerWrapper).GetLevel().String())
	require.Len(t, sm.services, 1)
}

func TestBuilderErrors(t *testing.T) {
	_, err := NewBuilder(nil, Identity{}, testSettings(nil)).Build()
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = NewBuilder(nil, Identity{ServiceName: "x"}, nil).Build()
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = NewBuilder(nil, Identity{ServiceName: "x"}, testSettings(nil)).
		WithLogger(mocklogger.NewTestLogger()).
		AddHostedService("broken", func(*HostContext) (Service, error) {
			return nil, errors.NewConfigurationError("missing key")
		}).
		Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServiceError))
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}
