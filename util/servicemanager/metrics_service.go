package servicemanager

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/settings"
	"github.com/chetch/services/ulogger"
	"github.com/chetch/services/util/retry"
	"github.com/felixge/fgprof"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthFunc func(ctx context.Context, checkLiveness bool) (int, string, error)

// MetricsService serves the Prometheus registry, the health of the hosted services and the
// registered listeners over HTTP.
type MetricsService struct {
	logger   ulogger.Logger
	settings settings.MetricsSettings
	health   HealthFunc

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

func NewMetricsService(logger ulogger.Logger, tSettings settings.MetricsSettings, health HealthFunc) *MetricsService {
	return &MetricsService{
		logger:   logger,
		settings: tSettings,
		health:   health,
	}
}

func (m *MetricsService) handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(m.settings.Path, promhttp.Handler())

	if m.settings.Profiling {
		mux.Handle("/debug/fgprof", fgprof.Handler())
	}

	mux.HandleFunc("/services", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		_ = json.NewEncoder(w).Encode(GetListenerInfos())
	})

	if m.health != nil {
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			status, details, err := m.health(r.Context(), r.URL.Query().Get("liveness") == "true")
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(details))
		})
	}

	return mux
}

// Start binds the listen address, retrying while it is still held by a previous instance.
func (m *MetricsService) Start(ctx context.Context) error {
	listener, err := retry.Retry(ctx, m.logger, func() (net.Listener, error) {
		l, err := net.Listen("tcp", m.settings.ListenAddress)
		if err != nil {
			return nil, errors.NewProcessingError("listen on %s", m.settings.ListenAddress, err)
		}

		return l, nil
	},
		retry.WithRetryCount(m.settings.ListenRetries),
		retry.WithExponentialBackoff(),
		retry.WithBackoffDurationType(m.settings.ListenBackoff),
		retry.WithMaxBackoff(5*time.Second),
		retry.WithMessage("Metrics listen on "+m.settings.ListenAddress+" failed"),
	)
	if err != nil {
		return errors.NewServiceError("failed to listen on %s", m.settings.ListenAddress, err)
	}

	server := &http.Server{
		Handler:           m.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.mu.Lock()
	m.server = server
	m.listener = listener
	m.mu.Unlock()

	AddListenerInfo(fmt.Sprintf("Metrics: http://%s%s", listener.Addr(), m.settings.Path))

	m.logger.Infof("Metrics listening on %s%s", listener.Addr(), m.settings.Path)

	if m.settings.Profiling {
		AddListenerInfo(fmt.Sprintf("FGProf: http://%s/debug/fgprof", listener.Addr()))
		m.logger.Infof("FGProf available at http://%s/debug/fgprof", listener.Addr())
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Errorf("Metrics server failed: %v", err)
		}
	}()

	return nil
}

func (m *MetricsService) Stop(ctx context.Context) error {
	m.mu.Lock()
	server := m.server
	m.mu.Unlock()

	if server == nil {
		return nil
	}

	if err := server.Shutdown(ctx); err != nil {
		return errors.NewServiceError("failed to shut down metrics server", err)
	}

	return nil
}

// Addr is the address the service listens on, empty before Start.
func (m *MetricsService) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listener == nil {
		return ""
	}

	return m.listener.Addr().String()
}
