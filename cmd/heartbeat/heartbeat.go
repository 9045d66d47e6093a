// Package heartbeat is the example service shipped with the module: it logs a heartbeat on a
// fixed interval until the host stops it.
package heartbeat

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/service"
	"github.com/chetch/services/tracing"
	"github.com/chetch/services/ulogger"
	"github.com/chetch/services/util/servicemanager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/atomic"
)

const (
	KeyInterval     = "Heartbeat:Interval"
	DefaultInterval = 5 * time.Second
)

var (
	prometheusHeartbeats      prometheus.Counter
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(func() {
		prometheusHeartbeats = promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "chetch",
				Subsystem: "heartbeat",
				Name:      "beats_total",
				Help:      "Number of heartbeats logged",
			},
		)
	})
}

type Heartbeat struct {
	logger   ulogger.Logger
	interval time.Duration
	beats    *atomic.Uint64
}

// New is a daemon.Factory. The interval comes from Heartbeat:Interval.
func New(hc *servicemanager.HostContext) (service.Unit, error) {
	interval := hc.Settings.GetDuration(KeyInterval, DefaultInterval)
	if interval <= 0 {
		return nil, errors.NewConfigurationError("%s must be positive, got %s", KeyInterval, interval)
	}

	initPrometheusMetrics()

	return &Heartbeat{
		logger:   hc.NewLogger("heartbeat"),
		interval: interval,
		beats:    atomic.NewUint64(0),
	}, nil
}

func (h *Heartbeat) Execute(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.Infof("💓 Heartbeat every %s (execution %s)", h.interval, service.ExecutionID(ctx))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			h.beat(ctx, t)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context, t time.Time) {
	_, span, endSpan := tracing.StartTracing(ctx, "heartbeat.Beat",
		tracing.WithCounter(prometheusHeartbeats),
	)

	n := h.beats.Inc()
	span.SetTag("beat", strconv.FormatUint(n, 10))

	h.logger.Debugf("💓 %d at %s", n, t.Format(time.RFC3339))

	endSpan(nil)
}

// Beats is the number of heartbeats so far.
func (h *Heartbeat) Beats() uint64 {
	return h.beats.Load()
}
