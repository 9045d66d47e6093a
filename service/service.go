// Package service runs a unit of work as a supervised background service: it logs every lifecycle
// transition with a fixed event id, turns cancellation into a warning and faults into an error
// entry, and never lets either escape to the host.
package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chetch/services/errors"
	"github.com/chetch/services/tracing"
	"github.com/chetch/services/ulogger"
	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.opentelemetry.io/otel/attribute"
)

// Service implements servicemanager.Service around a Unit.
type Service struct {
	name string
	unit Unit

	logger          ulogger.Logger
	startingLogger  ulogger.Logger
	executingLogger ulogger.Logger
	stoppingLogger  ulogger.Logger

	fsm *fsm.FSM
	now func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	outcome *Outcome

	stopOnce sync.Once
	stopErr  error
}

func New(name string, unit Unit, logger ulogger.Logger) *Service {
	initPrometheusMetrics()

	s := &Service{
		name:            name,
		unit:            unit,
		logger:          logger,
		startingLogger:  logger.Duplicate(ulogger.WithEventID(EventStarting)),
		executingLogger: logger.Duplicate(ulogger.WithEventID(EventExecuting)),
		stoppingLogger:  logger.Duplicate(ulogger.WithEventID(EventStopping)),
		now:             time.Now,
	}

	s.fsm = s.NewFiniteStateMachine()

	return s
}

func (s *Service) Name() string {
	return s.name
}

// State is the current lifecycle state, one of the State constants.
func (s *Service) State() string {
	return s.fsm.Current()
}

// Done is closed when the current run of the unit has returned. It is nil before Start.
func (s *Service) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done
}

// Outcome reports how the run ended, once it has.
func (s *Service) Outcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome == nil {
		return Outcome{}, false
	}

	return *s.outcome, true
}

func (s *Service) timestamp() string {
	return s.now().Format(time.RFC3339Nano)
}

// fire ignores invalid transitions. The fsm drops transitions on a done context, so ctx is detached
// from its cancellation first.
func (s *Service) fire(ctx context.Context, event string) {
	if err := s.fsm.Event(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Debugf("[%s] %s ignored in state %s: %v", s.name, event, s.fsm.Current(), err)
	}
}

// Start launches the unit in the background and returns. The unit's context keeps the values of
// ctx but is only cancelled by Stop. A service starts at most once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fsm.Event(context.WithoutCancel(ctx), fsmEventStart); err != nil {
		return errors.NewServiceStateError("[%s] cannot start service in state %s", s.name, s.fsm.Current(), err)
	}

	s.startingLogger.Infof("Starting service at: %s", s.timestamp())
	prometheusServiceStarts.WithLabelValues(s.name).Inc()

	execCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s.cancel = cancel
	s.done = make(chan struct{})

	go s.execute(execCtx, s.done)

	return nil
}

func (s *Service) execute(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.fire(ctx, fsmEventExecute)
	s.executingLogger.Infof("Service started executing at: %s", s.timestamp())

	executionID := uuid.NewString()

	ctx = context.WithValue(ctx, reporterKey{}, s)
	ctx = context.WithValue(ctx, executionIDKey{}, executionID)

	ctx, span, endSpan := tracing.StartTracing(ctx, s.name+".Execute",
		tracing.WithHistogram(prometheusServiceExecuteDuration.WithLabelValues(s.name)),
		tracing.WithAttributes(
			attribute.String("service", s.name),
			attribute.String("execution_id", executionID),
		),
		tracing.WithLogMessage(s.logger, "[%s] execution %s", s.name, executionID),
	)

	outcome := OutcomeOf(s.run(ctx))

	span.SetTag("outcome", outcome.Kind.String())

	if outcome.Kind == Faulted {
		endSpan(outcome.Err)
	} else {
		endSpan(nil)
	}

	prometheusServiceOutcomes.WithLabelValues(s.name, outcome.Kind.String()).Inc()

	switch outcome.Kind {
	case Completed:
		s.fire(ctx, fsmEventComplete)
		s.executingLogger.Infof("Service finished executing at: %s", s.timestamp())
	case Cancelled:
		s.fire(ctx, fsmEventCancel)
		s.executingLogger.Warnf("Service cancelled at: %s", s.timestamp())
	case Faulted:
		s.fire(ctx, fsmEventFault)
		s.OnError(outcome.Err, EventError)
	}

	s.mu.Lock()
	s.outcome = &outcome
	s.mu.Unlock()
}

// run turns a panic in the unit into an ERR_SERVICE_FAULTED error.
func (s *Service) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = errors.NewServiceFaultedError("[%s] unit panicked", s.name, rErr)
			} else {
				err = errors.NewServiceFaultedError("[%s] unit panicked: %s", s.name, fmt.Sprint(r))
			}
		}
	}()

	return s.unit.Execute(ctx)
}

// OnError logs err as a single error entry with the given event id.
func (s *Service) OnError(err error, eventID int) {
	if err == nil {
		return
	}

	prometheusServiceErrors.WithLabelValues(s.name, errors.GetErrorCategory(err)).Inc()

	s.loggerFor(eventID).Errorf("Exception: %s", err.Error())
}

func (s *Service) loggerFor(eventID int) ulogger.Logger {
	switch eventID {
	case EventError:
		return s.logger
	case EventStarting:
		return s.startingLogger
	case EventExecuting:
		return s.executingLogger
	case EventStopping:
		return s.stoppingLogger
	default:
		return s.logger.Duplicate(ulogger.WithEventID(eventID))
	}
}

// Stop cancels the unit and waits for it to return or for ctx to end, whichever comes first, then
// logs the stopping entry. When ctx ends first an ERR_CONTEXT error is returned and the unit is
// left to finish on its own. Only the first call has an effect.
func (s *Service) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		cancel, done := s.cancel, s.done
		s.mu.Unlock()

		if cancel != nil {
			cancel()

			select {
			case <-done:
			default:
				select {
				case <-done:
				case <-ctx.Done():
					s.stopErr = errors.NewContextError("[%s] stopped before the unit returned", s.name, ctx.Err())
				}
			}
		}

		s.fire(ctx, fsmEventStop)
		s.stoppingLogger.Infof("Stopping service at: %s", s.timestamp())
		s.fire(ctx, fsmEventStopped)
	})

	return s.stopErr
}

// Health is unhealthy once the unit has faulted. With checkLiveness the service is also unhealthy
// before it started and after it stopped.
func (s *Service) Health(_ context.Context, checkLiveness bool) (int, string, error) {
	state := s.State()
	details := fmt.Sprintf(`{"state": %q}`, state)

	if state == StateFaulted {
		return http.StatusServiceUnavailable, details, nil
	}

	if outcome, ok := s.Outcome(); ok && outcome.Kind == Faulted {
		return http.StatusServiceUnavailable, details, nil
	}

	if checkLiveness && (state == StateCreated || state == StateStopping || state == StateStopped) {
		return http.StatusServiceUnavailable, details, nil
	}

	return http.StatusOK, details, nil
}
