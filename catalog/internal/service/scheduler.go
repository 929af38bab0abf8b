package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Alturino/salesrep/catalog/internal/common/otel"
	inErrors "github.com/Alturino/salesrep/internal/errors"
	"github.com/Alturino/salesrep/internal/log"
	inOtel "github.com/Alturino/salesrep/internal/otel"
)

var refreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "salesrep",
		Subsystem: "catalog",
		Name:      "refresh_total",
		Help:      "Scheduled catalog refreshes by scheduler and result.",
	},
	[]string{"scheduler", "result"},
)

type (
	RefreshFunc     func(c context.Context) error
	TickerFunc      func(d time.Duration) (ticks <-chan time.Time, stop func())
	SchedulerOption func(*Scheduler)
)

func WithRefreshTimeout(timeout time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithReporter(report Reporter) SchedulerOption {
	return func(s *Scheduler) { s.report = report }
}

func WithTicker(tick TickerFunc) SchedulerOption {
	return func(s *Scheduler) { s.tick = tick }
}

func newTicker(d time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(d)
	return ticker.C, ticker.Stop
}

// Scheduler polls refresh at a fixed interval between Start and Stop.
type Scheduler struct {
	refresh  RefreshFunc
	report   Reporter
	tick     TickerFunc
	name     string
	interval time.Duration
	timeout  time.Duration

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	lastAt    time.Time
	lastErr   error
	refreshes int
}

type SchedulerStatus struct {
	LastRefreshAt time.Time `json:"last_refresh_at"`
	Name          string    `json:"name"`
	LastError     string    `json:"last_error,omitempty"`
	Interval      string    `json:"interval"`
	Refreshes     int       `json:"refreshes"`
	Polling       bool      `json:"polling"`
}

func NewScheduler(name string, refresh RefreshFunc, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	done := make(chan struct{})
	close(done)
	s := &Scheduler{
		name:     name,
		refresh:  refresh,
		interval: interval,
		timeout:  30 * time.Second,
		report:   func(context.Context, error) {},
		tick:     newTicker,
		done:     done,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start refreshes immediately and then once per interval. Calling Start
// while polling does nothing.
func (s *Scheduler) Start(c context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Scheduler Start").
		Str(log.KeyScheduler, s.name).
		Dur(log.KeyInterval, s.interval).
		Logger()

	if s.cancel != nil {
		logger.Debug().Msg("scheduler already polling")
		return
	}

	c, cancel := context.WithCancel(logger.WithContext(c))
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go s.run(c, done)
	logger.Info().Msg("started scheduler")
}

// Stop ends polling. A refresh already running is left to finish; Done
// reports when it has.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

func (s *Scheduler) IsPolling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := SchedulerStatus{
		Name:          s.name,
		Polling:       s.cancel != nil,
		Interval:      s.interval.String(),
		LastRefreshAt: s.lastAt,
		Refreshes:     s.refreshes,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// Done is closed once the most recently started loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Scheduler) run(c context.Context, done chan struct{}) {
	defer close(done)
	defer s.release(done)

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Scheduler run").Logger()

	ticks, stop := s.tick(s.interval)
	defer stop()

	s.refreshOnce(c)
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped scheduler")
			return
		case <-ticks:
			if c.Err() != nil {
				logger.Info().Msg("stopped scheduler")
				return
			}
			s.refreshOnce(c)
		}
	}
}

// release marks the scheduler stopped when the loop exits because its scope
// ended rather than through Stop. A loop started after this one is left alone.
func (s *Scheduler) release(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

// refreshOnce runs detached from the loop context so Stop cannot abort a
// refresh halfway through its commit.
func (s *Scheduler) refreshOnce(c context.Context) {
	c, cancel := context.WithTimeout(context.WithoutCancel(c), s.timeout)
	defer cancel()

	c, span := otel.Tracer.Start(c, "Scheduler refresh")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Scheduler refresh").
		Str(log.KeyScheduler, s.name).
		Str(log.KeyProcess, "refreshing").
		Logger()

	logger.Trace().Msg("refreshing")
	err := s.refresh(logger.WithContext(c))
	if err != nil {
		err = fmt.Errorf("failed scheduled refresh of %s with error=%w", s.name, err)
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Str("kind", inErrors.Kind(err)).Msg(err.Error())
		refreshTotal.WithLabelValues(s.name, "failure").Inc()
	} else {
		logger.Trace().Msg("refreshed")
		refreshTotal.WithLabelValues(s.name, "success").Inc()
	}
	s.mu.Lock()
	s.lastAt = time.Now()
	s.lastErr = err
	s.refreshes++
	s.mu.Unlock()

	s.report(c, err)
}
