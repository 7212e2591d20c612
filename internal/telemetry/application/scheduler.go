package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"plant-monitor/internal/observability/metrics"
)

const (
	DefaultTickInterval = 30 * time.Second
	DefaultTickTimeout  = 10 * time.Second
)

// Ticker runs one ingestion tick.
type Ticker interface {
	Tick(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs the live ingestion loop.
type Scheduler struct {
	ticker      Ticker
	interval    time.Duration
	tickTimeout time.Duration
	clock       Clock
	logger      *log.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the pause between ticks.
func WithInterval(interval time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithTickTimeout bounds a single tick.
func WithTickTimeout(timeout time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.tickTimeout = timeout
		}
	}
}

// WithSchedulerClock overrides the clock used to stamp ticks.
func WithSchedulerClock(clock Clock) SchedulerOption {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(logger *log.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler constructs a Scheduler.
func NewScheduler(ticker Ticker, opts ...SchedulerOption) (*Scheduler, error) {
	if ticker == nil {
		return nil, errors.New("scheduler: nil ticker")
	}
	s := &Scheduler{
		ticker:      ticker,
		interval:    DefaultTickInterval,
		tickTimeout: DefaultTickTimeout,
		clock:       SystemClock{},
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handle controls a running loop.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop requests the loop to end and waits for it. A tick in flight completes
// first. Stop is safe to call more than once.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start launches the loop. The first tick fires one interval after Start.
// Cancelling ctx has the same effect as Stop.
func (s *Scheduler) Start(ctx context.Context) *Handle {
	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		s.loop(loopCtx)
	}()
	return h
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Printf("scheduler: started interval=%s", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Printf("scheduler: stopped")
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				s.logger.Printf("scheduler: stopped")
				return
			}
			s.runOnce(ctx)
		}
	}
}

// runOnce executes one tick on a context detached from the loop, so a stop
// request never interrupts a batch halfway.
func (s *Scheduler) runOnce(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.tickTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.ObserveIngestTick(metrics.ResultError, time.Since(start))
			s.logger.Printf("scheduler: tick panic: %v", r)
		}
	}()

	count, err := s.ticker.Tick(tickCtx, s.clock.Now())
	if err != nil {
		metrics.ObserveIngestTick(metrics.ResultError, time.Since(start))
		s.logger.Printf("scheduler: tick error: %v", err)
		return
	}
	metrics.ObserveIngestTick(metrics.ResultSuccess, time.Since(start))
	s.logger.Printf("scheduler: tick readings=%d", count)
}
