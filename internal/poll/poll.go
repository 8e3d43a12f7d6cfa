package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = 2 * time.Second

// Task is one refresh. It runs on the subscription goroutine, so a slow task
// delays the next tick instead of overlapping it.
type Task func(ctx context.Context)

// Option customises a Subscription.
type Option func(*Subscription)

// WithVisibility gates each tick on visible. Hidden ticks are skipped while
// the ticker keeps running, so polling resumes on the first tick after the
// view becomes visible again.
func WithVisibility(visible func() bool) Option {
	return func(s *Subscription) { s.visible = visible }
}

// WithImmediate runs the task once before the first tick.
func WithImmediate() Option {
	return func(s *Subscription) { s.immediate = true }
}

// WithLogger records skipped ticks and cancellation at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Subscription) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithName labels the subscription in logs.
func WithName(name string) Option {
	return func(s *Subscription) { s.name = name }
}

// Subscription is a running fixed-period poller.
type Subscription struct {
	interval  time.Duration
	visible   func() bool
	immediate bool
	logger    *zap.Logger
	name      string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	cancelled bool
	lastRunAt time.Time
	runs      atomic.Int64
	skipped   atomic.Int64
}

// Start launches task every interval until Cancel is called or ctx ends. It
// returns immediately.
func Start(ctx context.Context, interval time.Duration, task Task, opts ...Option) *Subscription {
	if interval <= 0 {
		interval = defaultInterval
	}
	s := &Subscription{
		interval: interval,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("poller", s.name), zap.Duration("interval", interval))
	s.ctx, s.cancel = context.WithCancel(ctx)

	go s.loop(task)
	return s
}

func (s *Subscription) loop(task Task) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.immediate {
		s.tick(task)
	}
	for {
		select {
		case <-s.ctx.Done():
			s.markCancelled()
			return
		case <-ticker.C:
			s.tick(task)
		}
	}
}

func (s *Subscription) tick(task Task) {
	if s.visible != nil && !s.visible() {
		s.skipped.Add(1)
		s.logger.Debug("poll skipped while hidden")
		return
	}
	s.mu.Lock()
	if s.cancelled || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.lastRunAt = time.Now()
	s.runs.Add(1)
	s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	task(s.ctx)
}

func (s *Subscription) markCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return false
	}
	s.cancelled = true
	return true
}

// Cancel stops the subscription. A tick that fires after Cancel returns
// never reaches the task. An invocation already being dispatched may still
// start, but its context is cancelled by then, so callers must treat
// ctx.Err() as the stop signal. Cancel is idempotent and may be called from
// inside the task.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	if s.markCancelled() {
		s.logger.Debug("poll cancelled", zap.Int64("runs", s.runs.Load()))
	}
	s.cancel()
}

// Wait blocks until the subscription goroutine has exited. Do not call it
// from inside the task.
func (s *Subscription) Wait() {
	if s == nil {
		return
	}
	<-s.done
}

// Done is closed once the subscription goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Active reports whether the subscription still accepts ticks.
func (s *Subscription) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cancelled
}

// LastRunAt is the start time of the most recent task invocation.
func (s *Subscription) LastRunAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}

// Runs counts task invocations.
func (s *Subscription) Runs() int64 { return s.runs.Load() }

// Skipped counts ticks suppressed by the visibility gate.
func (s *Subscription) Skipped() int64 { return s.skipped.Load() }

// Interval returns the tick period.
func (s *Subscription) Interval() time.Duration { return s.interval }
