package monitor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	gerrors "github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/logger"
)

// MinInterval is the shortest allowed refresh period.
const MinInterval = time.Second

// failureLogEvery bounds how often an unchanged poll failure is logged.
const failureLogEvery = time.Minute

// Source produces the raw query output for one poll.
type Source interface {
	Query(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (string, error)

// Query calls f.
func (f SourceFunc) Query(ctx context.Context) (string, error) { return f(ctx) }

// PollResult describes one completed poll.
type PollResult struct {
	Samples  []gpu.DeviceSample
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Observer is notified about scheduler activity, e.g. for metrics.
type Observer interface {
	ObservePoll(PollResult)
	ObserveCoalesced()
}

// SchedulerConfig configures a Scheduler.
type SchedulerConfig struct {
	Source   Source
	State    *State
	Interval time.Duration
	Logger   logger.Logger
	Observer Observer
	// OnResult runs after each result has been applied to State, from the
	// scheduler's goroutine.
	OnResult func(PollResult)
}

// Scheduler polls Source on a fixed interval with at most one query in
// flight. A tick that arrives while a query runs is remembered and served
// as soon as that query completes; any number of such ticks collapse into
// one follow-up poll.
type Scheduler struct {
	source   Source
	state    *State
	log      logger.Logger
	observer Observer
	onResult func(PollResult)
	interval *Interval

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu              sync.Mutex
	queryInProgress bool
	pendingRefresh  bool
	closed          bool

	lastFailure string
	failureLog  rate.Sometimes
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Noop()
	}
	if cfg.State == nil {
		cfg.State = NewState(DefaultHistorySize, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		source:   cfg.Source,
		state:    cfg.State,
		log:      cfg.Logger,
		observer: cfg.Observer,
		onResult: cfg.OnResult,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.interval = NewInterval(ClampInterval(cfg.Interval), s.Tick)
	return s
}

// ClampInterval raises d to MinInterval.
func ClampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// State returns the state results are applied to.
func (s *Scheduler) State() *State {
	return s.state
}

// Start polls once immediately and then on every interval. Cancelling
// ctx tears the scheduler down like Close.
func (s *Scheduler) Start(ctx context.Context) {
	s.Tick()
	s.interval.Start()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.ctx.Done():
		}
	}()
}

// Tick requests a poll. If one is already running the request is
// coalesced into a single follow-up poll.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.queryInProgress {
		s.pendingRefresh = true
		s.mu.Unlock()
		if s.observer != nil {
			s.observer.ObserveCoalesced()
		}
		s.log.Debug("poll in flight, refresh coalesced")
		return
	}
	s.queryInProgress = true
	s.pendingRefresh = false
	s.wg.Add(1)
	s.mu.Unlock()

	go s.poll()
}

// poll runs one query and applies its result. The in-progress flag is
// held until the result is applied so results land in issue order.
func (s *Scheduler) poll() {
	defer s.wg.Done()

	started := time.Now()
	raw, err := s.source.Query(s.ctx)
	res := PollResult{Err: err, Started: started, Duration: time.Since(started)}
	if err == nil {
		res.Samples = gpu.Parse(raw)
	}

	s.dispatch(res)

	s.mu.Lock()
	s.queryInProgress = false
	again := s.pendingRefresh && !s.closed
	s.pendingRefresh = false
	s.mu.Unlock()

	if again {
		s.Tick()
	}
}

func (s *Scheduler) dispatch(res PollResult) {
	var applied bool
	if res.Err != nil {
		applied = s.state.ApplyError(res.Err)
	} else {
		applied = s.state.ApplySamples(res.Samples)
	}
	if !applied {
		s.log.Debug("dropping poll result after close")
		return
	}

	s.logResult(res)
	if s.observer != nil {
		s.observer.ObservePoll(res)
	}
	if s.onResult != nil {
		s.onResult(res)
	}
}

func (s *Scheduler) logResult(res PollResult) {
	if res.Err == nil {
		if s.lastFailure != "" {
			s.log.Info("poll recovered after failure: %s", s.lastFailure)
			s.lastFailure = ""
		}
		s.log.Debug("poll complete: %d device(s) in %s", len(res.Samples), res.Duration)
		return
	}

	msg := gerrors.MessageOf(res.Err)
	if msg != s.lastFailure {
		s.lastFailure = msg
		s.failureLog = rate.Sometimes{First: 1, Interval: failureLogEvery}
	}
	s.failureLog.Do(func() {
		s.log.Warn("poll failed (%s): %s", gerrors.CodeOf(res.Err), msg)
	})
}

// SetInterval changes the refresh period. The timer restarts without
// polling; the next poll happens one full period from now.
func (s *Scheduler) SetInterval(d time.Duration) time.Duration {
	d = ClampInterval(d)
	s.interval.Reset(d)
	s.log.Debug("refresh interval set to %s", d)
	return d
}

// Interval returns the refresh period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval.Period()
}

// Busy reports whether a query is in flight and whether a follow-up poll
// is pending.
func (s *Scheduler) Busy() (inProgress, pending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryInProgress, s.pendingRefresh
}

// Close stops the timer and marks the state closed. A query still in
// flight has its process cancelled and its result discarded.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pendingRefresh = false
	s.mu.Unlock()

	s.interval.Stop()
	s.state.Close()
	s.cancel()
}

// Wait blocks until no query is running.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
