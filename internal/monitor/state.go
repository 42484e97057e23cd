package monitor

import (
	"sync"
	"time"

	gerrors "github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/gpu"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock uses the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// State owns everything derived from poll results: the latest samples,
// per-device history and animation, and the current error. Every
// successful poll replaces the device set wholesale; an error clears it.
// Once closed, further results are ignored.
type State struct {
	mu       sync.Mutex
	clock    Clock
	history  *History
	animator *Animator
	samples  []gpu.DeviceSample
	byIndex  map[int]gpu.DeviceSample
	errMsg   string
	errCode  string
	updated  time.Time
	polled   bool
	closed   bool
}

// NewState creates an empty State. A nil clock uses RealClock.
func NewState(historySize int, clock Clock) *State {
	if clock == nil {
		clock = RealClock{}
	}
	return &State{
		clock:    clock,
		history:  NewHistory(historySize),
		animator: NewAnimator(AnimationDuration),
		samples:  []gpu.DeviceSample{},
		byIndex:  make(map[int]gpu.DeviceSample),
	}
}

// ApplySamples records a successful poll. Devices missing from samples
// lose their history and animation state. It returns false if the state
// has been closed and the result was dropped.
func (s *State) ApplySamples(samples []gpu.DeviceSample) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	now := s.clock.Now()
	keep := make(map[int]bool, len(samples))
	byIndex := make(map[int]gpu.DeviceSample, len(samples))

	for _, smp := range samples {
		keep[smp.Index] = true
		byIndex[smp.Index] = smp

		s.history.Record(smp)
		s.animator.SetTarget(smp.Index, gpu.MetricGPU, smp.GPUPercent, now)
		s.animator.SetTarget(smp.Index, gpu.MetricMem, smp.MemPercent, now)
		s.animator.SetTarget(smp.Index, gpu.MetricTemp, smp.TempPercent, now)
		s.animator.SetTarget(smp.Index, gpu.MetricTempRaw, smp.TempRawCelsius, now)
	}

	s.history.Prune(keep)
	s.animator.Prune(keep)

	s.samples = append([]gpu.DeviceSample(nil), samples...)
	s.byIndex = byIndex
	s.errMsg = ""
	s.errCode = ""
	s.updated = now
	s.polled = true
	return true
}

// ApplyError records a failed poll and drops all device data.
// It returns false if the state has been closed.
func (s *State) ApplyError(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.history.ClearAll()
	s.animator.Reset()
	s.samples = []gpu.DeviceSample{}
	s.byIndex = make(map[int]gpu.DeviceSample)
	s.errMsg = gerrors.MessageOf(err)
	s.errCode = gerrors.CodeOf(err)
	s.polled = true
	return true
}

// Close marks the state as torn down.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *State) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Devices returns the latest samples in index order.
func (s *State) Devices() []gpu.DeviceSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gpu.DeviceSample(nil), s.samples...)
}

// Read returns the animated value of a device metric at the current time,
// falling back to the latest raw value when nothing is animating.
func (s *State) Read(index int, m gpu.Metric) AnimatedValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	fallback := 0.0
	if smp, ok := s.byIndex[index]; ok {
		fallback = smp.Value(m)
	}
	return s.animator.Read(index, m, s.clock.Now(), fallback)
}

// History returns a device metric's window, oldest first.
func (s *State) History(index int, m gpu.Metric) []float64 {
	return s.history.Get(index, m)
}

// Animating reports whether any displayed value is still moving.
func (s *State) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animator.Animating(s.clock.Now())
}

// Err returns the current error message, or "" after a successful poll.
func (s *State) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ErrCode returns the structured error code for the current error.
func (s *State) ErrCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errCode
}

// LastUpdated returns the time of the last successful poll.
func (s *State) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated
}

// Polled reports whether any result, success or failure, has been applied.
func (s *State) Polled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polled
}
