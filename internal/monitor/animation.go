package monitor

import (
	"time"

	"github.com/rileyhilliard/gpumon/internal/gpu"
)

// AnimationDuration is how long a displayed value takes to reach a new target.
const AnimationDuration = 700 * time.Millisecond

// settleEpsilon is the smallest delta worth animating.
const settleEpsilon = 0.001

// AnimatedValue is the result of reading a metric at a point in time.
type AnimatedValue struct {
	Value     float64
	Animating bool
}

// transition is a linear interpolation from one value to another.
type transition struct {
	from     float64
	to       float64
	start    time.Time
	duration time.Duration
	current  float64
	done     bool
}

// Animator interpolates displayed values between polls. It is a pure
// function of the time passed in and does not schedule redraws itself.
// Animator is not safe for concurrent use; State serializes access.
type Animator struct {
	duration time.Duration
	devices  map[int]map[gpu.Metric]*transition
}

// NewAnimator creates an Animator. A non-positive duration uses AnimationDuration.
func NewAnimator(duration time.Duration) *Animator {
	if duration <= 0 {
		duration = AnimationDuration
	}
	return &Animator{
		duration: duration,
		devices:  make(map[int]map[gpu.Metric]*transition),
	}
}

// SetTarget starts a transition toward value. It begins at the previous
// target for this device metric, or at value itself the first time the
// metric is seen.
func (a *Animator) SetTarget(index int, m gpu.Metric, value float64, now time.Time) {
	metrics, ok := a.devices[index]
	if !ok {
		metrics = make(map[gpu.Metric]*transition)
		a.devices[index] = metrics
	}

	from := value
	if prev, ok := metrics[m]; ok {
		from = prev.to
	}

	tr := &transition{
		from:     from,
		to:       value,
		start:    now,
		duration: a.duration,
		current:  from,
	}
	if diff := value - from; diff < settleEpsilon && diff > -settleEpsilon {
		tr.current = value
		tr.done = true
	}
	metrics[m] = tr
}

// Read returns the interpolated value at now. Once the transition has run
// its course the state settles on the target and Animating is false.
// Without state for the device metric, fallback is returned.
func (a *Animator) Read(index int, m gpu.Metric, now time.Time, fallback float64) AnimatedValue {
	tr, ok := a.devices[index][m]
	if !ok {
		return AnimatedValue{Value: fallback}
	}
	if tr.done {
		return AnimatedValue{Value: tr.to}
	}

	progress := float64(now.Sub(tr.start)) / float64(tr.duration)
	if progress >= 1 {
		tr.from = tr.to
		tr.current = tr.to
		tr.done = true
		return AnimatedValue{Value: tr.to}
	}
	if progress < 0 {
		progress = 0
	}

	tr.current = tr.from + (tr.to-tr.from)*progress
	return AnimatedValue{Value: tr.current, Animating: true}
}

// Animating reports whether any transition is still in progress at now.
func (a *Animator) Animating(now time.Time) bool {
	for _, metrics := range a.devices {
		for _, tr := range metrics {
			if !tr.done && now.Sub(tr.start) < tr.duration {
				return true
			}
		}
	}
	return false
}

// Drop removes all transitions for a device.
func (a *Animator) Drop(index int) {
	delete(a.devices, index)
}

// Prune drops every device whose index is not in keep.
func (a *Animator) Prune(keep map[int]bool) {
	for idx := range a.devices {
		if !keep[idx] {
			a.Drop(idx)
		}
	}
}

// Reset removes all transitions.
func (a *Animator) Reset() {
	a.devices = make(map[int]map[gpu.Metric]*transition)
}
