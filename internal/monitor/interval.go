package monitor

import (
	"sync"
	"time"
)

// Interval calls fn on a fixed period from its own goroutine. Reset
// changes the period and restarts timing without an extra call.
type Interval struct {
	mu      sync.Mutex
	period  time.Duration
	fn      func()
	stopCh  chan struct{}
	done    chan struct{}
	running bool
}

// NewInterval creates a stopped Interval.
func NewInterval(period time.Duration, fn func()) *Interval {
	return &Interval{period: period, fn: fn}
}

// Start begins firing. Starting a running Interval is a no-op.
func (i *Interval) Start() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.startLocked()
}

// Stop halts firing and waits for the timer goroutine to exit.
func (i *Interval) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopLocked()
}

// Reset replaces the period. A running Interval is restarted so the next
// call happens one full new period from now.
func (i *Interval) Reset(period time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.period = period
	if i.running {
		i.stopLocked()
		i.startLocked()
	}
}

// Period returns the current period.
func (i *Interval) Period() time.Duration {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.period
}

func (i *Interval) startLocked() {
	if i.running || i.period <= 0 {
		return
	}
	i.stopCh = make(chan struct{})
	i.done = make(chan struct{})
	i.running = true
	go i.loop(i.period, i.stopCh, i.done)
}

func (i *Interval) stopLocked() {
	if !i.running {
		return
	}
	close(i.stopCh)
	<-i.done
	i.running = false
}

func (i *Interval) loop(period time.Duration, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			i.fn()
		case <-stopCh:
			return
		}
	}
}
