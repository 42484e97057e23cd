package monitor

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isRunning(iv *Interval) bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.running
}

func TestInterval_FiresUntilStopped(t *testing.T) {
	var n atomic.Int32
	iv := NewInterval(10*time.Millisecond, func() { n.Add(1) })

	iv.Start()
	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)

	iv.Stop()
	assert.False(t, isRunning(iv))
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, n.Load(), "no calls after Stop returns")
}

func TestInterval_ResetDoesNotFire(t *testing.T) {
	var n atomic.Int32
	iv := NewInterval(time.Hour, func() { n.Add(1) })
	iv.Start()
	defer iv.Stop()

	iv.Reset(2 * time.Hour)

	assert.Equal(t, 2*time.Hour, iv.Period())
	assert.True(t, isRunning(iv))
	assert.Zero(t, n.Load())
}

func TestInterval_ResetWhileStopped(t *testing.T) {
	iv := NewInterval(time.Second, func() {})

	iv.Reset(5 * time.Second)

	assert.Equal(t, 5*time.Second, iv.Period())
	assert.False(t, isRunning(iv))
}

func TestInterval_StartIsIdempotent(t *testing.T) {
	iv := NewInterval(time.Hour, func() {})
	iv.Start()
	iv.Start()
	iv.Stop()
	iv.Stop()

	assert.False(t, isRunning(iv))
}
