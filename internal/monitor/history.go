package monitor

import (
	"math"
	"sync"

	"github.com/rileyhilliard/gpumon/internal/gpu"
)

// DefaultHistorySize is the number of samples retained per metric.
const DefaultHistorySize = 60

// History keeps a bounded window of recent percentages per device per
// metric. It is safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	size    int
	devices map[int]*deviceHistory
}

// deviceHistory holds the ring buffers for a single device.
type deviceHistory struct {
	series map[gpu.Metric]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a new history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		devices: make(map[int]*deviceHistory),
	}
}

// Record appends the sample's gpu, mem and temp percentages to its
// device's windows, clamped to [0,100]. Unseen devices are created.
func (h *History) Record(s gpu.DeviceSample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	hist := h.getOrCreateDevice(s.Index)
	for _, m := range gpu.Metrics {
		hist.series[m].push(clampPercent(s.Value(m)))
	}
}

// Prune drops every device whose index is not in keep.
func (h *History) Prune(keep map[int]bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for idx := range h.devices {
		if !keep[idx] {
			delete(h.devices, idx)
		}
	}
}

// Get returns the full window for a device metric, oldest first. Unknown
// devices or metrics yield an empty slice.
func (h *History) Get(index int, m gpu.Metric) []float64 {
	return h.GetLast(index, m, h.size)
}

// GetLast returns up to count of the most recent values, oldest first.
func (h *History) GetLast(index int, m gpu.Metric, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.devices[index]
	if !ok {
		return []float64{}
	}
	rb, ok := hist.series[m]
	if !ok {
		return []float64{}
	}
	return rb.getLast(count)
}

// ClearAll removes all history.
func (h *History) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.devices = make(map[int]*deviceHistory)
}

// getOrCreateDevice returns the history for a device, creating it if needed.
// Must be called with h.mu held.
func (h *History) getOrCreateDevice(index int) *deviceHistory {
	hist, ok := h.devices[index]
	if !ok {
		hist = &deviceHistory{series: make(map[gpu.Metric]*ringBuffer, len(gpu.Metrics))}
		for _, m := range gpu.Metrics {
			hist.series[m] = newRingBuffer(h.size)
		}
		h.devices[index] = hist
	}
	return hist
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value, overwriting the oldest once full.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return []float64{}
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head is the next write position; the newest value sits at head-1.
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
