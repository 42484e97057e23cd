// Package observability exposes gpumon's poll results and self-monitoring
// as Prometheus metrics.
package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/monitor"
)

const namespace = "gpumon"

var deviceLabels = []string{"index", "name", "short_label"}

// Metrics holds all Prometheus metrics for gpumon.
// It uses a custom registry to avoid polluting the global default.
type Metrics struct {
	Registry *prometheus.Registry

	// Device metrics
	GPUUtilization *prometheus.GaugeVec
	MemoryUsed     *prometheus.GaugeVec
	MemoryTotal    *prometheus.GaugeVec
	MemoryPercent  *prometheus.GaugeVec
	Temperature    *prometheus.GaugeVec
	Devices        prometheus.Gauge

	// Poll metrics
	PollDuration     prometheus.Histogram
	PollsTotal       *prometheus.CounterVec
	CoalescedTotal   prometheus.Counter
	LastSuccessEpoch prometheus.Gauge

	mu     sync.Mutex
	series map[int]prometheus.Labels
}

// NewMetrics creates a Metrics instance registered on a custom registry.
// A non-empty instanceID is attached to every series.
func NewMetrics(instanceID string) *Metrics {
	reg := prometheus.NewRegistry()

	var constLabels prometheus.Labels
	if instanceID != "" {
		constLabels = prometheus.Labels{"instance_id": instanceID}
	}

	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}, deviceLabels)
	}

	m := &Metrics{
		Registry: reg,

		GPUUtilization: gauge("gpu_utilization_percent", "GPU utilization reported by the last poll."),
		MemoryUsed:     gauge("gpu_memory_used_mib", "Device memory in use, MiB."),
		MemoryTotal:    gauge("gpu_memory_total_mib", "Device memory capacity, MiB."),
		MemoryPercent:  gauge("gpu_memory_percent", "Device memory in use as a rounded percentage."),
		Temperature:    gauge("gpu_temperature_celsius", "Device temperature, degrees Celsius."),
		Devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "devices",
			Help:        "Number of devices in the last poll.",
			ConstLabels: constLabels,
		}),

		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "poll_duration_seconds",
			Help:        "Duration of nvidia-smi queries in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}),
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "polls_total",
			Help:        "Completed polls by result (success, empty, error).",
			ConstLabels: constLabels,
		}, []string{"result"}),
		CoalescedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "coalesced_refresh_total",
			Help:        "Refresh requests folded into a pending poll.",
			ConstLabels: constLabels,
		}),
		LastSuccessEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_success_timestamp_seconds",
			Help:        "Unix time of the last successful poll.",
			ConstLabels: constLabels,
		}),

		series: make(map[int]prometheus.Labels),
	}

	reg.MustRegister(
		m.GPUUtilization,
		m.MemoryUsed,
		m.MemoryTotal,
		m.MemoryPercent,
		m.Temperature,
		m.Devices,
		m.PollDuration,
		m.PollsTotal,
		m.CoalescedTotal,
		m.LastSuccessEpoch,
	)

	return m
}

// ObservePoll records a poll result. Devices that vanished lose their
// series; a failed poll drops every device series.
func (m *Metrics) ObservePoll(res monitor.PollResult) {
	m.PollDuration.Observe(res.Duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	if res.Err != nil {
		m.PollsTotal.WithLabelValues("error").Inc()
		m.deleteSeries(func(int) bool { return true })
		m.Devices.Set(0)
		return
	}

	if len(res.Samples) == 0 {
		m.PollsTotal.WithLabelValues("empty").Inc()
	} else {
		m.PollsTotal.WithLabelValues("success").Inc()
	}
	m.LastSuccessEpoch.Set(float64(res.Started.Add(res.Duration).Unix()))

	current := make(map[int]prometheus.Labels, len(res.Samples))
	for _, s := range res.Samples {
		current[s.Index] = labelsFor(s)
	}
	// Renamed devices keep their index but need fresh label values.
	m.deleteSeries(func(idx int) bool {
		l, ok := current[idx]
		return !ok || !labelsEqual(l, m.series[idx])
	})

	for _, s := range res.Samples {
		l := current[s.Index]
		m.GPUUtilization.With(l).Set(s.GPUPercent)
		m.MemoryUsed.With(l).Set(s.MemUsedMiB)
		m.MemoryTotal.With(l).Set(s.MemTotalMiB)
		m.MemoryPercent.With(l).Set(s.MemPercent)
		m.Temperature.With(l).Set(s.TempRawCelsius)
		m.series[s.Index] = l
	}
	m.Devices.Set(float64(len(res.Samples)))
}

// ObserveCoalesced counts a refresh request folded into a pending poll.
func (m *Metrics) ObserveCoalesced() {
	m.CoalescedTotal.Inc()
}

// deleteSeries removes device series for which drop returns true.
// Must be called with m.mu held.
func (m *Metrics) deleteSeries(drop func(index int) bool) {
	for idx, l := range m.series {
		if !drop(idx) {
			continue
		}
		for _, vec := range []*prometheus.GaugeVec{m.GPUUtilization, m.MemoryUsed, m.MemoryTotal, m.MemoryPercent, m.Temperature} {
			vec.Delete(l)
		}
		delete(m.series, idx)
	}
}

func labelsFor(s gpu.DeviceSample) prometheus.Labels {
	return prometheus.Labels{
		"index":       strconv.Itoa(s.Index),
		"name":        s.Name,
		"short_label": s.ShortLabel,
	}
}

func labelsEqual(a, b prometheus.Labels) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
