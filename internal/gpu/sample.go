// Package gpu queries nvidia-smi and turns its CSV output into per-device
// samples.
package gpu

// Metric names one of the tracked per-device series.
type Metric string

const (
	MetricGPU  Metric = "gpu"
	MetricMem  Metric = "mem"
	MetricTemp Metric = "temp"
	// MetricTempRaw tracks raw degrees alongside MetricTemp so the readout
	// text can animate in step with the gauge.
	MetricTempRaw Metric = "tempRaw"
)

// Metrics lists the series that have a history window, in display order.
var Metrics = []Metric{MetricGPU, MetricMem, MetricTemp}

// DeviceSample is one device's reading at one poll. Samples are never
// mutated after Parse returns them.
type DeviceSample struct {
	Index          int     `json:"index" yaml:"index"`
	Name           string  `json:"name" yaml:"name"`
	ShortLabel     string  `json:"short_label" yaml:"short_label"`
	GPUPercent     float64 `json:"gpu_percent" yaml:"gpu_percent"`
	MemUsedMiB     float64 `json:"memory_used_mib" yaml:"memory_used_mib"`
	MemTotalMiB    float64 `json:"memory_total_mib" yaml:"memory_total_mib"`
	MemPercent     float64 `json:"memory_percent" yaml:"memory_percent"`
	TempRawCelsius float64 `json:"temperature_celsius" yaml:"temperature_celsius"`
	TempPercent    float64 `json:"temperature_percent" yaml:"temperature_percent"`
}

// Value returns the sample's reading for m. MetricTemp is the clamped
// percentage, MetricTempRaw the unclamped degrees.
func (s DeviceSample) Value(m Metric) float64 {
	switch m {
	case MetricGPU:
		return s.GPUPercent
	case MetricMem:
		return s.MemPercent
	case MetricTemp:
		return s.TempPercent
	case MetricTempRaw:
		return s.TempRawCelsius
	default:
		return 0
	}
}
