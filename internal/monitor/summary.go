package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/gpumon/internal/gpu"
)

const (
	summaryHeader = "GPU usage monitor"
	// NoDataMessage is shown when a poll succeeded without any device.
	NoDataMessage = "No GPU data."
	// NoDataDetail is the longer form used in the dashboard body.
	NoDataDetail = "No GPU data available."
	// ErrorLabel replaces device labels while the last poll failed.
	ErrorLabel = "!!"
)

// Summary renders the one-line-per-device text view of the state. An
// error or an empty device set yields a header line plus the message.
func (s *State) Summary() string {
	if msg := s.Err(); msg != "" {
		return summaryHeader + "\n" + msg
	}
	return SummaryOf(s.Devices())
}

// SummaryOf renders samples in the summary format.
func SummaryOf(samples []gpu.DeviceSample) string {
	if len(samples) == 0 {
		return summaryHeader + "\n" + NoDataMessage
	}
	lines := make([]string, 0, len(samples))
	for _, smp := range samples {
		lines = append(lines, SummaryLine(smp))
	}
	return strings.Join(lines, "\n")
}

// SummaryLine formats one device, e.g.
// "NVIDIA GeForce RTX 3080 (GPU 0): 42% GPU, 4096/10240 MiB, 61°C".
func SummaryLine(smp gpu.DeviceSample) string {
	return fmt.Sprintf("%s (GPU %d): %s%% GPU, %s/%s MiB, %s°C",
		smp.Name, smp.Index,
		formatNumber(smp.GPUPercent),
		formatNumber(smp.MemUsedMiB), formatNumber(smp.MemTotalMiB),
		formatNumber(smp.TempRawCelsius))
}

// formatNumber prints the shortest exact representation: 42, 61.5.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
