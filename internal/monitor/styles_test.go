package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/gpumon/internal/gpu"
)

func TestMetricColor(t *testing.T) {
	assert.Equal(t, ColorGPU, MetricColor(gpu.MetricGPU))
	assert.Equal(t, ColorMem, MetricColor(gpu.MetricMem))
	assert.Equal(t, ColorTemp, MetricColor(gpu.MetricTemp))
	assert.Equal(t, ColorTemp, MetricColor(gpu.MetricTempRaw))
}

func TestMetricColor_Values(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#00C853"), ColorGPU)
	assert.Equal(t, lipgloss.Color("#2AA3FF"), ColorMem)
	assert.Equal(t, lipgloss.Color("#FF1744"), ColorTemp)
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		want    lipgloss.Color
	}{
		{"idle", 0, ColorHealthy},
		{"just below warning", 69.9, ColorHealthy},
		{"warning", 70, ColorWarning},
		{"just below critical", 89.9, ColorWarning},
		{"critical", 90, ColorCritical},
		{"over 100", 120, ColorCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityColor(tt.percent))
		})
	}
}

func TestGaugeBar(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		percent    float64
		wantFilled int
	}{
		{"empty", 10, 0, 0},
		{"half", 10, 50, 5},
		{"full", 10, 100, 10},
		{"over 100 clamps", 10, 150, 10},
		{"negative clamps", 10, -20, 0},
		{"zero width uses one column", 0, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := GaugeBar(tt.width, tt.percent, ColorGPU)
			plain := stripANSI(bar)

			assert.Equal(t, tt.wantFilled, strings.Count(plain, "━"))
			assert.Equal(t, max(tt.width, 1), lipgloss.Width(bar))
		})
	}
}

func TestSectionHeader(t *testing.T) {
	tests := []struct {
		name  string
		title string
		value string
		width int
	}{
		{"normal width", "GPU", "75%", 50},
		{"narrow width", "Memory", "50%", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SectionHeader(tt.title, tt.value, tt.width)
			plain := stripANSI(result)

			assert.True(t, strings.HasPrefix(plain, "╭─ "+tt.title))
			assert.True(t, strings.HasSuffix(plain, tt.value+" ╮"))
			assert.Equal(t, tt.width, lipgloss.Width(result))
		})
	}
}

func TestSectionFooter(t *testing.T) {
	assert.Equal(t, "╰"+strings.Repeat("─", 8)+"╯", stripANSI(SectionFooter(10)))
	assert.Equal(t, "╰╯", stripANSI(SectionFooter(1)))
}

func TestSectionContentLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		width   int
	}{
		{"normal content", "Hello World", 40},
		{"empty content", "", 20},
		{"content wider than line", "a very long line of content", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SectionContentLine(tt.content, tt.width)
			plain := stripANSI(result)

			assert.True(t, strings.HasPrefix(plain, "│ "))
			assert.True(t, strings.HasSuffix(plain, " │"))
			assert.GreaterOrEqual(t, lipgloss.Width(result), tt.width)
		})
	}
}
