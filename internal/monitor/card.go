package monitor

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/util"
)

// Card layout constants
const (
	cardLabelWidth = 5  // "GPU  ", "MEM  ", "TEMP "
	cardValueWidth = 6  // " 100%", " 85°C"
	cardMinBar     = 10 // narrowest gauge worth drawing
)

// renderCard renders a single GPU card: title, one gauge per visible
// metric and a GPU utilization sparkline.
func (m Model) renderCard(d gpu.DeviceSample, width int, selected bool) string {
	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}

	// Border and padding take four columns
	inner := max(width-4, cardLabelWidth+cardValueWidth+cardMinBar)
	barWidth := inner - cardLabelWidth - cardValueWidth

	lines := []string{m.renderCardTitle(d, inner)}

	gpuVal := m.state.Read(d.Index, gpu.MetricGPU).Value
	lines = append(lines, renderGaugeLine("GPU", gpuVal, formatPercent(gpuVal), ColorGPU, barWidth))

	if history := m.state.History(d.Index, gpu.MetricGPU); len(history) > 0 {
		lines = append(lines, strings.Repeat(" ", cardLabelWidth)+RenderSparkline(history, barWidth, ColorGPU))
	}

	if m.showMemory {
		memVal := m.state.Read(d.Index, gpu.MetricMem).Value
		lines = append(lines, renderGaugeLine("MEM", memVal, formatPercent(memVal), ColorMem, barWidth))
		lines = append(lines, strings.Repeat(" ", cardLabelWidth)+LabelStyle.Render(
			fmt.Sprintf("%s / %s MiB", formatNumber(d.MemUsedMiB), formatNumber(d.MemTotalMiB))))
	}

	if m.showTemperature {
		tempVal := m.state.Read(d.Index, gpu.MetricTemp).Value
		raw := m.state.Read(d.Index, gpu.MetricTempRaw).Value
		lines = append(lines, renderGaugeLine("TEMP", tempVal, formatCelsius(raw), ColorTemp, barWidth))
	}

	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// renderCardTitle renders "<short label>  <name>", truncated to width.
func (m Model) renderCardTitle(d gpu.DeviceSample, width int) string {
	badge := lipgloss.NewStyle().
		Foreground(ColorDarkBg).
		Background(ColorAccentDim).
		Bold(true).
		Padding(0, 1).
		Render(d.ShortLabel)

	name := fmt.Sprintf("%s (GPU %d)", d.Name, d.Index)
	room := width - lipgloss.Width(badge) - 1
	return badge + " " + DeviceNameStyle.Render(util.Truncate(name, room))
}

// renderGaugeLine renders "LABEL ━━━━━──── value".
func renderGaugeLine(label string, percent float64, value string, color lipgloss.Color, barWidth int) string {
	return LabelStyle.Width(cardLabelWidth).Render(label) +
		GaugeBar(barWidth, percent, color) +
		ValueStyle.Width(cardValueWidth).Align(lipgloss.Right).Render(value)
}

// renderMinimalLine renders a GPU as one line for narrow terminals.
func (m Model) renderMinimalLine(d gpu.DeviceSample, selected bool) string {
	marker := "  "
	if selected {
		marker = lipgloss.NewStyle().Foreground(ColorAccent).Render("> ")
	}

	parts := []string{
		DeviceNameStyle.Render(d.ShortLabel),
		lipgloss.NewStyle().Foreground(ColorGPU).Render(formatPercent(m.state.Read(d.Index, gpu.MetricGPU).Value)),
	}
	if m.showMemory {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorMem).Render(
			"mem "+formatPercent(m.state.Read(d.Index, gpu.MetricMem).Value)))
	}
	if m.showTemperature {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorTemp).Render(
			formatCelsius(m.state.Read(d.Index, gpu.MetricTempRaw).Value)))
	}
	return marker + strings.Join(parts, "  ")
}

// formatPercent rounds an animated value for display.
func formatPercent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v)))
}

func formatCelsius(v float64) string {
	return fmt.Sprintf("%d°C", int(math.Round(v)))
}
