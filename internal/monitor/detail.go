package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/gpumon/internal/gpu"
)

// detailGraphHeight is the number of braille rows per history graph.
const detailGraphHeight = 3

var detailContainerStyle = lipgloss.NewStyle().Padding(0, 1)

// DetailLines returns the plain-text description of a device:
//
//	NVIDIA GeForce RTX 3080 (GPU 0)
//	Utilization: 42%
//	Memory: 4096 / 10240 MiB (40%)
//	Temperature: 61°C
//
// The temperature line is omitted when showTemperature is false.
func DetailLines(d gpu.DeviceSample, showTemperature bool) []string {
	lines := []string{
		fmt.Sprintf("%s (GPU %d)", d.Name, d.Index),
		fmt.Sprintf("Utilization: %s%%", formatNumber(d.GPUPercent)),
		fmt.Sprintf("Memory: %s / %s MiB (%s%%)",
			formatNumber(d.MemUsedMiB), formatNumber(d.MemTotalMiB), formatNumber(d.MemPercent)),
	}
	if showTemperature {
		lines = append(lines, fmt.Sprintf("Temperature: %s°C", formatNumber(d.TempRawCelsius)))
	}
	return lines
}

// renderDetailScreen renders header, scrollable detail content and footer.
func (m Model) renderDetailScreen() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	if m.viewportReady {
		b.WriteString(m.detailViewport.View())
	} else {
		b.WriteString(m.renderDetailView())
	}
	b.WriteString("\n")
	b.WriteString(m.renderDetailFooter())
	return b.String()
}

// refreshDetail re-renders the detail content into the viewport.
func (m *Model) refreshDetail() {
	if m.viewMode != ViewDetail || !m.viewportReady {
		return
	}
	m.detailViewport.SetContent(m.renderDetailView())
}

// renderDetailView renders the expanded single-GPU view.
func (m Model) renderDetailView() string {
	d := m.SelectedDevice()
	if d == nil {
		return LabelStyle.Render(NoDataDetail)
	}

	width := max(m.contentWidth()-2, 40)
	text := DetailLines(*d, m.showTemperature)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render(text[0]))
	b.WriteString("\n\n")

	b.WriteString(m.renderDetailSection(d.Index, gpu.MetricGPU, "GPU", text[1], width))
	if m.showMemory {
		b.WriteString("\n")
		b.WriteString(m.renderDetailSection(d.Index, gpu.MetricMem, "Memory", text[2], width))
	}
	if m.showTemperature {
		b.WriteString("\n")
		b.WriteString(m.renderDetailSection(d.Index, gpu.MetricTemp, "Temperature", text[3], width))
	}

	return detailContainerStyle.Render(b.String())
}

// renderDetailSection renders one boxed metric: its description line, a
// gauge and the history graph.
func (m Model) renderDetailSection(index int, metric gpu.Metric, title, text string, width int) string {
	color := MetricColor(metric)
	inner := width - 4
	value := m.state.Read(index, metric).Value

	lines := []string{
		SectionHeader(title, formatPercent(value), width),
		SectionContentLine(LabelStyle.Render(text), width),
		SectionContentLine(GaugeBar(inner, value, color), width),
	}

	if history := m.state.History(index, metric); len(history) > 0 {
		for _, row := range strings.Split(RenderBrailleSparkline(history, inner, detailGraphHeight, color), "\n") {
			lines = append(lines, SectionContentLine(row, width))
		}
	}

	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderDetailFooter renders navigation hints for the detail view.
func (m Model) renderDetailFooter() string {
	return FooterStyle.Render(m.help.ShortHelpView([]key.Binding{
		m.keys.Collapse, m.keys.Up, m.keys.Down, m.keys.ToggleMemory, m.keys.ToggleTemp, m.keys.Quit,
	}))
}
