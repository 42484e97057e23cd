package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cardWidth is the outer width of a card in the grid layouts.
const cardWidth = 44

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with device count, refresh interval
// and the age of the last successful poll.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("gpumon")

	parts := []string{}
	if m.hostname != "" {
		parts = append(parts, m.hostname)
	}
	parts = append(parts,
		fmt.Sprintf("%d GPUs", len(m.devices)),
		fmt.Sprintf("every %s", m.interval),
		"updated "+m.updateText(),
	)

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	line := title + stats
	if spin := m.pollingIndicator(); spin != "" {
		line += " " + lipgloss.NewStyle().Foreground(ColorWarning).Render(spin)
	}
	return HeaderStyle.Render(line)
}

// updateText describes when the last successful poll landed.
func (m Model) updateText() string {
	last := m.state.LastUpdated()
	if last.IsZero() {
		return "never"
	}
	switch s := m.SecondsSinceUpdate(); s {
	case 0:
		return "just now"
	default:
		return fmt.Sprintf("%ds ago (%s)", s, last.Format("15:04:05"))
	}
}

// renderBody renders the error banner, placeholder text, or the device cards.
func (m Model) renderBody() string {
	if msg := m.state.Err(); msg != "" {
		return renderErrorBanner(msg, m.contentWidth())
	}
	if !m.state.Polled() {
		return LabelStyle.Render("Waiting for the first sample...")
	}
	if len(m.devices) == 0 {
		return LabelStyle.Render(NoDataDetail)
	}

	if m.LayoutMode() == LayoutMinimal {
		lines := make([]string, len(m.devices))
		for i, d := range m.devices {
			lines[i] = m.renderMinimalLine(d, i == m.selected)
		}
		return strings.Join(lines, "\n")
	}

	width := cardWidth
	if m.LayoutMode() == LayoutCompact {
		width = m.contentWidth()
	}

	cards := make([]string, len(m.devices))
	for i, d := range m.devices {
		cards[i] = m.renderCard(d, width, i == m.selected)
	}
	return m.layoutCards(cards, width)
}

// renderErrorBanner shows the error label next to the message.
func renderErrorBanner(msg string, width int) string {
	label := ErrorLabelStyle.Render(ErrorLabel)
	text := ErrorTextStyle.Width(max(width-lipgloss.Width(label)-1, 10)).Render(msg)
	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", text)
}

// contentWidth is the usable width inside the terminal margins.
func (m Model) contentWidth() int {
	if m.width == 0 {
		return cardWidth
	}
	return max(m.width-2, 20)
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string, width int) string {
	if len(cards) == 0 {
		return ""
	}

	// Account for card margin
	cardsPerRow := 1
	if m.width > 0 {
		cardsPerRow = max(m.width/(width+1), 1)
	}

	var rows []string
	for i := 0; i < len(cards); i += cardsPerRow {
		end := min(i+cardsPerRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	return FooterStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}
