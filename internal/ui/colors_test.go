package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestColorConstants(t *testing.T) {
	colors := []lipgloss.Color{
		ColorSuccess,
		ColorError,
		ColorWarning,
		ColorInfo,
		ColorPrimary,
		ColorMuted,
	}

	for _, color := range colors {
		assert.NotEmpty(t, string(color))
	}
}

func TestStylesRenderText(t *testing.T) {
	for _, style := range []lipgloss.Style{SuccessStyle, ErrorStyle, WarningStyle, MutedStyle, HeaderStyle} {
		assert.Contains(t, style.Render(SymbolSuccess+" ok"), "ok")
	}
}
