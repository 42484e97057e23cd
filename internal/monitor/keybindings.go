package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewMode defines the current display mode of the dashboard.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

// intervalStep is how much +/- change the refresh interval.
const intervalStep = time.Second

// KeyMap holds every dashboard binding. It satisfies help.KeyMap.
type KeyMap struct {
	Quit         key.Binding
	Refresh      key.Binding
	ToggleMemory key.Binding
	ToggleTemp   key.Binding
	Up           key.Binding
	Down         key.Binding
	Expand       key.Binding
	Collapse     key.Binding
	IntervalUp   key.Binding
	IntervalDown key.Binding
	ToggleHelp   key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ToggleMemory: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "memory"),
		),
		ToggleTemp: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "temperature"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous GPU"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next GPU"),
		),
		Expand: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		IntervalUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "slower refresh"),
		),
		IntervalDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "faster refresh"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Refresh, k.Up, k.Down, k.Expand, k.ToggleHelp}
}

// FullHelp returns the bindings shown in the help overlay, grouped in columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Expand, k.Collapse},
		{k.Refresh, k.IntervalUp, k.IntervalDown},
		{k.ToggleMemory, k.ToggleTemp, k.ToggleHelp, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input and returns the resulting command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, m.keys.ToggleHelp) {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if key.Matches(msg, m.keys.Collapse) {
		switch {
		case m.showHelp:
			m.showHelp = false
		case m.viewMode == ViewDetail:
			m.viewMode = ViewList
		}
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		return true, m.refreshCmd()

	case key.Matches(msg, m.keys.ToggleMemory):
		m.showMemory = !m.showMemory
		m.refreshDetail()
		return true, nil

	case key.Matches(msg, m.keys.ToggleTemp):
		m.showTemperature = !m.showTemperature
		m.refreshDetail()
		return true, nil

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
			m.refreshDetail()
		}
		return true, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.devices)-1 {
			m.selected++
			m.refreshDetail()
		}
		return true, nil

	case key.Matches(msg, m.keys.Expand):
		if m.viewMode == ViewList && len(m.devices) > 0 {
			m.viewMode = ViewDetail
			m.refreshDetail()
		}
		return true, nil

	case key.Matches(msg, m.keys.IntervalUp):
		m.setInterval(m.interval + intervalStep)
		return true, nil

	case key.Matches(msg, m.keys.IntervalDown):
		m.setInterval(m.interval - intervalStep)
		return true, nil
	}

	return false, nil
}
