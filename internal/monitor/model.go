package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/gpumon/internal/gpu"
)

// LayoutMode represents the responsive layout mode based on terminal size.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: one line per GPU, no graphs
	LayoutMinimal LayoutMode = iota
	// LayoutCompact is for terminals 80-120 columns: single column of cards
	LayoutCompact
	// LayoutStandard is for terminals 120+ columns: cards in a grid
	LayoutStandard
)

// Width breakpoints for layout modes
const (
	BreakpointCompact  = 80
	BreakpointStandard = 120
)

// frameInterval is the repaint period while values are animating.
const frameInterval = time.Second / 60

// clockInterval keeps the "last update" age in the header current.
const clockInterval = time.Second

// Options configures a dashboard Model.
type Options struct {
	ShowMemory      bool
	ShowTemperature bool
	// Hostname is shown in the header.
	Hostname string
}

// PollResultMsg delivers a scheduler result to the dashboard. The result
// has already been applied to the scheduler's State.
type PollResultMsg struct {
	Result PollResult
}

// DisplayMsg changes which gauges are shown. It only redraws.
type DisplayMsg struct {
	ShowMemory      bool
	ShowTemperature bool
}

// IntervalMsg changes the refresh interval. The timer restarts without an
// extra poll.
type IntervalMsg struct {
	Interval time.Duration
}

// frameMsg drives repaints while an animation is running.
type frameMsg time.Time

// clockMsg drives the once-a-second header refresh.
type clockMsg time.Time

// Model is the Bubble Tea model for the GPU dashboard. It renders from the
// scheduler's State and never polls on its own; refresh requests go
// through Scheduler.Tick so they coalesce with timer ticks.
type Model struct {
	scheduler *Scheduler
	state     *State
	keys      KeyMap
	help      help.Model

	devices  []gpu.DeviceSample
	selected int
	hostname string
	interval time.Duration

	showMemory      bool
	showTemperature bool

	width     int
	height    int
	quitting  bool
	showHelp  bool
	viewMode  ViewMode
	animating bool
	frame     int

	// Detail view viewport for scrollable content
	detailViewport viewport.Model
	viewportReady  bool
}

// NewModel creates a dashboard bound to a scheduler.
func NewModel(s *Scheduler, opts Options) Model {
	return Model{
		scheduler:       s,
		state:           s.State(),
		keys:            DefaultKeyMap(),
		help:            help.New(),
		devices:         s.State().Devices(),
		hostname:        opts.Hostname,
		interval:        s.Interval(),
		showMemory:      opts.ShowMemory,
		showTemperature: opts.ShowTemperature,
	}
}

// Init starts the header clock.
func (m Model) Init() tea.Cmd {
	return clockCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.viewMode == ViewDetail && !m.showHelp {
			if handled, cmd := m.HandleKeyMsg(msg); handled {
				return m, cmd
			}
			var cmd tea.Cmd
			m.detailViewport, cmd = m.detailViewport.Update(msg)
			return m, cmd
		}
		_, cmd := m.HandleKeyMsg(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header and footer
		headerHeight := 2
		footerHeight := 2
		viewportHeight := max(m.height-headerHeight-footerHeight, 1)

		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, viewportHeight)
			m.detailViewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = viewportHeight
		}
		m.refreshDetail()

	case PollResultMsg:
		m.applyResult()
		return m, m.startAnimation()

	case DisplayMsg:
		m.showMemory = msg.ShowMemory
		m.showTemperature = msg.ShowTemperature
		m.refreshDetail()

	case IntervalMsg:
		m.setInterval(msg.Interval)

	case frameMsg:
		m.frame++
		m.refreshDetail()
		if m.state.Animating() {
			return m, frameCmd()
		}
		m.animating = false

	case clockMsg:
		m.frame++
		return m, clockCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.viewMode == ViewDetail {
		return m.renderDetailScreen()
	}
	return m.renderDashboard()
}

// applyResult refreshes the device list from State, keeping the selection
// on the same GPU index when it survives.
func (m *Model) applyResult() {
	prev := m.SelectedDevice()
	m.devices = m.state.Devices()

	m.selected = 0
	for i, d := range m.devices {
		if prev != nil && d.Index == prev.Index {
			m.selected = i
			break
		}
	}

	if len(m.devices) == 0 && m.viewMode == ViewDetail {
		m.viewMode = ViewList
	}
	m.refreshDetail()
}

// startAnimation begins frame ticks if a transition is running and none
// are scheduled yet.
func (m *Model) startAnimation() tea.Cmd {
	if m.animating || !m.state.Animating() {
		return nil
	}
	m.animating = true
	return frameCmd()
}

// refreshCmd asks the scheduler for an immediate poll.
func (m Model) refreshCmd() tea.Cmd {
	s := m.scheduler
	return func() tea.Msg {
		s.Tick()
		return nil
	}
}

// setInterval applies a new refresh interval, clamped by the scheduler.
func (m *Model) setInterval(d time.Duration) {
	m.interval = m.scheduler.SetInterval(d)
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// SelectedDevice returns the currently selected GPU, or nil.
func (m Model) SelectedDevice() *gpu.DeviceSample {
	if m.selected >= 0 && m.selected < len(m.devices) {
		d := m.devices[m.selected]
		return &d
	}
	return nil
}

// Interval returns the refresh interval currently in effect.
func (m Model) Interval() time.Duration {
	return m.interval
}

// SecondsSinceUpdate returns how many seconds have passed since the last
// successful poll.
func (m Model) SecondsSinceUpdate() int {
	last := m.state.LastUpdated()
	if last.IsZero() {
		return 0
	}
	return int(m.state.clock.Now().Sub(last).Seconds())
}

// LayoutMode returns the current layout mode based on terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointStandard:
		return LayoutStandard
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

// pollingIndicator returns a spinner frame while a query is in flight.
func (m Model) pollingIndicator() string {
	if inProgress, _ := m.scheduler.Busy(); !inProgress {
		return ""
	}
	return PollingSpinnerFrames[m.frame%len(PollingSpinnerFrames)]
}
