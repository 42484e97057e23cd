package cli

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/host"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/rileyhilliard/gpumon/internal/monitor"
)

// monitorCmd is the explicit form of the root command.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Open the live GPU dashboard (default)",
	Long: `Open the interactive dashboard showing one card per GPU with
animated utilization, memory and temperature gauges.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Refresh now
  m           Toggle memory gauge
  t           Toggle temperature gauge
  up/k        Select previous GPU
  down/j      Select next GPU
  Enter       Expand selected GPU
  Esc         Collapse / go back
  + / -       Change refresh interval
  ?           Show help

Examples:
  gpumon monitor
  gpumon monitor --interval 5 --no-temperature`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd)
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// monitorCommand runs the dashboard, or watch output when stdout is not
// a terminal.
func monitorCommand(cmd *cobra.Command) error {
	cfg, cfgPath, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return runWatch(cmd.Context(), cfg, cfgPath, os.Stderr)
	}

	logOut, closeLog := openLogFile(cfg.Log.File)
	defer closeLog()
	log := newLogger(cfg, logOut, "monitor")
	logger.SetDefault(log)

	var p *tea.Program
	state := monitor.NewState(cfg.HistorySize, nil)
	scheduler := monitor.NewScheduler(monitor.SchedulerConfig{
		Source:   gpu.NewQuerier(cfg.Command, cfg.QueryTimeout),
		State:    state,
		Interval: cfg.Interval(),
		Logger:   log,
		OnResult: func(res monitor.PollResult) {
			p.Send(monitor.PollResultMsg{Result: res})
		},
	})
	defer scheduler.Close()

	model := monitor.NewModel(scheduler, monitor.Options{
		ShowMemory:      cfg.ShowMemory,
		ShowTemperature: cfg.ShowTemperature,
		Hostname:        host.Hostname(cmd.Context()),
	})
	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if cfgPath != "" {
		watchDashboardConfig(cfgPath, cfg, p, log)
	}

	log.Info("dashboard starting: interval=%s command=%s", cfg.Interval(), cfg.Command)
	scheduler.Start(cmd.Context())
	_, err = p.Run()
	return err
}

// watchDashboardConfig forwards live config edits to the dashboard. A
// reload that fails validation keeps the running settings.
func watchDashboardConfig(path string, running *config.Config, p *tea.Program, log logger.Logger) {
	current := running
	err := config.Watch(path, func(next *config.Config, err error) {
		if err != nil {
			log.Warn("ignoring config change: %v", err)
			return
		}
		changes := config.Diff(current, next)
		if changes.Interval {
			p.Send(monitor.IntervalMsg{Interval: next.Interval()})
		}
		if changes.Display {
			p.Send(monitor.DisplayMsg{ShowMemory: next.ShowMemory, ShowTemperature: next.ShowTemperature})
		}
		current = next
	})
	if err != nil {
		log.Warn("config watch disabled: %v", err)
	}
}
