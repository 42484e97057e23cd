package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/gpumon/internal/errors"
)

// Global flags
var (
	cfgFile         string
	intervalFlag    string
	noMemoryFlag    bool
	noTempFlag      bool
	logLevelFlag    string
	commandFlagPath string
)

// rootCmd starts the dashboard when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "gpumon",
	Short: "Live NVIDIA GPU utilization, memory and temperature monitor",
	Long: `gpumon polls nvidia-smi on a fixed interval and shows per-GPU
utilization, memory and temperature as animated gauges with a short history.

Run without arguments to open the dashboard. When stdout is not a terminal
gpumon falls back to 'gpumon watch' output.

Examples:
  gpumon
  gpumon --interval 2
  gpumon query --format json
  gpumon watch --metrics-addr :9400`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./.gpumon.yaml or ~/.config/gpumon/config.yaml)")
	pf.StringVar(&intervalFlag, "interval", "", "refresh interval in seconds or as a duration (e.g., 2, 5s)")
	pf.BoolVar(&noMemoryFlag, "no-memory", false, "hide the memory gauge")
	pf.BoolVar(&noTempFlag, "no-temperature", false, "hide the temperature gauge")
	pf.StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&commandFlagPath, "command", "", "query tool name or path (default: nvidia-smi)")
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Execute runs the root command and exits with the command's status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		fmt.Fprint(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// formatError renders err for the terminal. Structured errors already end
// with a newline.
func formatError(err error) string {
	msg := err.Error()
	if _, ok := err.(*errors.Error); ok {
		return msg
	}
	return fmt.Sprintf("✗ %s\n", msg)
}
