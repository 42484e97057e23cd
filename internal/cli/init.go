package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Where to write; empty means ./.gpumon.yaml
	Global         bool   // Write the global config instead
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

var (
	initForce          bool
	initGlobal         bool
	initNonInteractive bool
)

// initCmd creates a new config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .gpumon.yaml configuration",
	Long: `Create a gpumon configuration file with sensible defaults.

Prompts for the refresh interval and which gauges to show unless
--non-interactive is set.

Examples:
  gpumon init
  gpumon init --global
  gpumon init --non-interactive --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(cmd.OutOrStdout(), InitOptions{
			Global:         initGlobal,
			Overwrite:      initForce,
			NonInteractive: initNonInteractive || os.Getenv("CI") != "",
		})
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write ~/.config/gpumon/config.yaml")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and use defaults")
	rootCmd.AddCommand(initCmd)
}

// initPath returns the file Init writes to.
func initPath(opts InitOptions) string {
	switch {
	case opts.Path != "":
		return opts.Path
	case opts.Global:
		return config.GlobalPath()
	default:
		return filepath.Join(".", config.ConfigFileName)
	}
}

// Init creates a new configuration file.
func Init(w io.Writer, opts InitOptions) error {
	configPath := initPath(opts)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := config.Write(configPath, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(w, "%s Created %s\n\n", ui.SuccessStyle.Render(ui.SymbolSuccess), configPath)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  gpumon doctor  - Check that nvidia-smi works")
	fmt.Fprintln(w, "  gpumon         - Open the dashboard")
	return nil
}

// promptConfig asks for the commonly changed settings.
func promptConfig(cfg *config.Config) error {
	interval := strconv.Itoa(cfg.RefreshInterval)
	metricsAddr := cfg.MetricsAddr

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Refresh interval (seconds)").
				Description("How often nvidia-smi is polled; at least 1").
				Value(&interval).
				Validate(validateIntervalInput),
			huh.NewConfirm().
				Title("Show the memory gauge?").
				Value(&cfg.ShowMemory),
			huh.NewConfirm().
				Title("Show the temperature gauge?").
				Value(&cfg.ShowTemperature),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Metrics address (optional)").
				Description("Where 'gpumon watch' serves /metrics, e.g. :9400").
				Placeholder("leave empty to disable").
				Value(&metricsAddr),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}

	cfg.RefreshInterval, _ = strconv.Atoi(strings.TrimSpace(interval))
	cfg.MetricsAddr = strings.TrimSpace(metricsAddr)
	return nil
}

func validateIntervalInput(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of seconds, at least 1")
	}
	return nil
}
