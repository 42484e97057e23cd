package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/doctor"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/ui"
)

var doctorJSON bool

// doctorCmd diagnoses query tool and configuration issues.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose query tool and config issues",
	Long: `Run diagnostic checks to identify common issues.

Checks:
  - Config file location and schema
  - nvidia-smi (or the configured command) is on PATH
  - A live query succeeds and reports at least one GPU

Exits with status 1 when any check fails.

Examples:
  gpumon doctor
  gpumon doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCategories is the display order of check categories.
var doctorCategories = []string{"CONFIG", "GPU"}

func doctorCommand(cmd *cobra.Command) error {
	// A broken config is reported by the config checks; the GPU checks
	// still run against the defaults.
	cfg, _, err := loadConfig(cmd.Flags())
	if err != nil {
		cfg = config.DefaultConfig()
		if cmd.Flags().Changed("command") {
			cfg.Command = commandFlagPath
		}
	}

	checks := doctor.NewConfigChecks(Config())
	checks = append(checks, doctor.NewGPUChecks(gpu.NewQuerier(cfg.Command, cfg.QueryTimeout))...)
	results := doctor.RunAll(cmd.Context(), checks)

	out := cmd.OutOrStdout()
	if doctorJSON {
		err = outputDoctorJSON(out, results)
	} else {
		err = outputDoctorText(out, results)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

// buildDoctorOutput groups results by category.
func buildDoctorOutput(results []doctor.CheckResult) DoctorOutput {
	grouped := make(map[string][]doctor.CheckResult)
	var order []string
	for _, r := range results {
		if _, ok := grouped[r.Category]; !ok {
			order = append(order, r.Category)
		}
		grouped[r.Category] = append(grouped[r.Category], r)
	}

	output := DoctorOutput{Categories: make([]CategoryOutput, 0, len(order))}
	for _, cat := range order {
		output.Categories = append(output.Categories, CategoryOutput{
			Name:    cat,
			Results: grouped[cat],
		})
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

// outputDoctorJSON outputs results in JSON format.
func outputDoctorJSON(w io.Writer, results []doctor.CheckResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildDoctorOutput(results))
}

// outputDoctorText outputs results in human-readable format.
func outputDoctorText(w io.Writer, results []doctor.CheckResult) error {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(ui.HeaderStyle.Render("gpumon Diagnostic Report"))
	b.WriteString("\n\n")

	output := buildDoctorOutput(results)
	for _, name := range doctorCategories {
		for _, cat := range output.Categories {
			if cat.Name != name {
				continue
			}
			b.WriteString(ui.HeaderStyle.Render(cat.Name))
			b.WriteString("\n")
			for _, r := range cat.Results {
				renderCheckResult(&b, r)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(strings.Repeat("━", 60))
	b.WriteString("\n\n")

	if output.Summary.AllClear {
		fmt.Fprintf(&b, "%s %s\n", ui.SuccessStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	} else {
		fmt.Fprintf(&b, "%s %s\n", ui.ErrorStyle.Render(ui.SymbolFail), doctor.Summary(results))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// renderCheckResult renders a single check result.
func renderCheckResult(b *strings.Builder, result doctor.CheckResult) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol = ui.SymbolComplete
		style = ui.SuccessStyle
	case doctor.StatusWarn:
		symbol = ui.SymbolWarn
		style = ui.WarningStyle
	default:
		symbol = ui.SymbolFail
		style = ui.ErrorStyle
	}

	fmt.Fprintf(b, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(b, "    %s\n", ui.MutedStyle.Render(line))
		}
	}
}
