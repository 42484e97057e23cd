package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/host"
	"github.com/rileyhilliard/gpumon/internal/monitor"
	"github.com/rileyhilliard/gpumon/internal/ui"
)

// Output formats for query.
const (
	FormatText    = "text"
	FormatSummary = "summary"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
)

var queryFormat string

// QueryOutput is the machine-readable result of one query.
type QueryOutput struct {
	Host    host.Info          `json:"host" yaml:"host"`
	Devices []gpu.DeviceSample `json:"devices" yaml:"devices"`
}

// queryCmd polls once and prints the result.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Poll once and print the GPU readings",
	Long: `Run a single query and print every GPU's readings.

Formats:
  text     table (default)
  summary  one line per GPU
  json     JSON envelope with host info and devices
  yaml     same data as YAML

Examples:
  gpumon query
  gpumon query --format summary
  gpumon query --format json | jq '.data.devices[].gpu_percent'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return queryCommand(cmd, queryFormat)
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryFormat, "format", "o", FormatText, "output format: text, summary, json, yaml")
	rootCmd.AddCommand(queryCmd)
}

func queryCommand(cmd *cobra.Command, format string) error {
	format = strings.ToLower(format)
	switch format {
	case FormatText, FormatSummary, FormatJSON, FormatYAML:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown output format: %s", format),
			"Supported formats: text, summary, json, yaml")
	}

	out := cmd.OutOrStdout()
	cfg, _, err := loadConfig(cmd.Flags())
	if err != nil {
		return queryFailed(out, format, err)
	}

	ctx := cmd.Context()
	samples, err := gpu.NewQuerier(cfg.Command, cfg.QueryTimeout).Poll(ctx)
	if err != nil {
		return queryFailed(out, format, err)
	}

	info, _ := host.Describe(ctx)
	return writeQuery(out, format, QueryOutput{Host: info, Devices: samples})
}

// queryFailed reports err in the requested format. JSON output carries
// the error in the envelope, so only the exit status is returned.
func queryFailed(w io.Writer, format string, err error) error {
	if format != FormatJSON {
		return err
	}
	if writeErr := WriteJSONFromError(w, err); writeErr != nil {
		return writeErr
	}
	return errors.NewExitError(1)
}

func writeQuery(w io.Writer, format string, out QueryOutput) error {
	if out.Devices == nil {
		out.Devices = []gpu.DeviceSample{}
	}

	switch format {
	case FormatJSON:
		return WriteJSONSuccess(w, out)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case FormatSummary:
		_, err := fmt.Fprintln(w, monitor.SummaryOf(out.Devices))
		return err
	default:
		if len(out.Devices) == 0 {
			_, err := fmt.Fprintln(w, monitor.NoDataDetail)
			return err
		}
		_, err := fmt.Fprintln(w, renderDeviceTable(out.Devices))
		return err
	}
}

// renderDeviceTable renders samples as a table for terminal output.
func renderDeviceTable(samples []gpu.DeviceSample) string {
	columns := []ui.TableColumn{
		{Title: "GPU", Width: 3},
		{Title: "Name", Width: 10},
		{Title: "Util", Width: 5},
		{Title: "Memory", Width: 10},
		{Title: "Mem%", Width: 5},
		{Title: "Temp", Width: 5},
	}

	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			s.Name,
			fmt.Sprintf("%.0f%%", s.GPUPercent),
			fmt.Sprintf("%.0f/%.0f MiB", s.MemUsedMiB, s.MemTotalMiB),
			fmt.Sprintf("%.0f%%", s.MemPercent),
			fmt.Sprintf("%.0f°C", s.TempRawCelsius),
		})
	}
	return ui.RenderSimpleTable(columns, rows)
}
