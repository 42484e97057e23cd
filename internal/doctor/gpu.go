package doctor

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/util"
)

// ToolCheck verifies the query tool can be found.
type ToolCheck struct {
	Command string
	// LookPath resolves Command; nil uses exec.LookPath.
	LookPath func(string) (string, error)
}

func (c *ToolCheck) Name() string     { return "query_tool" }
func (c *ToolCheck) Category() string { return "GPU" }

func (c *ToolCheck) Run(_ context.Context) CheckResult {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	path, err := lookPath(c.Command)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s not found", c.Command),
			Suggestion: "Install the NVIDIA driver utilities, or set 'command' to the full path of nvidia-smi",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s: %s", c.Command, path),
	}
}

// QueryCheck runs one live query and reports what it found.
type QueryCheck struct {
	Querier *gpu.Querier
}

func (c *QueryCheck) Name() string     { return "query" }
func (c *QueryCheck) Category() string { return "GPU" }

func (c *QueryCheck) Run(ctx context.Context) CheckResult {
	samples, err := c.Querier.Poll(ctx)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    errors.MessageOf(err),
			Suggestion: querySuggestion(err),
		}
	}

	if len(samples) == 0 {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "Query succeeded but reported no GPUs",
			Suggestion: "Check that the NVIDIA driver is loaded (nvidia-smi -L)",
		}
	}

	labels := make([]string, len(samples))
	for i, s := range samples {
		labels[i] = s.ShortLabel
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%d %s: %s", len(samples), util.Pluralize(len(samples), "GPU", "GPUs"), util.JoinOrDefault(labels, "")),
	}
}

func querySuggestion(err error) string {
	switch errors.CodeOf(err) {
	case errors.ErrLaunch:
		return "Make sure the query tool is installed and executable"
	case errors.ErrExit:
		return "The driver may not be loaded; try running nvidia-smi directly"
	default:
		return "Run with GPUMON_DEBUG=1 for details"
	}
}

// NewGPUChecks returns the query tool checks for q.
func NewGPUChecks(q *gpu.Querier) []Check {
	return []Check{
		&ToolCheck{Command: q.Command},
		&QueryCheck{Querier: q},
	}
}
