package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rileyhilliard/gpumon/internal/gpu"
)

// stubRunner returns a canned query result.
type stubRunner struct {
	res *gpu.Result
	err error
}

func (s stubRunner) Run(_ context.Context, _ string, _ ...string) (*gpu.Result, error) {
	return s.res, s.err
}

func querier(res *gpu.Result, err error) *gpu.Querier {
	return &gpu.Querier{Command: gpu.DefaultCommand, Runner: stubRunner{res: res, err: err}}
}

func TestToolCheck(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		check := &ToolCheck{
			Command:  "nvidia-smi",
			LookPath: func(string) (string, error) { return "/usr/bin/nvidia-smi", nil },
		}
		result := check.Run(context.Background())

		if result.Status != StatusPass {
			t.Errorf("expected StatusPass, got %v", result.Status)
		}
		if !strings.Contains(result.Message, "/usr/bin/nvidia-smi") {
			t.Errorf("expected resolved path in message, got %q", result.Message)
		}
	})

	t.Run("missing", func(t *testing.T) {
		check := &ToolCheck{
			Command:  "nvidia-smi",
			LookPath: func(string) (string, error) { return "", errors.New("not found") },
		}
		result := check.Run(context.Background())

		if result.Status != StatusFail {
			t.Errorf("expected StatusFail, got %v", result.Status)
		}
		if result.Suggestion == "" {
			t.Error("expected a suggestion")
		}
	})
}

func TestQueryCheck(t *testing.T) {
	tests := []struct {
		name        string
		res         *gpu.Result
		err         error
		want        CheckStatus
		wantMessage string
	}{
		{
			name:        "devices found",
			res:         &gpu.Result{Stdout: []byte("NVIDIA GeForce RTX 3080, 42, 4096, 10240, 61, 0\nNVIDIA GeForce RTX 4090 Ti, 1, 1, 2, 30, 1\n")},
			want:        StatusPass,
			wantMessage: "2 GPUs: 3080, 4090 TI",
		},
		{
			name:        "no devices",
			res:         &gpu.Result{},
			want:        StatusWarn,
			wantMessage: "no GPUs",
		},
		{
			name:        "non-zero exit",
			res:         &gpu.Result{ExitCode: 9, Stderr: []byte("NVIDIA-SMI has failed\n")},
			want:        StatusFail,
			wantMessage: "NVIDIA-SMI has failed",
		},
		{
			name:        "launch failure",
			err:         errors.New("exec: not found"),
			want:        StatusFail,
			wantMessage: "Unable to execute nvidia-smi",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			check := &QueryCheck{Querier: querier(tc.res, tc.err)}
			result := check.Run(context.Background())

			if result.Status != tc.want {
				t.Errorf("expected %v, got %v: %s", tc.want, result.Status, result.Message)
			}
			if !strings.Contains(result.Message, tc.wantMessage) {
				t.Errorf("expected message containing %q, got %q", tc.wantMessage, result.Message)
			}
		})
	}
}

func TestNewGPUChecks(t *testing.T) {
	checks := NewGPUChecks(gpu.NewQuerier("", 0))
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}
	if tool, ok := checks[0].(*ToolCheck); !ok || tool.Command != gpu.DefaultCommand {
		t.Errorf("expected tool check for %s", gpu.DefaultCommand)
	}
}
