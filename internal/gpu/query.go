package gpu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	gerrors "github.com/rileyhilliard/gpumon/internal/errors"
)

// DefaultCommand is the query tool looked up on PATH.
const DefaultCommand = "nvidia-smi"

// QueryArgs returns the arguments for a single CSV query of every device.
func QueryArgs() []string {
	return []string{
		"--query-gpu=" + QueryFields,
		"--format=csv,noheader,nounits",
	}
}

// Result is the outcome of a process that started and ran to completion.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes an external command. A returned error means the command
// never produced a Result: it could not be launched (code LAUNCH) or its
// output could not be collected (code COMM).
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run starts the command and waits for it, buffering both output streams.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, gerrors.WrapWithCode(err, gerrors.ErrLaunch, err.Error(), "")
	}

	err := cmd.Wait()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, gerrors.WrapWithCode(err, gerrors.ErrComm, strings.TrimSpace(stderr.String()), "")
}

// Querier runs the query command and classifies its failures into the
// messages the dashboard shows.
type Querier struct {
	Command string
	Runner  Runner
	// Timeout bounds one query. Zero means the query may run indefinitely.
	Timeout time.Duration
}

// NewQuerier creates a Querier for command using an ExecRunner.
func NewQuerier(command string, timeout time.Duration) *Querier {
	if command == "" {
		command = DefaultCommand
	}
	return &Querier{Command: command, Runner: ExecRunner{}, Timeout: timeout}
}

func (q *Querier) tool() string {
	return filepath.Base(q.Command)
}

// Query runs the command once and returns its stdout. Failures are
// *errors.Error values whose Message is ready for display:
//
//   - LAUNCH: "Unable to execute nvidia-smi: <reason>"
//   - EXIT:   trimmed stderr, or "nvidia-smi returned a non-zero exit status."
//   - COMM:   same as EXIT; also a query killed by its timeout
//
// Empty stdout is not an error.
func (q *Querier) Query(ctx context.Context) (string, error) {
	if q.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.Timeout)
		defer cancel()
	}

	res, err := q.Runner.Run(ctx, q.Command, QueryArgs()...)
	if err != nil {
		if gerrors.IsCode(err, gerrors.ErrComm) {
			stderr := gerrors.MessageOf(err)
			if res != nil {
				stderr = string(res.Stderr)
			}
			return "", q.exitError(stderr, err)
		}
		reason := gerrors.MessageOf(err)
		return "", gerrors.WrapWithCode(err, gerrors.ErrLaunch,
			fmt.Sprintf("Unable to execute %s: %s", q.tool(), reason),
			fmt.Sprintf("Check that %s is installed and on your PATH (gpumon doctor)", q.tool()))
	}

	if res.ExitCode != 0 {
		e := q.exitError(string(res.Stderr), nil)
		e.Code = gerrors.ErrExit
		return "", e
	}
	return string(res.Stdout), nil
}

func (q *Querier) exitError(stderr string, cause error) *gerrors.Error {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = fmt.Sprintf("%s returned a non-zero exit status.", q.tool())
	}
	return gerrors.WrapWithCode(cause, gerrors.ErrComm, msg, "")
}

// Poll runs Query and parses the result.
func (q *Querier) Poll(ctx context.Context) ([]DeviceSample, error) {
	raw, err := q.Query(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(raw), nil
}
