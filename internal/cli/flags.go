package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/logger"
)

// ParseInterval parses a refresh interval flag into whole seconds. A bare
// integer is seconds; anything else must be a Go duration. Returns zero
// if the flag is empty.
func ParseInterval(flag string) (int, error) {
	if flag == "" {
		return 0, nil
	}

	if n, err := strconv.Atoi(flag); err == nil {
		if n < 1 {
			return 0, intervalError(flag, nil)
		}
		return n, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, intervalError(flag, err)
	}
	if d < time.Second {
		return 0, intervalError(flag, nil)
	}
	return int(d / time.Second), nil
}

func intervalError(flag string, cause error) error {
	return errors.WrapWithCode(cause, errors.ErrConfig,
		fmt.Sprintf("'%s' isn't a usable refresh interval", flag),
		"Use whole seconds of at least 1, like 2 or 5s.")
}

// applyFlags overrides cfg with the global flags the user actually set.
func applyFlags(cfg *config.Config, fs *pflag.FlagSet) error {
	if fs.Changed("interval") {
		secs, err := ParseInterval(intervalFlag)
		if err != nil {
			return err
		}
		cfg.RefreshInterval = secs
	}
	if fs.Changed("no-memory") {
		cfg.ShowMemory = !noMemoryFlag
	}
	if fs.Changed("no-temperature") {
		cfg.ShowTemperature = !noTempFlag
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = logLevelFlag
	}
	if fs.Changed("command") {
		cfg.Command = commandFlagPath
	}
	return nil
}

// loadConfig resolves the config file, applies flag overrides and
// validates the result. The returned path is empty when running on
// defaults.
func loadConfig(fs *pflag.FlagSet) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(Config())
	if err != nil {
		return nil, "", err
	}
	if err := applyFlags(cfg, fs); err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newLogger builds the logger for headless commands.
func newLogger(cfg *config.Config, w io.Writer, component string) logger.Logger {
	return logger.New(w, logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: component,
	})
}

// openLogFile opens the dashboard log file for appending. Logging is
// discarded when the file can't be opened.
func openLogFile(path string) (io.Writer, func()) {
	if path == "" {
		return io.Discard, func() {}
	}
	path = config.ExpandTilde(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { _ = f.Close() }
}
