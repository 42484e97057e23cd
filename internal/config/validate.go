package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/logger"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but gpumon only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest gpumon release")
	}

	if strings.TrimSpace(cfg.Command) == "" {
		return errors.New(errors.ErrConfig,
			"'command' can't be empty",
			"Set it to nvidia-smi or the full path of the binary")
	}

	if cfg.QueryTimeout < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'query_timeout' can't be negative (got %s)", cfg.QueryTimeout),
			"Use 0 to wait indefinitely, or a duration like 10s")
	}

	if cfg.HistorySize < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'history_size' must be at least 1 (got %d)", cfg.HistorySize),
			"The default is 60 samples")
	}

	if err := validateLog(cfg.Log); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'log' section in your config.")
	}

	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'metrics_addr' %q isn't a host:port address", cfg.MetricsAddr),
				"Use something like :9400 or 127.0.0.1:9400")
		}
	}

	return nil
}

func validateLog(l LogConfig) error {
	if _, err := logger.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log level %q isn't one of debug, info, warn, error", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log format %q isn't one of text, json", l.Format)
	}
	return nil
}
