package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete gpumon configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// RefreshInterval is the poll period in whole seconds. Values below 1
	// are raised to 1.
	RefreshInterval int `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// ShowMemory and ShowTemperature toggle the memory and temperature
	// gauges. Both metrics are always collected.
	ShowMemory      bool `yaml:"show_memory" mapstructure:"show_memory"`
	ShowTemperature bool `yaml:"show_temperature" mapstructure:"show_temperature"`

	// Command is the query tool, a name on PATH or an absolute path.
	Command string `yaml:"command" mapstructure:"command"`

	// QueryTimeout bounds one query. Zero waits indefinitely.
	QueryTimeout time.Duration `yaml:"query_timeout" mapstructure:"query_timeout"`

	// HistorySize is the number of samples kept per metric.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`

	Log LogConfig `yaml:"log" mapstructure:"log"`

	// MetricsAddr is the listen address for /metrics and the device API
	// in watch mode, e.g. ":9400". Empty disables the server.
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`

	// InstanceID labels metrics and logs. Generated when empty.
	InstanceID string `yaml:"instance_id,omitempty" mapstructure:"instance_id"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Level: "debug", "info", "warn", or "error".
	Level string `yaml:"level" mapstructure:"level"`

	// Format: "text" or "json".
	Format string `yaml:"format" mapstructure:"format"`

	// File receives dashboard logs so they don't corrupt the screen.
	// Headless commands log to stderr.
	File string `yaml:"file" mapstructure:"file"`
}

// Interval returns the refresh period as a duration, at least one second.
func (c *Config) Interval() time.Duration {
	if c.RefreshInterval < 1 {
		return time.Second
	}
	return time.Duration(c.RefreshInterval) * time.Second
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		RefreshInterval: 1,
		ShowMemory:      true,
		ShowTemperature: true,
		Command:         "nvidia-smi",
		QueryTimeout:    0,
		HistorySize:     60,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "~/.cache/gpumon/gpumon.log",
		},
	}
}
