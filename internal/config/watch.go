package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch reloads path whenever it is written and calls onChange with the
// new config, or with the load/validation error. The watch lives for the
// rest of the process.
func Watch(path string, onChange func(*Config, error)) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(reload(v, path))
	})
	v.WatchConfig()
	return nil
}

// reload re-reads v's file; viper has already refreshed its values.
func reload(v *viper.Viper, path string) (*Config, error) {
	cfg, err := parseConfig(v, path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Changes describes how a reloaded config differs from the running one.
type Changes struct {
	Interval bool // restart the poll timer
	Display  bool // redraw only
}

// Diff reports which running settings changed between prev and next.
func Diff(prev, next *Config) Changes {
	return Changes{
		Interval: prev.Interval() != next.Interval(),
		Display:  prev.ShowMemory != next.ShowMemory || prev.ShowTemperature != next.ShowTemperature,
	}
}
