package cli

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/gpumon/internal/errors"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"monitor", "watch", "query", "doctor", "init", "config", "version", "completion"} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestRootCommandGlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "interval", "no-memory", "no-temperature", "log-level", "command"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestFormatError(t *testing.T) {
	structured := errors.New(errors.ErrConfig, "Bad config", "Fix it")
	assert.Equal(t, structured.Error(), formatError(structured))

	assert.Equal(t, "✗ boom\n", formatError(stderrors.New("boom")))
}

func TestConfigAccessor(t *testing.T) {
	old := cfgFile
	defer func() { cfgFile = old }()

	cfgFile = "/tmp/gpumon.yaml"
	assert.Equal(t, "/tmp/gpumon.yaml", Config())
}
