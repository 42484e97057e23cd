package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gpumon/internal/config"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, config.Write(path, config.DefaultConfig()))
	return path
}

func bufferedCmd() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestConfigSet(t *testing.T) {
	path := writeTestConfig(t)
	cmd, out := bufferedCmd()

	require.NoError(t, configSet(cmd, path, "refresh_interval", "3"))
	require.NoError(t, configSet(cmd, path, "log.level", "debug"))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RefreshInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Contains(t, out.String(), "refresh_interval = 3")
}

func TestConfigSet_InvalidValueRestoresFile(t *testing.T) {
	path := writeTestConfig(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	cmd, _ := bufferedCmd()

	err = configSet(cmd, path, "log.level", "loud")
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestConfigSet_SectionKey(t *testing.T) {
	path := writeTestConfig(t)
	cmd, _ := bufferedCmd()

	assert.Error(t, configSet(cmd, path, "log", "debug"))
}

func TestConfigSet_MissingFile(t *testing.T) {
	cmd, _ := bufferedCmd()

	assert.Error(t, configSet(cmd, filepath.Join(t.TempDir(), "nope.yaml"), "command", "x"))
}
