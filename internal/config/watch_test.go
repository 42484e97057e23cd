package config

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	base := DefaultConfig()

	same := DefaultConfig()
	assert.Equal(t, Changes{}, Diff(base, same))

	slower := DefaultConfig()
	slower.RefreshInterval = 5
	assert.Equal(t, Changes{Interval: true}, Diff(base, slower))

	hidden := DefaultConfig()
	hidden.ShowTemperature = false
	assert.Equal(t, Changes{Display: true}, Diff(base, hidden))

	// Values that clamp to the same interval are not a change.
	clamped := DefaultConfig()
	clamped.RefreshInterval = 0
	assert.Equal(t, Changes{}, Diff(base, clamped))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "refresh_interval: 1\n")

	var mu sync.Mutex
	var got *Config
	require.NoError(t, Watch(path, func(cfg *Config, err error) {
		if err != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		got = cfg
	}))

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("refresh_interval: 6\n"), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got != nil && got.RefreshInterval == 6
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatch_MissingFile(t *testing.T) {
	assert.Error(t, Watch("/nonexistent/gpumon.yaml", func(*Config, error) {}))
}
