package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/logger"
	"github.com/rileyhilliard/gpumon/internal/monitor"
)

// syncBuffer is a bytes.Buffer safe for the scheduler goroutine to write
// while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogSamples(t *testing.T) {
	log := logger.NewBufferLogger()

	logSamples(log, monitor.PollResult{Samples: gpu.Parse(queryCSV)})

	msgs := log.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "NVIDIA GeForce RTX 3080 (GPU 0): 42% GPU, 4096/10240 MiB, 61°C", msgs[0].Message)
}

func TestLogSamples_EmptyAndError(t *testing.T) {
	log := logger.NewBufferLogger()

	logSamples(log, monitor.PollResult{})
	logSamples(log, monitor.PollResult{Err: fmt.Errorf("boom")})

	msgs := log.Messages()
	require.Len(t, msgs, 1, "errors are logged by the scheduler")
	assert.Equal(t, monitor.NoDataMessage, msgs[0].Message)
}

func TestRunWatch(t *testing.T) {
	tool := fakeTool(t, "printf '"+strings.ReplaceAll(queryCSV, "\n", `\n`)+"'")

	cfg := config.DefaultConfig()
	cfg.Command = tool
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.InstanceID = "test-rig"

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, cfg, "", &out) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "RTX 4090 (GPU 1)")
	}, 5*time.Second, 20*time.Millisecond)

	addr := serverAddr(t, &out)
	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `gpumon_gpu_utilization_percent{index="0",instance_id="test-rig"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not stop")
	}
	assert.Contains(t, out.String(), "stopped")
}

func TestRunWatch_BadAddress(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MetricsAddr = "256.0.0.1:bad"

	err := runWatch(context.Background(), cfg, "", io.Discard)

	assert.Error(t, err)
}

// serverAddr pulls the bound listen address out of the startup log line.
func serverAddr(t *testing.T, out *syncBuffer) string {
	t.Helper()
	const marker = "serving metrics on http://"
	var addr string
	require.Eventually(t, func() bool {
		s := out.String()
		i := strings.Index(s, marker)
		if i < 0 {
			return false
		}
		rest := s[i+len(marker):]
		addr = rest[:strings.Index(rest, "/metrics")]
		return true
	}, 5*time.Second, 10*time.Millisecond)
	return addr
}
