package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/monitor"
	"github.com/rileyhilliard/gpumon/internal/observability"
)

func newTestServer(t *testing.T) (*Server, *monitor.State, *observability.Metrics) {
	t.Helper()
	state := monitor.NewState(monitor.DefaultHistorySize, nil)
	metrics := observability.NewMetrics("")
	return NewServer("127.0.0.1:0", metrics, state), state, metrics
}

func serve(s *Server, method, path string) *http.Response {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)
	return w.Result()
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := serve(srv, http.MethodGet, "/healthz")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestReadyz(t *testing.T) {
	srv, state, _ := newTestServer(t)

	resp := serve(srv, http.MethodGet, "/readyz")
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	state.ApplyError(errors.New("No devices were found"))

	resp = serve(srv, http.MethodGet, "/readyz")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	state.Close()

	resp = serve(srv, http.MethodGet, "/readyz")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDevices(t *testing.T) {
	srv, state, _ := newTestServer(t)
	state.ApplySamples(gpu.Parse("NVIDIA GeForce RTX 3080, 42, 4096, 10240, 61, 0"))

	resp := serve(srv, http.MethodGet, "/api/devices")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body DevicesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Devices, 1)
	assert.Equal(t, "3080", body.Devices[0].ShortLabel)
	assert.Equal(t, 40.0, body.Devices[0].MemPercent)
	assert.Empty(t, body.Error)
	assert.NotNil(t, body.LastUpdated)
	assert.Equal(t, "NVIDIA GeForce RTX 3080 (GPU 0): 42% GPU, 4096/10240 MiB, 61°C", body.Summary)
}

func TestDevices_Error(t *testing.T) {
	srv, state, _ := newTestServer(t)
	state.ApplyError(gerrors.New(gerrors.ErrExit, "No devices were found", ""))

	resp := serve(srv, http.MethodGet, "/api/devices")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body DevicesResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Empty(t, body.Devices)
	assert.Contains(t, string(raw), `"devices":[]`)
	assert.Equal(t, "No devices were found", body.Error)
	assert.Equal(t, gerrors.ErrExit, body.ErrorCode)
}

func TestDevices_MethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := serve(srv, http.MethodPost, "/api/devices")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _, metrics := newTestServer(t)
	metrics.ObservePoll(monitor.PollResult{Samples: gpu.Parse("A 3080, 42, 1, 2, 30, 0")})

	resp := serve(srv, http.MethodGet, "/metrics")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gpumon_gpu_utilization_percent{index="0",name="A 3080",short_label="3080"} 42`)
}

func TestStartStop(t *testing.T) {
	srv, _, _ := newTestServer(t)
	require.NoError(t, srv.Start())

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
}
