// Package health serves liveness, readiness, Prometheus metrics and the
// latest device snapshot over HTTP.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rileyhilliard/gpumon/internal/gpu"
	"github.com/rileyhilliard/gpumon/internal/observability"
)

// StateReader is the slice of monitor.State the server reads.
type StateReader interface {
	Polled() bool
	Closed() bool
	Devices() []gpu.DeviceSample
	Err() string
	ErrCode() string
	LastUpdated() time.Time
	Summary() string
}

// DevicesResponse is the body of /api/devices.
type DevicesResponse struct {
	Devices     []gpu.DeviceSample `json:"devices"`
	Error       string             `json:"error,omitempty"`
	ErrorCode   string             `json:"error_code,omitempty"`
	LastUpdated *time.Time         `json:"last_updated,omitempty"`
	Summary     string             `json:"summary"`
}

// Server exposes health, readiness, metrics and device endpoints.
type Server struct {
	httpServer *http.Server
	metrics    *observability.Metrics
	state      StateReader
	listener   net.Listener
}

// NewServer creates a server for addr (host:port). Use ":0" or
// "127.0.0.1:0" to let the OS pick a port.
func NewServer(addr string, metrics *observability.Metrics, state StateReader) *Server {
	s := &Server{
		metrics: metrics,
		state:   state,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	mux.HandleFunc("/api/devices", s.handleDevices)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return s
}

// Addr returns the listen address; after Start it is the bound address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins listening and serving HTTP in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("health server listen: %w", err)
	}
	s.listener = ln
	s.httpServer.Addr = ln.Addr().String()

	go func() {
		_ = s.httpServer.Serve(ln)
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz is ready once the first poll result, success or failure,
// has been applied, and stops being ready when polling shuts down.
func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	ready := s.state.Polled() && !s.state.Closed()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]bool{"ready": ready})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := DevicesResponse{
		Devices:   s.state.Devices(),
		Error:     s.state.Err(),
		Summary:   s.state.Summary(),
		ErrorCode: s.state.ErrCode(),
	}
	if resp.Devices == nil {
		resp.Devices = []gpu.DeviceSample{}
	}
	if t := s.state.LastUpdated(); !t.IsZero() {
		resp.LastUpdated = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
