package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/giantswarm/kubectl-mcp/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is the listen address of the metrics server.
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP servers.
	DefaultShutdownTimeout = 30 * time.Second
)

// MetricsServerConfig configures the dedicated metrics server.
type MetricsServerConfig struct {
	// Addr defaults to DefaultMetricsAddr.
	Addr string

	// Enabled is informational; callers decide whether to start the server.
	Enabled bool

	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves /metrics and /healthz on a separate port so that
// scrapes never share a listener with MCP traffic.
type MetricsServer struct {
	addr   string
	server *http.Server
}

// NewMetricsServer creates a metrics server backed by the provider's
// Prometheus registry.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, errors.New("instrumentation provider is required")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", config.InstrumentationProvider.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the listen address.
func (m *MetricsServer) Addr() string {
	return m.addr
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown.
func (m *MetricsServer) Start() error {
	return m.server.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}
