package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/kubectl-mcp/internal/instrumentation"
	"github.com/giantswarm/kubectl-mcp/internal/server"
	"github.com/giantswarm/kubectl-mcp/internal/server/middleware"
)

// runStreamableHTTPServer runs the server with Streamable HTTP transport
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, config ServeConfig, provider *instrumentation.Provider, sc *server.ServerContext) error {
	mux := http.NewServeMux()

	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(config.HTTPEndpoint),
	)
	mux.Handle(config.HTTPEndpoint, mcpHandler)

	sc.Logger().Info("streamable HTTP server starting",
		slog.String("addr", config.HTTPAddr),
		slog.String("endpoint", config.HTTPEndpoint),
		slog.String("events_endpoint", config.EventsEndpoint))

	return serveHTTP(ctx, "streamable HTTP", mux, config, provider, sc)
}

// serveHTTP mounts the shared endpoints on mux, applies the middleware chain
// and serves until ctx is cancelled. The metrics server runs alongside when
// enabled.
func serveHTTP(ctx context.Context, name string, mux *http.ServeMux, config ServeConfig, provider *instrumentation.Provider, sc *server.ServerContext) error {
	logger := sc.Logger()

	mountEventEndpoints(mux, config.EventsEndpoint, sc)
	server.NewHealthChecker(sc).RegisterHealthEndpoints(mux)

	handler, err := applyMiddleware(mux, config, provider)
	if err != nil {
		return err
	}

	var metricsServer *server.MetricsServer
	if config.Metrics.Enabled && provider != nil && provider.Enabled() {
		metricsServer, err = startMetricsServer(logger, config.Metrics, provider)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	// No WriteTimeout: the MCP and event streams stay open.
	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping " + name + " server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()

		// Shutdown metrics server first
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error shutting down metrics server", slog.Any("error", err))
			}
		}

		// Event streams only end when their subscriptions close.
		if err := sc.Shutdown(); err != nil {
			logger.Error("error shutting down server context", slog.Any("error", err))
		}

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down %s server: %w", name, err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("%s server stopped with error: %w", name, err)
		}
		logger.Info(name + " server stopped normally")
	}

	logger.Info(name + " server gracefully stopped")
	return nil
}

// mountEventEndpoints serves the resource change stream as Server-Sent Events
// at endpoint and over WebSocket at endpoint/ws.
func mountEventEndpoints(mux *http.ServeMux, endpoint string, sc *server.ServerContext) {
	endpoint = strings.TrimSuffix(endpoint, "/")
	mux.Handle(endpoint, sc.EventBus().SSEHandler())
	mux.Handle(endpoint+"/ws", sc.EventBus().WebSocketHandler())
}

// applyMiddleware wraps handler with metrics, security headers, CORS and the
// request size limit. Metrics is outermost so refused requests are counted.
func applyMiddleware(handler http.Handler, config ServeConfig, provider *instrumentation.Provider) (http.Handler, error) {
	origins, err := middleware.ValidateAllowedOrigins(config.CORSAllowedOrigins)
	if err != nil {
		return nil, fmt.Errorf("invalid --cors-allowed-origins: %w", err)
	}

	handler = middleware.MaxRequestSize(middleware.DefaultMaxRequestBytes)(handler)
	handler = middleware.CORS(origins)(handler)
	handler = middleware.SecurityHeaders(config.EnableHSTS)(handler)
	handler = middleware.HTTPMetrics(provider)(handler)
	return handler, nil
}

// startMetricsServer starts the dedicated metrics server on a separate port.
func startMetricsServer(logger *slog.Logger, config MetricsServeConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		Enabled:                 config.Enabled,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()), slog.String("endpoint", "/metrics"))
	return metricsServer, nil
}
