package cmd

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/kubectl-mcp/internal/instrumentation"
	"github.com/giantswarm/kubectl-mcp/internal/server"
)

// runSSEServer runs the server with SSE transport. The SSE and message
// handlers share one listener with the event stream and health endpoints.
func runSSEServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, config ServeConfig, provider *instrumentation.Provider, sc *server.ServerContext) error {
	sseServer := mcpserver.NewSSEServer(mcpSrv,
		mcpserver.WithSSEEndpoint(config.SSEEndpoint),
		mcpserver.WithMessageEndpoint(config.MessageEndpoint),
	)

	mux := http.NewServeMux()
	mux.Handle(config.SSEEndpoint, sseServer.SSEHandler())
	mux.Handle(config.MessageEndpoint, sseServer.MessageHandler())

	sc.Logger().Info("SSE server starting",
		slog.String("addr", config.HTTPAddr),
		slog.String("sse_endpoint", config.SSEEndpoint),
		slog.String("message_endpoint", config.MessageEndpoint),
		slog.String("events_endpoint", config.EventsEndpoint))

	return serveHTTP(ctx, "SSE", mux, config, provider, sc)
}
