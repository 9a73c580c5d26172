// Package cmd provides the command-line interface for kubectl-mcp.
//
// This package implements a Cobra-based CLI with multiple subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - version: Displays the application version
//   - self-update: Updates the binary to the latest version from GitHub releases
//
// Command Structure:
//
//	kubectl-mcp [flags]                 # Starts the MCP server (default)
//	kubectl-mcp serve [flags]           # Explicitly starts the MCP server
//	kubectl-mcp version                 # Shows version information
//	kubectl-mcp self-update             # Updates to latest release
//
// The serve command supports multiple transport options:
//   - stdio: Standard input/output (default) - for command-line integration
//   - sse: Server-Sent Events over HTTP - for web-based clients
//   - streamable-http: Streamable HTTP transport - for HTTP-based integration
//
// Both HTTP transports also serve the resource event stream (SSE and
// WebSocket), /healthz and /readyz.
//
// Transport Configuration Examples:
//
//	kubectl-mcp serve --transport stdio
//	kubectl-mcp serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	kubectl-mcp serve --transport streamable-http --http-addr :9000 --events-endpoint /events
package cmd
