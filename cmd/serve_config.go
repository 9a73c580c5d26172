package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// commandTimeoutEnv is consulted when --command-timeout is not set explicitly.
const commandTimeoutEnv = "KUBECTL_MCP_COMMAND_TIMEOUT"

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string
	EventsEndpoint  string

	// Kubernetes access
	Kubeconfig string
	InCluster  bool
	QPSLimit   float32
	BurstLimit int

	// Command execution
	CommandTimeout     time.Duration
	PortForwardTimeout time.Duration
	CacheSize          int
	KubectlBinary      string
	HelmBinary         string

	// Safety
	NonDestructiveMode bool
	AllowedOperations  []string

	// Output shaping
	MaxItems       int
	MaxOutputBytes int

	// HTTP hardening
	CORSAllowedOrigins string
	EnableHSTS         bool

	DebugMode bool

	Metrics MetricsServeConfig
}

// MetricsServeConfig configures the dedicated metrics listener.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}

// Validate checks the configuration before anything is started.
func (c ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %q (supported: stdio, sse, streamable-http)", c.Transport)
	}

	if c.CommandTimeout <= 0 {
		return fmt.Errorf("--command-timeout must be positive, got %s", c.CommandTimeout)
	}
	if c.PortForwardTimeout <= 0 {
		return fmt.Errorf("--port-forward-timeout must be positive, got %s", c.PortForwardTimeout)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("--cache-size must not be negative, got %d", c.CacheSize)
	}
	if c.QPSLimit <= 0 {
		return fmt.Errorf("--qps-limit must be positive, got %v", c.QPSLimit)
	}
	if c.BurstLimit <= 0 {
		return fmt.Errorf("--burst-limit must be positive, got %d", c.BurstLimit)
	}
	if c.MaxItems < 0 || c.MaxOutputBytes < 0 {
		return fmt.Errorf("--max-items and --max-output-bytes must not be negative")
	}
	if c.InCluster && c.Kubeconfig != "" {
		return fmt.Errorf("--kubeconfig cannot be combined with --in-cluster")
	}

	if c.Transport == transportStdio {
		return nil
	}
	for flag, path := range map[string]string{
		"--sse-endpoint":     c.SSEEndpoint,
		"--message-endpoint": c.MessageEndpoint,
		"--http-endpoint":    c.HTTPEndpoint,
		"--events-endpoint":  c.EventsEndpoint,
	} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%s must start with '/', got %q", flag, path)
		}
	}
	if c.EventsEndpoint == c.HTTPEndpoint || c.EventsEndpoint == c.SSEEndpoint {
		return fmt.Errorf("--events-endpoint %q collides with an MCP endpoint", c.EventsEndpoint)
	}
	return nil
}

// newLogger builds the process logger. Records always go to stderr so that
// the stdio transport keeps stdout for protocol messages.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseDurationEnv parses a duration from an environment variable value.
// Returns the parsed duration and true if successful, or zero and false if parsing fails.
// Logs a warning if the value is present but invalid.
func parseDurationEnv(logger *slog.Logger, value, envName string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("ignoring invalid duration", slog.String("env", envName), slog.String("value", value), slog.Any("error", err))
		return 0, false
	}
	return d, true
}

// splitList splits a comma separated flag value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// envTrue reports whether the environment variable is set to "true".
func envTrue(name string) bool {
	return os.Getenv(name) == "true"
}
