package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmdProperties(t *testing.T) {
	cmd := newServeCmd()

	assert.Equal(t, "serve", cmd.Use)
	assert.Equal(t, "Start the kubectl MCP server", cmd.Short)
	assert.True(t, strings.Contains(cmd.Long, "Model Context Protocol"))
	assert.True(t, strings.Contains(cmd.Long, "stdio"))
	assert.True(t, strings.Contains(cmd.Long, "sse"))
	assert.True(t, strings.Contains(cmd.Long, "streamable-http"))
}

func TestServeCmdFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flagName string
		expected string
	}{
		{"transport", "stdio"},
		{"http-addr", ":8080"},
		{"sse-endpoint", "/sse"},
		{"message-endpoint", "/message"},
		{"http-endpoint", "/mcp"},
		{"events-endpoint", "/events"},
		{"kubeconfig", ""},
		{"in-cluster", "false"},
		{"command-timeout", "10s"},
		{"port-forward-timeout", "1h0m0s"},
		{"cache-size", "128"},
		{"kubectl-binary", "kubectl"},
		{"helm-binary", "helm"},
		{"non-destructive", "false"},
		{"allowed-operations", ""},
		{"qps-limit", "20"},
		{"burst-limit", "30"},
		{"debug", "false"},
		{"metrics-addr", ":9090"},
		{"enable-metrics", "true"},
		{"cors-allowed-origins", ""},
		{"max-items", "100"},
		{"max-output-bytes", "524288"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.flagName)
			require.NotNil(t, flag, "Flag %s should exist", tt.flagName)
			assert.Equal(t, tt.expected, flag.DefValue)
		})
	}
}

func TestServeCmdFlagUsage(t *testing.T) {
	cmd := newServeCmd()

	usage := cmd.UsageString()
	assert.Contains(t, usage, "--transport")
	assert.Contains(t, usage, "stdio, sse, or streamable-http")
	assert.Contains(t, cmd.Flags().Lookup("command-timeout").Usage, commandTimeoutEnv)
}

func TestServeCmdTransportSpecificFlags(t *testing.T) {
	cmd := newServeCmd()

	httpAddrFlag := cmd.Flags().Lookup("http-addr")
	assert.Contains(t, httpAddrFlag.Usage, "HTTP server address")
	assert.Contains(t, httpAddrFlag.Usage, "sse and streamable-http")

	sseEndpointFlag := cmd.Flags().Lookup("sse-endpoint")
	assert.Contains(t, sseEndpointFlag.Usage, "SSE endpoint path")
	assert.Contains(t, sseEndpointFlag.Usage, "sse transport")

	messageEndpointFlag := cmd.Flags().Lookup("message-endpoint")
	assert.Contains(t, messageEndpointFlag.Usage, "Message endpoint path")
	assert.Contains(t, messageEndpointFlag.Usage, "sse transport")

	httpEndpointFlag := cmd.Flags().Lookup("http-endpoint")
	assert.Contains(t, httpEndpointFlag.Usage, "HTTP endpoint path")
	assert.Contains(t, httpEndpointFlag.Usage, "streamable-http transport")

	eventsEndpointFlag := cmd.Flags().Lookup("events-endpoint")
	assert.Contains(t, eventsEndpointFlag.Usage, "event stream")
}

func TestServeCmdRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown transport",
			args:    []string{"--transport", "grpc"},
			wantErr: "unsupported transport type",
		},
		{
			name:    "zero command timeout",
			args:    []string{"--command-timeout", "0s"},
			wantErr: "--command-timeout must be positive",
		},
		{
			name:    "kubeconfig with in-cluster",
			args:    []string{"--in-cluster", "--kubeconfig", "/tmp/config"},
			wantErr: "cannot be combined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newServeCmd()
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServeCmdCommandTimeoutFromEnv(t *testing.T) {
	t.Setenv(commandTimeoutEnv, "0s")

	cmd := newServeCmd()
	cmd.SetArgs([]string{})

	// The environment value only applies without the flag; a zero timeout
	// proves it was read.
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--command-timeout must be positive")

	cmd = newServeCmd()
	cmd.SetArgs([]string{"--command-timeout", "5s", "--transport", "grpc"})
	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport type")
}
