package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withVersion sets the root version for the duration of the test.
func withVersion(t *testing.T, v string) {
	t.Helper()
	previous := rootCmd.Version
	SetVersion(v)
	t.Cleanup(func() { rootCmd.Version = previous })
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "kubectl-mcp", rootCmd.Use)
	assert.Contains(t, rootCmd.Long, "Model Context Protocol")
	assert.True(t, rootCmd.SilenceUsage)

	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"serve", "version", "self-update"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestVersionCommand(t *testing.T) {
	for _, v := range []string{"dev", "v1.2.3", ""} {
		t.Run("version "+v, func(t *testing.T) {
			withVersion(t, v)

			var out bytes.Buffer
			cmd := newVersionCmd()
			cmd.SetOut(&out)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())
			assert.Equal(t, "kubectl-mcp version "+v+"\n", out.String())
		})
	}
}

func TestSelfUpdateRefusesDevelopmentBuilds(t *testing.T) {
	assert.Equal(t, "giantswarm/kubectl-mcp", githubRepoSlug)

	for _, v := range []string{"dev", "vdev", ""} {
		t.Run("version "+v, func(t *testing.T) {
			withVersion(t, v)

			cmd := newSelfUpdateCmd()
			cmd.SetArgs([]string{})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot self-update a development version")
		})
	}
}
