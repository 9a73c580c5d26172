package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the repository whose releases carry the binaries.
const githubRepoSlug = "giantswarm/kubectl-mcp"

// newSelfUpdateCmd creates the Cobra command that replaces the running binary
// with the latest GitHub release.
func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update kubectl-mcp to the latest version",
		Long: `Check the GitHub releases of kubectl-mcp for a newer version and, when one
exists, download it and replace the running binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := strings.TrimPrefix(rootCmd.Version, "v")
			if current == "" || current == "dev" {
				return fmt.Errorf("cannot self-update a development version")
			}

			ctx := cmd.Context()
			latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
			if err != nil {
				return fmt.Errorf("error occurred while detecting version: %w", err)
			}
			if !found {
				return fmt.Errorf("latest version for %s/%s could not be found on GitHub", runtime.GOOS, runtime.GOARCH)
			}

			out := cmd.OutOrStdout()
			if latest.LessOrEqual(current) {
				_, _ = fmt.Fprintf(out, "kubectl-mcp is up to date (version %s)\n", current)
				return nil
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("could not locate executable path: %w", err)
			}
			if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
				return fmt.Errorf("error occurred while updating binary: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Successfully updated kubectl-mcp to version %s\n", latest.Version())
			return nil
		},
	}
}
