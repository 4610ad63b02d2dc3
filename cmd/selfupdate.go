package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-kong/internal/logging"
)

// githubRepoSlug is the repository whose releases self-update installs.
const githubRepoSlug = "giantswarm/mcp-kong"

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update mcp-kong to the latest version",
		Long: `Check the GitHub releases of mcp-kong for a newer version and, if one
exists, replace the running binary with it. Release archives are verified
against the published checksums before installation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd.Context(), cmd)
		},
	}
}

func runSelfUpdate(ctx context.Context, cmd *cobra.Command) error {
	current := rootCmd.Version
	if current == "" || current == "dev" {
		return errors.New("cannot self-update a development version; install a released build instead")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	selfupdate.SetLogger(logging.NewSlogAdapter(logging.WithOperation(slog.Default(), "self-update")))

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Validator: &selfupdate.ChecksumValidator{UniqueFilename: "checksums.txt"},
	})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
	if err != nil {
		return fmt.Errorf("failed to detect latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	out := cmd.OutOrStdout()
	if latest.LessOrEqual(current) {
		_, _ = fmt.Fprintf(out, "mcp-kong is up to date (version %s)\n", current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Updating mcp-kong from %s to %s\n", current, latest.Version())
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
