package cmd

import (
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const (
	githubRepoSlug = "giantswarm/actionmock"
	// checksumsAsset is published with every release and covers all archives.
	checksumsAsset = "checksums.txt"
)

type selfUpdateOptions struct {
	checkOnly  bool
	prerelease bool
}

// updaterConfig verifies downloads against the release checksums.
func updaterConfig(opts selfUpdateOptions) selfupdate.Config {
	return selfupdate.Config{
		Validator:  &selfupdate.ChecksumValidator{UniqueFilename: checksumsAsset},
		Prerelease: opts.prerelease,
	}
}

func newSelfUpdateCmd() *cobra.Command {
	var opts selfUpdateOptions

	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update actionmock to the latest version",
		Long: `Checks for the latest release of actionmock on GitHub and
updates the current binary if a newer version is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.checkOnly, "check", false, "Only report whether a newer version exists")
	cmd.Flags().BoolVar(&opts.prerelease, "prerelease", false, "Consider pre-releases")

	return cmd
}

// runSelfUpdate replaces the running binary with the latest release when it
// is newer than the current version.
func runSelfUpdate(cmd *cobra.Command, opts selfUpdateOptions) error {
	currentVersion := rootCmd.Version
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %s\n", currentVersion)
	fmt.Fprintln(out, "Checking for updates...")

	updater, err := selfupdate.NewUpdater(updaterConfig(opts))
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
	if err != nil {
		return fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest release for %s could not be found", githubRepoSlug)
	}

	if !latest.GreaterThan(currentVersion) {
		fmt.Fprintln(out, "Current version is the latest.")
		return nil
	}

	fmt.Fprintf(out, "Found newer version: %s (published at %s)\n", latest.Version(), latest.PublishedAt)
	if opts.checkOnly {
		return nil
	}
	fmt.Fprintf(out, "Release notes:\n%s\n", latest.ReleaseNotes)

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	fmt.Fprintf(out, "Updating %s to version %s...\n", exe, latest.Version())
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
