package cli

import (
	"encoding/json"
	"fmt"

	"github.com/amtp-labs/amtp-cli/internal/branding"
	"github.com/amtp-labs/amtp-cli/internal/config"
	"github.com/amtp-labs/amtp-cli/internal/logger"
	"github.com/amtp-labs/amtp-cli/internal/updater"
	"github.com/spf13/cobra"
)

var (
	versionShort bool
	versionJSON  bool
	versionCheck bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if versionCheck {
			return runVersionCheck(cmd)
		}

		if versionShort {
			fmt.Fprintln(out, buildVersion)
			return nil
		}

		if versionJSON {
			info := map[string]string{
				"version": buildVersion,
				"commit":  buildCommit,
				"date":    buildDate,
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), buildVersion, buildCommit, buildDate)
		return nil
	},
}

func runVersionCheck(cmd *cobra.Command) error {
	log, err := logger.New(logger.Options{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	checker := updater.New(buildVersion, branding.GitHubRepo(),
		updater.WithCacheDir(config.Dir()),
		updater.WithLogger(log),
	)
	res, err := checker.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}

	out := cmd.OutOrStdout()
	if versionJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling check result: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if res.UpdateAvailable {
		fmt.Fprintf(out, "Update available: %s -> %s\n", res.CurrentVersion, res.LatestVersion)
		if res.ReleaseURL != "" {
			fmt.Fprintf(out, "    %s\n", res.ReleaseURL)
		}
		return nil
	}
	fmt.Fprintf(out, "You are on the latest version (%s)\n", res.CurrentVersion)
	return nil
}
