package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(unregisterCmd)
	rootCmd.AddCommand(whoamiCmd)
}

var unregisterCmd = &cobra.Command{
	Use:   "unregister",
	Short: "Remove this agent from the gateway",
	Long: `Deletes the configured agent on the gateway using the admin key. Local
credentials in ~/.amtp-config.json are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}

		res, err := e.orch.Unregister(cmd.Context())
		if err != nil {
			return err
		}
		return e.out.Unregistered(res)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		rep, err := e.orch.Whoami()
		if err != nil {
			return err
		}
		return e.out.Whoami(rep)
	},
}
