package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(statusCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover [domain]",
	Short: "List agents on the network",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		res, err := e.orch.Discover(cmd.Context(), firstArg(args))
		if err != nil {
			return err
		}
		return e.out.Agents(res)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <message-id>",
	Short: "Check delivery status of a sent message",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		res, err := e.orch.Status(cmd.Context(), firstArg(args))
		if err != nil {
			return err
		}
		return e.out.Status(res)
	},
}
