package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inboxCmd)
	rootCmd.AddCommand(ackCmd)
}

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List messages waiting in this agent's inbox",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		res, err := e.orch.Inbox(cmd.Context())
		if err != nil {
			return err
		}
		return e.out.Inbox(res)
	},
}

var ackCmd = &cobra.Command{
	Use:   "ack <message-id>",
	Short: "Acknowledge and remove a message from the inbox",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		id := firstArg(args)
		res, err := e.orch.Ack(cmd.Context(), id)
		if err != nil {
			return err
		}
		return e.out.Acked(id, res)
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
