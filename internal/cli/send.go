package cli

import (
	"github.com/amtp-labs/amtp-cli/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	sendTo      string
	sendSubject string
	sendPayload string
	sendText    string
)

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "Recipient address")
	sendCmd.Flags().StringVar(&sendSubject, "subject", "", "Message subject")
	sendCmd.Flags().StringVar(&sendPayload, "payload", "", "JSON payload (wins over --text)")
	sendCmd.Flags().StringVar(&sendText, "text", "", `Plain text, sent as {"text": "..."}`)
	rootCmd.AddCommand(sendCmd)
}

var sendCmd = &cobra.Command{
	Use:   "send --to <addr> [--subject <s>] [--payload <json> | --text <t>]",
	Short: "Send a message to another agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}

		res, err := e.orch.Send(cmd.Context(), orchestrator.SendInput{
			To:      sendTo,
			Subject: sendSubject,
			Payload: sendPayload,
			Text:    sendText,
		})
		if err != nil {
			return err
		}
		return e.out.Sent(res)
	},
}
