package cli

import (
	"github.com/spf13/cobra"
)

var setupName string

func init() {
	setupCmd.Flags().StringVar(&setupName, "name", "", "Agent name to register (1-64 chars)")
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup --name <name>",
	Short: "Register as an AMTP agent and save its credentials",
	Long: `Registers a pull-mode agent on the gateway using the admin key, then saves the
gateway URL, agent name, address and the one-time API key to ~/.amtp-config.json.
Nothing is saved unless the gateway issues an API key.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}

		res, err := e.orch.Setup(cmd.Context(), setupName)
		if err != nil {
			return err
		}
		return e.out.Registered(res)
	},
}
