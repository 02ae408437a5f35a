package cli

import (
	"fmt"

	"github.com/amtp-labs/amtp-cli/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write stored settings",
	Long: `Read and write the settings stored at ~/.amtp-config.json. Keys are gatewayUrl,
agentName, agentAddress, apiKey and adminKey. Environment variables still
override stored values when reading.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value (an empty value removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := config.ParseField(args[0])
		if err != nil {
			return err
		}
		partial := config.Configuration{}.With(field, args[1])
		if _, err := config.Default().Save(partial, field); err != nil {
			return fmt.Errorf("setting config key %q: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", field, config.RedactValue(field, args[1]))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the resolved value of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := config.ParseField(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Default().Load().Get(field))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the location of the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.DefaultPath())
		return nil
	},
}
