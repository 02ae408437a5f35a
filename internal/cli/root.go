package cli

import (
	"fmt"
	"os"

	"github.com/amtp-labs/amtp-cli/internal/amtp"
	"github.com/amtp-labs/amtp-cli/internal/branding"
	"github.com/amtp-labs/amtp-cli/internal/config"
	"github.com/amtp-labs/amtp-cli/internal/logger"
	"github.com/amtp-labs/amtp-cli/internal/orchestrator"
	"github.com/amtp-labs/amtp-cli/internal/render"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` registers an agent identity with an AMTP gateway, sends and receives
inter-agent messages, polls delivery status and discovers peer agents.

Environment:
  AMTP_GATEWAY_URL     Gateway URL (required)
  AMTP_ADMIN_KEY       Admin API key (for setup/unregister)
  AMTP_AGENT_NAME      Agent name override
  AMTP_AGENT_ADDRESS   Agent address override
  AMTP_API_KEY         Agent API key override`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := render.ParseFormat(outputFormat)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log gateway requests to stderr")
}

// Execute runs the root command with build info injected via ldflags. Any
// error has already been reported on stderr when it returns.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

// env bundles what a command needs for one invocation.
type env struct {
	orch *orchestrator.Orchestrator
	out  *render.Renderer
}

// newEnv wires a fresh store, orchestrator and renderer for cmd. Nothing is
// shared between invocations.
func newEnv(cmd *cobra.Command) (*env, error) {
	log, err := logger.New(logger.Options{Verbose: verbose})
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	format, err := render.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(log),
		orchestrator.WithClientOptions(amtp.WithUserAgent(userAgent())),
	}
	if textOutput() {
		opts = append(opts, orchestrator.WithProgress(cmd.ErrOrStderr()))
	}
	orch := orchestrator.New(config.Default(), opts...)
	return &env{
		orch: orch,
		out:  render.New(cmd.OutOrStdout(), format),
	}, nil
}

func userAgent() string {
	v := buildVersion
	if v == "" {
		v = "dev"
	}
	return "amtp-cli/" + v
}

// textOutput reports whether progress lines may be written.
func textOutput() bool {
	return outputFormat == "" || outputFormat == string(render.FormatText)
}
