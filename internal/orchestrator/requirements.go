package orchestrator

import (
	"fmt"

	"github.com/amtp-labs/amtp-cli/internal/branding"
	"github.com/amtp-labs/amtp-cli/internal/config"
)

// Command names a CLI operation.
type Command string

const (
	CommandSetup      Command = "setup"
	CommandSend       Command = "send"
	CommandInbox      Command = "inbox"
	CommandAck        Command = "ack"
	CommandDiscover   Command = "discover"
	CommandStatus     Command = "status"
	CommandUnregister Command = "unregister"
	CommandWhoami     Command = "whoami"
)

// requirements lists, per command, the fields checked before any request.
var requirements = map[Command][]config.Field{
	CommandSetup:      {config.FieldGatewayURL, config.FieldAdminKey},
	CommandSend:       {config.FieldGatewayURL, config.FieldAgentAddress},
	CommandInbox:      {config.FieldGatewayURL, config.FieldAgentAddress, config.FieldAPIKey},
	CommandAck:        {config.FieldGatewayURL, config.FieldAgentAddress, config.FieldAPIKey},
	CommandDiscover:   {config.FieldGatewayURL},
	CommandStatus:     {config.FieldGatewayURL},
	CommandUnregister: {config.FieldGatewayURL, config.FieldAdminKey, config.FieldAgentName},
	CommandWhoami:     nil,
}

// Requirements returns the fields cmd needs, in check order.
func Requirements(cmd Command) []config.Field {
	return requirements[cmd]
}

// Require returns a *ConfigError for the first field of cmd missing in cfg.
func Require(cfg config.Configuration, cmd Command) error {
	for _, f := range requirements[cmd] {
		if cfg.Get(f) == "" {
			return &ConfigError{Field: f, Hint: hint(f)}
		}
	}
	return nil
}

func hint(f config.Field) string {
	setup := fmt.Sprintf("Run %q first", branding.CLIName()+" setup")
	switch f {
	case config.FieldGatewayURL:
		return fmt.Sprintf("Set %s env var or run setup first.", f.EnvVar())
	case config.FieldAdminKey:
		return fmt.Sprintf("Set %s env var.", f.EnvVar())
	case config.FieldAgentAddress:
		return setup + "."
	default:
		return fmt.Sprintf("%s, or set %s.", setup, f.EnvVar())
	}
}
