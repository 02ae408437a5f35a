package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/amtp-labs/amtp-cli/internal/branding"
)

// Field names one configuration key as it appears in the JSON file.
type Field string

const (
	FieldGatewayURL   Field = "gatewayUrl"
	FieldAgentName    Field = "agentName"
	FieldAgentAddress Field = "agentAddress"
	FieldAPIKey       Field = "apiKey"
	FieldAdminKey     Field = "adminKey"
)

// Fields lists every known key in display order.
var Fields = []Field{FieldGatewayURL, FieldAgentName, FieldAgentAddress, FieldAPIKey, FieldAdminKey}

var envSuffixes = map[Field]string{
	FieldGatewayURL:   "GATEWAY_URL",
	FieldAgentName:    "AGENT_NAME",
	FieldAgentAddress: "AGENT_ADDRESS",
	FieldAPIKey:       "API_KEY",
	FieldAdminKey:     "ADMIN_KEY",
}

// EnvVar returns the environment variable that overrides f (e.g., AMTP_API_KEY).
func (f Field) EnvVar() string {
	return branding.EnvVar(envSuffixes[f])
}

// Secret reports whether values of f must be redacted before display.
func (f Field) Secret() bool {
	return f == FieldAPIKey || f == FieldAdminKey
}

// ParseField maps a user-supplied key to a known Field.
func ParseField(key string) (Field, error) {
	for _, f := range Fields {
		if string(f) == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown config key %q (known keys: gatewayUrl, agentName, agentAddress, apiKey, adminKey)", key)
}

// Configuration is the resolved view of all fields. Empty means unset.
type Configuration struct {
	GatewayURL   string `json:"gatewayUrl,omitempty" yaml:"gatewayUrl,omitempty"`
	AgentName    string `json:"agentName,omitempty" yaml:"agentName,omitempty"`
	AgentAddress string `json:"agentAddress,omitempty" yaml:"agentAddress,omitempty"`
	APIKey       string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	AdminKey     string `json:"adminKey,omitempty" yaml:"adminKey,omitempty"`
}

// Get returns the value of f.
func (c Configuration) Get(f Field) string {
	switch f {
	case FieldGatewayURL:
		return c.GatewayURL
	case FieldAgentName:
		return c.AgentName
	case FieldAgentAddress:
		return c.AgentAddress
	case FieldAPIKey:
		return c.APIKey
	case FieldAdminKey:
		return c.AdminKey
	}
	return ""
}

func (c *Configuration) set(f Field, value string) {
	switch f {
	case FieldGatewayURL:
		c.GatewayURL = value
	case FieldAgentName:
		c.AgentName = value
	case FieldAgentAddress:
		c.AgentAddress = value
	case FieldAPIKey:
		c.APIKey = value
	case FieldAdminKey:
		c.AdminKey = value
	}
}

// With returns a copy of c with field f set to value.
func (c Configuration) With(f Field, value string) Configuration {
	c.set(f, value)
	return c
}

// Dir returns the per-user state directory (~/.amtp/) used for caches.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// DefaultPath returns the fixed location of the credential file (~/.amtp-config.json).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.ConfigFile())
	}
	return filepath.Join(home, branding.ConfigFile())
}

// RedactValue hides all but the first 8 characters of secret fields.
func RedactValue(f Field, value string) string {
	if value == "" || !f.Secret() {
		return value
	}
	if len(value) <= 8 {
		return value + "..."
	}
	return value[:8] + "..."
}
