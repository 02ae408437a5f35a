package orchestrator

import (
	"errors"
	"fmt"

	"github.com/amtp-labs/amtp-cli/internal/config"
)

// ErrNoAPIKey means registration returned success without issuing a key,
// usually because the agent already exists. Nothing is persisted.
var ErrNoAPIKey = errors.New("registration succeeded but no API key was returned; the agent may already exist")

// ConfigError reports a required configuration field that is not set. It is
// detected before any network call.
type ConfigError struct {
	Field config.Field
	Hint  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing config: %s. %s", e.Field, e.Hint)
}

// ValidationError reports malformed local input such as a bad agent name or
// an unparseable payload.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }
