package orchestrator

import (
	"encoding/json"
	"regexp"
)

const maxAgentNameLen = 64

// Letters and digits at both ends, with dots, hyphens and underscores allowed
// in between.
var agentNamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]{0,62}[a-zA-Z0-9])?$`)

// ValidateAgentName checks the registration name format.
func ValidateAgentName(name string) error {
	if len(name) == 0 || len(name) > maxAgentNameLen || !agentNamePattern.MatchString(name) {
		return &ValidationError{
			Field:   "name",
			Message: "invalid agent name. Use letters, numbers, hyphens, underscores, dots (1-64 chars). Cannot start/end with -, _, or .",
		}
	}
	return nil
}

// BuildPayload returns the message payload: raw JSON when given, otherwise
// {"text": text} when text is set, otherwise nil so the field is omitted.
func BuildPayload(rawJSON, text string) (json.RawMessage, error) {
	if rawJSON != "" {
		if !json.Valid([]byte(rawJSON)) {
			return nil, &ValidationError{Field: "payload", Message: "--payload must be valid JSON."}
		}
		return json.RawMessage(rawJSON), nil
	}
	if text != "" {
		data, err := json.Marshal(map[string]string{"text": text})
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return nil, nil
}
