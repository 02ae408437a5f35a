package amtp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DeliveryModePull is the only mode this client registers agents with: the
// agent polls its inbox instead of receiving pushes.
const DeliveryModePull = "pull"

// Agent is a registered endpoint as the gateway describes it.
type Agent struct {
	Address          string   `json:"address"`
	DeliveryMode     string   `json:"delivery_mode,omitempty"`
	SupportedSchemas []string `json:"supported_schemas,omitempty"`
}

// RegisteredAgent is the registration answer. APIKey is issued once and is
// only present in this response.
type RegisteredAgent struct {
	Agent
	APIKey string `json:"api_key,omitempty"`
}

type registerRequest struct {
	Address      string `json:"address"`
	DeliveryMode string `json:"delivery_mode"`
}

// SendRequest describes one outbound message. The sender is always the
// configured agent address.
type SendRequest struct {
	To      []string
	Subject string
	// Payload is any JSON value; nil omits the field from the request.
	Payload json.RawMessage
}

// OutboundMessage is the wire body of POST /v1/messages.
type OutboundMessage struct {
	Sender     string          `json:"sender"`
	Recipients []string        `json:"recipients"`
	Subject    string          `json:"subject,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// RecipientStatus is the per-recipient delivery state.
type RecipientStatus struct {
	Address      string `json:"address"`
	Status       string `json:"status"`
	DeliveryMode string `json:"delivery_mode,omitempty"`
	Acknowledged bool   `json:"acknowledged,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// SendResult is the gateway's answer to a send.
type SendResult struct {
	MessageID  string            `json:"message_id"`
	Status     string            `json:"status"`
	Recipients []RecipientStatus `json:"recipients,omitempty"`
}

// DeliveryStatus is the answer of GET /v1/messages/{id}/status.
type DeliveryStatus struct {
	MessageID  string            `json:"message_id"`
	Status     string            `json:"status"`
	Recipients []RecipientStatus `json:"recipients,omitempty"`
}

// InboxMessage is one message waiting in a pull inbox.
type InboxMessage struct {
	MessageID string          `json:"message_id"`
	Sender    string          `json:"sender"`
	Subject   string          `json:"subject,omitempty"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Inbox is the answer of GET /v1/inbox/{address}.
type Inbox struct {
	Recipient string         `json:"recipient"`
	Messages  []InboxMessage `json:"messages"`
	Count     int            `json:"count"`
}

// AgentList is the discovery answer. The gateway has been observed to send
// either {"agents": [...]} or a bare array; both decode into Agents.
type AgentList struct {
	Agents []Agent `json:"agents"`
}

// UnmarshalJSON accepts both the object and the bare array shape.
func (l *AgentList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var agents []Agent
		if err := json.Unmarshal(trimmed, &agents); err != nil {
			return fmt.Errorf("decoding agent array: %w", err)
		}
		l.Agents = agents
		return nil
	}

	var obj struct {
		Agents []Agent `json:"agents"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("decoding agent list: %w", err)
	}
	l.Agents = obj.Agents
	return nil
}

// Result is a successful gateway answer. When the gateway replied with no
// content or a non-JSON body, Decoded is false and Text holds the raw body.
type Result[T any] struct {
	StatusCode int
	Decoded    bool
	Text       string
	Value      T
}
