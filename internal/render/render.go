package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/amtp-labs/amtp-cli/internal/amtp"
	"github.com/amtp-labs/amtp-cli/internal/config"
	"github.com/amtp-labs/amtp-cli/internal/orchestrator"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use text, json or yaml)", s)
}

// Renderer writes results to w in one format.
type Renderer struct {
	w      io.Writer
	format Format
}

// New returns a Renderer.
func New(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format}
}

// rawOrText is the structured form of an undecoded answer.
func rawOrText[T any](res *amtp.Result[T]) any {
	if res.Decoded {
		return res.Value
	}
	return map[string]string{"text": res.Text}
}

func (r *Renderer) structured(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if r.format == FormatJSON {
		_, err = fmt.Fprintln(r.w, string(data))
		return err
	}

	// Round-trip through JSON so YAML keys match the wire names.
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return fmt.Errorf("encoding yaml output: %w", err)
	}
	_, err = r.w.Write(out)
	return err
}

func (r *Renderer) lines(lines ...string) error {
	_, err := fmt.Fprintln(r.w, strings.Join(lines, "\n"))
	return err
}

// Sent renders the answer to a send.
func (r *Renderer) Sent(res *amtp.Result[amtp.SendResult]) error {
	if r.format != FormatText {
		return r.structured(rawOrText(res))
	}
	if !res.Decoded {
		if res.Text == "" {
			return r.lines("Message sent successfully.")
		}
		return r.lines("Message sent successfully.", res.Text)
	}

	lines := []string{
		"Message sent successfully.",
		"  ID:     " + res.Value.MessageID,
		"  Status: " + res.Value.Status,
	}
	for _, rc := range res.Value.Recipients {
		lines = append(lines, fmt.Sprintf("  -> %s: %s", rc.Address, rc.Status))
	}
	return r.lines(lines...)
}

// Inbox renders a numbered message list.
func (r *Renderer) Inbox(res *amtp.Result[amtp.Inbox]) error {
	if r.format != FormatText {
		return r.structured(rawOrText(res))
	}
	inbox := res.Value
	if len(inbox.Messages) == 0 {
		return r.lines("Inbox is empty.")
	}

	count := inbox.Count
	if count == 0 {
		count = len(inbox.Messages)
	}
	lines := []string{fmt.Sprintf("Inbox for %s (%d %s):\n", inbox.Recipient, count, plural(count, "message"))}
	for i, m := range inbox.Messages {
		lines = append(lines, fmt.Sprintf("  %d. [%s]", i+1, m.MessageID))
		lines = append(lines, "     From:    "+m.Sender)
		if m.Subject != "" {
			lines = append(lines, "     Subject: "+m.Subject)
		}
		lines = append(lines, "     Time:    "+localTime(m.Timestamp))
		if p := payloadString(m.Payload); p != "" {
			lines = append(lines, "     Payload: "+p)
		}
		lines = append(lines, "")
	}
	return r.lines(lines...)
}

// Agents renders a discovery answer.
func (r *Renderer) Agents(res *amtp.Result[amtp.AgentList]) error {
	if r.format != FormatText {
		return r.structured(rawOrText(res))
	}
	agents := res.Value.Agents
	if len(agents) == 0 {
		return r.lines("No agents found.")
	}

	lines := []string{fmt.Sprintf("Discovered %d %s:\n", len(agents), plural(len(agents), "agent"))}
	for _, a := range agents {
		addr := a.Address
		if addr == "" {
			addr = "unknown"
		}
		mode := a.DeliveryMode
		if mode == "" {
			mode = "?"
		}
		schemas := ""
		if len(a.SupportedSchemas) > 0 {
			schemas = " schemas=[" + strings.Join(a.SupportedSchemas, ", ") + "]"
		}
		lines = append(lines, fmt.Sprintf("  - %s  (%s)%s", addr, mode, schemas))
	}
	return r.lines(lines...)
}

// Status renders a delivery status.
func (r *Renderer) Status(res *amtp.Result[amtp.DeliveryStatus]) error {
	if r.format != FormatText {
		return r.structured(rawOrText(res))
	}
	st := res.Value
	id := st.MessageID
	if id == "" {
		id = "?"
	}
	status := st.Status
	if status == "" {
		status = "unknown"
	}

	lines := []string{"Message " + id + ":", "  Status: " + status}
	if len(st.Recipients) > 0 {
		lines = append(lines, "  Recipients:")
		for _, rc := range st.Recipients {
			detail := fmt.Sprintf("    - %s: %s", rc.Address, rc.Status)
			if rc.DeliveryMode != "" {
				detail += " (" + rc.DeliveryMode + ")"
			}
			if rc.Acknowledged {
				detail += " [ACK]"
			}
			if rc.ErrorMessage != "" {
				detail += " error: " + rc.ErrorMessage
			}
			lines = append(lines, detail)
		}
	}
	return r.lines(lines...)
}

// Acked confirms an acknowledgement.
func (r *Renderer) Acked(messageID string, res *amtp.Result[json.RawMessage]) error {
	if r.format != FormatText {
		return r.structured(map[string]any{"message_id": messageID, "acknowledged": true, "response": rawOrText(res)})
	}
	return r.lines(fmt.Sprintf("Message %s acknowledged.", messageID))
}

// Unregistered confirms an agent removal.
func (r *Renderer) Unregistered(res *orchestrator.UnregisterResult) error {
	if r.format != FormatText {
		return r.structured(map[string]any{"agent_name": res.AgentName, "removed": true, "response": rawOrText(res.Response)})
	}
	return r.lines(fmt.Sprintf("Agent %q removed from gateway.", res.AgentName))
}

// Registered renders a completed setup. The API key is never printed.
func (r *Renderer) Registered(res *orchestrator.SetupResult) error {
	if r.format != FormatText {
		return r.structured(map[string]any{
			"address":       res.Agent.Address,
			"delivery_mode": res.Agent.DeliveryMode,
			"config_file":   res.ConfigPath,
		})
	}
	return r.lines(
		"Agent registered successfully.",
		"  Address: "+res.Agent.Address,
		"  Config saved to: "+res.ConfigPath,
		"",
		"You can now send and receive messages.",
	)
}

// Whoami renders the resolved configuration with secrets redacted.
func (r *Renderer) Whoami(rep *orchestrator.WhoamiReport) error {
	if r.format != FormatText {
		out := map[string]string{"configFile": rep.ConfigPath}
		for _, f := range config.Fields {
			out[string(f)] = config.RedactValue(f, rep.Config.Get(f))
		}
		return r.structured(out)
	}

	labels := map[config.Field]string{
		config.FieldGatewayURL:   "Gateway URL:",
		config.FieldAgentName:    "Agent Name:",
		config.FieldAgentAddress: "Agent Address:",
		config.FieldAPIKey:       "API Key:",
		config.FieldAdminKey:     "Admin Key:",
	}
	lines := []string{"AMTP Configuration:"}
	for _, f := range config.Fields {
		lines = append(lines, show(labels[f], config.RedactValue(f, rep.Config.Get(f))))
	}
	lines = append(lines, show("Config File:", rep.ConfigPath))
	return r.lines(lines...)
}

func show(label, value string) string {
	if value == "" {
		value = "(not set)"
	}
	return fmt.Sprintf("  %-16s %s", label, value)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// localTime shows an RFC 3339 timestamp in local time, or the raw value when
// it cannot be parsed.
func localTime(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// payloadString shows string payloads verbatim and anything else as compact JSON.
func payloadString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
