package amtp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amtp-labs/amtp-cli/internal/config"
)

const (
	headerAdminKey  = "X-Admin-Key"
	headerRequestID = "X-Request-ID"
	contentTypeJSON = "application/json"
)

// authMode selects which credential, if any, a request carries.
type authMode int

const (
	authNone authMode = iota
	authAdmin
	authAgent
)

func (m authMode) String() string {
	switch m {
	case authAdmin:
		return "admin"
	case authAgent:
		return "agent"
	default:
		return "none"
	}
}

// Client issues gateway operations on behalf of one configured agent.
type Client struct {
	cfg        config.Configuration
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// New creates a Client for the gateway and credentials in cfg.
func New(cfg config.Configuration, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.GatewayURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		userAgent:  "amtp-cli",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterAgent creates a pull-mode agent named name.
// POST /v1/admin/agents (admin auth).
func (c *Client) RegisterAgent(ctx context.Context, name string) (*Result[RegisteredAgent], error) {
	body := registerRequest{Address: name, DeliveryMode: DeliveryModePull}
	resp, err := c.do(ctx, http.MethodPost, "/v1/admin/agents", authAdmin, body)
	if err != nil {
		return nil, err
	}
	return decodeResult[RegisteredAgent](resp)
}

// UnregisterAgent removes the agent named name.
// DELETE /v1/admin/agents/{name} (admin auth).
func (c *Client) UnregisterAgent(ctx context.Context, name string) (*Result[json.RawMessage], error) {
	resp, err := c.do(ctx, http.MethodDelete, "/v1/admin/agents/"+url.PathEscape(name), authAdmin, nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[json.RawMessage](resp)
}

// SendMessage posts a message from the configured agent address.
// POST /v1/messages (no auth). The envelope is checked against the message
// schema first; a *SchemaError means nothing was sent.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*Result[SendResult], error) {
	msg := &OutboundMessage{
		Sender:     c.cfg.AgentAddress,
		Recipients: req.To,
		Subject:    req.Subject,
		Payload:    req.Payload,
	}
	if msg.Recipients == nil {
		msg.Recipients = []string{}
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/messages", authNone, msg)
	if err != nil {
		return nil, err
	}
	return decodeResult[SendResult](resp)
}

// GetInbox lists messages waiting for the configured agent.
// GET /v1/inbox/{address} (agent auth).
func (c *Client) GetInbox(ctx context.Context) (*Result[Inbox], error) {
	path := "/v1/inbox/" + url.PathEscape(c.cfg.AgentAddress)
	resp, err := c.do(ctx, http.MethodGet, path, authAgent, nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[Inbox](resp)
}

// AckMessage removes messageID from the configured agent's inbox.
// DELETE /v1/inbox/{address}/{id} (agent auth).
func (c *Client) AckMessage(ctx context.Context, messageID string) (*Result[json.RawMessage], error) {
	path := "/v1/inbox/" + url.PathEscape(c.cfg.AgentAddress) + "/" + url.PathEscape(messageID)
	resp, err := c.do(ctx, http.MethodDelete, path, authAgent, nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[json.RawMessage](resp)
}

// GetMessageStatus reports delivery progress of a sent message.
// GET /v1/messages/{id}/status (no auth).
func (c *Client) GetMessageStatus(ctx context.Context, messageID string) (*Result[DeliveryStatus], error) {
	path := "/v1/messages/" + url.PathEscape(messageID) + "/status"
	resp, err := c.do(ctx, http.MethodGet, path, authNone, nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[DeliveryStatus](resp)
}

// DiscoverAgents lists agents known to the gateway, optionally limited to a
// domain. GET /v1/discovery/agents[/{domain}] (no auth).
func (c *Client) DiscoverAgents(ctx context.Context, domain string) (*Result[AgentList], error) {
	path := "/v1/discovery/agents"
	if domain != "" {
		path += "/" + url.PathEscape(domain)
	}
	resp, err := c.do(ctx, http.MethodGet, path, authNone, nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[AgentList](resp)
}

// response is a fully read 2xx answer.
type response struct {
	status      int
	contentType string
	body        []byte
}

func (c *Client) do(ctx context.Context, method, path string, auth authMode, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerRequestID, requestID)
	switch auth {
	case authAdmin:
		req.Header.Set(headerAdminKey, c.cfg.AdminKey)
	case authAgent:
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	c.logger.Debug("gateway request",
		"method", method, "path", path, "auth", auth.String(), "request_id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		return nil, newTransportError(c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	c.logger.Debug("gateway response",
		"status", resp.StatusCode, "duration", time.Since(start), "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, contentType, data)
	}

	return &response{status: resp.StatusCode, contentType: contentType, body: data}, nil
}

// decodeResult decodes a JSON body into T. Empty, 204 and non-JSON answers
// are passed through as raw text.
func decodeResult[T any](resp *response) (*Result[T], error) {
	result := &Result[T]{StatusCode: resp.status}
	if resp.status == http.StatusNoContent || !isJSON(resp.contentType) || len(bytes.TrimSpace(resp.body)) == 0 {
		result.Text = string(resp.body)
		return result, nil
	}

	if err := json.Unmarshal(resp.body, &result.Value); err != nil {
		return nil, fmt.Errorf("decoding gateway response: %w", err)
	}
	result.Decoded = true
	return result, nil
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, contentTypeJSON) || strings.Contains(ct, "+json")
}
