package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/amtp-labs/amtp-cli/internal/amtp"
	"github.com/amtp-labs/amtp-cli/internal/branding"
	"github.com/amtp-labs/amtp-cli/internal/config"
)

// Store is the configuration persistence the orchestrator needs.
type Store interface {
	Load() config.Configuration
	Save(partial config.Configuration, exact ...config.Field) (config.Configuration, error)
	Path() string
}

// Gateway is the set of protocol operations the commands use.
type Gateway interface {
	RegisterAgent(ctx context.Context, name string) (*amtp.Result[amtp.RegisteredAgent], error)
	UnregisterAgent(ctx context.Context, name string) (*amtp.Result[json.RawMessage], error)
	SendMessage(ctx context.Context, req amtp.SendRequest) (*amtp.Result[amtp.SendResult], error)
	GetInbox(ctx context.Context) (*amtp.Result[amtp.Inbox], error)
	AckMessage(ctx context.Context, messageID string) (*amtp.Result[json.RawMessage], error)
	GetMessageStatus(ctx context.Context, messageID string) (*amtp.Result[amtp.DeliveryStatus], error)
	DiscoverAgents(ctx context.Context, domain string) (*amtp.Result[amtp.AgentList], error)
}

// ClientFactory builds a Gateway for the configuration loaded by a command.
type ClientFactory func(cfg config.Configuration) Gateway

// Orchestrator runs commands. It holds no configuration between calls.
type Orchestrator struct {
	store      Store
	newClient  ClientFactory
	clientOpts []amtp.Option
	logger     *slog.Logger
	progress   io.Writer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClientFactory replaces the protocol client constructor.
func WithClientFactory(f ClientFactory) Option {
	return func(o *Orchestrator) {
		o.newClient = f
	}
}

// WithClientOptions passes options to the default protocol client.
func WithClientOptions(opts ...amtp.Option) Option {
	return func(o *Orchestrator) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// WithProgress sets where user-facing progress lines go once a command
// has passed its local checks. By default they are dropped.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) {
		o.progress = w
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// New creates an Orchestrator over store.
func New(store Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.newClient == nil {
		o.newClient = func(cfg config.Configuration) Gateway {
			clientOpts := append([]amtp.Option{amtp.WithLogger(o.logger)}, o.clientOpts...)
			return amtp.New(cfg, clientOpts...)
		}
	}
	return o
}

// prepare loads the configuration fresh and checks cmd's required fields.
func (o *Orchestrator) prepare(cmd Command) (config.Configuration, error) {
	cfg := o.store.Load()
	if err := Require(cfg, cmd); err != nil {
		return cfg, err
	}
	o.logger.Debug("running command", "command", string(cmd), "gateway", cfg.GatewayURL)
	return cfg, nil
}

// registrationFields are replaced together by a successful setup, so
// nothing from a previous registration survives next to the new key.
var registrationFields = []config.Field{
	config.FieldGatewayURL,
	config.FieldAgentName,
	config.FieldAgentAddress,
	config.FieldAPIKey,
}

// SetupResult describes a completed registration.
type SetupResult struct {
	Agent      amtp.RegisteredAgent
	Config     config.Configuration
	ConfigPath string
}

// Setup registers name on the gateway and, only when a key was issued,
// persists the gateway URL, name, address and key.
func (o *Orchestrator) Setup(ctx context.Context, name string) (*SetupResult, error) {
	if name == "" {
		return nil, &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("--name is required. Usage: %s setup --name <agent-name>", branding.CLIName()),
		}
	}

	cfg, err := o.prepare(CommandSetup)
	if err != nil {
		return nil, err
	}
	if err := ValidateAgentName(name); err != nil {
		return nil, err
	}

	fmt.Fprintf(o.progress, "Registering agent %q on %s...\n", name, cfg.GatewayURL)
	res, err := o.newClient(cfg).RegisterAgent(ctx, name)
	if err != nil {
		return nil, err
	}
	if !res.Decoded || res.Value.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	saved, err := o.store.Save(config.Configuration{
		GatewayURL:   cfg.GatewayURL,
		AgentName:    name,
		AgentAddress: res.Value.Address,
		APIKey:       res.Value.APIKey,
	}, registrationFields...)
	if err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	o.logger.Debug("agent registered", "address", res.Value.Address, "config", o.store.Path())
	return &SetupResult{Agent: res.Value, Config: saved, ConfigPath: o.store.Path()}, nil
}

// SendInput is the user-facing shape of a send.
type SendInput struct {
	To      string
	Subject string
	// Payload is raw JSON; it wins over Text when both are set.
	Payload string
	Text    string
}

// Send posts one message from the configured agent.
func (o *Orchestrator) Send(ctx context.Context, in SendInput) (*amtp.Result[amtp.SendResult], error) {
	cfg, err := o.prepare(CommandSend)
	if err != nil {
		return nil, err
	}
	if in.To == "" {
		return nil, &ValidationError{
			Field: "to",
			Message: fmt.Sprintf("--to is required. Usage: %s send --to <address> --subject <s> [--text <t> | --payload <json>]",
				branding.CLIName()),
		}
	}

	payload, err := BuildPayload(in.Payload, in.Text)
	if err != nil {
		return nil, err
	}

	res, err := o.newClient(cfg).SendMessage(ctx, amtp.SendRequest{
		To:      []string{in.To},
		Subject: in.Subject,
		Payload: payload,
	})
	if err != nil {
		var schemaErr *amtp.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, &ValidationError{Field: "message", Message: "message rejected before sending", Err: err}
		}
		return nil, err
	}
	return res, nil
}

// Inbox lists the configured agent's pending messages.
func (o *Orchestrator) Inbox(ctx context.Context) (*amtp.Result[amtp.Inbox], error) {
	cfg, err := o.prepare(CommandInbox)
	if err != nil {
		return nil, err
	}
	return o.newClient(cfg).GetInbox(ctx)
}

// Ack acknowledges messageID in the configured agent's inbox.
func (o *Orchestrator) Ack(ctx context.Context, messageID string) (*amtp.Result[json.RawMessage], error) {
	if err := requireMessageID(messageID, CommandAck); err != nil {
		return nil, err
	}
	cfg, err := o.prepare(CommandAck)
	if err != nil {
		return nil, err
	}
	return o.newClient(cfg).AckMessage(ctx, messageID)
}

// Discover lists agents, optionally within domain.
func (o *Orchestrator) Discover(ctx context.Context, domain string) (*amtp.Result[amtp.AgentList], error) {
	cfg, err := o.prepare(CommandDiscover)
	if err != nil {
		return nil, err
	}
	return o.newClient(cfg).DiscoverAgents(ctx, domain)
}

// Status reports delivery state of messageID.
func (o *Orchestrator) Status(ctx context.Context, messageID string) (*amtp.Result[amtp.DeliveryStatus], error) {
	if err := requireMessageID(messageID, CommandStatus); err != nil {
		return nil, err
	}
	cfg, err := o.prepare(CommandStatus)
	if err != nil {
		return nil, err
	}
	return o.newClient(cfg).GetMessageStatus(ctx, messageID)
}

// UnregisterResult names the agent that was removed.
type UnregisterResult struct {
	AgentName string
	Response  *amtp.Result[json.RawMessage]
}

// Unregister removes the configured agent from the gateway. Local
// credentials are left untouched.
func (o *Orchestrator) Unregister(ctx context.Context) (*UnregisterResult, error) {
	cfg, err := o.prepare(CommandUnregister)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(o.progress, "Unregistering agent %q...\n", cfg.AgentName)
	res, err := o.newClient(cfg).UnregisterAgent(ctx, cfg.AgentName)
	if err != nil {
		return nil, err
	}
	return &UnregisterResult{AgentName: cfg.AgentName, Response: res}, nil
}

// WhoamiReport is the resolved configuration and where it is stored.
type WhoamiReport struct {
	Config     config.Configuration
	ConfigPath string
}

// Whoami reports the current configuration. It never touches the network.
func (o *Orchestrator) Whoami() (*WhoamiReport, error) {
	cfg, err := o.prepare(CommandWhoami)
	if err != nil {
		return nil, err
	}
	return &WhoamiReport{Config: cfg, ConfigPath: o.store.Path()}, nil
}

func requireMessageID(id string, cmd Command) error {
	if id != "" {
		return nil
	}
	return &ValidationError{
		Field:   "message-id",
		Message: fmt.Sprintf("Message ID is required. Usage: %s %s <message-id>", branding.CLIName(), cmd),
	}
}
