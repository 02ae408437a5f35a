// Package orchestrator runs one CLI command against the gateway: it loads
// the configuration, checks that the fields the command needs are present,
// validates local input and only then calls the protocol client. Setup is
// the one multi-step flow (register, then persist the issued credentials).
package orchestrator
