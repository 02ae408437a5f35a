// Package cli defines the Cobra command tree for the amtp CLI. Each file
// registers one or two top-level commands with the root command. Commands
// only parse flags and pick an output format; the orchestrator package does
// the work and the render package prints the result.
package cli
