// Package logging provides a minimal logging interface and adapters for AgentLite.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that agents, the router and the runner use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - ZerologAdapter with console and JSON writer setup helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", os.Stderr)
//	assistant, err := agent.NewAgent("Helper", m, func(o *agent.Options) {
//		o.Logger = logger
//	})
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
