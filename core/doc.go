// Package core defines the shared vocabulary of the runtime: conversation
// messages, the closed set of events emitted during an agent run, the
// pull-based event stream that carries them, and token usage accounting.
//
// Design principles:
//   - Closed unions – Event is a sum type sealed by an unexported marker
//     method so classification sites can switch exhaustively
//   - Pull-based streaming – EventStream is a single-pass, forward-only
//     sequence the consumer drives; the producer only advances inside Next
//   - No hidden state – values are plain structs, safe to copy and inspect
//
// Higher layers (agent, ledger, model) build on these types without the core
// package depending back on any of them.
package core
