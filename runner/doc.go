// Package runner drives multi-turn conversations over a session store.
//
// A Runner wraps a single routable agent. Each turn loads the session's
// ledger, replays the recorded dialogue as model context, attaches the ledger
// to the agent, runs it against the new input and saves the ledger back.
// Callers that need incremental event delivery drive the agent directly; the
// runner always runs blocking so a saved session never holds a half-finished
// turn.
package runner
