// Package agentlite is a lightweight runtime for tool-calling LLM agents.
//
// The building blocks compose explicitly rather than through a registry:
//  1. Wrap a provider client in a model (model/openai, model/anthropic,
//     model/ollama, or model.MockModel for tests).
//  2. Construct an agent around it: agent.NewAgent for the tool-calling
//     execution loop, agent.NewRAG for retrieval-grounded answering,
//     agent.NewChief to route between several agents.
//  3. Run it. Blocking runs return materialized events; streaming runs hand
//     back a live event stream. Every run appends typed steps to its ledger,
//     the audit record shared across delegation hand-offs.
//
// The runner package adds multi-turn sessions on top; vector search backends
// live in retrieval and retrieval/sqlitevec.
package agentlite

import (
	"context"

	"github.com/hupe1980/agentlite/agent"
	"github.com/hupe1980/agentlite/core"
)

// Version is the semantic version of the agentlite module.
const Version = "0.1.0"

// Ask executes one blocking turn against any routable agent and returns the
// final answer text. It is the shortest path from input to answer; callers
// that need events, streaming or sessions use the agent and runner packages
// directly.
func Ask(ctx context.Context, target agent.Routable, input string) (string, error) {
	target.SetStream(false)

	out, err := target.Run(ctx, []core.Message{core.NewUserMessage(input)})
	if err != nil {
		return "", err
	}

	return out.Text()
}
