package agent

import (
	"context"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/ledger"
)

// Routable is the contract a router needs from a delegation target. Agent,
// RAG and Chief all satisfy it, so routers can nest.
type Routable interface {
	// Name returns the unique name used as the routing key.
	Name() string

	// Description returns the capability summary shown in the routing catalog.
	Description() string

	// Run executes the agent against the conversation, whose last message
	// must be user input.
	Run(ctx context.Context, messages []core.Message) (*Output, error)

	// SetStream switches the agent between streaming and blocking delivery.
	SetStream(stream bool)

	// SetLedger hands the agent the ledger it records into. A router calls
	// this before delegating and stays out of the ledger until the delegated
	// run finishes.
	SetLedger(l *ledger.Ledger)
}

var (
	_ Routable = (*Agent)(nil)
	_ Routable = (*Chief)(nil)
	_ Routable = (*RAG)(nil)
)
