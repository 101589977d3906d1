package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agentlite/agent"
	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/ledger"
	"github.com/hupe1980/agentlite/logging"
	"github.com/hupe1980/agentlite/session"
)

// Options holds dependency overrides passed to New().
type Options struct {
	// Store persists session ledgers between turns.
	Store session.Store

	// Logger receives structured turn diagnostics.
	Logger logging.Logger
}

// Runner executes conversation turns against a routable agent, persisting the
// session ledger after every turn. Turns are serialized; the wrapped agent
// holds only one ledger at a time.
type Runner struct {
	mu     sync.Mutex
	target agent.Routable
	store  session.Store
	logger logging.Logger
}

// New constructs a Runner around the given agent. Without overrides it uses a
// volatile in-memory session store.
func New(target agent.Routable, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Store:  session.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		target: target,
		store:  opts.Store,
		logger: opts.Logger,
	}
}

// Run executes one blocking conversation turn: prior dialogue from the
// session's ledger plus the new input. The updated ledger is saved before the
// output is returned.
func (r *Runner) Run(ctx context.Context, sessionID, input string) (*agent.Output, error) {
	if input == "" {
		return nil, errors.New("input must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	led, err := r.store.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}

	messages := append(history(led), core.NewUserMessage(input))

	r.target.SetLedger(led)
	r.target.SetStream(false)

	r.logger.Info("runner.turn.start", "session_id", sessionID, "agent", r.target.Name(), "history", len(messages)-1)

	out, err := r.target.Run(ctx, messages)
	if err != nil {
		return nil, err
	}

	if err := r.store.Save(sessionID, led); err != nil {
		return nil, fmt.Errorf("failed to save session %q: %w", sessionID, err)
	}

	r.logger.Info("runner.turn.end", "session_id", sessionID, "steps", led.Len())

	return out, nil
}

// Reset discards the session's recorded state.
func (r *Runner) Reset(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.Delete(sessionID)
}

// history replays the recorded dialogue as model context. Tool, routing and
// retrieval steps stay in the ledger only; the model sees the user and
// assistant exchange.
func history(l *ledger.Ledger) []core.Message {
	var msgs []core.Message
	for _, step := range l.Steps() {
		switch s := step.(type) {
		case ledger.HumanStep:
			msgs = append(msgs, core.NewUserMessage(s.Text))
		case ledger.RetryStep:
			msgs = append(msgs, core.NewUserMessage(s.Reason))
		case ledger.AnswerStep:
			msgs = append(msgs, core.NewAssistantMessage(s.Message))
		}
	}
	return msgs
}
