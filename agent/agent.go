package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/ledger"
	"github.com/hupe1980/agentlite/logging"
	"github.com/hupe1980/agentlite/model"
	"github.com/hupe1980/agentlite/tool"
)

// DefaultMaxIterations caps the number of model calls in a single run.
const DefaultMaxIterations = 12

// Options configure an Agent.
type Options struct {
	// Description summarizes the agent's capabilities for routing catalogs.
	Description string

	// SystemPrompt is prepended to every run when non-empty.
	SystemPrompt string

	// Tools are the functions the model may call. Names must be unique.
	Tools []tool.Tool

	// MaxIterations is the model-call budget of one run. Zero is honored
	// literally: the run emits the exhaustion notice without calling the
	// model.
	MaxIterations int

	// Stream switches the agent to incremental event delivery.
	Stream bool

	// Temperature overrides the provider default when non-nil.
	Temperature *float64

	// MaxTokens caps reply length when non-nil.
	MaxTokens *int64

	// Logger receives structured run diagnostics.
	Logger logging.Logger

	// Ledger is the record the run appends to. A fresh one is created when
	// nil.
	Ledger *ledger.Ledger
}

// Agent is the tool-calling execution loop around a single model: it calls
// the model, executes requested tools, feeds results back and repeats until
// the model answers in plain text or the iteration budget runs out.
//
// An Agent is not safe for concurrent runs against the same ledger.
type Agent struct {
	name          string
	description   string
	systemPrompt  string
	llm           model.Model
	registry      *tool.Registry
	maxIterations int
	stream        bool
	temperature   *float64
	maxTokens     *int64
	logger        logging.Logger
	ledger        *ledger.Ledger
}

// NewAgent constructs an Agent around the given model.
func NewAgent(name string, llm model.Model, optFns ...func(o *Options)) (*Agent, error) {
	if name == "" {
		return nil, errors.New("agent name must not be empty")
	}
	if llm == nil {
		return nil, errors.New("agent model must not be nil")
	}

	opts := Options{
		Description:   fmt.Sprintf("Agent %s", name),
		MaxIterations: DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxIterations < 0 {
		return nil, errors.New("max iterations must not be negative")
	}

	registry, err := tool.NewRegistry(opts.Tools...)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", name, err)
	}

	led := opts.Ledger
	if led == nil {
		led = ledger.New()
	}

	return &Agent{
		name:          name,
		description:   opts.Description,
		systemPrompt:  opts.SystemPrompt,
		llm:           llm,
		registry:      registry,
		maxIterations: opts.MaxIterations,
		stream:        opts.Stream,
		temperature:   opts.Temperature,
		maxTokens:     opts.MaxTokens,
		logger:        opts.Logger,
		ledger:        led,
	}, nil
}

// Name returns the agent's unique name.
func (a *Agent) Name() string { return a.name }

// Description returns the capability summary used in routing catalogs.
func (a *Agent) Description() string { return a.description }

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *tool.Registry { return a.registry }

// Ledger returns the ledger the agent currently records into.
func (a *Agent) Ledger() *ledger.Ledger { return a.ledger }

// SetLedger swaps the ledger the agent records into.
func (a *Agent) SetLedger(l *ledger.Ledger) { a.ledger = l }

// SetStream switches the agent between streaming and blocking delivery.
func (a *Agent) SetStream(stream bool) { a.stream = stream }

// Run executes the agent against the conversation. The last message must be
// user input; it is recorded as the run's human step. In streaming mode the
// returned output carries a live stream the caller must drain or close.
func (a *Agent) Run(ctx context.Context, messages []core.Message) (*Output, error) {
	if len(messages) == 0 {
		return nil, errors.New("at least one message is required")
	}

	msgs := a.prepare(messages)
	if err := a.ledger.AddHumanStep(msgs[len(msgs)-1]); err != nil {
		return nil, err
	}

	a.logger.Info("agent.run.start", "agent", a.name, "messages", len(msgs), "stream", a.stream)

	return a.execute(ctx, msgs)
}

// prepare returns a fresh message slice with the system prompt prepended and
// recorded, leaving the caller's input untouched.
func (a *Agent) prepare(messages []core.Message) []core.Message {
	msgs := make([]core.Message, 0, len(messages)+1)
	if a.systemPrompt != "" {
		sys := core.NewSystemMessage(a.systemPrompt)
		msgs = append(msgs, sys)
		_ = a.ledger.AddSystemStep(sys)
	}
	return append(msgs, messages...)
}

// execute dispatches to the streaming or blocking loop.
func (a *Agent) execute(ctx context.Context, messages []core.Message) (*Output, error) {
	if a.stream {
		return &Output{Stream: a.runStream(ctx, messages)}, nil
	}
	events, err := a.runBlocking(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &Output{Events: events}, nil
}

// request assembles the model request for the current conversation state.
func (a *Agent) request(messages []core.Message) model.Request {
	var tools []tool.Tool
	if a.registry.Len() > 0 {
		tools = a.registry.Tools()
	}
	return model.Request{
		Messages:    messages,
		Tools:       tools,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}
}
