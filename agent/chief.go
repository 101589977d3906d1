package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/internal/jsonutil"
	"github.com/hupe1980/agentlite/ledger"
	"github.com/hupe1980/agentlite/logging"
	"github.com/hupe1980/agentlite/model"
	"github.com/hupe1980/agentlite/prompt"
)

const (
	// DefaultChiefName is the routing agent's name when none is configured.
	DefaultChiefName = "AgentChief"
	// DefaultChiefDescription is the routing agent's catalog entry when none
	// is configured.
	DefaultChiefDescription = "Orchestrates and routes requests to other agents."
	// DefaultMaxRetries is the total number of classification attempts.
	DefaultMaxRetries = 3
)

// Classification failure reasons fed back to the model.
const (
	failInvalidJSON  = "INVALID_JSON"
	failUnknownAgent = "UNKNOWN_AGENT"
)

var (
	// ErrRoutingExhausted reports that every classification attempt failed.
	ErrRoutingExhausted = errors.New("routing attempts exhausted")
	// ErrDuplicateAgent reports two delegation targets sharing a name.
	ErrDuplicateAgent = errors.New("duplicate agent name")
)

var (
	routingKeys          = []string{"route_to", "reason"}
	routingExpansionKeys = []string{"route_to", "reason", "context", "expanded_query"}
)

// ChiefOptions configure a Chief.
type ChiefOptions struct {
	// Name identifies the router. Defaults to DefaultChiefName.
	Name string

	// Description is the router's own catalog entry.
	Description string

	// SystemPrompt overrides the routing instruction template. It must
	// contain one %s verb for the rendered agent catalog.
	SystemPrompt string

	// MaxRetries is the total number of classification attempts before the
	// router gives up. Defaults to DefaultMaxRetries.
	MaxRetries int

	// Stream is propagated to the delegated agent; classification itself is
	// always a blocking call.
	Stream bool

	// QueryExpansion asks the model to also rewrite the request as a
	// self-contained query, which then replaces the original user message
	// for the delegated run.
	QueryExpansion bool

	// ResponseKeys overrides the JSON keys expected in the routing reply.
	// Nil selects the default set for the expansion mode.
	ResponseKeys []string

	// Logger receives structured routing diagnostics.
	Logger logging.Logger

	// Ledger is the record the run appends to. A fresh one is created when
	// nil.
	Ledger *ledger.Ledger
}

// Chief classifies a request against a catalog of agents and delegates the
// run to the selected one, retrying malformed routing replies with
// corrective feedback. Chief itself satisfies Routable, so routers can nest.
type Chief struct {
	name           string
	description    string
	template       string
	llm            model.Model
	agents         map[string]Routable
	order          []string
	maxRetries     int
	stream         bool
	queryExpansion bool
	responseKeys   []string
	logger         logging.Logger
	ledger         *ledger.Ledger
}

// NewChief constructs a router over the given delegation targets.
func NewChief(llm model.Model, agents []Routable, optFns ...func(o *ChiefOptions)) (*Chief, error) {
	if llm == nil {
		return nil, errors.New("chief model must not be nil")
	}

	opts := ChiefOptions{
		Name:        DefaultChiefName,
		Description: DefaultChiefDescription,
		MaxRetries:  DefaultMaxRetries,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxRetries < 1 {
		return nil, errors.New("max retries must be at least 1")
	}

	byName := make(map[string]Routable, len(agents))
	order := make([]string, 0, len(agents))
	for _, ag := range agents {
		name := ag.Name()
		if name == "" {
			return nil, errors.New("agent name must not be empty")
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAgent, name)
		}
		byName[name] = ag
		order = append(order, name)
	}

	template := opts.SystemPrompt
	if template == "" {
		if opts.QueryExpansion {
			template = prompt.ChiefRoutingExpansion
		} else {
			template = prompt.ChiefRouting
		}
	}

	keys := opts.ResponseKeys
	if keys == nil {
		if opts.QueryExpansion {
			keys = routingExpansionKeys
		} else {
			keys = routingKeys
		}
	}

	led := opts.Ledger
	if led == nil {
		led = ledger.New()
	}

	return &Chief{
		name:           opts.Name,
		description:    opts.Description,
		template:       template,
		llm:            llm,
		agents:         byName,
		order:          order,
		maxRetries:     opts.MaxRetries,
		stream:         opts.Stream,
		queryExpansion: opts.QueryExpansion,
		responseKeys:   keys,
		logger:         opts.Logger,
		ledger:         led,
	}, nil
}

// Name returns the router's name.
func (c *Chief) Name() string { return c.name }

// Description returns the router's catalog entry.
func (c *Chief) Description() string { return c.description }

// Ledger returns the ledger the router currently records into.
func (c *Chief) Ledger() *ledger.Ledger { return c.ledger }

// SetLedger swaps the ledger the router records into.
func (c *Chief) SetLedger(l *ledger.Ledger) { c.ledger = l }

// SetStream switches delegated runs between streaming and blocking delivery.
func (c *Chief) SetStream(stream bool) { c.stream = stream }

// Run classifies the conversation and delegates it to the chosen agent. The
// classification call is always blocking; the configured stream flag applies
// to the delegated run. Failed attempts append an assistant step with the
// raw reply and a retry step with the corrective message; when every attempt
// fails, Run returns an error wrapping ErrRoutingExhausted.
func (c *Chief) Run(ctx context.Context, messages []core.Message) (*Output, error) {
	if len(messages) == 0 {
		return nil, errors.New("at least one message is required")
	}

	system := core.NewSystemMessage(fmt.Sprintf(c.template, c.catalog()))
	chiefMsgs := append([]core.Message{system}, messages...)

	if err := c.ledger.AddHumanStep(messages[len(messages)-1]); err != nil {
		return nil, err
	}

	fail := ""
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if fail != "" {
			c.logger.Info("chief.retry", "chief", c.name, "fail", fail, "attempt", attempt, "max_retries", c.maxRetries)
		}

		resp, err := c.llm.Generate(ctx, model.Request{Messages: chiefMsgs})
		if err != nil {
			return nil, fmt.Errorf("routing call failed: %w", err)
		}
		usage := resp.Usage

		var raw string
		if text, ok := resp.Completion.(model.Text); ok {
			raw = text.Content
		}

		var retryText string
		decision, ok := c.classify(raw)
		if ok {
			if target, exists := c.agents[decision.routeTo]; exists {
				c.ledger.AddRoutingStep(decision.reason, decision.routeTo, raw, decision.expandedQuery, &usage)
				c.logger.Info("chief.delegate", "chief", c.name, "target", decision.routeTo, "reason", decision.reason)
				return c.delegate(ctx, target, messages, decision.expandedQuery)
			}
			c.logger.Warn("chief.unknown_agent", "chief", c.name, "route_to", decision.routeTo)
			fail = failUnknownAgent
			retryText = fmt.Sprintf("Unknown agent '%s'. Please choose a valid agent from the list.", decision.routeTo)
		} else {
			c.logger.Warn("chief.invalid_json", "chief", c.name, "raw", raw)
			fail = failInvalidJSON
			retryText = fmt.Sprintf("Invalid JSON format. Please provide a valid JSON object with %v keys.", c.responseKeys)
		}

		assistant := core.NewAssistantMessage(raw)
		chiefMsgs = append(chiefMsgs, assistant)
		_ = c.ledger.AddAnswerStep(assistant, &usage)

		corrective := core.NewUserMessage(retryText)
		chiefMsgs = append(chiefMsgs, corrective)
		_ = c.ledger.AddRetryStep(corrective)
	}

	return nil, fmt.Errorf("%s failed to route after %d attempts: %w", c.name, c.maxRetries, ErrRoutingExhausted)
}

// catalog renders the agent list for the routing prompt, one line per agent
// in registration order.
func (c *Chief) catalog() string {
	lines := make([]string, 0, len(c.order))
	for _, name := range c.order {
		lines = append(lines, fmt.Sprintf("- %s: %s", name, c.agents[name].Description()))
	}
	return strings.Join(lines, "\n")
}

// routingDecision is one parsed classification reply.
type routingDecision struct {
	routeTo       string
	reason        string
	expandedQuery string
}

// classify parses the model's routing reply. It fails only when no JSON
// object is found or none of the expected keys are present; a parsed object
// without route_to flows on to the unknown-agent path.
func (c *Chief) classify(raw string) (routingDecision, bool) {
	obj, err := jsonutil.ParseObject(raw)
	if err != nil {
		return routingDecision{}, false
	}

	hits := 0
	for _, key := range c.responseKeys {
		if obj.Get(key).Exists() {
			hits++
		}
	}
	if hits == 0 {
		return routingDecision{}, false
	}

	return routingDecision{
		routeTo:       obj.Get("route_to").String(),
		reason:        obj.Get("reason").String(),
		expandedQuery: obj.Get("expanded_query").String(),
	}, true
}

// delegate hands the run to the routed agent, transferring the ledger and
// stream flag. The router stays out of the ledger until the delegated run
// finishes. A non-empty expanded query replaces the trailing user message.
func (c *Chief) delegate(ctx context.Context, target Routable, messages []core.Message, expandedQuery string) (*Output, error) {
	target.SetStream(c.stream)
	target.SetLedger(c.ledger)

	if expandedQuery != "" {
		swapped := make([]core.Message, len(messages))
		copy(swapped, messages)
		swapped[len(swapped)-1] = core.NewUserMessage(expandedQuery)
		messages = swapped
	}

	return target.Run(ctx, messages)
}
