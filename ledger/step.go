package ledger

import "github.com/hupe1980/agentlite/core"

// StepKind tags a step in its persisted form.
type StepKind string

const (
	// StepKindSystem tags system prompt steps.
	StepKindSystem StepKind = "system"
	// StepKindHuman tags user input steps.
	StepKindHuman StepKind = "human"
	// StepKindAnswer tags assistant answer steps.
	StepKindAnswer StepKind = "answer"
	// StepKindTool tags tool invocation steps.
	StepKindTool StepKind = "tool"
	// StepKindRetry tags router retry steps.
	StepKindRetry StepKind = "retry"
	// StepKindRouting tags delegation decision steps.
	StepKindRouting StepKind = "routing"
	// StepKindRetrieval tags retrieval augmentation steps.
	StepKindRetrieval StepKind = "retrieval"
)

// Step is the closed set of entries a ledger records. Implementations live in
// this package only; the unexported marker keeps the union sealed.
type Step interface {
	isStep()

	// Kind returns the persisted type tag of the step.
	Kind() StepKind
}

// SystemStep records the system prompt injected at the start of a run.
type SystemStep struct {
	Prompt string `json:"prompt"`
}

func (SystemStep) isStep() {}

// Kind implements Step.
func (SystemStep) Kind() StepKind { return StepKindSystem }

// HumanStep records one user input.
type HumanStep struct {
	Text string `json:"text"`
}

func (HumanStep) isStep() {}

// Kind implements Step.
func (HumanStep) Kind() StepKind { return StepKindHuman }

// AnswerStep records a final assistant reply, including raw router replies
// during classification.
type AnswerStep struct {
	Message string      `json:"message"`
	Usage   *core.Usage `json:"usage,omitempty"`
}

func (AnswerStep) isStep() {}

// Kind implements Step.
func (AnswerStep) Kind() StepKind { return StepKindAnswer }

// ToolStep records one tool invocation with its arguments and normalized
// result text.
type ToolStep struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
	Result string         `json:"result_text"`
	Usage  *core.Usage    `json:"usage,omitempty"`
}

func (ToolStep) isStep() {}

// Kind implements Step.
func (ToolStep) Kind() StepKind { return StepKindTool }

// RetryStep records the corrective message sent to the router after a failed
// classification attempt.
type RetryStep struct {
	Reason string `json:"reason"`
}

func (RetryStep) isStep() {}

// Kind implements Step.
func (RetryStep) Kind() StepKind { return StepKindRetry }

// RoutingStep records a successful delegation decision.
type RoutingStep struct {
	Reason        string      `json:"reason"`
	TargetAgent   string      `json:"target_agent"`
	RawOutput     string      `json:"raw_output"`
	ExpandedQuery string      `json:"expanded_query,omitempty"`
	Usage         *core.Usage `json:"usage,omitempty"`
}

func (RoutingStep) isStep() {}

// Kind implements Step.
func (RoutingStep) Kind() StepKind { return StepKindRouting }

// RetrievedChunk is one passage a retrieval backend returned, with its
// similarity to the query.
type RetrievedChunk struct {
	Content    string         `json:"content"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RetrievalStep records what the retrieval-augmented agent injected into a
// run before the first model call.
type RetrievalStep struct {
	Query  string           `json:"query"`
	Chunks []RetrievedChunk `json:"chunks"`
}

func (RetrievalStep) isStep() {}

// Kind implements Step.
func (RetrievalStep) Kind() StepKind { return StepKindRetrieval }
