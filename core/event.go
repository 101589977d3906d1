package core

// Event is the closed set of occurrences an agent run emits. Implementations
// live in this package only; the unexported marker keeps the union sealed so
// consumers can switch exhaustively:
//
//	switch ev := ev.(type) {
//	case core.TextDelta:
//	case core.TextFinal:
//	case core.ToolCall:
//	case core.ToolResult:
//	case core.MaxStepsReached:
//	}
type Event interface {
	isEvent()
}

// TextDelta is one incremental fragment of assistant text. Only streaming
// runs produce it; non-streaming runs emit the assembled TextFinal directly.
type TextDelta struct {
	// Delta is the text fragment, possibly empty.
	Delta string `json:"delta"`
}

func (TextDelta) isEvent() {}

// TextFinal is a complete assistant text turn. In streaming runs it follows
// the TextDelta fragments it was assembled from.
type TextFinal struct {
	// Content is the full text of the turn.
	Content string `json:"content"`
}

func (TextFinal) isEvent() {}

// ToolCall announces that the model requested a tool invocation. It precedes
// the matching ToolResult.
type ToolCall struct {
	// ID correlates the call with its result. Adapters that receive no
	// provider identifier generate one.
	ID string `json:"id"`
	// Name is the registered tool name.
	Name string `json:"name"`
	// Args are the parsed call arguments.
	Args map[string]any `json:"args"`
}

func (ToolCall) isEvent() {}

// ToolResult carries the outcome of a tool invocation back to the consumer.
// Execution failures surface here as a structured payload, not as an error:
// the run continues and the model sees the failure text.
type ToolResult struct {
	// ID matches the originating ToolCall.
	ID string `json:"id"`
	// Name is the tool that ran.
	Name string `json:"name"`
	// Content is the normalized string form of the tool's return value.
	Content string `json:"content"`
	// Args echoes the arguments the tool ran with.
	Args map[string]any `json:"args,omitempty"`
	// IsError reports whether Content is a failure payload.
	IsError bool `json:"is_error,omitempty"`
}

func (ToolResult) isEvent() {}

// MaxStepsReached terminates a run whose iteration budget is exhausted before
// the model produced a final text answer. It is always the last event of such
// a run, and the only event when the budget is zero.
type MaxStepsReached struct {
	// Content is the standard exhaustion notice naming the agent.
	Content string `json:"content"`
}

func (MaxStepsReached) isEvent() {}
