package model

import (
	"context"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/tool"
)

// Request captures the normalized model input produced by the agent loop.
type Request struct {
	// Messages is the full conversation, oldest first. System messages are
	// allowed anywhere; adapters relocate them as their provider requires.
	Messages []core.Message `json:"messages"`
	// Tools advertises callable functions to the model; nil disables
	// function calling for the request.
	Tools []tool.Tool `json:"-"`
	// Temperature overrides the provider default when non-nil.
	Temperature *float64 `json:"temperature,omitempty"`
	// MaxTokens caps the reply length when non-nil.
	MaxTokens *int64 `json:"max_tokens,omitempty"`
}

// Completion is the closed union of what a model call produces: a plain text
// reply or a request to invoke tools. Adapters construct exactly one per
// response; the agent loop classifies by type switch.
type Completion interface {
	isCompletion()
}

// Text is a plain assistant reply.
type Text struct {
	// Content is the full reply text.
	Content string `json:"content"`
}

func (Text) isCompletion() {}

// ToolUse requests one or more tool invocations.
type ToolUse struct {
	// Calls lists the requested invocations in provider order, never empty.
	Calls []Call `json:"calls"`
}

func (ToolUse) isCompletion() {}

// Call is a single requested tool invocation with parsed arguments.
type Call struct {
	// ID correlates the call with its result message. Adapters whose
	// provider sends no identifier generate one.
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Response is the outcome of a non-streaming model call.
type Response struct {
	// Completion is the single result of the call.
	Completion Completion `json:"completion"`
	// Usage carries token counts and latency for the call.
	Usage core.Usage `json:"usage"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "ollama", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
type Model interface {
	// Generate performs one blocking model call.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Stream performs one streaming model call. The returned stream must be
	// drained or closed; usage is readable once the stream is exhausted.
	Stream(ctx context.Context, req Request) (*Stream, error)

	// Info returns information about the model implementation.
	Info() Info
}
