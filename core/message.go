package core

import "github.com/google/uuid"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem marks instruction messages injected ahead of the conversation.
	RoleSystem Role = "system"
	// RoleUser marks end-user input.
	RoleUser Role = "user"
	// RoleAssistant marks model output, including tool-call requests.
	RoleAssistant Role = "assistant"
	// RoleTool marks tool execution results fed back to the model.
	RoleTool Role = "tool"
)

// ToolCallPayload is the wire-level formatting of a single tool call attached
// to an assistant message: {id, type:"function", function:{name, arguments}}.
type ToolCallPayload struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Function FunctionPayload `json:"function"`
}

// FunctionPayload names the called function and carries its arguments as a
// serialized JSON object.
type FunctionPayload struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of the conversation passed to and produced by models.
//
// Invariants:
//   - tool-role messages carry a ToolCallID linking them to the originating call
//   - assistant messages carrying ToolCalls have empty Content (the content is
//     null on the wire; adapters translate the empty-string-plus-calls state)
type Message struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	Name       string            `json:"name,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCallPayload `json:"tool_calls,omitempty"`
	ToolArgs   map[string]any    `json:"tool_args,omitempty"`
}

// NewSystemMessage builds a system-role message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage builds a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds a plain assistant text message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolCallMessage builds the assistant message recording one or more tool
// calls. Its Content stays empty per the message invariant.
func NewToolCallMessage(calls ...ToolCallPayload) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls}
}

// NewToolMessage builds the tool-role message carrying a stringified result
// back to the model.
func NewToolMessage(content, name, toolCallID string, args map[string]any) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		Name:       name,
		ToolCallID: toolCallID,
		ToolArgs:   args,
	}
}

// NewID generates a unique identifier usable for tool calls, sessions and
// correlation throughout the runtime.
func NewID() string { return uuid.NewString() }
