package openai

import (
	"context"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/model"
	"github.com/hupe1980/agentlite/tool"
)

func newSumTool() tool.Tool {
	return tool.NewFunctionTool(
		"calculate_sum",
		"Calculate the sum of two numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)
}

// -------------------- Message Conversion Tests --------------------

func TestBuildMessagesRoles(t *testing.T) {
	messages := []core.Message{
		core.NewSystemMessage("be brief"),
		core.NewUserMessage("add 2 and 3"),
		core.NewToolCallMessage(core.ToolCallPayload{
			ID:   "call_1",
			Type: "function",
			Function: core.FunctionPayload{
				Name:      "calculate_sum",
				Arguments: `{"a":2,"b":3}`,
			},
		}),
		core.NewToolMessage("5", "calculate_sum", "call_1", nil),
		core.NewAssistantMessage("the sum is 5"),
	}

	out := buildMessages(messages)
	require.Len(t, out, 5)

	require.NotNil(t, out[0].OfSystem)
	require.NotNil(t, out[1].OfUser)

	require.NotNil(t, out[2].OfAssistant)
	require.Len(t, out[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call_1", out[2].OfAssistant.ToolCalls[0].ID)
	assert.Equal(t, "calculate_sum", out[2].OfAssistant.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"a":2,"b":3}`, out[2].OfAssistant.ToolCalls[0].Function.Arguments)

	require.NotNil(t, out[3].OfTool)
	assert.Equal(t, "call_1", out[3].OfTool.ToolCallID)

	require.NotNil(t, out[4].OfAssistant)
	assert.Empty(t, out[4].OfAssistant.ToolCalls)
}

func TestBuildParamsOverridesAndTools(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.Model = openai.ChatModelGPT4o
		o.Temperature = 0.7
		o.MaxCompletionTokens = 4096
	})
	temperature := 0.1
	maxTokens := int64(64)

	params := m.buildParams(model.Request{
		Messages:    []core.Message{core.NewUserMessage("hi")},
		Tools:       []tool.Tool{newSumTool()},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})

	assert.Equal(t, openai.ChatModelGPT4o, params.Model)
	assert.InDelta(t, 0.1, params.Temperature.Value, 1e-9)
	assert.EqualValues(t, 64, params.MaxCompletionTokens.Value)
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "calculate_sum", params.Tools[0].Function.Name)
}

func TestBuildParamsDefaults(t *testing.T) {
	m := NewModel()

	params := m.buildParams(model.Request{Messages: []core.Message{core.NewUserMessage("hi")}})

	assert.Equal(t, openai.ChatModelGPT4oMini, params.Model)
	assert.InDelta(t, 0.7, params.Temperature.Value, 1e-9)
	assert.EqualValues(t, 4096, params.MaxCompletionTokens.Value)
	assert.Empty(t, params.Tools)
}

// -------------------- Completion Conversion Tests --------------------

func TestConvertCompletionText(t *testing.T) {
	completion, err := convertCompletion(openai.ChatCompletionMessage{Content: "hello"})

	require.NoError(t, err)
	assert.Equal(t, model.Text{Content: "hello"}, completion)
}

func TestConvertCompletionToolCalls(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		ToolCalls: []openai.ChatCompletionMessageToolCall{
			{
				ID: "call_1",
				Function: openai.ChatCompletionMessageToolCallFunction{
					Name:      "calculate_sum",
					Arguments: `{"a": 2, "b": 3}`,
				},
			},
			{
				Function: openai.ChatCompletionMessageToolCallFunction{
					Name: "noop",
				},
			},
		},
	}

	completion, err := convertCompletion(msg)
	require.NoError(t, err)

	toolUse, ok := completion.(model.ToolUse)
	require.True(t, ok)
	require.Len(t, toolUse.Calls, 2)
	assert.Equal(t, "call_1", toolUse.Calls[0].ID)
	assert.Equal(t, map[string]any{"a": 2.0, "b": 3.0}, toolUse.Calls[0].Args)
	assert.NotEmpty(t, toolUse.Calls[1].ID, "missing call ids must be generated")
	assert.Equal(t, map[string]any{}, toolUse.Calls[1].Args)
}

func TestConvertCompletionMalformedArguments(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		ToolCalls: []openai.ChatCompletionMessageToolCall{
			{
				ID: "call_1",
				Function: openai.ChatCompletionMessageToolCallFunction{
					Name:      "calculate_sum",
					Arguments: `{"a": `,
				},
			},
		},
	}

	_, err := convertCompletion(msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calculate_sum")
}

// -------------------- Info Tests --------------------

func TestInfo(t *testing.T) {
	m := NewModel()

	info := m.Info()
	assert.Equal(t, openai.ChatModelGPT4oMini, info.Name)
	assert.Equal(t, "openai", info.Provider)
	assert.True(t, info.SupportsTools)
}
