package anthropic

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/model"
	"github.com/hupe1980/agentlite/tool"
)

func newSumTool(parameters map[string]any) tool.Tool {
	return tool.NewFunctionTool(
		"calculate_sum",
		"Calculate the sum of two numbers",
		parameters,
		func(_ context.Context, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)
}

// -------------------- Message Conversion Tests --------------------

func TestBuildMessagesCoalescesToolResults(t *testing.T) {
	messages := []core.Message{
		core.NewUserMessage("add the numbers"),
		core.NewToolCallMessage(
			core.ToolCallPayload{ID: "call_1", Type: "function", Function: core.FunctionPayload{Name: "calculate_sum", Arguments: `{"a":1,"b":2}`}},
			core.ToolCallPayload{ID: "call_2", Type: "function", Function: core.FunctionPayload{Name: "calculate_sum", Arguments: `{"a":3,"b":4}`}},
		),
		core.NewToolMessage("3", "calculate_sum", "call_1", nil),
		core.NewToolMessage("7", "calculate_sum", "call_2", nil),
		core.NewUserMessage("thanks"),
	}

	out := buildMessages(messages)
	require.Len(t, out, 4)

	assert.Equal(t, anthropic.MessageParamRoleUser, out[0].Role)

	assert.Equal(t, anthropic.MessageParamRoleAssistant, out[1].Role)
	assert.Len(t, out[1].Content, 2, "one tool_use block per call")

	assert.Equal(t, anthropic.MessageParamRoleUser, out[2].Role)
	assert.Len(t, out[2].Content, 2, "parallel results answer in one user turn")

	assert.Equal(t, anthropic.MessageParamRoleUser, out[3].Role)
	assert.Len(t, out[3].Content, 1)
}

func TestBuildMessagesSkipsSystem(t *testing.T) {
	messages := []core.Message{
		core.NewSystemMessage("be brief"),
		core.NewUserMessage("hi"),
		core.NewAssistantMessage("hello"),
	}

	out := buildMessages(messages)
	require.Len(t, out, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, out[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, out[1].Role)

	blocks := extractSystem(messages)
	require.Len(t, blocks, 1)
	assert.Equal(t, "be brief", blocks[0].Text)
}

func TestCallInput(t *testing.T) {
	call := core.ToolCallPayload{Function: core.FunctionPayload{Arguments: `{"a": 2}`}}
	assert.Equal(t, map[string]any{"a": 2.0}, callInput(call))

	call.Function.Arguments = ""
	assert.Equal(t, map[string]any{}, callInput(call))

	call.Function.Arguments = `{"a": `
	assert.Equal(t, `{"a": `, callInput(call), "unparseable arguments pass through raw")
}

// -------------------- Tool Conversion Tests --------------------

func TestBuildToolsSchema(t *testing.T) {
	tools := buildTools([]tool.Tool{newSumTool(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	})})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "calculate_sum", tools[0].OfTool.Name)
	assert.Equal(t, "Calculate the sum of two numbers", tools[0].OfTool.Description.Value)
	assert.NotNil(t, tools[0].OfTool.InputSchema.Properties)
	assert.Equal(t, []string{"a", "b"}, tools[0].OfTool.InputSchema.Required)
}

func TestBuildToolsRequiredAsAnySlice(t *testing.T) {
	tools := buildTools([]tool.Tool{newSumTool(map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "number"}},
		"required":   []interface{}{"a"},
	})})

	require.Len(t, tools, 1)
	assert.Equal(t, []string{"a"}, tools[0].OfTool.InputSchema.Required)
}

// -------------------- Argument Conversion Tests --------------------

func TestConvertArgs(t *testing.T) {
	args, err := convertArgs(map[string]any{"a": 2}, "calculate_sum")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 2.0}, args)

	args, err = convertArgs(nil, "calculate_sum")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, args)
}

// -------------------- Info Tests --------------------

func TestInfo(t *testing.T) {
	m := NewModel()

	info := m.Info()
	assert.Equal(t, string(anthropic.ModelClaude3_5Sonnet20241022), info.Name)
	assert.Equal(t, "anthropic", info.Provider)
	assert.True(t, info.SupportsTools)
}

func TestBuildParamsOverrides(t *testing.T) {
	m := NewModel()
	temperature := 0.2
	maxTokens := int64(128)

	params := m.buildParams(model.Request{
		Messages:    []core.Message{core.NewSystemMessage("be brief"), core.NewUserMessage("hi")},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})

	assert.InDelta(t, 0.2, params.Temperature.Value, 1e-9)
	assert.EqualValues(t, 128, params.MaxTokens)
	require.Len(t, params.System, 1)
	assert.Equal(t, "be brief", params.System[0].Text)
	assert.Len(t, params.Messages, 1)
}
