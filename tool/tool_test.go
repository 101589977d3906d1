package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSumTool() *FunctionTool {
	return NewFunctionTool(
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
		func(ctx context.Context, args map[string]any) (any, error) {
			a := args["a"].(float64)
			b := args["b"].(float64)
			return a + b, nil
		},
	)
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionToolMetadata(t *testing.T) {
	sum := newSumTool()

	assert.Equal(t, "calculate_sum", sum.Name())
	assert.Equal(t, "Calculate the sum of two numbers", sum.Description())
	assert.Equal(t, "object", sum.Parameters()["type"])
}

func TestFunctionToolExecute(t *testing.T) {
	sum := newSumTool()

	result, err := sum.Execute(context.Background(), map[string]any{"a": 2.0, "b": 3.0})

	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionToolMissingArgument(t *testing.T) {
	sum := newSumTool()

	_, err := sum.Execute(context.Background(), map[string]any{"a": 2.0})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.Equal(t, "calculate_sum", toolErr.Tool)
}

func TestFunctionToolWrongArgumentType(t *testing.T) {
	sum := newSumTool()

	_, err := sum.Execute(context.Background(), map[string]any{"a": "two", "b": 3.0})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Message, "parameter validation failed")
}

func TestFunctionToolExecutionError(t *testing.T) {
	failing := NewFunctionTool("always_fails", "Always fails", nil,
		func(ctx context.Context, args map[string]any) (any, error) {
			return nil, errors.New("backend unavailable")
		},
	)

	_, err := failing.Execute(context.Background(), nil)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "backend unavailable", toolErr.Message)
}

func TestFunctionToolForwardsToolError(t *testing.T) {
	custom := NewToolError("rate_limited", "quota exceeded", "RATE_LIMIT")
	failing := NewFunctionTool("rate_limited", "Rate limited", nil,
		func(ctx context.Context, args map[string]any) (any, error) {
			return nil, custom
		},
	)

	_, err := failing.Execute(context.Background(), nil)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Same(t, custom, toolErr, "custom ToolError must pass through unchanged")
}

func TestFunctionToolNilSchemaSkipsValidation(t *testing.T) {
	echo := NewFunctionTool("echo", "Echo the input", nil,
		func(ctx context.Context, args map[string]any) (any, error) {
			return args["text"], nil
		},
	)

	result, err := echo.Execute(context.Background(), map[string]any{"text": "hi"})

	require.NoError(t, err)
	assert.Equal(t, "hi", result)
}

// -------------------- ToolError Tests --------------------

func TestToolErrorFormatting(t *testing.T) {
	withCode := NewToolError("get_weather", "city not found", "EXECUTION_ERROR")
	assert.Equal(t, "tool error [EXECUTION_ERROR] in get_weather: city not found", withCode.Error())

	withoutCode := &ToolError{Tool: "get_weather", Message: "city not found"}
	assert.Equal(t, "tool error in get_weather: city not found", withoutCode.Error())
}

// -------------------- Registry Tests --------------------

func TestRegistryRegisterAndGet(t *testing.T) {
	registry, err := NewRegistry(newSumTool())
	require.NoError(t, err)

	got, ok := registry.Get("calculate_sum")
	require.True(t, ok)
	assert.Equal(t, "calculate_sum", got.Name())

	_, ok = registry.Get("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry, err := NewRegistry(newSumTool())
	require.NoError(t, err)

	err = registry.Register(newSumTool())

	require.ErrorIs(t, err, ErrDuplicateTool)
	assert.Contains(t, err.Error(), "calculate_sum")
	assert.Equal(t, 1, registry.Len(), "failed registration must not alter the registry")
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	nameless := NewFunctionTool("", "No name", nil,
		func(ctx context.Context, args map[string]any) (any, error) { return nil, nil },
	)

	registry, err := NewRegistry()
	require.NoError(t, err)

	assert.ErrorIs(t, registry.Register(nameless), ErrEmptyName)
}

func TestRegistryPreservesOrder(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	for _, name := range []string{"zeta", "alpha", "mike"} {
		tl := NewFunctionTool(name, fmt.Sprintf("Tool %s", name), nil,
			func(ctx context.Context, args map[string]any) (any, error) { return nil, nil },
		)
		require.NoError(t, registry.Register(tl))
	}

	assert.Equal(t, []string{"zeta", "alpha", "mike"}, registry.Names())

	tools := registry.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, "zeta", tools[0].Name())
}

func TestNewRegistryFailsOnDuplicate(t *testing.T) {
	_, err := NewRegistry(newSumTool(), newSumTool())
	assert.ErrorIs(t, err, ErrDuplicateTool)
}
