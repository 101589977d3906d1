package tool

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Func is the signature of a plain Go function exposed as a tool.
type Func func(ctx context.Context, args map[string]any) (any, error)

// FunctionTool is a generic adapter that exposes a plain Go function as a tool.
//
// Responsibilities:
//   - Holds an explicit JSON Schema parameter specification (parameters)
//   - Validates model supplied arguments against that schema before execution
//   - Normalizes error handling so callers receive *ToolError with consistent codes:
//     VALIDATION_ERROR  -> schema / argument mismatch
//     EXECUTION_ERROR   -> underlying function returned an error (non-ToolError)
//     (custom codes preserved if the function returns *ToolError directly)
//
// Concurrency:
//
//	A FunctionTool has no mutable state after the lazily compiled schema and is
//	safe for concurrent use by multiple goroutines.
//
// Returned result:
//
//	The returned value can be any Go type; the agent layer normalizes it to the
//	string handed back to the model (strings pass through, everything else is
//	serialized as JSON).
type FunctionTool struct {
	// Tool identifier (snake_case recommended)
	name string
	// Human-readable description shown to models
	description string
	// JSON schema describing accepted arguments
	parameters map[string]any
	// User supplied implementation
	fn Func

	compileOnce sync.Once
	schema      *gojsonschema.Schema
	compileErr  error
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Arguments:
//
//	name        - unique tool name (avoid collisions; snake_case suggested)
//	description - concise, imperative description ("Calculate the …")
//	parameters  - JSON Schema map describing the accepted arguments; nil skips validation
//	fn          - implementation receiving a context plus already validated args
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(ctx context.Context, args map[string]any) (any, error) {
//	    a := args["a"].(float64)
//	    b := args["b"].(float64)
//	    return a + b, nil
//	  },
//	)
func NewFunctionTool(name, description string, parameters map[string]any, fn Func) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Execute validates the provided args against the declared schema then invokes
// the underlying function. Validation or execution failures are wrapped (or
// passed through) as *ToolError for uniform downstream handling.
//
// Error Semantics:
//
//	*ToolError (returned directly)  -> forwarded unchanged
//	validation failure              -> *ToolError{Code: "VALIDATION_ERROR"}
//	other error                     -> *ToolError{Code: "EXECUTION_ERROR"}
func (t *FunctionTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	if err := t.validate(args); err != nil {
		return nil, err
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok { // Already a ToolError -> forward unchanged
			return nil, toolErr
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	return result, nil
}

func (t *FunctionTool) validate(args map[string]any) error {
	if t.parameters == nil {
		return nil
	}

	t.compileOnce.Do(func() {
		t.schema, t.compileErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(t.parameters))
	})
	if t.compileErr != nil {
		return &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("invalid parameter schema: %v", t.compileErr),
			Code:    "VALIDATION_ERROR",
		}
	}

	if args == nil {
		args = map[string]any{}
	}
	result, err := t.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
		}
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %s", strings.Join(issues, "; ")),
			Code:    "VALIDATION_ERROR",
			Details: issues,
		}
	}

	return nil
}
