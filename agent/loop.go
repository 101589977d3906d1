package agent

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/internal/jsonutil"
	"github.com/hupe1980/agentlite/model"
	"github.com/hupe1980/agentlite/tool"
)

// maxStepsNotice is the terminal message of a run that exhausted its
// iteration budget before producing a text answer.
const maxStepsNotice = "Agent %s reached the maximum number of iterations for answering the query."

// runBlocking drives the loop with non-streaming model calls and returns the
// materialized event list.
func (a *Agent) runBlocking(ctx context.Context, messages []core.Message) ([]core.Event, error) {
	var events []core.Event

	for i := 0; i < a.maxIterations; i++ {
		a.logger.Debug("agent.iteration", "agent", a.name, "iteration", i+1, "max_iterations", a.maxIterations)

		resp, err := a.llm.Generate(ctx, a.request(messages))
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}
		usage := resp.Usage

		switch c := resp.Completion.(type) {
		case model.Text:
			_ = a.ledger.AddAnswerStep(core.NewAssistantMessage(c.Content), &usage)
			a.logger.Info("agent.run.done", "agent", a.name, "iterations", i+1)
			return append(events, core.TextFinal{Content: c.Content}), nil

		case model.ToolUse:
			var toolEvents []core.Event
			messages, toolEvents = a.runCalls(ctx, messages, c.Calls, &usage)
			events = append(events, toolEvents...)

		default:
			return nil, fmt.Errorf("%w: unexpected completion %T", core.ErrAdapterContract, resp.Completion)
		}
	}

	return append(events, a.exhausted()), nil
}

// runStream drives the loop with streaming model calls, forwarding text
// deltas as they arrive and reassembling tool calls from their fragments.
func (a *Agent) runStream(ctx context.Context, messages []core.Message) *core.EventStream {
	return core.NewEventStream(func(yield func(core.Event, error) bool) {
		msgs := messages

		for i := 0; i < a.maxIterations; i++ {
			a.logger.Debug("agent.iteration", "agent", a.name, "iteration", i+1, "max_iterations", a.maxIterations)

			st, err := a.llm.Stream(ctx, a.request(msgs))
			if err != nil {
				yield(nil, fmt.Errorf("model call failed: %w", err))
				return
			}

			var text strings.Builder
			var pending []pendingCall

			for st.Next() {
				switch chunk := st.Current().(type) {
				case model.TextChunk:
					text.WriteString(chunk.Delta)
					if !yield(core.TextDelta{Delta: chunk.Delta}, nil) {
						st.Close()
						return
					}
				case model.ToolUseChunk:
					if chunk.ID != "" || len(pending) == 0 {
						pending = append(pending, pendingCall{id: chunk.ID})
					}
					last := &pending[len(pending)-1]
					last.name += chunk.Name
					last.args = append(last.args, chunk.Args...)
				}
			}
			if err := st.Err(); err != nil {
				st.Close()
				yield(nil, fmt.Errorf("model stream failed: %w", err))
				return
			}
			usage := st.Usage()
			st.Close()

			if len(pending) > 0 {
				calls, err := finalizeCalls(pending)
				if err != nil {
					yield(nil, err)
					return
				}
				var toolEvents []core.Event
				msgs, toolEvents = a.runCalls(ctx, msgs, calls, &usage)
				for _, ev := range toolEvents {
					if !yield(ev, nil) {
						return
					}
				}
				continue
			}

			content := text.String()
			_ = a.ledger.AddAnswerStep(core.NewAssistantMessage(content), &usage)
			a.logger.Info("agent.run.done", "agent", a.name, "iterations", i+1)
			yield(core.TextFinal{Content: content}, nil)
			return
		}

		yield(a.exhausted(), nil)
	})
}

// exhausted builds the iteration-budget event and logs the condition.
func (a *Agent) exhausted() core.MaxStepsReached {
	a.logger.Warn("agent.max_steps", "agent", a.name, "max_iterations", a.maxIterations)
	return core.MaxStepsReached{Content: fmt.Sprintf(maxStepsNotice, a.name)}
}

// runCalls appends the assistant tool-call message, executes every requested
// call in order and appends each result to the conversation. The model
// call's usage lands on the first recorded tool step only, so ledger totals
// count every model call exactly once.
func (a *Agent) runCalls(ctx context.Context, messages []core.Message, calls []model.Call, usage *core.Usage) ([]core.Message, []core.Event) {
	payloads := make([]core.ToolCallPayload, 0, len(calls))
	for _, call := range calls {
		payloads = append(payloads, core.ToolCallPayload{
			ID:   call.ID,
			Type: "function",
			Function: core.FunctionPayload{
				Name:      call.Name,
				Arguments: argsJSON(call.Args),
			},
		})
	}
	messages = append(messages, core.NewToolCallMessage(payloads...))

	events := make([]core.Event, 0, 2*len(calls))
	for i, call := range calls {
		events = append(events, core.ToolCall{ID: call.ID, Name: call.Name, Args: call.Args})

		content, isError := a.executeCall(ctx, call)

		msg := core.NewToolMessage(content, call.Name, call.ID, call.Args)
		messages = append(messages, msg)

		stepUsage := usage
		if i > 0 {
			stepUsage = nil
		}
		_ = a.ledger.AddToolStep(msg, stepUsage)

		events = append(events, core.ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Content: content,
			Args:    call.Args,
			IsError: isError,
		})
	}
	return messages, events
}

// executeCall resolves and runs one tool, converting every failure mode into
// the structured payload the model sees. The boolean reports failure.
func (a *Agent) executeCall(ctx context.Context, call model.Call) (string, bool) {
	t, ok := a.registry.Get(call.Name)
	if !ok {
		a.logger.Warn("tool.unknown", "agent", a.name, "tool", call.Name)
		return jsonutil.Normalize(map[string]any{
			"error":           fmt.Sprintf("ToolNotFound: '%s'", call.Name),
			"available_tools": a.registry.Names(),
		}), true
	}

	a.logger.Debug("tool.call.start", "agent", a.name, "tool", call.Name, "args", call.Args)

	result, err := a.callTool(ctx, t, call.Args)
	if err != nil {
		a.logger.Error("tool.call.error", "agent", a.name, "tool", call.Name, "error", err)
		return jsonutil.Normalize(map[string]any{
			"error": fmt.Sprintf("ToolExecutionError: %v", err),
			"tool":  call.Name,
		}), true
	}

	a.logger.Debug("tool.call.done", "agent", a.name, "tool", call.Name)
	return jsonutil.Normalize(result), false
}

// callTool invokes the tool, converting a panic into an error so a
// misbehaving tool cannot take down the run.
func (a *Agent) callTool(ctx context.Context, t tool.Tool, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("tool.panic", "agent", a.name, "tool", t.Name(), "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("tool %s panicked: %v", t.Name(), r)
		}
	}()
	return t.Execute(ctx, args)
}

// pendingCall accumulates one tool call's fragments during streaming.
type pendingCall struct {
	id   string
	name string
	args []byte
}

// finalizeCalls parses the accumulated fragments into executable calls.
// Argument fragments that never assemble into a JSON object fail the run;
// there is no corrective feedback for a malformed provider stream.
func finalizeCalls(pending []pendingCall) ([]model.Call, error) {
	calls := make([]model.Call, 0, len(pending))
	for _, p := range pending {
		args := map[string]any{}
		if raw := string(p.args); raw != "" {
			if err := jsonutil.UnmarshalString(raw, &args); err != nil {
				return nil, fmt.Errorf("decode arguments for tool %q: %w", p.name, err)
			}
		}
		id := p.id
		if id == "" {
			id = core.NewID()
		}
		calls = append(calls, model.Call{ID: id, Name: p.name, Args: args})
	}
	return calls, nil
}

// argsJSON renders call arguments for the wire, treating absent arguments as
// the empty object.
func argsJSON(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	return jsonutil.Normalize(args)
}
