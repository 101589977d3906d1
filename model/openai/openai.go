// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API (including streaming + function/tool calling). It
// adapts the normalized request and completion structures into the SDK's
// message format and back.
package openai

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/internal/jsonutil"
	"github.com/hupe1980/agentlite/model"
)

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new OpenAI model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate performs one blocking chat completion and classifies the reply as
// text or tool use.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := m.buildParams(req)
	start := time.Now()
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}
	completion, err := convertCompletion(resp.Choices[0].Message)
	if err != nil {
		return nil, err
	}
	return &model.Response{
		Completion: completion,
		Usage: core.Usage{
			Model:          m.opts.Model,
			InputTokens:    int(resp.Usage.PromptTokens),
			OutputTokens:   int(resp.Usage.CompletionTokens),
			ElapsedSeconds: time.Since(start).Seconds(),
		},
	}, nil
}

// Stream performs one streaming chat completion. Text arrives as TextChunk
// deltas; tool calls arrive as ToolUseChunk fragments in provider order.
func (m *Model) Stream(ctx context.Context, req model.Request) (*model.Stream, error) {
	params := m.buildParams(req)
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{
		IncludeUsage: openai.Bool(true),
	}
	return model.NewStream(&streamDecoder{
		stream: m.client.Chat.Completions.NewStreaming(ctx, params),
		start:  time.Now(),
		usage:  core.Usage{Model: m.opts.Model},
	}), nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}

// buildParams assembles the OpenAI request parameters including tool definitions.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	temperature := m.opts.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := m.opts.MaxCompletionTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Messages),
		Model:               m.opts.Model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, t := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name(),
				Description: openai.String(t.Description()),
				Parameters:  t.Parameters(),
			},
		}
	}
	params.Tools = tools
	return params
}

// buildMessages converts normalized messages into OpenAI chat messages. The
// conversation already interleaves tool results behind their calls, so the
// mapping is positional.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case core.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case core.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			toolCalls := make([]openai.ChatCompletionMessageToolCallParam, len(msg.ToolCalls))
			for i, call := range msg.ToolCalls {
				toolCalls[i] = openai.ChatCompletionMessageToolCallParam{
					ID:   call.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Function.Name,
						Arguments: call.Function.Arguments,
					},
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toolCalls,
				},
			})
		case core.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// convertCompletion maps a chat completion message to the completion union.
// Tool calls win over any accompanying text.
func convertCompletion(msg openai.ChatCompletionMessage) (model.Completion, error) {
	if len(msg.ToolCalls) == 0 {
		return model.Text{Content: msg.Content}, nil
	}
	calls := make([]model.Call, len(msg.ToolCalls))
	for i, tc := range msg.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := jsonutil.UnmarshalString(tc.Function.Arguments, &args); err != nil {
				return nil, fmt.Errorf("decode arguments for tool %q: %w", tc.Function.Name, err)
			}
		}
		id := tc.ID
		if id == "" {
			id = core.NewID()
		}
		calls[i] = model.Call{ID: id, Name: tc.Function.Name, Args: args}
	}
	return model.ToolUse{Calls: calls}, nil
}

// streamDecoder adapts the SDK's SSE stream to the chunk union. One SSE chunk
// can carry several fragments, so decoded fragments queue up between Next
// calls.
type streamDecoder struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	queue  []model.Chunk
	usage  core.Usage
	start  time.Time
}

func (d *streamDecoder) Next() (model.Chunk, error) {
	for {
		if len(d.queue) > 0 {
			chunk := d.queue[0]
			d.queue = d.queue[1:]
			return chunk, nil
		}
		if !d.stream.Next() {
			if err := d.stream.Err(); err != nil {
				return nil, fmt.Errorf("openai streaming error: %w", err)
			}
			d.usage.ElapsedSeconds = time.Since(d.start).Seconds()
			return nil, io.EOF
		}
		ck := d.stream.Current()
		if ck.Usage.TotalTokens > 0 {
			d.usage.InputTokens = int(ck.Usage.PromptTokens)
			d.usage.OutputTokens = int(ck.Usage.CompletionTokens)
		}
		for _, choice := range ck.Choices {
			if choice.Delta.Content != "" {
				d.queue = append(d.queue, model.TextChunk{Delta: choice.Delta.Content})
			}
			for _, tc := range choice.Delta.ToolCalls {
				d.queue = append(d.queue, model.ToolUseChunk{
					ID:   tc.ID,
					Name: tc.Function.Name,
					Args: tc.Function.Arguments,
				})
			}
		}
	}
}

func (d *streamDecoder) Usage() core.Usage { return d.usage }

func (d *streamDecoder) Close() error { return d.stream.Close() }
