// Package anthropic provides a model wrapper for the Anthropic Claude API,
// covering blocking and streaming generation with tool use.
package anthropic

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/internal/jsonutil"
	"github.com/hupe1980/agentlite/model"
	"github.com/hupe1980/agentlite/tool"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new Anthropic model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{
		client: &client,
		opts:   opts,
	}
}

// NewModelFromClient creates a new Anthropic model from an existing client
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// Generate performs one blocking Messages API call and classifies the reply
// as text or tool use.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	params := m.buildParams(req)
	start := time.Now()
	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	var calls []model.Call
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.AsText().Text)
		case "tool_use":
			toolBlock := block.AsToolUse()
			args, err := convertArgs(toolBlock.Input, toolBlock.Name)
			if err != nil {
				return nil, err
			}
			id := toolBlock.ID
			if id == "" {
				id = core.NewID()
			}
			calls = append(calls, model.Call{ID: id, Name: toolBlock.Name, Args: args})
		}
	}

	var completion model.Completion
	if len(calls) > 0 {
		completion = model.ToolUse{Calls: calls}
	} else {
		completion = model.Text{Content: text.String()}
	}
	return &model.Response{
		Completion: completion,
		Usage: core.Usage{
			Model:          string(m.opts.Model),
			InputTokens:    int(resp.Usage.InputTokens),
			OutputTokens:   int(resp.Usage.OutputTokens),
			ElapsedSeconds: time.Since(start).Seconds(),
		},
	}, nil
}

// Stream performs one streaming Messages API call. A tool_use block start
// opens a call fragment carrying id and name; input_json deltas follow as
// argument fragments.
func (m *Model) Stream(ctx context.Context, req model.Request) (*model.Stream, error) {
	params := m.buildParams(req)
	return model.NewStream(&streamDecoder{
		stream: m.client.Messages.NewStreaming(ctx, params),
		start:  time.Now(),
		usage:  core.Usage{Model: string(m.opts.Model)},
	}), nil
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}

func (m *Model) buildParams(req model.Request) anthropic.MessageNewParams {
	temperature := m.opts.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := m.opts.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}
	if systemBlocks := extractSystem(req.Messages); len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}
	return params
}

// buildMessages converts normalized messages to Anthropic message params.
// Tool results become tool_result blocks on a user message; consecutive
// results collapse into one message so parallel calls answer in one turn.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	var pendingResults []anthropic.ContentBlockParamUnion
	flush := func() {
		if len(pendingResults) > 0 {
			out = append(out, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}
	for _, msg := range messages {
		if msg.Role == core.RoleTool {
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false))
			continue
		}
		flush()
		switch msg.Role {
		case core.RoleSystem:
			// Handled separately via the system parameter.
		case core.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case core.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
				continue
			}
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, callInput(call), call.Function.Name))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	flush()
	return out
}

// callInput parses the serialized arguments back into an object, falling back
// to the raw string when they do not parse.
func callInput(call core.ToolCallPayload) any {
	if call.Function.Arguments == "" {
		return map[string]any{}
	}
	var parsed map[string]any
	if err := jsonutil.UnmarshalString(call.Function.Arguments, &parsed); err != nil {
		return call.Function.Arguments
	}
	return parsed
}

func extractSystem(messages []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, msg := range messages {
		if msg.Role == core.RoleSystem && msg.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content})
		}
	}
	return blocks
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(tools []tool.Tool) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if params := t.Parameters(); params != nil {
			if properties, exists := params["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := params["required"]; exists {
				if reqSlice, ok := required.([]string); ok {
					inputSchema.Required = reqSlice
				} else if reqInterface, ok := required.([]interface{}); ok {
					var reqStrings []string
					for _, r := range reqInterface {
						if s, ok := r.(string); ok {
							reqStrings = append(reqStrings, s)
						}
					}
					inputSchema.Required = reqStrings
				}
			}
		}
		toolParam := anthropic.ToolParam{
			Name:        t.Name(),
			Description: anthropic.String(t.Description()),
			InputSchema: inputSchema,
		}
		anthropicTools[i] = anthropic.ToolUnionParam{OfTool: &toolParam}
	}
	return anthropicTools
}

func convertArgs(input any, name string) (map[string]any, error) {
	args := map[string]any{}
	if input == nil {
		return args, nil
	}
	raw, err := jsonutil.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode arguments for tool %q: %w", name, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}
	if err := jsonutil.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode arguments for tool %q: %w", name, err)
	}
	return args, nil
}

// streamDecoder adapts the Messages streaming events to the chunk union.
// Input token counts arrive on message_start, output counts on message_delta.
type streamDecoder struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
	usage  core.Usage
	start  time.Time
}

func (d *streamDecoder) Next() (model.Chunk, error) {
	for d.stream.Next() {
		event := d.stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.MessageStartEvent:
			d.usage.InputTokens = int(ev.Message.Usage.InputTokens)
			d.usage.OutputTokens = int(ev.Message.Usage.OutputTokens)
		case anthropic.MessageDeltaEvent:
			d.usage.OutputTokens = int(ev.Usage.OutputTokens)
		case anthropic.ContentBlockStartEvent:
			switch block := ev.ContentBlock.AsAny().(type) {
			case anthropic.ToolUseBlock:
				return model.ToolUseChunk{ID: block.ID, Name: block.Name}, nil
			}
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				return model.TextChunk{Delta: delta.Text}, nil
			case anthropic.InputJSONDelta:
				return model.ToolUseChunk{Args: delta.PartialJSON}, nil
			}
		}
	}
	if err := d.stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic streaming error: %w", err)
	}
	d.usage.ElapsedSeconds = time.Since(d.start).Seconds()
	return nil, io.EOF
}

func (d *streamDecoder) Usage() core.Usage { return d.usage }

func (d *streamDecoder) Close() error { return d.stream.Close() }
