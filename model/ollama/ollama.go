// Package ollama provides a model.Model implementation backed by a local
// Ollama server. The Ollama chat API delivers responses through a callback;
// the adapter bridges that push model into the pull-based chunk stream.
package ollama

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/ollama/ollama/api"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/internal/jsonutil"
	"github.com/hupe1980/agentlite/model"
	"github.com/hupe1980/agentlite/tool"
)

// Options configure the Ollama model adapter.
type Options struct {
	Model       string
	Temperature float64
	// MaxTokens maps to the num_predict option.
	MaxTokens int64
	// BaseURL overrides OLLAMA_HOST when set.
	BaseURL string
}

// Model wraps the Ollama chat API behind the generic model.Model interface.
type Model struct {
	client *api.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new Ollama model. Without a BaseURL the client is
// configured from the environment (OLLAMA_HOST).
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       "llama3.2",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var client *api.Client
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		client = api.NewClient(u, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a new Ollama model from an existing client.
func NewModelFromClient(client *api.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       "llama3.2",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate performs one blocking chat call and classifies the reply as text
// or tool use.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	chatReq, err := m.buildRequest(req, false)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var text strings.Builder
	var calls []model.Call
	usage := core.Usage{Model: m.opts.Model}
	err = m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		for _, tc := range resp.Message.ToolCalls {
			call, err := convertCall(tc)
			if err != nil {
				return err
			}
			calls = append(calls, call)
		}
		if resp.Done {
			usage.InputTokens = resp.PromptEvalCount
			usage.OutputTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama api error: %w", err)
	}
	usage.ElapsedSeconds = time.Since(start).Seconds()

	var completion model.Completion
	if len(calls) > 0 {
		completion = model.ToolUse{Calls: calls}
	} else {
		completion = model.Text{Content: text.String()}
	}
	return &model.Response{Completion: completion, Usage: usage}, nil
}

// Stream performs one streaming chat call. Ollama emits tool calls whole, so
// each arrives as a single fully-populated fragment.
func (m *Model) Stream(ctx context.Context, req model.Request) (*model.Stream, error) {
	chatReq, err := m.buildRequest(req, true)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	d := &streamDecoder{
		chunks: make(chan model.Chunk, 32),
		errs:   make(chan error, 1),
		cancel: cancel,
		usage:  core.Usage{Model: m.opts.Model},
	}
	start := time.Now()
	go func() {
		defer close(d.chunks)
		err := m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
			if resp.Message.Content != "" {
				if err := d.send(ctx, model.TextChunk{Delta: resp.Message.Content}); err != nil {
					return err
				}
			}
			for _, tc := range resp.Message.ToolCalls {
				call, err := convertCall(tc)
				if err != nil {
					return err
				}
				args, err := jsonutil.MarshalString(call.Args)
				if err != nil {
					return fmt.Errorf("encode arguments for tool %q: %w", call.Name, err)
				}
				chunk := model.ToolUseChunk{ID: call.ID, Name: call.Name, Args: args}
				if err := d.send(ctx, chunk); err != nil {
					return err
				}
			}
			if resp.Done {
				d.usage.InputTokens = resp.PromptEvalCount
				d.usage.OutputTokens = resp.EvalCount
				d.usage.ElapsedSeconds = time.Since(start).Seconds()
			}
			return nil
		})
		if err != nil && !d.closed.Load() {
			d.errs <- fmt.Errorf("ollama streaming error: %w", err)
		}
	}()
	return model.NewStream(d), nil
}

// Info returns metadata describing this Ollama model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "ollama",
		SupportsTools: true,
	}
}

func (m *Model) buildRequest(req model.Request, stream bool) (*api.ChatRequest, error) {
	temperature := m.opts.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := m.opts.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	tools, err := buildTools(req.Tools)
	if err != nil {
		return nil, err
	}
	return &api.ChatRequest{
		Model:    m.opts.Model,
		Messages: buildMessages(req.Messages),
		Options: map[string]any{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
		Tools:  tools,
		Stream: &stream,
	}, nil
}

// buildMessages converts normalized messages to the Ollama API format.
func buildMessages(messages []core.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		converted := api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if msg.Role == core.RoleAssistant && len(msg.ToolCalls) > 0 {
			for _, call := range msg.ToolCalls {
				var args api.ToolCallFunctionArguments
				if call.Function.Arguments != "" {
					_ = jsonutil.UnmarshalString(call.Function.Arguments, &args)
				}
				converted.ToolCalls = append(converted.ToolCalls, api.ToolCall{
					ID: call.ID,
					Function: api.ToolCallFunction{
						Name:      call.Function.Name,
						Arguments: args,
					},
				})
			}
		}
		if msg.Role == core.RoleTool {
			converted.ToolCallID = msg.ToolCallID
		}
		out = append(out, converted)
	}
	return out
}

// buildTools converts tool definitions via a JSON round trip, which sidesteps
// the SDK's nested schema struct types.
func buildTools(tools []tool.Tool) ([]api.Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	specs := make([]map[string]any, len(tools))
	for i, t := range tools {
		specs[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  t.Parameters(),
			},
		}
	}
	raw, err := jsonutil.Marshal(specs)
	if err != nil {
		return nil, fmt.Errorf("marshal tools: %w", err)
	}
	var out []api.Tool
	if err := jsonutil.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("convert tools: %w", err)
	}
	return out, nil
}

// convertCall maps an API tool call to the normalized form. Ollama parses the
// arguments server side; the round trip turns them into a plain map.
func convertCall(tc api.ToolCall) (model.Call, error) {
	args := map[string]any{}
	raw, err := jsonutil.Marshal(tc.Function.Arguments)
	if err != nil {
		return model.Call{}, fmt.Errorf("encode arguments for tool %q: %w", tc.Function.Name, err)
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := jsonutil.Unmarshal(raw, &args); err != nil {
			return model.Call{}, fmt.Errorf("decode arguments for tool %q: %w", tc.Function.Name, err)
		}
	}
	id := tc.ID
	if id == "" {
		id, _ = gonanoid.New()
	}
	return model.Call{ID: id, Name: tc.Function.Name, Args: args}, nil
}

// streamDecoder bridges the callback-driven chat stream into pull-based
// chunks. The producer goroutine closes the chunk channel when the call
// returns; a buffered error slot survives the close.
type streamDecoder struct {
	chunks chan model.Chunk
	errs   chan error
	cancel context.CancelFunc
	closed atomic.Bool
	usage  core.Usage
}

func (d *streamDecoder) send(ctx context.Context, chunk model.Chunk) error {
	select {
	case d.chunks <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *streamDecoder) Next() (model.Chunk, error) {
	chunk, ok := <-d.chunks
	if !ok {
		d.cancel()
		select {
		case err := <-d.errs:
			return nil, err
		default:
			return nil, io.EOF
		}
	}
	return chunk, nil
}

func (d *streamDecoder) Usage() core.Usage { return d.usage }

func (d *streamDecoder) Close() error {
	d.closed.Store(true)
	d.cancel()
	return nil
}
