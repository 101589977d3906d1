package model

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/internal/jsonutil"
)

// Outcome scripts the result of a single MockModel call.
type Outcome struct {
	// Completion is the result of the call. Nil yields an empty response,
	// which is useful for exercising contract-violation handling.
	Completion Completion
	// Chunks overrides the synthesized fragments for Stream calls.
	Chunks []Chunk
	// Usage is attached to the response and reported by the stream.
	Usage core.Usage
	// Err is returned instead of any result.
	Err error
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Scripted outcomes are consumed in FIFO order, one per call; once the script
// runs dry the mock echoes the last input message as a canned text reply.
type MockModel struct {
	info Info

	mu       sync.Mutex
	outcomes []Outcome
	requests []Request
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{Name: name, Provider: provider, SupportsTools: true},
	}
}

// Enqueue appends scripted outcomes, one per upcoming call.
func (m *MockModel) Enqueue(outcomes ...Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcomes...)
}

// EnqueueText scripts a plain text reply.
func (m *MockModel) EnqueueText(content string) {
	m.Enqueue(Outcome{Completion: Text{Content: content}})
}

// EnqueueToolUse scripts a tool-use reply.
func (m *MockModel) EnqueueToolUse(calls ...Call) {
	m.Enqueue(Outcome{Completion: ToolUse{Calls: calls}})
}

// EnqueueError scripts a failing call.
func (m *MockModel) EnqueueError(err error) {
	m.Enqueue(Outcome{Err: err})
}

// Requests returns a copy of the inputs of all calls so far, in order.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

func (m *MockModel) next(req Request) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.outcomes) == 0 {
		last := ""
		if n := len(req.Messages); n > 0 {
			last = req.Messages[n-1].Content
		}
		return Outcome{Completion: Text{Content: fmt.Sprintf("Mock response to: %s", last)}}
	}
	o := m.outcomes[0]
	m.outcomes = m.outcomes[1:]
	return o
}

// Generate implements Model. Outcome.Chunks only affects Stream calls.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := m.next(req)
	if o.Err != nil {
		return nil, o.Err
	}
	return &Response{Completion: o.Completion, Usage: o.Usage}, nil
}

// Stream implements Model; text completions stream rune by rune unless the
// outcome scripts explicit chunks.
func (m *MockModel) Stream(ctx context.Context, req Request) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := m.next(req)
	if o.Err != nil {
		return nil, o.Err
	}
	chunks := o.Chunks
	if chunks == nil {
		chunks = synthesizeChunks(o.Completion)
	}
	return NewStream(&mockDecoder{chunks: chunks, usage: o.Usage}), nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

func synthesizeChunks(comp Completion) []Chunk {
	switch c := comp.(type) {
	case Text:
		chunks := make([]Chunk, 0, len(c.Content))
		for _, r := range c.Content {
			chunks = append(chunks, TextChunk{Delta: string(r)})
		}
		return chunks
	case ToolUse:
		chunks := make([]Chunk, 0, len(c.Calls))
		for _, call := range c.Calls {
			args := "{}"
			if len(call.Args) > 0 {
				if s, err := jsonutil.MarshalString(call.Args); err == nil {
					args = s
				}
			}
			chunks = append(chunks, ToolUseChunk{ID: call.ID, Name: call.Name, Args: args})
		}
		return chunks
	}
	return nil
}

type mockDecoder struct {
	chunks []Chunk
	pos    int
	usage  core.Usage
}

func (d *mockDecoder) Next() (Chunk, error) {
	if d.pos >= len(d.chunks) {
		return nil, io.EOF
	}
	c := d.chunks[d.pos]
	d.pos++
	return c, nil
}

func (d *mockDecoder) Usage() core.Usage { return d.usage }

func (d *mockDecoder) Close() error {
	d.pos = len(d.chunks)
	return nil
}
