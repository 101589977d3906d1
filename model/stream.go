package model

import (
	"errors"
	"io"

	"github.com/hupe1980/agentlite/core"
)

// Chunk is the closed union of fragments a streaming model call yields.
type Chunk interface {
	isChunk()
}

// TextChunk is an incremental piece of assistant text.
type TextChunk struct {
	// Delta is the text fragment, possibly empty.
	Delta string `json:"delta"`
}

func (TextChunk) isChunk() {}

// ToolUseChunk is an incremental piece of a tool call. Providers split the
// identifier, name and serialized arguments across fragments. A fragment
// carrying an id opens the next call; id-less fragments extend the current
// one, with name and argument pieces concatenated in arrival order.
type ToolUseChunk struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	// Args is a fragment of the serialized JSON argument object.
	Args string `json:"args,omitempty"`
}

func (ToolUseChunk) isChunk() {}

// ChunkDecoder is the provider-side source a Stream pulls from. Adapters
// implement it on top of their SDK's event stream.
type ChunkDecoder interface {
	// Next returns the next chunk. It returns io.EOF after the final chunk
	// and any other error on transport failure.
	Next() (Chunk, error)

	// Usage reports the call's token accounting. Providers deliver usage at
	// the end of the stream, so it is only meaningful after Next returned
	// io.EOF.
	Usage() core.Usage

	// Close releases the underlying connection.
	Close() error
}

// Stream is a pull-based, single-pass sequence of chunks from one streaming
// model call. It is not safe for concurrent use.
type Stream struct {
	dec ChunkDecoder

	cur  Chunk
	err  error
	done bool
}

// NewStream wraps a decoder.
func NewStream(dec ChunkDecoder) *Stream {
	return &Stream{dec: dec}
}

// Next advances to the next chunk, returning false at the end of the stream
// or on error.
func (s *Stream) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	chunk, err := s.dec.Next()
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}
	s.cur = chunk
	return true
}

// Current returns the chunk produced by the last successful Next call.
func (s *Stream) Current() Chunk { return s.cur }

// Err returns the transport error that ended the stream, nil on clean EOF.
func (s *Stream) Err() error { return s.err }

// Usage reports the call's token accounting, meaningful once Next returned
// false without error.
func (s *Stream) Usage() core.Usage { return s.dec.Usage() }

// Close releases the underlying connection. It is safe to call multiple
// times.
func (s *Stream) Close() error {
	s.done = true
	return s.dec.Close()
}
