package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- EventStream Tests --------------------

func TestEventStreamOf(t *testing.T) {
	stream := EventStreamOf(
		TextDelta{Delta: "he"},
		TextDelta{Delta: "llo"},
		TextFinal{Content: "hello"},
	)
	defer stream.Close()

	var got []Event
	for stream.Next() {
		got = append(got, stream.Current())
	}

	require.NoError(t, stream.Err())
	require.Len(t, got, 3)
	assert.Equal(t, TextDelta{Delta: "he"}, got[0])
	assert.Equal(t, TextFinal{Content: "hello"}, got[2])
}

func TestEventStreamError(t *testing.T) {
	boom := errors.New("producer failed")
	stream := NewEventStream(func(yield func(Event, error) bool) {
		if !yield(TextDelta{Delta: "par"}, nil) {
			return
		}
		yield(nil, boom)
	})
	defer stream.Close()

	require.True(t, stream.Next())
	assert.Equal(t, TextDelta{Delta: "par"}, stream.Current())

	assert.False(t, stream.Next())
	assert.ErrorIs(t, stream.Err(), boom)

	// Terminal: further Next calls stay false.
	assert.False(t, stream.Next())
}

func TestEventStreamCloseStopsProducer(t *testing.T) {
	produced := 0
	stream := NewEventStream(func(yield func(Event, error) bool) {
		for {
			produced++
			if !yield(TextDelta{Delta: "x"}, nil) {
				return
			}
		}
	})

	require.True(t, stream.Next())
	stream.Close()

	assert.False(t, stream.Next())
	assert.NoError(t, stream.Err())
	assert.Equal(t, 1, produced, "producer only advances while Next is in flight")
}

func TestEventStreamCollect(t *testing.T) {
	stream := EventStreamOf(
		ToolCall{ID: "call_1", Name: "echo"},
		ToolResult{ID: "call_1", Name: "echo", Content: "hi"},
		TextFinal{Content: "done"},
	)

	events, err := stream.Collect()

	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.IsType(t, TextFinal{}, events[2])
}

func TestEventStreamCollectPartialOnError(t *testing.T) {
	boom := errors.New("mid-stream failure")
	stream := NewEventStream(func(yield func(Event, error) bool) {
		if !yield(TextDelta{Delta: "a"}, nil) {
			return
		}
		yield(nil, boom)
	})

	events, err := stream.Collect()

	assert.ErrorIs(t, err, boom)
	require.Len(t, events, 1)
	assert.Equal(t, TextDelta{Delta: "a"}, events[0])
}

func TestFailedEventStream(t *testing.T) {
	boom := errors.New("no model configured")
	stream := FailedEventStream(boom)

	assert.False(t, stream.Next())
	assert.ErrorIs(t, stream.Err(), boom)
}
