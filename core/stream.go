package core

import "iter"

// EventStream is a single-pass, pull-based sequence of events. The consumer
// drives it with the Next/Current pair; the producer only advances while a
// Next call is in flight, so abandoning the stream stops all upstream work:
//
//	stream := agentRun()
//	defer stream.Close()
//	for stream.Next() {
//		handle(stream.Current())
//	}
//	if err := stream.Err(); err != nil { ... }
//
// An EventStream is not safe for concurrent use.
type EventStream struct {
	next func() (Event, error, bool)
	stop func()

	cur  Event
	err  error
	done bool
}

// NewEventStream wraps a producer sequence. The producer yields events with a
// nil error; yielding a non-nil error terminates the stream and surfaces the
// error through Err.
func NewEventStream(seq iter.Seq2[Event, error]) *EventStream {
	next, stop := iter.Pull2(seq)
	return &EventStream{next: next, stop: stop}
}

// EventStreamOf builds a stream over an already materialized event list.
func EventStreamOf(events ...Event) *EventStream {
	return NewEventStream(func(yield func(Event, error) bool) {
		for _, ev := range events {
			if !yield(ev, nil) {
				return
			}
		}
	})
}

// FailedEventStream builds a stream that yields nothing and reports err.
func FailedEventStream(err error) *EventStream {
	return NewEventStream(func(yield func(Event, error) bool) {
		yield(nil, err)
	})
}

// Next advances the stream. It returns false when the sequence is exhausted,
// an error occurred, or the stream was closed; Err distinguishes the cases.
func (s *EventStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	ev, err, ok := s.next()
	if !ok {
		s.done = true
		return false
	}
	if err != nil {
		s.err = err
		s.done = true
		s.stop()
		return false
	}
	s.cur = ev
	return true
}

// Current returns the event produced by the last successful Next call.
func (s *EventStream) Current() Event { return s.cur }

// Err returns the error that terminated the stream, if any. It is only
// meaningful after Next has returned false.
func (s *EventStream) Err() error { return s.err }

// Close releases the producer. It is safe to call multiple times and after
// exhaustion.
func (s *EventStream) Close() {
	s.done = true
	s.stop()
}

// Collect drains the remaining events into a slice. On a producer error it
// returns the events received so far together with that error.
func (s *EventStream) Collect() ([]Event, error) {
	defer s.Close()
	var events []Event
	for s.Next() {
		events = append(events, s.Current())
	}
	return events, s.Err()
}
