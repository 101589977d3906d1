package agent

import "github.com/hupe1980/agentlite/core"

// Output is the result of an agent run. Exactly one of Events and Stream is
// set: blocking runs materialize their events up front, streaming runs hand
// back the live stream for the caller to drive.
type Output struct {
	Events []core.Event
	Stream *core.EventStream
}

// Streaming reports whether the output carries a live stream.
func (o *Output) Streaming() bool { return o.Stream != nil }

// Collect returns all events of the run in emission order. Blocking outputs
// return the materialized slice; streaming outputs drain and close the
// stream, so Collect consumes it.
func (o *Output) Collect() ([]core.Event, error) {
	if o.Stream != nil {
		return o.Stream.Collect()
	}
	return o.Events, nil
}

// Text drains the output and returns the text of its terminal event, either
// the assembled answer or the iteration-budget notice.
func (o *Output) Text() (string, error) {
	events, err := o.Collect()
	if err != nil {
		return "", err
	}
	for i := len(events) - 1; i >= 0; i-- {
		switch ev := events[i].(type) {
		case core.TextFinal:
			return ev.Content, nil
		case core.MaxStepsReached:
			return ev.Content, nil
		}
	}
	return "", nil
}
