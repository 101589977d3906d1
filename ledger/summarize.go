package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/logging"
	"github.com/hupe1980/agentlite/model"
	"github.com/hupe1980/agentlite/prompt"
)

// SummarizerOptions configures a Summarizer instance.
//
// Use functional options with NewSummarizer to override defaults.
type SummarizerOptions struct {
	// Template is the summarization prompt; its single format argument is the
	// rendered transcript.
	Template string
	// Logger receives diagnostic output. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Summarizer compresses a ledger's conversational steps into a short synopsis
// using an external model. Only human, answer and tool steps enter the
// transcript; system, retry, routing and retrieval steps are bookkeeping and
// stay out.
type Summarizer struct {
	llm  model.Model
	opts SummarizerOptions
}

// NewSummarizer creates a Summarizer backed by the given model.
func NewSummarizer(llm model.Model, optFns ...func(o *SummarizerOptions)) *Summarizer {
	opts := SummarizerOptions{
		Template: prompt.Summarize,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Summarizer{llm: llm, opts: opts}
}

// Summarize renders the ledger's transcript, asks the model for a synopsis
// and stores it on the ledger. An empty transcript short-circuits to an empty
// summary without a model call.
func (s *Summarizer) Summarize(ctx context.Context, l *Ledger) (string, error) {
	transcript := Transcript(l)
	if transcript == "" {
		l.SetSummary("")
		return "", nil
	}

	s.opts.Logger.Debug("ledger.summarize.start", "steps", l.Len())

	resp, err := s.llm.Generate(ctx, model.Request{
		Messages: []core.Message{
			core.NewUserMessage(fmt.Sprintf(s.opts.Template, transcript)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("ledger: summarize: %w", err)
	}

	text, ok := resp.Completion.(model.Text)
	if !ok {
		return "", fmt.Errorf("ledger: summarize: %w: completion %T", core.ErrAdapterContract, resp.Completion)
	}

	summary := strings.TrimSpace(text.Content)
	l.SetSummary(summary)

	s.opts.Logger.Info("ledger.summarize.done",
		"summary_len", len(summary),
		"tokens", resp.Usage.TotalTokens(),
	)

	return summary, nil
}

// Transcript renders the ledger's human, answer and tool steps as plain
// dialogue lines, one step per line.
func Transcript(l *Ledger) string {
	var b strings.Builder
	for _, step := range l.Steps() {
		switch s := step.(type) {
		case HumanStep:
			fmt.Fprintf(&b, "Human: %s\n", s.Text)
		case AnswerStep:
			fmt.Fprintf(&b, "Assistant: %s\n", s.Message)
		case ToolStep:
			fmt.Fprintf(&b, "Tool %s: %s\n", s.Name, s.Result)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
