package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/model"
)

func newConversationLedger(t *testing.T) *Ledger {
	t.Helper()

	l := New()
	require.NoError(t, l.AddSystemStep(core.NewSystemMessage("be helpful")))
	require.NoError(t, l.AddHumanStep(core.NewUserMessage("what is the weather in Berlin?")))
	require.NoError(t, l.AddToolStep(
		core.NewToolMessage(`{"temp":21}`, "get_weather", "call_1", map[string]any{"city": "Berlin"}), nil))
	require.NoError(t, l.AddAnswerStep(core.NewAssistantMessage("It is 21 degrees."), nil))
	l.AddRoutingStep("weather question", "weather", "{}", "", nil)
	return l
}

// -------------------- Transcript Tests --------------------

func TestTranscript(t *testing.T) {
	l := newConversationLedger(t)

	transcript := Transcript(l)

	assert.Equal(t,
		"Human: what is the weather in Berlin?\n"+
			"Tool get_weather: {\"temp\":21}\n"+
			"Assistant: It is 21 degrees.",
		transcript)
}

func TestTranscriptExcludesBookkeeping(t *testing.T) {
	l := New()
	require.NoError(t, l.AddSystemStep(core.NewSystemMessage("system prompt")))
	require.NoError(t, l.AddRetryStep(core.NewUserMessage("try again")))
	l.AddRoutingStep("fits", "math", "{}", "", nil)
	l.AddRetrievalStep("q", nil)

	assert.Empty(t, Transcript(l))
}

// -------------------- Summarizer Tests --------------------

func TestSummarize(t *testing.T) {
	mock := model.NewMockModel("mock-1", "mock")
	mock.EnqueueText("  The user asked about Berlin weather and got 21 degrees.  ")

	l := newConversationLedger(t)
	summarizer := NewSummarizer(mock)

	summary, err := summarizer.Summarize(context.Background(), l)

	require.NoError(t, err)
	assert.Equal(t, "The user asked about Berlin weather and got 21 degrees.", summary)
	assert.Equal(t, summary, l.Summary())

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Messages, 1)
	sent := reqs[0].Messages[0].Content
	assert.Contains(t, sent, "Human: what is the weather in Berlin?")
	assert.NotContains(t, sent, "be helpful", "system prompt stays out of the transcript")
}

func TestSummarizeEmptyLedgerSkipsModel(t *testing.T) {
	mock := model.NewMockModel("mock-1", "mock")
	summarizer := NewSummarizer(mock)

	summary, err := summarizer.Summarize(context.Background(), New())

	require.NoError(t, err)
	assert.Empty(t, summary)
	assert.Empty(t, mock.Requests(), "no transcript, no model call")
}

func TestSummarizeRejectsToolUseReply(t *testing.T) {
	mock := model.NewMockModel("mock-1", "mock")
	mock.EnqueueToolUse(model.Call{ID: "call_1", Name: "echo"})

	summarizer := NewSummarizer(mock)

	_, err := summarizer.Summarize(context.Background(), newConversationLedger(t))
	assert.ErrorIs(t, err, core.ErrAdapterContract)
}

func TestSummarizeCustomTemplate(t *testing.T) {
	mock := model.NewMockModel("mock-1", "mock")
	mock.EnqueueText("kurz")

	summarizer := NewSummarizer(mock, func(o *SummarizerOptions) {
		o.Template = "Fasse zusammen:\n%s"
	})

	_, err := summarizer.Summarize(context.Background(), newConversationLedger(t))
	require.NoError(t, err)

	sent := mock.Requests()[0].Messages[0].Content
	assert.Contains(t, sent, "Fasse zusammen:")
}
