package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/ledger"
)

func seedLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	l := ledger.New()
	require.NoError(t, l.AddSystemStep(core.NewSystemMessage("be brief")))
	require.NoError(t, l.AddHumanStep(core.NewUserMessage("what is the capital of France?")))
	require.NoError(t, l.AddAnswerStep(core.NewAssistantMessage("Paris."), &core.Usage{
		Model:        "gpt-4o-mini",
		InputTokens:  12,
		OutputTokens: 3,
	}))

	return l
}

// -------------------- Get Tests --------------------

func TestGetUnknownSessionReturnsEmptyLedger(t *testing.T) {
	store := NewInMemoryStore()

	l, err := store.Get("missing")
	require.NoError(t, err)
	assert.Zero(t, l.Len())
}

func TestGetReturnsSnapshot(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("s1", seedLedger(t)))

	first, err := store.Get("s1")
	require.NoError(t, err)
	require.NoError(t, first.AddHumanStep(core.NewUserMessage("and Germany?")))

	second, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, 3, second.Len(), "mutating a returned ledger must not touch the store")
}

// -------------------- Save Tests --------------------

func TestSaveAndGetRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("s1", seedLedger(t)))

	got, err := store.Get("s1")
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())

	steps := got.Steps()
	assert.Equal(t, "be brief", steps[0].(ledger.SystemStep).Prompt)
	assert.Equal(t, "what is the capital of France?", steps[1].(ledger.HumanStep).Text)

	answer := steps[2].(ledger.AnswerStep)
	assert.Equal(t, "Paris.", answer.Message)
	require.NotNil(t, answer.Usage)
	assert.Equal(t, 12, answer.Usage.InputTokens)
}

func TestSaveSnapshotsLedger(t *testing.T) {
	store := NewInMemoryStore()
	l := seedLedger(t)
	require.NoError(t, store.Save("s1", l))

	require.NoError(t, l.AddHumanStep(core.NewUserMessage("and Germany?")))

	got, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len(), "mutating the saved ledger must not touch the store")
}

func TestSaveOverwrites(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("s1", seedLedger(t)))
	require.NoError(t, store.Save("s1", ledger.New()))

	got, err := store.Get("s1")
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestSavePreservesSummary(t *testing.T) {
	store := NewInMemoryStore()
	l := seedLedger(t)
	l.SetSummary("capital lookup")
	require.NoError(t, store.Save("s1", l))

	got, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "capital lookup", got.Summary())
}

// -------------------- Delete Tests --------------------

func TestDeleteRemovesSession(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("s1", seedLedger(t)))

	require.NoError(t, store.Delete("s1"))

	got, err := store.Get("s1")
	require.NoError(t, err)
	assert.Zero(t, got.Len())

	require.NoError(t, store.Delete("s1"), "deleting an unknown id is a no-op")
}
