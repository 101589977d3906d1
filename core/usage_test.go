package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// -------------------- Usage Tests --------------------

func TestUsageAdd(t *testing.T) {
	total := Usage{}
	total.Add(Usage{Model: "gpt-4o-mini", InputTokens: 10, OutputTokens: 5, ElapsedSeconds: 0.4})
	total.Add(Usage{Model: "gpt-4o-mini", InputTokens: 20, OutputTokens: 15, ElapsedSeconds: 0.6})

	assert.Equal(t, "gpt-4o-mini", total.Model)
	assert.Equal(t, 30, total.InputTokens)
	assert.Equal(t, 20, total.OutputTokens)
	assert.InDelta(t, 1.0, total.ElapsedSeconds, 1e-9)
	assert.Equal(t, 50, total.TotalTokens())
}

func TestUsageAddMixedModels(t *testing.T) {
	total := Usage{}
	total.Add(Usage{Model: "gpt-4o-mini", InputTokens: 10})
	total.Add(Usage{Model: "claude-sonnet-4-0", InputTokens: 7})

	assert.Empty(t, total.Model, "mixed models collapse to an unnamed aggregate")
	assert.Equal(t, 17, total.InputTokens)
}
