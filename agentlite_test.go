package agentlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentlite/agent"
	"github.com/hupe1980/agentlite/model"
)

func TestAsk(t *testing.T) {
	mock := model.NewMockModel("mock", "test")
	mock.EnqueueText("Paris.")

	a, err := agent.NewAgent("geo", mock)
	require.NoError(t, err)

	answer, err := Ask(context.Background(), a, "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
}

func TestAskForcesBlockingDelivery(t *testing.T) {
	mock := model.NewMockModel("mock", "test")
	mock.EnqueueText("Paris.")

	a, err := agent.NewAgent("geo", mock, func(o *agent.Options) {
		o.Stream = true
	})
	require.NoError(t, err)

	answer, err := Ask(context.Background(), a, "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
}
