package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	vec, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return vec, nil
}

type fakeBatchEmbedder struct {
	fakeEmbedder
	batchCalls int
}

func (f *fakeBatchEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

// -------------------- Index Tests --------------------

func TestIndexEmbedsAndStores(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"go is compiled":      {1, 0},
		"python is dynamic":   {0, 1},
		"what language is go": {1, 0},
	}}

	docs := []Document{
		{Content: "go is compiled"},
		{Content: "python is dynamic"},
	}
	require.NoError(t, Index(ctx, s, embedder, docs))
	assert.Equal(t, 2, embedder.calls)

	query, err := embedder.Embed(ctx, "what language is go")
	require.NoError(t, err)
	results, err := s.Query(ctx, query, 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "go is compiled", results[0].Content)
}

func TestIndexEmptyDocs(t *testing.T) {
	embedder := &fakeEmbedder{}

	require.NoError(t, Index(context.Background(), NewInMemoryStore(), embedder, nil))
	assert.Zero(t, embedder.calls)
}

func TestIndexPropagatesEmbedError(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}

	err := Index(context.Background(), NewInMemoryStore(), embedder, []Document{{Content: "missing"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `embed text 0`)
}

// -------------------- EmbedAll Tests --------------------

func TestEmbedAllPrefersBatch(t *testing.T) {
	embedder := &fakeBatchEmbedder{fakeEmbedder: fakeEmbedder{vectors: map[string][]float32{
		"one": {1, 0},
		"two": {0, 1},
	}}}

	embeddings, err := EmbedAll(context.Background(), embedder, []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{1, 0}, embeddings[0])
	assert.Equal(t, []float32{0, 1}, embeddings[1])
	assert.Equal(t, 1, embedder.batchCalls)
	assert.Zero(t, embedder.calls, "batch embedders must not fall back to one call per text")
}

func TestEmbedAllFallsBackPerText(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"one": {1, 0},
		"two": {0, 1},
	}}

	embeddings, err := EmbedAll(context.Background(), embedder, []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, 2, embedder.calls)
}
