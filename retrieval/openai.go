package retrieval

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// DefaultEmbeddingModel is used when no model is configured.
const DefaultEmbeddingModel = openai.EmbeddingModelTextEmbedding3Small

// OpenAIEmbedderOptions configure the OpenAI embedder.
type OpenAIEmbedderOptions struct {
	// Model selects the embedding model.
	Model openai.EmbeddingModel
	// Dimensions truncates the output vectors when > 0. Only supported by
	// the text-embedding-3 family.
	Dimensions int64
}

// OpenAIEmbedder implements Embedder using the OpenAI Embeddings API. Batch
// requests go out as a single API call.
type OpenAIEmbedder struct {
	client *openai.Client
	opts   OpenAIEmbedderOptions
}

// NewOpenAIEmbedder creates an embedder using the official client configured
// from the environment (OPENAI_API_KEY).
func NewOpenAIEmbedder(optFns ...func(o *OpenAIEmbedderOptions)) *OpenAIEmbedder {
	client := openai.NewClient()
	return NewOpenAIEmbedderFromClient(&client, optFns...)
}

// NewOpenAIEmbedderFromClient creates an embedder from an existing client.
func NewOpenAIEmbedderFromClient(client *openai.Client, optFns ...func(o *OpenAIEmbedderOptions)) *OpenAIEmbedder {
	opts := OpenAIEmbedderOptions{
		Model: DefaultEmbeddingModel,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &OpenAIEmbedder{client: client, opts: opts}
}

// Embed returns the embedding vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds all texts in one round trip, preserving input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: e.opts.Model,
	}
	if e.opts.Dimensions > 0 {
		params.Dimensions = openai.Int(e.opts.Dimensions)
	}
	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[int(d.Index)] = vec
	}
	return out, nil
}
