// Package retrieval defines the embedding and vector-search contracts the
// retrieval-augmented agent consumes, together with an in-memory cosine index
// and provider-backed implementations.
package retrieval

import (
	"context"
	"fmt"
)

// Document is one passage of source material to index, with optional
// metadata carried through to query results.
type Document struct {
	ID       string         `json:"id,omitempty"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Result is one retrieved passage. Similarity is cosine similarity clamped to
// [0, 1], where 1 is an exact match.
type Result struct {
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Similarity float64        `json:"similarity"`
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever searches an indexed corpus by embedding vector.
type Retriever interface {
	// Query returns up to topK passages whose similarity reaches threshold,
	// most similar first.
	Query(ctx context.Context, embedding []float32, topK int, threshold float64) ([]Result, error)
}

// Store is a writable retrieval backend.
type Store interface {
	Retriever

	// Add indexes documents alongside their embeddings. Implementations
	// generate ids for documents that carry none.
	Add(ctx context.Context, docs []Document, embeddings [][]float32) error
}

// BatchEmbedder is implemented by embedders that can embed many texts in one
// round trip.
type BatchEmbedder interface {
	Embedder

	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedAll embeds all texts, batched when the embedder supports it and one
// call per text otherwise.
func EmbedAll(ctx context.Context, embedder Embedder, texts []string) ([][]float32, error) {
	if batch, ok := embedder.(BatchEmbedder); ok {
		return batch.EmbedBatch(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = embedding
	}
	return out, nil
}

// Index embeds the documents' contents and adds them to the store.
func Index(ctx context.Context, store Store, embedder Embedder, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	embeddings, err := EmbedAll(ctx, embedder, texts)
	if err != nil {
		return err
	}
	return store.Add(ctx, docs, embeddings)
}
