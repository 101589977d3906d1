package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/hupe1980/agentlite/core"
)

// InMemoryStore is a process-local Store backed by a linear cosine scan. It
// keeps every embedding in memory and ranks the full corpus on each query,
// which is fine for tests, demos and small knowledge bases; swap in a vector
// database for anything larger.
//
// Concurrency: protected by RWMutex. Documents added with an id that already
// exists replace the previous entry.
type InMemoryStore struct {
	mu   sync.RWMutex
	dim  int
	docs []storedDoc
	byID map[string]int
}

type storedDoc struct {
	id        string
	content   string
	metadata  map[string]any
	embedding []float32
	norm      float64
}

// NewInMemoryStore creates an empty in-memory vector store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[string]int)}
}

// Add indexes documents alongside their embeddings. Documents without an id
// get a generated one. All embeddings must share one dimension, fixed by the
// first document ever added.
func (s *InMemoryStore) Add(_ context.Context, docs []Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("got %d documents but %d embeddings", len(docs), len(embeddings))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range docs {
		embedding := embeddings[i]
		if len(embedding) == 0 {
			return fmt.Errorf("document %d has an empty embedding", i)
		}
		if s.dim == 0 {
			s.dim = len(embedding)
		} else if len(embedding) != s.dim {
			return fmt.Errorf("document %d has dimension %d, index has %d", i, len(embedding), s.dim)
		}
		id := doc.ID
		if id == "" {
			id = core.NewID()
		}
		stored := storedDoc{
			id:        id,
			content:   doc.Content,
			metadata:  doc.Metadata,
			embedding: embedding,
			norm:      euclideanNorm(embedding),
		}
		if at, exists := s.byID[id]; exists {
			s.docs[at] = stored
			continue
		}
		s.byID[id] = len(s.docs)
		s.docs = append(s.docs, stored)
	}
	return nil
}

// Query ranks the whole corpus by cosine similarity, keeps the topK nearest
// documents and drops those below threshold.
func (s *InMemoryStore) Query(_ context.Context, embedding []float32, topK int, threshold float64) ([]Result, error) {
	if topK < 1 {
		return nil, fmt.Errorf("topK must be at least 1, got %d", topK)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding must not be empty")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dim != 0 && len(embedding) != s.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(embedding), s.dim)
	}
	queryNorm := euclideanNorm(embedding)
	scored := make([]Result, 0, len(s.docs))
	for _, doc := range s.docs {
		scored = append(scored, Result{
			Content:    doc.content,
			Metadata:   copyMetadata(doc.metadata),
			Similarity: cosineSimilarity(embedding, queryNorm, doc.embedding, doc.norm),
		})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Similarity > scored[j].Similarity })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	results := make([]Result, 0, len(scored))
	for _, r := range scored {
		if r.Similarity >= threshold {
			results = append(results, r)
		}
	}
	return results, nil
}

func euclideanNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosineSimilarity returns the cosine of the angle between a and b, clamped to
// [0, 1]. Zero vectors score 0.
func cosineSimilarity(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	sim := dot / (aNorm * bNorm)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

func copyMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
