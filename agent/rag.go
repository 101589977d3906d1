package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/ledger"
	"github.com/hupe1980/agentlite/logging"
	"github.com/hupe1980/agentlite/model"
	"github.com/hupe1980/agentlite/prompt"
	"github.com/hupe1980/agentlite/retrieval"
)

const (
	// DefaultTopK is the number of passages fetched per query.
	DefaultTopK = 5
	// DefaultThreshold is the minimum similarity a passage must reach.
	DefaultThreshold = 0.8
)

// RAGOptions configure a RAG agent.
type RAGOptions struct {
	// Description summarizes the agent's capabilities for routing catalogs.
	Description string

	// SystemPrompt replaces the built-in retrieval answering prompt.
	SystemPrompt string

	// TopK is the number of passages fetched per query. Defaults to
	// DefaultTopK.
	TopK int

	// Threshold is the minimum similarity, in [0, 1], a passage must reach
	// to be injected. Defaults to DefaultThreshold.
	Threshold float64

	// MaxIterations is the model-call budget of one run.
	MaxIterations int

	// Stream switches the agent to incremental event delivery.
	Stream bool

	// Temperature overrides the provider default when non-nil.
	Temperature *float64

	// MaxTokens caps reply length when non-nil.
	MaxTokens *int64

	// Logger receives structured run diagnostics.
	Logger logging.Logger

	// Ledger is the record the run appends to. A fresh one is created when
	// nil.
	Ledger *ledger.Ledger
}

// RAG is an Agent that grounds its answers in retrieved passages: before the
// first model call it embeds the user's question, fetches the most similar
// passages above the similarity threshold and injects them into the question.
// Retrieval failures degrade to an empty context instead of failing the run,
// and the retrieval outcome is always recorded in the ledger.
type RAG struct {
	*Agent

	embedder  retrieval.Embedder
	retriever retrieval.Retriever
	topK      int
	threshold float64
}

// NewRAG constructs a retrieval-augmented agent. It runs without tools; the
// model answers from the injected context alone.
func NewRAG(name string, llm model.Model, embedder retrieval.Embedder, retriever retrieval.Retriever, optFns ...func(o *RAGOptions)) (*RAG, error) {
	if embedder == nil {
		return nil, errors.New("embedder must not be nil")
	}
	if retriever == nil {
		return nil, errors.New("retriever must not be nil")
	}

	opts := RAGOptions{
		SystemPrompt:  prompt.RAGAnswer,
		TopK:          DefaultTopK,
		Threshold:     DefaultThreshold,
		MaxIterations: DefaultMaxIterations,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.TopK < 1 {
		return nil, errors.New("top k must be at least 1")
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, errors.New("threshold must be between 0 and 1")
	}

	base, err := NewAgent(name, llm, func(o *Options) {
		if opts.Description != "" {
			o.Description = opts.Description
		}
		o.SystemPrompt = opts.SystemPrompt
		o.MaxIterations = opts.MaxIterations
		o.Stream = opts.Stream
		o.Temperature = opts.Temperature
		o.MaxTokens = opts.MaxTokens
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
		o.Ledger = opts.Ledger
	})
	if err != nil {
		return nil, err
	}

	return &RAG{
		Agent:     base,
		embedder:  embedder,
		retriever: retriever,
		topK:      opts.TopK,
		threshold: opts.Threshold,
	}, nil
}

// Run retrieves context for the trailing user message, injects it and then
// executes the standard loop. The ledger records the retrieval outcome, the
// system prompt and the original question, in that order.
func (r *RAG) Run(ctx context.Context, messages []core.Message) (*Output, error) {
	if len(messages) == 0 {
		return nil, errors.New("at least one message is required")
	}
	last := messages[len(messages)-1]
	if last.Role != core.RoleUser {
		return nil, fmt.Errorf("last message must be user input, got role %q", last.Role)
	}

	query := last.Content
	chunks := r.retrieve(ctx, query)
	r.ledger.AddRetrievalStep(query, chunks)
	if len(chunks) == 0 {
		r.logger.Warn("rag.no_context", "agent", r.name, "query", query)
	}

	msgs := r.prepare(messages)
	_ = r.ledger.AddHumanStep(last)

	items := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		items = append(items, chunk.Content)
	}
	msgs[len(msgs)-1] = core.NewUserMessage(prompt.AugmentQuery(prompt.RenderContext(items), query))

	r.logger.Info("rag.run.start", "agent", r.name, "chunks", len(chunks), "stream", r.stream)

	return r.execute(ctx, msgs)
}

// retrieve embeds the query and fetches passages above the similarity
// threshold. Failures are logged and degrade to no context.
func (r *RAG) retrieve(ctx context.Context, query string) []ledger.RetrievedChunk {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("rag.embed.error", "agent", r.name, "error", err)
		return nil
	}

	results, err := r.retriever.Query(ctx, embedding, r.topK, r.threshold)
	if err != nil {
		r.logger.Warn("rag.retrieve.error", "agent", r.name, "error", err)
		return nil
	}

	chunks := make([]ledger.RetrievedChunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, ledger.RetrievedChunk{
			Content:    res.Content,
			Similarity: res.Similarity,
			Metadata:   res.Metadata,
		})
	}
	return chunks
}
