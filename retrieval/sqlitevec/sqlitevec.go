//go:build cgo

// Package sqlitevec provides a persistent retrieval.Store backed by SQLite
// with the sqlite-vec extension. Embeddings live in a vec0 virtual table with
// cosine distance; passage text and metadata live in a companion table sharing
// the document id.
package sqlitevec

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hupe1980/agentlite/core"
	"github.com/hupe1980/agentlite/internal/jsonutil"
	"github.com/hupe1980/agentlite/retrieval"
)

func init() {
	// Auto-register sqlite-vec extension
	sqlite_vec.Auto()
}

// DefaultTable is the table name used when none is configured.
const DefaultTable = "documents"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options configure the sqlite-vec store.
type Options struct {
	// Table names the document table. The vector table gets a "_vec" suffix.
	Table string
}

// Store implements retrieval.Store on a SQLite database. One Store handles one
// collection with a fixed embedding dimension.
type Store struct {
	db    *sql.DB
	table string
	dim   int
}

var _ retrieval.Store = (*Store)(nil)

// Open opens (or creates) the database at path and prepares the schema for
// vectors of the given dimension. Use ":memory:" for a throwaway index.
func Open(path string, dimension int, optFns ...func(o *Options)) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("path must not be empty")
	}
	if dimension < 1 {
		return nil, fmt.Errorf("dimension must be at least 1, got %d", dimension)
	}
	opts := Options{
		Table: DefaultTable,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if !tableName.MatchString(opts.Table) {
		return nil, fmt.Errorf("invalid table name %q", opts.Table)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db, table: opts.Table, dim: dimension}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			metadata TEXT
		);
		CREATE VIRTUAL TABLE IF NOT EXISTS %[1]s_vec USING vec0(
			document_id TEXT PRIMARY KEY,
			embedding float[%[2]d] distance_metric=cosine
		);
	`, s.table, s.dim)
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add indexes documents alongside their embeddings in one transaction.
// Documents without an id get a generated one; an existing id replaces the
// previous entry.
func (s *Store) Add(ctx context.Context, docs []retrieval.Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("got %d documents but %d embeddings", len(docs), len(embeddings))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	for i, doc := range docs {
		embedding := embeddings[i]
		if len(embedding) != s.dim {
			return fmt.Errorf("document %d has dimension %d, index has %d", i, len(embedding), s.dim)
		}
		id := doc.ID
		if id == "" {
			id = core.NewID()
		}
		var metadata any
		if doc.Metadata != nil {
			raw, err := jsonutil.MarshalString(doc.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata for document %d: %w", i, err)
			}
			metadata = raw
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT OR REPLACE INTO %s (id, content, metadata) VALUES (?, ?, ?)", s.table),
			id, doc.Content, metadata,
		); err != nil {
			return fmt.Errorf("insert document %d: %w", i, err)
		}
		vec, err := jsonutil.MarshalString(embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding for document %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("INSERT OR REPLACE INTO %s_vec (document_id, embedding) VALUES (?, ?)", s.table),
			id, vec,
		); err != nil {
			return fmt.Errorf("insert embedding for document %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Query ranks the index by cosine distance, keeps the topK nearest documents
// and drops those whose similarity falls below threshold.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int, threshold float64) ([]retrieval.Result, error) {
	if topK < 1 {
		return nil, fmt.Errorf("topK must be at least 1, got %d", topK)
	}
	if len(embedding) != s.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(embedding), s.dim)
	}
	vec, err := jsonutil.MarshalString(embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}
	query := fmt.Sprintf(`
		SELECT document_id, vec_distance_cosine(embedding, ?) AS distance
		FROM %s_vec
		ORDER BY distance ASC
		LIMIT ?
	`, s.table)
	rows, err := s.db.QueryContext(ctx, query, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	type hit struct {
		id         string
		similarity float64
	}
	var hits []hit
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, fmt.Errorf("scan vector row: %w", err)
		}
		similarity := 1 - distance
		if similarity < 0 {
			similarity = 0
		}
		if similarity >= threshold {
			hits = append(hits, hit{id: id, similarity: similarity})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]retrieval.Result, 0, len(hits))
	for _, h := range hits {
		content, metadata, err := s.fetchDocument(ctx, h.id)
		if err != nil {
			return nil, err
		}
		results = append(results, retrieval.Result{
			Content:    content,
			Metadata:   metadata,
			Similarity: h.similarity,
		})
	}
	return results, nil
}

func (s *Store) fetchDocument(ctx context.Context, id string) (string, map[string]any, error) {
	var content string
	var rawMetadata sql.NullString
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT content, metadata FROM %s WHERE id = ?", s.table),
		id,
	).Scan(&content, &rawMetadata)
	if err != nil {
		return "", nil, fmt.Errorf("fetch document %q: %w", id, err)
	}
	if !rawMetadata.Valid || rawMetadata.String == "" {
		return content, nil, nil
	}
	var metadata map[string]any
	if err := jsonutil.UnmarshalString(rawMetadata.String, &metadata); err != nil {
		return "", nil, fmt.Errorf("decode metadata for document %q: %w", id, err)
	}
	return content, metadata, nil
}
