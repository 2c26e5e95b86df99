// Package pgvector provides a PostgreSQL vector driver using the pgvector
// extension. Each collection is its own table.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

// Config holds configuration for the pgvector driver.
type Config struct {
	// ConnString is a PostgreSQL URI or keyword/value connection string.
	ConnString string

	// Dimensions is the vector size of new tables.
	Dimensions uint

	// Collection is the table name.
	Collection string
}

// Driver implements vector.Driver on one PostgreSQL table.
type Driver struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

// NewPool connects to PostgreSQL and makes sure the vector extension exists.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	if connString == "" {
		return nil, errors.New("postgres connection string is required")
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", vector.ErrConnection, err)
	}

	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("enabling pgvector: %w", err)
	}

	return pool, nil
}

// NewDriver creates the collection table on pool if needed.
func NewDriver(ctx context.Context, pool *pgxpool.Pool, c Config, logger *slog.Logger) (*Driver, error) {
	if err := vector.ValidateCollection(c.Collection); err != nil {
		return nil, err
	}
	if c.Dimensions == 0 {
		return nil, errors.New("pgvector embedding dimensions cannot be 0, must be configured")
	}

	table := pgx.Identifier{c.Collection}.Sanitize()
	_, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			doc_id TEXT PRIMARY KEY,
			content TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d) NOT NULL
		)
	`, table, c.Dimensions))
	if err != nil {
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}

	logger.Info("pgvector driver initialized",
		"table", c.Collection,
		"dimensions", c.Dimensions,
	)

	return &Driver{
		pool:   pool,
		table:  table,
		logger: logger,
	}, nil
}

// NewOpener connects once and returns a vector.Opener whose drivers share
// the pool. The returned close function releases it.
func NewOpener(ctx context.Context, c Config, logger *slog.Logger) (vector.Opener, func() error, error) {
	pool, err := NewPool(ctx, c.ConnString)
	if err != nil {
		return nil, nil, err
	}

	open := func(ctx context.Context, collection string) (vector.Driver, error) {
		cfg := c
		cfg.Collection = collection
		return NewDriver(ctx, pool, cfg, logger)
	}
	closeFn := func() error {
		pool.Close()
		return nil
	}
	return open, closeFn, nil
}

// Add upserts documents with their embeddings in one batch.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, doc := range docs {
		meta, err := vector.EncodeMetadata(doc.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for doc %s: %w", doc.ID, err)
		}
		batch.Queue(fmt.Sprintf(`
			INSERT INTO %s (doc_id, content, metadata, embedding)
			VALUES ($1, $2, $3::jsonb, $4)
			ON CONFLICT (doc_id) DO UPDATE
			SET content = EXCLUDED.content,
				metadata = EXCLUDED.metadata,
				embedding = EXCLUDED.embedding
		`, d.table), doc.ID, doc.Content, string(meta), pgv.NewVector(doc.Embedding))
	}

	if err := d.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting documents: %w", err)
	}

	d.logger.Debug("added documents to pgvector",
		"table", d.table,
		"count", len(docs),
	)

	return nil
}

// Query finds the topK most similar documents by cosine distance.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	rows, err := d.pool.Query(ctx, fmt.Sprintf(`
		SELECT doc_id, content, metadata::text, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, d.table), pgv.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	results := []vector.QueryResult{}
	for rows.Next() {
		var r vector.QueryResult
		var meta string
		var score float64
		if err := rows.Scan(&r.ID, &r.Content, &meta, &score); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}
		r.Metadata = vector.DecodeMetadata([]byte(meta))
		r.Score = float32(score)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried pgvector",
		"table", d.table,
		"results", len(results),
	)

	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, fmt.Sprintf(`
		SELECT doc_id, content, metadata::text, embedding::text
		FROM %s
		WHERE doc_id = ANY($1)
	`, d.table), ids)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := make([]vector.Document, 0, len(ids))
	for rows.Next() {
		var doc vector.Document
		var meta, emb string
		if err := rows.Scan(&doc.ID, &doc.Content, &meta, &emb); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		var v pgv.Vector
		if err := v.Parse(emb); err != nil {
			return nil, fmt.Errorf("parsing embedding for doc %s: %w", doc.ID, err)
		}
		doc.Embedding = v.Slice()
		doc.Metadata = vector.DecodeMetadata([]byte(meta))
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := d.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE doc_id = ANY($1)`, d.table), ids); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from pgvector",
		"table", d.table,
		"count", len(ids),
	)

	return nil
}

// Drop removes the collection table.
func (d *Driver) Drop(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, d.table)); err != nil {
		return fmt.Errorf("dropping %s: %w", d.table, err)
	}

	d.logger.Info("dropped pgvector table", "table", d.table)
	return nil
}

// Close is a no-op; the pool belongs to the opener.
func (d *Driver) Close() error {
	return nil
}

var _ vector.Driver = (*Driver)(nil)
