// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

// DefaultCollectionName is used when Config.Collection is empty.
const DefaultCollectionName = "ragbot"

// SQLiteVecDriver implements vector.Driver using SQLite with sqlite-vec.
// A collection is a pair of tables: <name>_documents and <name>_embeddings.
type SQLiteVecDriver struct {
	db         *sql.DB
	docsTable  string
	vecTable   string
	collection string
	logger     *slog.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint

	// Collection prefixes the tables of this driver.
	Collection string
}

// NewSQLiteVecDriver creates a new SQLite vector driver backed by sqlite-vec.
func NewSQLiteVecDriver(c Config, logger *slog.Logger) (*SQLiteVecDriver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, errors.New("database path is required")
	}

	dimensions := c.Dimensions
	if dimensions == 0 {
		return nil, errors.New("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	collection := c.Collection
	if collection == "" {
		collection = DefaultCollectionName
	}
	if err := vector.ValidateCollection(collection); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	d := &SQLiteVecDriver{
		db:         db,
		docsTable:  collection + "_documents",
		vecTable:   collection + "_embeddings",
		collection: collection,
		logger:     logger,
	}

	// vec0 virtual tables use integer rowids, so the documents table maps
	// string ids to rowids.
	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}'
		)
	`, d.docsTable))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(embedding float[%d] distance_metric=cosine)`,
		d.vecTable, dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector driver initialized",
		"db_path", c.DBPath,
		"collection", collection,
		"dimensions", dimensions,
		"vec_version", vecVersion,
	)

	return d, nil
}

// NewOpener returns a vector.Opener that creates table pairs in the database
// at c.DBPath.
func NewOpener(c Config, logger *slog.Logger) vector.Opener {
	return func(_ context.Context, collection string) (vector.Driver, error) {
		cfg := c
		cfg.Collection = collection
		return NewSQLiteVecDriver(cfg, logger)
	}
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeFloat32 converts a little-endian byte slice back to a float32 slice.
func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

func encodeMetadata(m map[string]any) (string, error) {
	b, err := vector.EncodeMetadata(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMetadata(s string) map[string]any {
	return vector.DecodeMetadata([]byte(s))
}

// Add stores documents with their embeddings.
// If a document with the same ID already exists, it is updated.
func (d *SQLiteVecDriver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		embBlob := serializeFloat32(doc.Embedding)
		meta, err := encodeMetadata(doc.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for doc %s: %w", doc.ID, err)
		}

		var existingRowID int64
		err = tx.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT rowid FROM %s WHERE doc_id = ?`, d.docsTable), doc.ID,
		).Scan(&existingRowID)

		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`UPDATE %s SET content = ?, metadata = ? WHERE rowid = ?`, d.docsTable),
				doc.Content, meta, existingRowID,
			); err != nil {
				return fmt.Errorf("updating document %s: %w", doc.ID, err)
			}

			// vec0 does not support UPDATE
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, d.vecTable), existingRowID,
			); err != nil {
				return fmt.Errorf("deleting old embedding for doc %s: %w", doc.ID, err)
			}

			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s(rowid, embedding) VALUES (?, ?)`, d.vecTable),
				existingRowID, embBlob,
			); err != nil {
				return fmt.Errorf("re-inserting embedding for doc %s: %w", doc.ID, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			result, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s(doc_id, content, metadata) VALUES (?, ?, ?)`, d.docsTable),
				doc.ID, doc.Content, meta,
			)
			if err != nil {
				return fmt.Errorf("inserting document %s: %w", doc.ID, err)
			}

			rowID, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("getting rowid for doc %s: %w", doc.ID, err)
			}

			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s(rowid, embedding) VALUES (?, ?)`, d.vecTable),
				rowID, embBlob,
			); err != nil {
				return fmt.Errorf("inserting embedding for doc %s: %w", doc.ID, err)
			}
		default:
			return fmt.Errorf("checking for existing document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("added documents to sqlite-vec",
		"collection", d.collection,
		"count", len(docs),
	)

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *SQLiteVecDriver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT
			d.doc_id,
			d.content,
			d.metadata,
			ve.distance
		FROM %s ve
		INNER JOIN %s d ON d.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
		ORDER BY ve.distance
	`, d.vecTable, d.docsTable), serializeFloat32(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	results := []vector.QueryResult{}
	for rows.Next() {
		var docID, content, meta string
		var distance float64
		if err := rows.Scan(&docID, &content, &meta, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:       docID,
				Content:  content,
				Metadata: decodeMetadata(meta),
			},
			// cosine distance, so similarity is 1 - distance
			Score: float32(1 - distance),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec",
		"collection", d.collection,
		"results", len(results),
	)

	return results, nil
}

func placeholders(ids []string) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ","), args
}

// Get retrieves documents by their IDs.
func (d *SQLiteVecDriver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	in, args := placeholders(ids)
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT rowid, doc_id, content, metadata FROM %s WHERE doc_id IN (%s)`,
		d.docsTable, in,
	), args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}

	// Collect results first so we can close the rows cursor before
	// issuing additional queries (SQLite uses a single connection).
	type docRow struct {
		rowID int64
		doc   vector.Document
	}
	var docRows []docRow

	for rows.Next() {
		var dr docRow
		var meta string
		if err := rows.Scan(&dr.rowID, &dr.doc.ID, &dr.doc.Content, &meta); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		dr.doc.Metadata = decodeMetadata(meta)
		docRows = append(docRows, dr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	docs := make([]vector.Document, 0, len(docRows))
	for _, dr := range docRows {
		var embBlob []byte
		err := d.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT embedding FROM %s WHERE rowid = ?`, d.vecTable), dr.rowID,
		).Scan(&embBlob)
		if err == nil && len(embBlob) > 0 {
			dr.doc.Embedding, _ = deserializeFloat32(embBlob)
		}
		docs = append(docs, dr.doc)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *SQLiteVecDriver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	in, args := placeholders(ids)

	rows, err := tx.QueryContext(ctx, fmt.Sprintf(
		`SELECT rowid FROM %s WHERE doc_id IN (%s)`, d.docsTable, in,
	), args...)
	if err != nil {
		return fmt.Errorf("querying rowids for deletion: %w", err)
	}

	var rowIDs []int64
	for rows.Next() {
		var rowID int64
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return fmt.Errorf("scanning rowid: %w", err)
		}
		rowIDs = append(rowIDs, rowID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rowids: %w", err)
	}

	for _, rowID := range rowIDs {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, d.vecTable), rowID,
		); err != nil {
			return fmt.Errorf("deleting embedding rowid %d: %w", rowID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE doc_id IN (%s)`, d.docsTable, in,
	), args...); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("deleted documents from sqlite-vec",
		"collection", d.collection,
		"count", len(ids),
	)

	return nil
}

// Drop removes both tables of the collection.
func (d *SQLiteVecDriver) Drop(ctx context.Context) error {
	for _, table := range []string{d.vecTable, d.docsTable} {
		if _, err := d.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
			return fmt.Errorf("dropping %s: %w", table, err)
		}
	}

	d.logger.Info("dropped sqlite-vec collection", "collection", d.collection)
	return nil
}

// Close releases resources held by the driver.
func (d *SQLiteVecDriver) Close() error {
	return d.db.Close()
}

var _ vector.Driver = (*SQLiteVecDriver)(nil)
