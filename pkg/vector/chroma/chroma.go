// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for storing embeddings.
	DefaultCollectionName = "ragbot"

	// DefaultMaxRetries is how many times collection setup is attempted.
	DefaultMaxRetries = 5

	// DefaultRetryDelay is the first backoff between setup attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps the exponential backoff.
	DefaultMaxRetryDelay = 8 * time.Second

	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
)

// Driver implements vector.Driver using Chroma's REST API.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// MaxRetries, RetryDelay and MaxRetryDelay control how long NewDriver
	// waits for a Chroma server that is still starting.
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewDriver creates a new Chroma vector driver. The collection is created
// with cosine distance if it does not exist yet.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, errors.New("chroma URL is required")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	if err := vector.ValidateCollection(collectionName); err != nil {
		return nil, err
	}

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	maxDelay := c.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxRetryDelay
	}

	d := &Driver{
		baseURL:        strings.TrimRight(c.URL, "/"),
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		collectionID, err := d.getOrCreateCollection(context.Background())
		if err == nil {
			d.collectionID = collectionID
			logger.Info("connected to Chroma",
				"url", c.URL,
				"collection", collectionName,
				"collection_id", collectionID,
			)
			return d, nil
		}

		lastErr = err
		if attempt == maxRetries {
			break
		}

		logger.Warn("chroma not ready, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		time.Sleep(delay)
		delay = min(delay*2, maxDelay)
	}

	return nil, fmt.Errorf("%w: getting or creating collection %q after %d attempts: %v",
		vector.ErrConnection, collectionName, maxRetries, lastErr)
}

// NewOpener returns a vector.Opener that creates one Chroma collection per
// name on the server at c.URL.
func NewOpener(c Config, logger *slog.Logger) vector.Opener {
	return func(_ context.Context, collection string) (vector.Driver, error) {
		cfg := c
		cfg.CollectionName = collection
		return NewDriver(cfg, logger)
	}
}

// getOrCreateCollection gets an existing collection or creates a new one.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	var coll collection
	status, err := d.do(ctx, http.MethodGet, collectionsPath+"/"+d.collectionName, nil, &coll)
	if err == nil {
		return coll.ID, nil
	}
	if status != http.StatusNotFound && status != http.StatusBadRequest {
		return "", err
	}

	_, err = d.do(ctx, http.MethodPost, collectionsPath, createCollection{
		Name:        d.collectionName,
		Metadata:    map[string]any{"hnsw:space": "cosine"},
		GetOrCreate: true,
	}, &coll)
	if err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}

	return coll.ID, nil
}

// do sends a JSON request to Chroma and decodes a 200/201 response into out.
// The HTTP status is returned alongside any error.
func (d *Driver) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

func (d *Driver) collectionPath(op string) string {
	return fmt.Sprintf("%s/%s/%s", collectionsPath, d.collectionID, op)
}

// Add upserts documents with their embeddings.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	reqBody := records{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Metadatas:  make([]map[string]any, len(docs)),
		Documents:  make([]string, len(docs)),
	}
	for i, doc := range docs {
		reqBody.IDs[i] = doc.ID
		reqBody.Embeddings[i] = doc.Embedding
		reqBody.Metadatas[i] = doc.Metadata
		reqBody.Documents[i] = doc.Content
	}

	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("upsert"), reqBody, nil); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}

	d.logger.Debug("added documents to chroma",
		"collection", d.collectionName,
		"count", len(docs),
	)

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	var queryResp queryResult
	_, err := d.do(ctx, http.MethodPost, d.collectionPath("query"), query{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"metadatas", "documents", "distances"},
	}, &queryResp)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}

	results := []vector.QueryResult{}

	// We only query with one embedding
	if len(queryResp.IDs) == 0 || len(queryResp.IDs[0]) == 0 {
		return results, nil
	}

	ids := queryResp.IDs[0]
	distances := first(queryResp.Distances)
	metadatas := first(queryResp.Metadatas)
	documents := first(queryResp.Documents)

	for i, id := range ids {
		result := vector.QueryResult{Document: vector.Document{ID: id}}
		if i < len(metadatas) {
			result.Metadata = metadatas[i]
		}
		if i < len(documents) {
			result.Content = documents[i]
		}
		// cosine distance, so similarity is 1 - distance
		if i < len(distances) {
			result.Score = 1 - distances[i]
		}
		results = append(results, result)
	}

	d.logger.Debug("queried chroma",
		"collection", d.collectionName,
		"results", len(results),
	)

	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var getResp records
	_, err := d.do(ctx, http.MethodPost, d.collectionPath("get"), byIDs{
		IDs:     ids,
		Include: []string{"metadatas", "documents", "embeddings"},
	}, &getResp)
	if err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}

	docs := make([]vector.Document, len(getResp.IDs))
	for i, id := range getResp.IDs {
		docs[i] = vector.Document{ID: id}
		if i < len(getResp.Metadatas) {
			docs[i].Metadata = getResp.Metadatas[i]
		}
		if i < len(getResp.Documents) {
			docs[i].Content = getResp.Documents[i]
		}
		if i < len(getResp.Embeddings) {
			docs[i].Embedding = getResp.Embeddings[i]
		}
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := d.do(ctx, http.MethodPost, d.collectionPath("delete"), byIDs{IDs: ids}, nil); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from chroma",
		"collection", d.collectionName,
		"count", len(ids),
	)

	return nil
}

// Drop deletes the collection from the server.
func (d *Driver) Drop(ctx context.Context) error {
	_, err := d.do(ctx, http.MethodDelete, collectionsPath+"/"+d.collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("dropping collection %q: %w", d.collectionName, err)
	}

	d.logger.Info("dropped chroma collection", "collection", d.collectionName)
	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

func first[T any](groups [][]T) []T {
	if len(groups) == 0 {
		return nil
	}
	return groups[0]
}

var _ vector.Driver = (*Driver)(nil)
