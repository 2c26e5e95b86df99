// Package qdrant provides a vector driver backed by a Qdrant server over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

const (
	// DefaultPort is Qdrant's gRPC port.
	DefaultPort = 6334

	payloadDocID    = "doc_id"
	payloadContent  = "content"
	payloadMetadata = "metadata"
)

// pointNamespace derives stable point UUIDs from document ids, since Qdrant
// only accepts UUIDs or integers as point ids.
var pointNamespace = uuid.MustParse("0f6b2d52-8f5e-4c61-9a1c-5f3c1e0b7a42")

// Client is the subset of *qdrant.Client the driver uses.
type Client interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Close() error
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Target is host[:port] of the gRPC endpoint.
	Target string

	// APIKey is sent when set.
	APIKey string

	// UseTLS enables TLS on the gRPC connection.
	UseTLS bool

	// Dimensions is the vector size of new collections.
	Dimensions uint

	// Collection is the collection name.
	Collection string
}

// Driver implements vector.Driver on a single Qdrant collection.
type Driver struct {
	client     Client
	collection string
	ownsClient bool
	logger     *slog.Logger
}

// NewClient dials Qdrant using c.
func NewClient(c Config) (*qdrant.Client, error) {
	if c.Target == "" {
		return nil, errors.New("qdrant target is required")
	}

	host, port, err := splitTarget(c.Target)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	return client, nil
}

func splitTarget(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return target, DefaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid qdrant port %q: %w", portStr, err)
	}
	return host, port, nil
}

// NewDriver binds a driver to c.Collection on client, creating the collection
// with cosine distance when it is missing.
func NewDriver(ctx context.Context, client Client, c Config, logger *slog.Logger) (*Driver, error) {
	if err := vector.ValidateCollection(c.Collection); err != nil {
		return nil, err
	}
	if c.Dimensions == 0 {
		return nil, errors.New("qdrant embedding dimensions cannot be 0, must be configured")
	}

	exists, err := client.CollectionExists(ctx, c.Collection)
	if err != nil {
		return nil, fmt.Errorf("%w: checking collection: %v", vector.ErrConnection, err)
	}

	if !exists {
		err := client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: c.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(c.Dimensions),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("creating collection %q: %w", c.Collection, err)
		}
	}

	logger.Info("qdrant vector driver initialized",
		"collection", c.Collection,
		"dimensions", c.Dimensions,
		"created", !exists,
	)

	return &Driver{
		client:     client,
		collection: c.Collection,
		logger:     logger,
	}, nil
}

// NewOpener dials once and returns a vector.Opener whose drivers share that
// connection. The returned close function releases it.
func NewOpener(c Config, logger *slog.Logger) (vector.Opener, func() error, error) {
	client, err := NewClient(c)
	if err != nil {
		return nil, nil, err
	}

	open := func(ctx context.Context, collection string) (vector.Driver, error) {
		cfg := c
		cfg.Collection = collection
		return NewDriver(ctx, client, cfg, logger)
	}
	return open, client.Close, nil
}

// PointID is the Qdrant point id used for a document id.
func PointID(docID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(docID)).String()
}

// Add upserts documents with their embeddings.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for _, doc := range docs {
		payload, err := qdrant.TryValueMap(map[string]any{
			payloadDocID:    doc.ID,
			payloadContent:  doc.Content,
			payloadMetadata: metadataOrEmpty(doc.Metadata),
		})
		if err != nil {
			return fmt.Errorf("encoding payload for doc %s: %w", doc.ID, err)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(PointID(doc.ID)),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: payload,
		})
	}

	wait := true
	if _, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("added documents to qdrant",
		"collection", d.collection,
		"count", len(docs),
	)

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	limit := uint64(topK)
	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		results = append(results, vector.QueryResult{
			Document: fromPayload(p.GetPayload()),
			Score:    p.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant",
		"collection", d.collection,
		"results", len(results),
	)

	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	points, err := d.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: d.collection,
		Ids:            pointIDs(ids),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting points: %w", err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		doc := fromPayload(p.GetPayload())
		doc.Embedding = p.GetVectors().GetVector().GetData()
		docs = append(docs, doc)
	}
	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	wait := true
	if _, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collection,
		Wait:           &wait,
		Points:         qdrant.NewPointsSelector(pointIDs(ids)...),
	}); err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}

	d.logger.Debug("deleted documents from qdrant",
		"collection", d.collection,
		"count", len(ids),
	)

	return nil
}

// Drop deletes the collection.
func (d *Driver) Drop(ctx context.Context) error {
	if err := d.client.DeleteCollection(ctx, d.collection); err != nil {
		return fmt.Errorf("dropping collection %q: %w", d.collection, err)
	}

	d.logger.Info("dropped qdrant collection", "collection", d.collection)
	return nil
}

// Close is a no-op; the connection belongs to the opener.
func (d *Driver) Close() error {
	return nil
}

func pointIDs(ids []string) []*qdrant.PointId {
	out := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		out[i] = qdrant.NewIDUUID(PointID(id))
	}
	return out
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func fromPayload(payload map[string]*qdrant.Value) vector.Document {
	doc := vector.Document{
		ID:       payload[payloadDocID].GetStringValue(),
		Content:  payload[payloadContent].GetStringValue(),
		Metadata: map[string]any{},
	}
	for k, v := range payload[payloadMetadata].GetStructValue().GetFields() {
		doc.Metadata[k] = fromValue(v)
	}
	return doc
}

func fromValue(v *qdrant.Value) any {
	switch k := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_IntegerValue:
		return k.IntegerValue
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_BoolValue:
		return k.BoolValue
	default:
		return ""
	}
}

var _ vector.Driver = (*Driver)(nil)
