// Package normalizer turns raw articles and supplemental Q&A pairs into the
// validated documents that get indexed.
package normalizer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
)

// SupplementalPrefix namespaces synthetic ids so they never collide with
// remote article ids.
const SupplementalPrefix = "supplemental"

// metadataKeys are copied from every record into document metadata.
var metadataKeys = []string{"title", "author_id", "created_at", "id"}

// Document is a validated, markup-free unit of indexable content.
type Document struct {
	ID      string
	Content string

	// Metadata values are always string, int64, float64 or bool.
	Metadata map[string]any
}

// Invalid is a record that was excluded from indexing.
type Invalid struct {
	ID     string
	Title  string
	Reason string
}

// Result is the outcome of a normalization pass.
type Result struct {
	Valid   []Document
	Invalid []Invalid
}

// Normalizer validates and converts records. It is safe for concurrent use.
type Normalizer struct {
	logger *slog.Logger
	now    func() time.Time
	seq    atomic.Uint64
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the time source used for synthetic ids.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// New creates a Normalizer.
func New(logger *slog.Logger, opts ...Option) *Normalizer {
	n := &Normalizer{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize merges supplemental records into the article pool and splits the
// result into valid and invalid documents. Every input lands in exactly one
// of the two sets.
func (n *Normalizer) Normalize(articles []storage.Record, supplemental []storage.SupplementalRecord) *Result {
	n.logger.Info(fmt.Sprintf("Total records received from remote: %d", len(articles)))
	n.logger.Info(fmt.Sprintf("Total records received from supplemental: %d", len(supplemental)))

	pool := make([]storage.Record, 0, len(articles)+len(supplemental))
	pool = append(pool, articles...)
	for _, s := range supplemental {
		pool = append(pool, n.pseudoArticle(s))
	}

	result := &Result{
		Valid:   make([]Document, 0, len(pool)),
		Invalid: []Invalid{},
	}

	for _, rec := range pool {
		doc, reason := n.convert(rec)
		if reason != "" {
			result.Invalid = append(result.Invalid, Invalid{
				ID:     rec.ID(),
				Title:  primitiveString(rec["title"]),
				Reason: reason,
			})
			continue
		}
		result.Valid = append(result.Valid, doc)
	}

	n.logger.Info(fmt.Sprintf("Total valid documents: %d", len(result.Valid)))
	n.logger.Info(fmt.Sprintf("Total invalid documents: %d", len(result.Invalid)))
	for _, inv := range result.Invalid {
		n.logger.Warn("Invalid document",
			"id", inv.ID,
			"title", inv.Title,
			"reason", inv.Reason,
		)
	}

	return result
}

// pseudoArticle wraps a supplemental pair in article shape. The id combines
// the wall clock with a process-wide counter so two records created in the
// same second still differ.
func (n *Normalizer) pseudoArticle(s storage.SupplementalRecord) storage.Record {
	now := n.now()
	seq := n.seq.Add(1)
	return storage.Record{
		"id":         fmt.Sprintf("%s-%d-%d", SupplementalPrefix, now.Unix(), seq),
		"title":      s.Question,
		"body":       s.Answer,
		"author_id":  "",
		"created_at": now.Unix(),
		"state":      "published",
	}
}

func (n *Normalizer) convert(rec storage.Record) (Document, string) {
	body, ok := rec["body"].(string)
	if !ok || strings.TrimSpace(body) == "" {
		return Document{}, "empty body"
	}

	stripped := StripMarkup(body)
	if strings.TrimSpace(stripped) == "" {
		return Document{}, "empty after markup removal"
	}

	id := rec.ID()
	meta := make(map[string]any, len(metadataKeys))
	for _, k := range metadataKeys {
		meta[k] = Primitive(rec[k])
	}

	return Document{
		ID:       id,
		Content:  fmt.Sprintf("ID: %s\n%s", id, stripped),
		Metadata: meta,
	}, ""
}

// Primitive coerces v into a value a flat metadata store can hold: nil
// becomes "", lists are joined with ", " and nested objects become JSON.
func Primitive(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string, bool, int64, float64:
		return t
	case int:
		return int64(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, primitiveString(e))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func primitiveString(v any) string {
	switch t := Primitive(v).(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
