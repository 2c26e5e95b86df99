package chroma_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ragbotlogger "github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector/chroma"
)

const collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"

// fakeChroma records the requests it receives and answers with canned bodies.
type fakeChroma struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]map[string]any
	exists   bool
}

func (f *fakeChroma) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	f.bodies[key] = body

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, collectionsPath+"/"):
		if !f.exists {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "cid", "name": "gen_1"})
	case r.Method == http.MethodPost && r.URL.Path == collectionsPath:
		f.exists = true
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "cid", "name": "gen_1"})
	case strings.HasSuffix(r.URL.Path, "/query"):
		_, _ = w.Write([]byte(`{
			"ids": [["a", "b"]],
			"distances": [[0.1, 0.4]],
			"metadatas": [[{"title": "A"}, {"title": "B"}]],
			"documents": [["ID: a\nalpha", "ID: b\nbeta"]]
		}`))
	case strings.HasSuffix(r.URL.Path, "/get"):
		_, _ = w.Write([]byte(`{"ids": ["a"], "metadatas": [{"title": "A"}], "documents": ["ID: a\nalpha"], "embeddings": [[0.5, 0.5]]}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

var _ = Describe("Driver", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = ragbotlogger.Nop()
	})

	Describe("NewDriver", func() {
		It("should return an error when URL is empty", func() {
			_, err := chroma.NewDriver(chroma.Config{URL: ""}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("chroma URL is required"))
		})

		It("should reject collection names that are not identifiers", func() {
			_, err := chroma.NewDriver(chroma.Config{URL: "http://x", CollectionName: "a/b"}, logger)
			Expect(err).To(MatchError(vector.ErrInvalidCollection))
		})

		It("should succeed after retrying when Chroma becomes available", func() {
			var attempts atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if attempts.Add(1) <= 4 {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]string{
					"id":   "test-collection-id",
					"name": "ragbot",
				})
			}))
			defer server.Close()

			driver, err := chroma.NewDriver(chroma.Config{
				URL:           server.URL,
				MaxRetries:    5,
				RetryDelay:    10 * time.Millisecond,
				MaxRetryDelay: 50 * time.Millisecond,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
			Expect(attempts.Load()).To(BeNumerically(">=", int32(5)))
		})

		It("should return an error after exhausting all retries", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			}))
			defer server.Close()

			_, err := chroma.NewDriver(chroma.Config{
				URL:           server.URL,
				MaxRetries:    3,
				RetryDelay:    10 * time.Millisecond,
				MaxRetryDelay: 50 * time.Millisecond,
			}, logger)
			Expect(err).To(MatchError(vector.ErrConnection))
			Expect(err.Error()).To(ContainSubstring("after 3 attempts"))
		})
	})

	Describe("operations", func() {
		var (
			fake   *fakeChroma
			server *httptest.Server
			driver vector.Driver
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			fake = &fakeChroma{bodies: map[string]map[string]any{}}
			server = httptest.NewServer(fake)

			var err error
			driver, err = chroma.NewOpener(chroma.Config{URL: server.URL}, logger)(ctx, "gen_1")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			server.Close()
		})

		It("creates a cosine collection when it is missing", func() {
			create := fake.bodies["POST "+collectionsPath]
			Expect(create).To(HaveKeyWithValue("name", "gen_1"))
			Expect(create["metadata"]).To(HaveKeyWithValue("hnsw:space", "cosine"))
		})

		It("upserts ids, documents, metadata and embeddings", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Content: "alpha", Metadata: map[string]any{"title": "A"}, Embedding: []float32{1, 0}},
			})).To(Succeed())

			body := fake.bodies["POST "+collectionsPath+"/cid/upsert"]
			Expect(body["ids"]).To(Equal([]any{"a"}))
			Expect(body["documents"]).To(Equal([]any{"alpha"}))
			Expect(body["metadatas"]).To(Equal([]any{map[string]any{"title": "A"}}))
		})

		It("maps query results with cosine similarity scores", func() {
			results, err := driver.Query(ctx, []float32{1, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("a"))
			Expect(results[0].Content).To(Equal("ID: a\nalpha"))
			Expect(results[0].Metadata).To(HaveKeyWithValue("title", "A"))
			Expect(results[0].Score).To(BeNumerically("~", 0.9, 1e-6))
			Expect(results[1].Score).To(BeNumerically("~", 0.6, 1e-6))

			body := fake.bodies["POST "+collectionsPath+"/cid/query"]
			Expect(body["n_results"]).To(BeEquivalentTo(5))
		})

		It("gets documents with their embeddings", func() {
			docs, err := driver.Get(ctx, []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Embedding).To(Equal([]float32{0.5, 0.5}))
		})

		It("deletes ids and drops the collection by name", func() {
			Expect(driver.Delete(ctx, []string{"a"})).To(Succeed())
			Expect(driver.Drop(ctx)).To(Succeed())

			Expect(fake.requests).To(ContainElements(
				"POST "+collectionsPath+"/cid/delete",
				"DELETE "+collectionsPath+"/gen_1",
			))
		})

		It("skips empty batches without calling the server", func() {
			before := len(fake.requests)
			Expect(driver.Add(ctx, nil)).To(Succeed())
			Expect(driver.Delete(ctx, nil)).To(Succeed())
			Expect(fake.requests).To(HaveLen(before))
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			var _ vector.Driver = (*chroma.Driver)(nil)
		})
	})
})
