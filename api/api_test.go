package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jskoiz/llama3-chatbot-with-rag/api/mcp"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/index"
	ragbotlogger "github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/pipeline"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/qa"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/stats"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage/inmemory"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

type stubAnswerer struct {
	mu        sync.Mutex
	questions []string
}

func (a *stubAnswerer) Answer(_ context.Context, question string) qa.Response {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.questions = append(a.questions, question)
	return qa.Response{Text: "Open Settings and choose Reset.", Latency: 0.5}
}

type stubRebuilder struct {
	result pipeline.RebuildResult
	calls  int
}

func (r *stubRebuilder) Rebuild(context.Context) pipeline.RebuildResult {
	r.calls++
	return r.result
}

type stubSearcher struct {
	results []vector.QueryResult
	err     error
}

func (s *stubSearcher) Search(context.Context, string, int) ([]vector.QueryResult, error) {
	return s.results, s.err
}

func doJSON(app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	Expect(err).NotTo(HaveOccurred())

	raw, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	_ = resp.Body.Close()

	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

var _ = Describe("Server", func() {
	var (
		server    *Server
		answerer  *stubAnswerer
		rebuilder *stubRebuilder
		searcher  *stubSearcher
		store     *inmemory.Driver
		tracker   *stats.Tracker
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		answerer = &stubAnswerer{}
		rebuilder = &stubRebuilder{result: pipeline.RebuildResult{Generation: &index.Generation{Collection: "ragbot_1"}}}
		searcher = &stubSearcher{}
		store = inmemory.NewDriver()
		tracker = stats.NewTracker()

		var err error
		server, err = NewServer(Config{
			ListenAddr: ":0",
			Answerer:   answerer,
			Rebuilder:  rebuilder,
			Store:      store,
			Searcher:   searcher,
			Stats:      tracker,
		}, ragbotlogger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("requires an answerer, rebuilder and store", func() {
			_, err := NewServer(Config{Rebuilder: rebuilder, Store: store}, ragbotlogger.Nop())
			Expect(err).To(MatchError(ContainSubstring("answerer is required")))

			_, err = NewServer(Config{Answerer: answerer, Store: store}, ragbotlogger.Nop())
			Expect(err).To(MatchError(ContainSubstring("rebuilder is required")))

			_, err = NewServer(Config{Answerer: answerer, Rebuilder: rebuilder}, ragbotlogger.Nop())
			Expect(err).To(MatchError(ContainSubstring("storage driver is required")))
		})
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(Equal(`"pong"`))
		})
	})

	Describe("POST /intercom", func() {
		It("answers the question in body", func() {
			resp, body := doJSON(server.app, http.MethodPost, "/intercom", `{"body":"How do I reset?"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("response", "Open Settings and choose Reset."))
			Expect(body).To(HaveKeyWithValue("time_taken", 0.5))
			Expect(answerer.questions).To(ConsistOf("How do I reset?"))
		})

		It("returns 400 when body is missing", func() {
			resp, body := doJSON(server.app, http.MethodPost, "/intercom", `{"question":"x"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(body).To(HaveKeyWithValue("error", "No query provided"))
			Expect(answerer.questions).To(BeEmpty())
		})

		It("returns 400 for a malformed body", func() {
			resp, body := doJSON(server.app, http.MethodPost, "/intercom", `{"body":`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(body).To(HaveKey("error"))
		})
	})

	Describe("POST /rebuild_vectorstore", func() {
		It("acknowledges a successful rebuild", func() {
			resp, body := doJSON(server.app, http.MethodPost, "/rebuild_vectorstore", "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("message", "Vector store rebuilt"))
			Expect(rebuilder.calls).To(Equal(1))
		})

		It("surfaces a failed rebuild as 500", func() {
			rebuilder.result = pipeline.RebuildResult{Err: &index.BuildFailure{Kind: index.NoValidDocuments, Err: index.ErrNoValidDocuments}}

			resp, body := doJSON(server.app, http.MethodPost, "/rebuild_vectorstore", "")
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(body["error"]).To(ContainSubstring("no valid documents"))
		})

		It("returns 409 while another rebuild runs", func() {
			rebuilder.result = pipeline.RebuildResult{Err: pipeline.ErrRebuildInProgress}

			resp, body := doJSON(server.app, http.MethodPost, "/rebuild_vectorstore", "")
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
			Expect(body).To(HaveKeyWithValue("error", "rebuild already in progress"))
		})
	})

	Describe("GET /stats", func() {
		It("returns the tracker snapshot", func() {
			tracker.RecordQuery()
			tracker.RecordFetch(12)

			resp, body := doJSON(server.app, http.MethodGet, "/stats", "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("total_queries", BeNumerically("==", 1)))
			Expect(body).To(HaveKeyWithValue("articles_pulled", BeNumerically("==", 12)))
		})
	})

	Describe("GET /snapshot", func() {
		It("returns 404 before the first fetch", func() {
			resp, _ := doJSON(server.app, http.MethodGet, "/snapshot", "")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("returns the snapshot as an attachment", func() {
			Expect(store.SaveSnapshot(ctx, []storage.Record{{"id": "1", "title": "Reset"}})).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Disposition")).To(ContainSubstring(`filename="info.json"`))

			var records []map[string]any
			Expect(json.NewDecoder(resp.Body).Decode(&records)).To(Succeed())
			Expect(records).To(HaveLen(1))
			Expect(records[0]).To(HaveKeyWithValue("title", "Reset"))
		})
	})

	Describe("supplemental records", func() {
		It("appends a valid record", func() {
			resp, body := doJSON(server.app, http.MethodPost, "/supplemental", `{"question":"Q","answer":"A"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(body).To(HaveKey("message"))

			records, err := store.LoadSupplemental(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(ConsistOf(storage.SupplementalRecord{Question: "Q", Answer: "A"}))
		})

		It("returns 400 when a field is missing", func() {
			resp, body := doJSON(server.app, http.MethodPost, "/supplemental", `{"question":"Q"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(body["error"]).To(ContainSubstring("requires a question and an answer"))
		})

		It("lists the stored records", func() {
			Expect(store.AppendSupplemental(ctx, storage.SupplementalRecord{Question: "Q", Answer: "A"})).To(Succeed())

			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/supplemental", nil))
			Expect(err).NotTo(HaveOccurred())

			var records []storage.SupplementalRecord
			Expect(json.NewDecoder(resp.Body).Decode(&records)).To(Succeed())
			Expect(records).To(HaveLen(1))
		})
	})

	Describe("GET /search", func() {
		It("requires a query", func() {
			resp, _ := doJSON(server.app, http.MethodGet, "/search", "")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a bad top_k", func() {
			resp, body := doJSON(server.app, http.MethodGet, "/search?query=reset&top_k=zero", "")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(body).To(HaveKeyWithValue("error", "top_k must be a positive integer"))
		})

		It("returns 503 before the first rebuild", func() {
			searcher.err = pipeline.ErrNoActiveIndex

			resp, _ := doJSON(server.app, http.MethodGet, "/search?query=reset", "")
			Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))
		})

		It("returns 500 on a search failure", func() {
			searcher.err = errors.New("connection refused")

			resp, _ := doJSON(server.app, http.MethodGet, "/search?query=reset", "")
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})

		It("returns matching documents", func() {
			searcher.results = []vector.QueryResult{{
				Document: vector.Document{ID: "7", Content: "ID: 7\nReset", Metadata: map[string]any{"title": "Reset"}},
				Score:    0.8,
			}}

			resp, body := doJSON(server.app, http.MethodGet, "/search?query=reset&top_k=1", "")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body).To(HaveKeyWithValue("count", BeNumerically("==", 1)))
		})
	})

	Describe("/mcp", func() {
		It("is mounted when an MCP server is configured", func() {
			mcpServer, err := mcp.NewServer(mcp.Config{Answerer: answerer, Searcher: searcher, Logger: ragbotlogger.Nop()})
			Expect(err).NotTo(HaveOccurred())

			withMCP, err := NewServer(Config{
				Answerer:  answerer,
				Rebuilder: rebuilder,
				Store:     store,
				MCPServer: mcpServer,
			}, ragbotlogger.Nop())
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}"))
			req.Header.Set("Content-Type", "application/json")
			resp, err := withMCP.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).NotTo(Equal(http.StatusNotFound))
		})

		It("is absent otherwise", func() {
			resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/mcp", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})
