package intercom_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/intercom"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
)

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		client  *intercom.Client
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))

		var err error
		client, err = intercom.NewClient(intercom.Config{
			BaseURL:   server.URL,
			Token:     "secret",
			RateLimit: -1,
		}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewClient", func() {
		It("requires a token", func() {
			_, err := intercom.NewClient(intercom.Config{}, logger.Nop())
			Expect(err).To(MatchError(intercom.ErrMissingToken))
		})

		It("defaults the base URL", func() {
			c, err := intercom.NewClient(intercom.Config{Token: "t"}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ArticlesURL()).To(Equal("https://api.intercom.io/articles"))
		})
	})

	Describe("ListArticlesPage", func() {
		It("sends the bearer token and decodes data with a string next link", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer secret"))
				Expect(r.Header.Get("Accept")).To(Equal("application/json"))
				_, _ = w.Write([]byte(`{"data":[{"id":"1","body":"a"},{"id":2,"body":"b"}],"pages":{"next":"https://example.com/p2"}}`))
			}

			page, err := client.ListArticlesPage(ctx, client.ArticlesURL())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(2))
			Expect(page.Data[0].ID()).To(Equal("1"))
			Expect(page.Data[1].ID()).To(Equal("2"))
			Expect(page.Next).To(Equal("https://example.com/p2"))
		})

		It("builds the next link from a cursor object", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data":[],"pages":{"next":{"starting_after":"abc","per_page":50}}}`))
			}

			page, err := client.ListArticlesPage(ctx, client.ArticlesURL())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Next).To(Equal(server.URL + "/articles?per_page=50&starting_after=abc"))
		})

		It("treats a missing or null next link as the last page", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"data":[{"id":"1"}],"pages":{"next":null}}`))
			}

			page, err := client.ListArticlesPage(ctx, client.ArticlesURL())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Next).To(BeEmpty())
		})

		It("returns a StatusError for non-200 responses", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte("unauthorized"))
			}

			_, err := client.ListArticlesPage(ctx, client.ArticlesURL())
			var statusErr *intercom.StatusError
			Expect(err).To(BeAssignableToTypeOf(statusErr))
			statusErr = err.(*intercom.StatusError)
			Expect(statusErr.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(statusErr.Body).To(Equal("unauthorized"))
		})
	})

	Describe("CreateArticle", func() {
		It("posts the article with the create API version and returns the url", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/articles"))
				Expect(r.Header.Get("Intercom-Version")).To(Equal("2.10"))
				Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))

				var body map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body["title"]).To(Equal("Reset password"))
				Expect(body["state"]).To(Equal("draft"))
				Expect(body["author_id"]).To(BeEquivalentTo(42))

				_, _ = w.Write([]byte(`{"id":"9","title":"Reset password","state":"draft","url":"https://help.example.com/9"}`))
			}

			article, err := client.CreateArticle(ctx, intercom.NewArticle{
				Title:    "Reset password",
				Body:     "<p>Click reset.</p>",
				AuthorID: 42,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(article.ID).To(Equal("9"))
			Expect(article.URL).To(Equal("https://help.example.com/9"))
		})

		It("surfaces API failures", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}

			_, err := client.CreateArticle(ctx, intercom.NewArticle{Title: "x", Body: "y"})
			Expect(err).To(MatchError("intercom returned status 400"))
		})
	})

	Describe("DeleteArticle", func() {
		It("deletes with the delete API version", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodDelete))
				Expect(r.URL.Path).To(Equal("/articles/123"))
				Expect(r.Header.Get("Intercom-Version")).To(Equal("2.9"))
				_, _ = w.Write([]byte(`{"id":"123","object":"article","deleted":true}`))
			}

			Expect(client.DeleteArticle(ctx, "123")).To(Succeed())
		})

		It("maps 404 to ErrArticleNotFound", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}

			Expect(client.DeleteArticle(ctx, "404")).To(MatchError(intercom.ErrArticleNotFound))
		})

		It("reports ErrNotDeleted when the API does not confirm", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id":"1","deleted":false}`))
			}

			Expect(client.DeleteArticle(ctx, "1")).To(MatchError(intercom.ErrNotDeleted))
		})
	})
})
