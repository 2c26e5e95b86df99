package pgvector_test

import (
	"context"
	"fmt"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector/pgvector"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("RAGBOT_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("RAGBOT_TEST_POSTGRES_DSN not set, skipping pgvector tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	It("requires a connection string", func() {
		_, _, err := pgvector.NewOpener(context.Background(), pgvector.Config{}, logger.Nop())
		Expect(err).To(MatchError("postgres connection string is required"))
	})

	Context("against a live database", func() {
		var (
			ctx     context.Context
			driver  vector.Driver
			closeFn func() error
		)

		BeforeEach(func() {
			ctx = context.Background()
			dsn := connStr()

			open, c, err := pgvector.NewOpener(ctx, pgvector.Config{ConnString: dsn, Dimensions: 3}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			closeFn = c

			driver, err = open(ctx, fmt.Sprintf("ragbot_test_%d", time.Now().UnixNano()))
			Expect(err).NotTo(HaveOccurred())

			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Content: "alpha", Metadata: map[string]any{"title": "A"}, Embedding: []float32{1, 0, 0}},
				{ID: "b", Content: "beta", Embedding: []float32{0, 1, 0}},
			})).To(Succeed())
		})

		AfterEach(func() {
			if driver != nil {
				Expect(driver.Drop(ctx)).To(Succeed())
			}
			if closeFn != nil {
				Expect(closeFn()).To(Succeed())
			}
		})

		It("ranks by cosine similarity", func() {
			results, err := driver.Query(ctx, []float32{1, 0.1, 0}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("a"))
			Expect(results[0].Content).To(Equal("alpha"))
			Expect(results[0].Metadata).To(HaveKeyWithValue("title", "A"))
		})

		It("upserts, gets and deletes", func() {
			Expect(driver.Add(ctx, []vector.Document{{ID: "a", Content: "alpha v2", Embedding: []float32{0, 0, 1}}})).To(Succeed())

			docs, err := driver.Get(ctx, []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Content).To(Equal("alpha v2"))
			Expect(docs[0].Embedding).To(Equal([]float32{0, 0, 1}))

			Expect(driver.Delete(ctx, []string{"a"})).To(Succeed())
			docs, err = driver.Get(ctx, []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})
	})
})
