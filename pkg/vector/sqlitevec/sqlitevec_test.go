package sqlitevec_test

import (
	"context"
	"log/slog"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ragbotlogger "github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector/sqlitevec"
)

var _ = Describe("SQLiteVecDriver", func() {
	var (
		logger *slog.Logger
		ctx    context.Context
	)

	BeforeEach(func() {
		logger = ragbotlogger.Nop()
		ctx = context.Background()
	})

	Describe("NewSQLiteVecDriver", func() {
		It("should return an error when DBPath is empty", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{DBPath: ""}, logger)
			Expect(err).To(MatchError(ContainSubstring("database path is required")))
		})

		It("should error when dimension not specified", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{DBPath: ":memory:"}, logger)
			Expect(err).To(HaveOccurred())
		})

		It("should reject unsafe collection names", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
				Collection: "x; DROP TABLE y",
			}, logger)
			Expect(err).To(MatchError(vector.ErrInvalidCollection))
		})
	})

	Describe("with a populated collection", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			Expect(driver.Add(ctx, []vector.Document{
				{ID: "a", Content: "ID: a\nalpha", Metadata: map[string]any{"title": "A", "author_id": int64(7)}, Embedding: []float32{1, 0, 0, 0}},
				{ID: "b", Content: "ID: b\nbeta", Embedding: []float32{0, 1, 0, 0}},
				{ID: "c", Content: "ID: c\ngamma", Embedding: []float32{0.9, 0.1, 0, 0}},
			})).To(Succeed())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should return the closest documents with content and metadata", func() {
			results, err := driver.Query(ctx, []float32{1, 0, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("a"))
			Expect(results[0].Content).To(Equal("ID: a\nalpha"))
			Expect(results[0].Metadata).To(HaveKeyWithValue("title", "A"))
			Expect(results[0].Metadata).To(HaveKeyWithValue("author_id", int64(7)))
			Expect(results[1].ID).To(Equal("c"))
			Expect(results[0].Score).To(BeNumerically(">=", results[1].Score))
		})

		It("should default topK to 10 when zero or negative", func() {
			results, err := driver.Query(ctx, []float32{1, 0, 0, 0}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
		})

		It("should update an existing document", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "b", Content: "ID: b\nbeta v2", Embedding: []float32{1, 0, 0, 0}},
			})).To(Succeed())

			docs, err := driver.Get(ctx, []string{"b"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Content).To(Equal("ID: b\nbeta v2"))
			Expect(docs[0].Embedding).To(Equal([]float32{1, 0, 0, 0}))
		})

		It("should retrieve documents with embeddings and skip unknown ids", func() {
			docs, err := driver.Get(ctx, []string{"a", "missing"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Embedding).To(Equal([]float32{1, 0, 0, 0}))
		})

		It("should return nil for empty IDs", func() {
			docs, err := driver.Get(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeNil())
		})

		It("should remove documents from query results after deletion", func() {
			Expect(driver.Delete(ctx, []string{"a", "missing"})).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0, 0, 0}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			for _, r := range results {
				Expect(r.ID).NotTo(Equal("a"))
			}
		})

		It("should drop the collection tables", func() {
			Expect(driver.Drop(ctx)).To(Succeed())
			_, err := driver.Query(ctx, []float32{1, 0, 0, 0}, 1)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("NewOpener", func() {
		It("should keep generations in separate tables of one database", func() {
			open := sqlitevec.NewOpener(sqlitevec.Config{
				DBPath:     filepath.Join(GinkgoT().TempDir(), "vectors.db"),
				Dimensions: 2,
			}, logger)

			oldGen, err := open(ctx, "gen_1")
			Expect(err).NotTo(HaveOccurred())
			defer oldGen.Close()
			newGen, err := open(ctx, "gen_2")
			Expect(err).NotTo(HaveOccurred())
			defer newGen.Close()

			Expect(oldGen.Add(ctx, []vector.Document{{ID: "old", Embedding: []float32{1, 0}}})).To(Succeed())
			Expect(newGen.Add(ctx, []vector.Document{{ID: "new", Embedding: []float32{1, 0}}})).To(Succeed())

			Expect(oldGen.Drop(ctx)).To(Succeed())

			results, err := newGen.Query(ctx, []float32{1, 0}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("new"))
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			var _ vector.Driver = (*sqlitevec.SQLiteVecDriver)(nil)
		})
	})
})
