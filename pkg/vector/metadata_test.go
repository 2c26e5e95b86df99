package vector_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

var _ = Describe("metadata", func() {
	It("keeps primitive types across a JSON store", func() {
		raw, err := vector.EncodeMetadata(map[string]any{
			"title":      "Reset",
			"author_id":  int64(42),
			"created_at": int64(1690000000),
			"ratio":      0.5,
			"draft":      false,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(vector.DecodeMetadata(raw)).To(Equal(map[string]any{
			"title":      "Reset",
			"author_id":  int64(42),
			"created_at": int64(1690000000),
			"ratio":      0.5,
			"draft":      false,
		}))
	})

	It("treats empty and malformed input as empty metadata", func() {
		raw, err := vector.EncodeMetadata(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal("{}"))

		Expect(vector.DecodeMetadata(nil)).To(BeEmpty())
		Expect(vector.DecodeMetadata([]byte("not json"))).To(BeEmpty())
	})
})
