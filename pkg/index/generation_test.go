package index_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/index"
)

var _ = Describe("Generation", func() {
	It("releases immediately when retired without readers", func() {
		g := &index.Generation{Collection: "ragbot_1"}
		released := 0
		g.Retire(func() { released++ })

		Expect(released).To(Equal(1))
		Expect(g.Acquire()).To(BeFalse())
	})

	It("waits for the last reader before releasing", func() {
		g := &index.Generation{Collection: "ragbot_1"}
		Expect(g.Acquire()).To(BeTrue())
		Expect(g.Acquire()).To(BeTrue())

		released := 0
		g.Retire(func() { released++ })
		Expect(released).To(BeZero())

		g.Release()
		Expect(released).To(BeZero())
		Expect(g.Readers()).To(Equal(1))

		g.Release()
		Expect(released).To(Equal(1))
		Expect(g.Readers()).To(BeZero())
	})

	It("admits new readers while retired but still held", func() {
		g := &index.Generation{Collection: "ragbot_1"}
		Expect(g.Acquire()).To(BeTrue())

		released := 0
		g.Retire(func() { released++ })
		Expect(g.Acquire()).To(BeTrue())

		g.Release()
		g.Release()
		Expect(released).To(Equal(1))
	})

	It("never releases while active", func() {
		g := &index.Generation{Collection: "ragbot_1"}
		Expect(g.Acquire()).To(BeTrue())
		g.Release()
		Expect(g.Acquire()).To(BeTrue())
	})
})
