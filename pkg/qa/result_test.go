package qa_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/qa"
)

var _ = Describe("AnswerText", func() {
	DescribeTable("extracts the answer per variant",
		func(r qa.Result, want string) {
			Expect(qa.AnswerText(r)).To(Equal(want))
		},
		Entry("structured with result", qa.Structured{"result": "  Go to settings.  "}, "Go to settings."),
		Entry("structured without result", qa.Structured{"answer": "x"}, qa.NoResultFieldText),
		Entry("structured with nil result", qa.Structured{"result": nil}, ""),
		Entry("structured with non-string result", qa.Structured{"result": 42}, "42"),
		Entry("text", qa.Text("\n hello \t"), "hello"),
		Entry("other", qa.Other{Value: []int{1, 2}}, "[1 2]"),
		Entry("other nil", qa.Other{}, ""),
		Entry("nil result", nil, ""),
	)
})

var _ = Describe("Prompt", func() {
	It("rejects templates missing a placeholder", func() {
		_, err := qa.NewPrompt("Question: {question}")
		Expect(err).To(MatchError(qa.ErrInvalidTemplate))
	})

	It("does not expand placeholders found inside the context", func() {
		p, err := qa.NewPrompt("C: {context}\nQ: {question}")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Render("see {question}", "why?")).To(Equal("C: see {question}\nQ: why?"))
	})
})
