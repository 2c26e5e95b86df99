package normalizer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/normalizer"
)

var _ = Describe("StripMarkup", func() {
	DescribeTable("text extraction",
		func(in, want string) {
			Expect(normalizer.StripMarkup(in)).To(Equal(want))
		},
		Entry("plain text", "hello world", "hello world"),
		Entry("paragraphs", "<p>Hello</p><p>world</p>", "Helloworld"),
		Entry("nested inline", "<p>Click <b>Reset</b> then <a href=\"/x\">save</a>.</p>", "Click Reset then save."),
		Entry("entities", "<p>Fish &amp; chips</p>", "Fish & chips"),
		Entry("drops scripts and comments", "<p>a</p><script>alert(1)</script><!-- c --><p>b</p>", "ab"),
		Entry("only tags", "<p></p><br/>", ""),
	)

	DescribeTable("pass-through of non-markup strings",
		func(in string) {
			Expect(normalizer.StripMarkup(in)).To(Equal(in))
		},
		Entry("absolute path", "/var/data/<file>.txt"),
		Entry("relative path", "./docs/readme.md"),
		Entry("home path", "~/notes.txt"),
		Entry("windows path", `C:\Users\me\file.txt`),
		Entry("https url", "https://example.com/a?b=<c>"),
		Entry("mailto url", "mailto:help@example.com"),
	)

	It("still parses text that merely contains a url", func() {
		Expect(normalizer.StripMarkup(`<p>See https://example.com</p>`)).To(Equal("See https://example.com"))
	})
})
