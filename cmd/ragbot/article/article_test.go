package articlecmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	articlecmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/article"
)

func run(args ...string) error {
	cmd := articlecmder.NewArticleCmd()
	cmd.PersistentFlags().String("config-dir", "", "")
	cmd.PersistentFlags().Bool("debug", false, "")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

var _ = Describe("article create", func() {
	It("requires a title", func() {
		err := run("create", "--body", "b", "--author-id", "1")
		Expect(err).To(MatchError(ContainSubstring("--title")))
	})

	It("requires an author", func() {
		err := run("create", "--title", "t", "--body", "b")
		Expect(err).To(MatchError(ContainSubstring("--author-id")))
	})

	It("rejects an unknown state", func() {
		err := run("create", "--title", "t", "--body", "b", "--author-id", "1", "--state", "archived")
		Expect(err).To(MatchError(ContainSubstring("invalid --state")))
	})

	It("rejects both body sources", func() {
		err := run("create", "--title", "t", "--body", "b", "--body-file", "x.html", "--author-id", "1")
		Expect(err).To(MatchError(ContainSubstring("not both")))
	})
})

var _ = Describe("article delete", func() {
	It("requires exactly one id", func() {
		Expect(run("delete")).To(HaveOccurred())
	})
})
