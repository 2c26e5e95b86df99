package servecmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	servecmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/serve"
)

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("registers the pipeline flags with config defaults", func() {
		cmd := servecmder.NewServeCmd()

		listen := cmd.Flags().Lookup("listen")
		Expect(listen).NotTo(BeNil())
		Expect(listen.DefValue).To(Equal(":5001"))

		Expect(cmd.Flags().Lookup("llm-model").DefValue).To(Equal("trojan-chat-bot"))
		Expect(cmd.Flags().Lookup("embedding-dimensions").DefValue).To(Equal("384"))
		Expect(cmd.Flags().Lookup("intercom-token")).NotTo(BeNil())
	})

	It("has the serve-only flags", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Flags().Lookup("watch-supplemental")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("log-file")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("no-mcp")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("log-level")).NotTo(BeNil())
	})

	It("fails before starting on an unknown log level", func() {
		cmd := servecmder.NewServeCmd()
		cmd.Flags().String("config-dir", "", "")
		cmd.Flags().Bool("debug", false, "")
		cmd.SetArgs([]string{"--config-dir", GinkgoT().TempDir(), "--log-level", "loud"})
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		Expect(cmd.Execute()).To(MatchError(ContainSubstring(`unknown log level "loud"`)))
	})

	It("rejects positional arguments", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Args(cmd, []string{"extra"})).To(HaveOccurred())
	})
})
