package ragbotcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ragbotcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot"
)

var _ = Describe("NewRagbotCmd", func() {
	It("registers every subcommand", func() {
		cmd := ragbotcmder.NewRagbotCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"serve", "rebuild", "ask", "fetch", "supplemental",
			"article", "stats", "snapshot", "config", "version",
		))
	})

	It("has the global flags", func() {
		cmd := ragbotcmder.NewRagbotCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("debug").Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})
