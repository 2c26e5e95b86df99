package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("returns the error from fn and marks the step", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")

		err := cliui.Step(&buf, "Rebuilding", func() error { return boom })
		Expect(err).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring("Rebuilding"))
		Expect(buf.String()).To(HaveSuffix("\n"))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds under a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses seconds above a second", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("Fields", func() {
	It("renders one line per row", func() {
		out := cliui.Fields([]cliui.Field{
			{Key: "total_queries", Value: "4"},
			{Key: "last_rebuild", Value: ""},
		})
		Expect(out).To(ContainSubstring("total_queries"))
		Expect(out).To(ContainSubstring("4"))
		Expect(out).To(ContainSubstring("<not set>"))
		Expect(bytes.Count([]byte(out), []byte("\n"))).To(Equal(2))
	})
})
