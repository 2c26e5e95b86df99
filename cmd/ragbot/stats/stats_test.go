package statscmder_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	statscmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/stats"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/cliui"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/stats"
)

var _ = Describe("Fields", func() {
	It("leaves last rebuild empty before the first rebuild", func() {
		fields := statscmder.Fields(&stats.Snapshot{StartTime: time.Now(), Uptime: "1m0s"})
		Expect(fields).To(ContainElement(cliui.Field{Key: "last rebuild", Value: ""}))
		Expect(fields).To(ContainElement(cliui.Field{Key: "queries", Value: "0"}))
	})

	It("shows the counters", func() {
		last := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		fields := statscmder.Fields(&stats.Snapshot{
			StartTime:      time.Now(),
			LastRebuild:    &last,
			TotalQueries:   12,
			ArticlesPulled: 40,
			Rebuilds:       3,
			FailedRebuilds: 1,
		})

		Expect(fields).To(ContainElement(cliui.Field{Key: "queries", Value: "12"}))
		Expect(fields).To(ContainElement(cliui.Field{Key: "articles pulled", Value: "40"}))
		Expect(fields).To(ContainElement(cliui.Field{Key: "failed rebuilds", Value: "1"}))
		Expect(fields).To(ContainElement(cliui.Field{Key: "last rebuild", Value: last.Local().Format(time.DateTime)}))
	})
})
