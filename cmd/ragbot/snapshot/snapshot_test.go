package snapshotcmder_test

import (
	"bytes"
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	snapshotcmder "github.com/jskoiz/llama3-chatbot-with-rag/cmd/ragbot/snapshot"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage/inmemory"
)

var _ = Describe("Export", func() {
	var (
		ctx   context.Context
		store *inmemory.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewDriver()
	})

	It("reports a missing snapshot", func() {
		err := snapshotcmder.Export(ctx, store, &bytes.Buffer{})
		Expect(err).To(MatchError(storage.ErrNoSnapshot))
	})

	It("writes the records as JSON", func() {
		Expect(store.SaveSnapshot(ctx, []storage.Record{
			{"id": "1", "title": "Refunds", "body": "<p>30 days</p>"},
		})).To(Succeed())

		var buf bytes.Buffer
		Expect(snapshotcmder.Export(ctx, store, &buf)).To(Succeed())

		var got []map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &got)).To(Succeed())
		Expect(got).To(HaveLen(1))
		Expect(got[0]).To(HaveKeyWithValue("title", "Refunds"))
	})
})

var _ = Describe("NewSnapshotCmd", func() {
	It("has an export subcommand with --out", func() {
		cmd := snapshotcmder.NewSnapshotCmd()
		export, _, err := cmd.Find([]string{"export"})
		Expect(err).NotTo(HaveOccurred())
		Expect(export.Flags().Lookup("out")).NotTo(BeNil())
	})
})
