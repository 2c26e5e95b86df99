package fetcher_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/fetcher"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/intercom"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/logger"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage/inmemory"
)

// pagedLister serves pages of the given sizes, failing at failAt (1-based)
// when set.
type pagedLister struct {
	sizes  []int
	failAt int
	calls  int
}

func (p *pagedLister) ArticlesURL() string { return "page-1" }

func (p *pagedLister) ListArticlesPage(_ context.Context, pageURL string) (*intercom.Page, error) {
	p.calls++
	var n int
	if _, err := fmt.Sscanf(pageURL, "page-%d", &n); err != nil {
		return nil, err
	}
	if n == p.failAt {
		return nil, &intercom.StatusError{StatusCode: 500}
	}

	page := &intercom.Page{}
	for i := range p.sizes[n-1] {
		page.Data = append(page.Data, storage.Record{
			"id":   fmt.Sprintf("%d-%d", n, i),
			"body": "text",
		})
	}
	if n < len(p.sizes) {
		page.Next = fmt.Sprintf("page-%d", n+1)
	}
	return page, nil
}

type failingStore struct {
	*inmemory.Driver
}

func (failingStore) SaveSnapshot(context.Context, []storage.Record) error {
	return errors.New("disk full")
}

var _ = Describe("Fetcher", func() {
	var (
		ctx   context.Context
		store *inmemory.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewDriver()
	})

	It("collects every page and persists the snapshot", func() {
		lister := &pagedLister{sizes: []int{3, 2}}
		f := fetcher.New(lister, store, logger.Nop())

		result, err := f.Fetch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Records).To(HaveLen(5))
		Expect(result.Pages).To(Equal(2))
		Expect(result.Complete).To(BeTrue())

		saved, err := store.LoadSnapshot(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(HaveLen(5))
	})

	It("stops at the first failing page and keeps the earlier records", func() {
		lister := &pagedLister{sizes: []int{3, 4, 2, 1}, failAt: 3}
		f := fetcher.New(lister, store, logger.Nop())

		result, err := f.Fetch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Records).To(HaveLen(7))
		Expect(result.Complete).To(BeFalse())
		Expect(result.PageErr).To(MatchError("intercom returned status 500"))
		Expect(lister.calls).To(Equal(3))

		saved, err := store.LoadSnapshot(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(HaveLen(7))
	})

	It("persists an empty snapshot when the first page fails", func() {
		Expect(store.SaveSnapshot(ctx, []storage.Record{{"id": "old"}})).To(Succeed())

		f := fetcher.New(&pagedLister{sizes: []int{1}, failAt: 1}, store, logger.Nop())
		result, err := f.Fetch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Records).To(BeEmpty())

		saved, err := store.LoadSnapshot(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(BeEmpty())
	})

	It("honours the page cap", func() {
		lister := &pagedLister{sizes: []int{1, 1, 1, 1}}
		f := fetcher.New(lister, store, logger.Nop(), fetcher.WithMaxPages(2))

		result, err := f.Fetch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Records).To(HaveLen(2))
		Expect(result.Complete).To(BeFalse())
	})

	It("returns snapshot write failures", func() {
		f := fetcher.New(&pagedLister{sizes: []int{1}}, failingStore{store}, logger.Nop())
		_, err := f.Fetch(ctx)
		Expect(err).To(MatchError(ContainSubstring("disk full")))
	})

	It("stops when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		f := fetcher.New(&pagedLister{sizes: []int{1}}, store, logger.Nop())
		_, err := f.Fetch(cctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})
