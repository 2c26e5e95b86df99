// Package fetcher pulls every page of remote articles and persists the merged
// result as the ingestion snapshot.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/intercom"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
)

// PageLister fetches one page of the remote collection.
// *intercom.Client satisfies it.
type PageLister interface {
	ArticlesURL() string
	ListArticlesPage(ctx context.Context, pageURL string) (*intercom.Page, error)
}

// Result describes a completed fetch.
type Result struct {
	Records []storage.Record

	// Pages is the number of pages successfully read.
	Pages int

	// Complete is false when a page request failed and the walk stopped early.
	Complete bool

	// PageErr is the failure that ended an incomplete walk.
	PageErr error
}

// Fetcher walks the remote pagination and writes the snapshot.
type Fetcher struct {
	lister PageLister
	store  storage.Driver
	logger *slog.Logger

	// maxPages guards against a server that keeps returning the same cursor.
	maxPages int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxPages caps the number of pages read in one fetch.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// New creates a Fetcher.
func New(lister PageLister, store storage.Driver, logger *slog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		lister:   lister,
		store:    store,
		logger:   logger,
		maxPages: 10000,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch follows the next-page links until they run out. A failing page ends
// the walk and the records gathered so far are kept; that is not an error.
// The merged records overwrite the snapshot before Fetch returns, and only a
// snapshot write failure or context cancellation is returned as an error.
func (f *Fetcher) Fetch(ctx context.Context) (*Result, error) {
	result := &Result{Records: []storage.Record{}, Complete: true}

	seen := map[string]struct{}{}
	next := f.lister.ArticlesURL()
	for next != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if result.Pages >= f.maxPages {
			f.logger.Warn("page limit reached, stopping fetch", "pages", result.Pages)
			result.Complete = false
			break
		}
		if _, dup := seen[next]; dup {
			f.logger.Warn("next page link repeated, stopping fetch", "url", next)
			break
		}
		seen[next] = struct{}{}

		page, err := f.lister.ListArticlesPage(ctx, next)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Error("failed to fetch page",
				"url", next,
				"page", result.Pages+1,
				"error", err,
			)
			result.Complete = false
			result.PageErr = err
			break
		}

		result.Records = append(result.Records, page.Data...)
		result.Pages++
		next = page.Next
	}

	f.logger.Info(fmt.Sprintf("Total records received: %d", len(result.Records)),
		"pages", result.Pages,
		"complete", result.Complete,
	)

	if err := f.store.SaveSnapshot(ctx, result.Records); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	return result, nil
}
