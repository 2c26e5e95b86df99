package intercom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/storage"
)

// Page is one page of the article listing.
type Page struct {
	// Data holds the raw article objects of this page.
	Data []storage.Record

	// Next is the absolute URL of the following page, or "" on the last page.
	Next string
}

type listResponse struct {
	Data  []storage.Record `json:"data"`
	Pages struct {
		Next json.RawMessage `json:"next"`
	} `json:"pages"`
}

// cursorNext is the object form of pages.next used by newer API versions.
type cursorNext struct {
	StartingAfter string `json:"starting_after"`
	PerPage       int    `json:"per_page"`
}

// ListArticlesPage fetches a single page of articles. Non-200 responses are
// returned as *StatusError.
func (c *Client) ListArticlesPage(ctx context.Context, pageURL string) (*Page, error) {
	resp, err := c.do(ctx, http.MethodGet, pageURL, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var lr listResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&lr); err != nil {
		return nil, fmt.Errorf("decoding article page: %w", err)
	}

	next, err := c.resolveNext(lr.Pages.Next)
	if err != nil {
		return nil, err
	}

	return &Page{Data: lr.Data, Next: next}, nil
}

// resolveNext turns pages.next into an absolute URL. It accepts the legacy
// string form and the {starting_after} cursor object.
func (c *Client) resolveNext(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var link string
	if err := json.Unmarshal(raw, &link); err == nil {
		return link, nil
	}

	var cursor cursorNext
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return "", fmt.Errorf("decoding pages.next: %w", err)
	}
	if cursor.StartingAfter == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("starting_after", cursor.StartingAfter)
	if cursor.PerPage > 0 {
		q.Set("per_page", fmt.Sprint(cursor.PerPage))
	}
	return c.ArticlesURL() + "?" + q.Encode(), nil
}

// NewArticle is the payload for CreateArticle.
type NewArticle struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body"`
	AuthorID    int64  `json:"author_id"`
	State       string `json:"state,omitempty"`
}

// Article is the subset of an article returned by create.
type Article struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	State string `json:"state"`
	URL   string `json:"url"`
}

// CreateArticle publishes or drafts a new article.
func (c *Client) CreateArticle(ctx context.Context, a NewArticle) (*Article, error) {
	if a.State == "" {
		a.State = "draft"
	}

	resp, err := c.do(ctx, http.MethodPost, c.ArticlesURL(), a, map[string]string{
		"Intercom-Version": createVersion,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var created Article
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decoding created article: %w", err)
	}

	c.logger.Info("article created", "id", created.ID, "url", created.URL)
	return &created, nil
}

type deleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// DeleteArticle deletes an article by id. A 404 is ErrArticleNotFound and
// a 200 without deleted=true is ErrNotDeleted.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.ArticlesURL()+"/"+url.PathEscape(id), nil, map[string]string{
		"Intercom-Version": deleteVersion,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrArticleNotFound, id)
	default:
		return statusError(resp)
	}

	var dr deleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("decoding delete response: %w", err)
	}
	if !dr.Deleted {
		return fmt.Errorf("%w: %s", ErrNotDeleted, id)
	}

	c.logger.Info("article deleted", "id", id)
	return nil
}
