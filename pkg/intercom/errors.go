package intercom

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken is returned when the client is built without a token.
	ErrMissingToken = errors.New("intercom token is required")

	// ErrArticleNotFound is returned when the API answers 404 for an article.
	ErrArticleNotFound = errors.New("article not found")

	// ErrNotDeleted is returned when a delete call succeeds but the API
	// reports the article as not deleted.
	ErrNotDeleted = errors.New("article was not deleted")
)

// StatusError is a non-success HTTP response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("intercom returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("intercom returned status %d: %s", e.StatusCode, e.Body)
}
