package vector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var collectionPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,62}$`)

// ValidateCollection checks that name is safe to use as a table or
// collection identifier in every backend.
func ValidateCollection(name string) error {
	if !collectionPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

// GenerationCollection names the collection for an index generation built at t.
func GenerationCollection(base string, t time.Time) string {
	return fmt.Sprintf("%s_%d", base, t.UnixMilli())
}

// RowKey returns the key for the document with id at position ordinal of a
// generation. Snapshot ids can repeat or be missing; row keys never collide.
func RowKey(id string, ordinal int) string {
	return id + "#" + strconv.Itoa(ordinal)
}

// SourceID returns the article or supplemental id a row was built from.
func SourceID(doc Document) string {
	if i := strings.LastIndexByte(doc.ID, '#'); i >= 0 {
		return doc.ID[:i]
	}
	return doc.ID
}
