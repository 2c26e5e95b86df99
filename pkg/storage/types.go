package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is a raw article exactly as received from the content API. Fields
// are kept opaque so the snapshot round trips without loss.
type Record map[string]any

// ID returns the record's identifier in string form, or "" when absent.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// SupplementalRecord is a locally authored question and answer pair.
type SupplementalRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Validate reports ErrInvalidSupplemental when either field is blank.
func (s SupplementalRecord) Validate() error {
	if strings.TrimSpace(s.Question) == "" || strings.TrimSpace(s.Answer) == "" {
		return ErrInvalidSupplemental
	}
	return nil
}
