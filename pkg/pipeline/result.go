package pipeline

import (
	"time"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/index"
)

// RebuildResult reports one rebuild attempt. Err is nil exactly when a new
// generation became active.
type RebuildResult struct {
	Generation *index.Generation
	Fetched    int
	Valid      int
	Invalid    int
	Duration   time.Duration
	Err        error
}

// OK reports whether the rebuild swapped in a new generation.
func (r RebuildResult) OK() bool {
	return r.Err == nil && r.Generation != nil
}
