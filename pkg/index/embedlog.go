package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/normalizer"
)

// WriteEmbeddingLog overwrites path with one block per document:
//
//	Document ID: <id>
//	Document Content: <content>
//	Embedding: [v1, v2, ...]
//
// followed by a blank line. The log is for auditing and is never read back.
func WriteEmbeddingLog(path string, docs []normalizer.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("embedding log: %d documents but %d vectors", len(docs), len(vectors))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating embedding log directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating embedding log: %w", err)
	}

	w := bufio.NewWriter(f)
	for i, doc := range docs {
		fmt.Fprintf(w, "Document ID: %s\nDocument Content: %s\nEmbedding: %s\n\n", doc.ID, doc.Content, formatVector(vectors[i]))
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing embedding log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing embedding log: %w", err)
	}
	return nil
}

func formatVector(v []float32) string {
	buf := make([]byte, 0, len(v)*12+2)
	buf = append(buf, '[')
	for i, x := range v {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = strconv.AppendFloat(buf, float64(x), 'g', -1, 32)
	}
	buf = append(buf, ']')
	return string(buf)
}
