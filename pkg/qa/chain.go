// Package qa answers questions against an index generation: a Chain binds
// retrieval to generation and the Answerer turns chain output into the text
// users see.
package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/embeddings"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/llm"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/vector"
)

// DefaultTopK is the number of documents retrieved per question.
const DefaultTopK = 5

// Runner runs one question through retrieval and generation.
type Runner interface {
	Run(ctx context.Context, question string) (Result, error)
}

// ChainConfig wires a Chain.
type ChainConfig struct {
	// Embedder must be the same embedder that built the index.
	Embedder  embeddings.Embedder
	Driver    vector.Driver
	Generator llm.Generator
	Prompt    *Prompt
	TopK      int
}

// Chain retrieves the top-k documents for a question, stuffs them into the
// prompt and asks the generator.
type Chain struct {
	embedder  embeddings.Embedder
	driver    vector.Driver
	generator llm.Generator
	prompt    *Prompt
	topK      int
}

// NewChain creates a Chain.
func NewChain(c ChainConfig) (*Chain, error) {
	if c.Embedder == nil {
		return nil, fmt.Errorf("chain requires an embedder")
	}
	if c.Driver == nil {
		return nil, fmt.Errorf("chain requires a vector driver")
	}
	if c.Generator == nil {
		return nil, fmt.Errorf("chain requires a generator")
	}
	if c.Prompt == nil {
		return nil, fmt.Errorf("chain requires a prompt")
	}

	topK := c.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &Chain{
		embedder:  c.Embedder,
		driver:    c.Driver,
		generator: c.Generator,
		prompt:    c.Prompt,
		topK:      topK,
	}, nil
}

// Search returns the k documents most similar to question. k <= 0 uses the
// chain's top-k.
func (c *Chain) Search(ctx context.Context, question string, k int) ([]vector.QueryResult, error) {
	if k <= 0 {
		k = c.topK
	}

	embedding, err := c.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results, err := c.driver.Query(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("querying vector store: %w", err)
	}
	return results, nil
}

// Run answers question. The result carries the question under "query", the
// answer under "result" and the retrieved ids under "source_documents".
func (c *Chain) Run(ctx context.Context, question string) (Result, error) {
	docs, err := c.Search(ctx, question, c.topK)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(docs))
	sources := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
		sources[i] = vector.SourceID(d.Document)
	}

	answer, err := c.generator.Generate(ctx, c.prompt.Render(strings.Join(contents, "\n\n"), question))
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return Structured{
		"query":            question,
		AnswerField:        answer,
		"source_documents": sources,
	}, nil
}

var _ Runner = (*Chain)(nil)
