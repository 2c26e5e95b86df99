// Package llmutils builds a configured llm.Generator.
package llmutils

import (
	"fmt"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/llm"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/llm/anthropic"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/llm/ollama"
	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/llm/openai"
)

type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
}

func NewGenerator(o *NewGeneratorOpts) (llm.Generator, error) {
	switch o.ProviderType {
	case "ollama", "":
		return ollama.NewGenerator(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "openai":
		return openai.NewGenerator(openai.Config{
			BaseURL: o.TargetURL,
			APIKey:  o.APIKey,
			Model:   o.Model,
		})
	case "anthropic":
		return anthropic.NewGenerator(anthropic.Config{
			BaseURL: o.TargetURL,
			APIKey:  o.APIKey,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", o.ProviderType)
	}
}
