// Package llm defines the text generation contract used by the QA chain.
package llm

import (
	"context"
	"errors"
)

// ErrGeneration is returned when a provider fails to produce a completion.
var ErrGeneration = errors.New("generation failed")

// Generator produces a completion for a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt).
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
