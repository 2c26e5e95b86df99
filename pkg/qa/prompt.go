package qa

import (
	"errors"
	"strings"
)

const (
	contextPlaceholder  = "{context}"
	questionPlaceholder = "{question}"
)

// ErrInvalidTemplate is returned when a prompt template lacks a placeholder.
var ErrInvalidTemplate = errors.New("prompt template must contain {context} and {question}")

// Prompt renders retrieved context and a question into model input.
type Prompt struct {
	template string
}

// NewPrompt validates tmpl and returns a Prompt.
func NewPrompt(tmpl string) (*Prompt, error) {
	if !strings.Contains(tmpl, contextPlaceholder) || !strings.Contains(tmpl, questionPlaceholder) {
		return nil, ErrInvalidTemplate
	}
	return &Prompt{template: tmpl}, nil
}

// Render substitutes both placeholders in a single pass, so text inside the
// context is never re-expanded.
func (p *Prompt) Render(context, question string) string {
	return strings.NewReplacer(
		contextPlaceholder, context,
		questionPlaceholder, question,
	).Replace(p.template)
}
