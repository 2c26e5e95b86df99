package qa

import (
	"fmt"
	"strings"
)

// AnswerField is the key holding the generated answer in a Structured result.
const AnswerField = "result"

// Result is the raw output of a chain run. It is one of Structured, Text or
// Other.
type Result interface {
	answerText() string
}

// Structured is a keyed result. The answer lives under AnswerField.
type Structured map[string]any

// Text is a plain generated string.
type Text string

// Other wraps any value a runner produced that is neither keyed nor text.
type Other struct {
	Value any
}

func (s Structured) answerText() string {
	v, ok := s[AnswerField]
	if !ok {
		return NoResultFieldText
	}
	if v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return strings.TrimSpace(str)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (t Text) answerText() string {
	return strings.TrimSpace(string(t))
}

func (o Other) answerText() string {
	if o.Value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(o.Value))
}

// AnswerText extracts the answer from r. A nil result yields "".
func AnswerText(r Result) string {
	if r == nil {
		return ""
	}
	return r.answerText()
}
