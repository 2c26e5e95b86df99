package testutils

import (
	"context"
	"errors"
	"sync"
)

// MockGenerator is a test llm.Generator that echoes a canned answer and
// remembers the prompts it saw.
type MockGenerator struct {
	// Answer is returned for every prompt.
	Answer string

	// Fail makes Generate return an error.
	Fail bool

	// Panic makes Generate panic.
	Panic bool

	mu      sync.Mutex
	prompts []string
}

func NewMockGenerator(answer string) *MockGenerator {
	return &MockGenerator{Answer: answer}
}

func (m *MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if m.Panic {
		panic("mock generator panic")
	}
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.Fail {
		return "", errors.New("mock generation failure")
	}
	return m.Answer, nil
}

// Prompts returns every prompt received so far.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
