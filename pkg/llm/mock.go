package llm

import (
	"context"
)

// MockGenerator is a test double for SQLGenerator.
type MockGenerator struct {
	// GenerateSQLFunc overrides the canned response when set.
	GenerateSQLFunc func(ctx context.Context, systemMessage, prompt string) (string, error)

	// Response and Err are returned when GenerateSQLFunc is nil.
	Response string
	Err      error

	// Calls records every prompt received.
	Calls []string
}

func (m *MockGenerator) GenerateSQL(ctx context.Context, systemMessage, prompt string) (string, error) {
	m.Calls = append(m.Calls, prompt)
	if m.GenerateSQLFunc != nil {
		return m.GenerateSQLFunc(ctx, systemMessage, prompt)
	}
	return m.Response, m.Err
}

func (m *MockGenerator) Model() string {
	return "mock"
}
