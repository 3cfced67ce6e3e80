// Package llm provides the language-model clients that turn a prompt into a
// candidate SQL statement.
package llm

import (
	"context"
)

// SQLGenerator is the interface the ask pipeline depends on. Implementations
// return the raw model output; cleaning and validation happen downstream.
// Use this interface for dependency injection to enable mocking in tests.
type SQLGenerator interface {
	// GenerateSQL produces one text blob expected to contain a single SQL
	// statement.
	GenerateSQL(ctx context.Context, systemMessage string, prompt string) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Compile-time interface checks.
var (
	_ SQLGenerator = (*OpenAIClient)(nil)
	_ SQLGenerator = (*AnthropicClient)(nil)
	_ SQLGenerator = (*MockGenerator)(nil)
)
