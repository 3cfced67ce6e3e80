package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/datachat-labs/datachat-engine/pkg/config"
)

// NewGenerator creates the SQL generator selected by configuration.
// Returns the SQLGenerator interface to enable dependency injection of mocks.
func NewGenerator(cfg *config.LLMConfig, logger *zap.Logger) (SQLGenerator, error) {
	clientCfg := &Config{
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}

	switch cfg.Provider {
	case "openai":
		client, err := NewOpenAIClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil
	case "anthropic":
		client, err := NewAnthropicClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
