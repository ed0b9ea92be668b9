package generator

import "context"

// LLMClient abstracts the text-generation backend so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is the configuration shared by concrete clients.
type LLMSettings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}
