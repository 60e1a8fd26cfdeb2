package domain

import "context"

// Generator is the shared answer-generation contract between layers.
type Generator interface {
	Generate(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// HealthChecker verifies backend availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CompletionRequest is one generation call: the system prompt carrying the
// assembled document context, the user's question and sampling parameters.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// CompletionResult carries the generated text, token usage and completion
// status. Finished is true when the model stopped normally rather than
// hitting the token limit or a content filter.
type CompletionResult struct {
	Content      string
	PromptTokens int
	TotalTokens  int
	Model        string
	Finished     bool
}
