package llm

import "context"

// Client abstracts the generative-AI provider. Implementations return the
// model's raw text output; structure is imposed downstream.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PlaceholderClient is a stub implementation used when no provider is configured.
type PlaceholderClient struct{}

// Generate fails with a service error signaling the missing provider.
func (PlaceholderClient) Generate(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", &GenerationError{Kind: KindServiceError, Message: "AI provider is not configured"}
}
