package domain

import "context"

// Provider is the interface all LLM backends must implement. The pipeline
// treats the model as an opaque service: prompt in, text out.
type Provider interface {
	// Generate produces a completion for the prompt. A single attempt is
	// made; callers decide what to do on failure.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// Embeddings returns an embedding vector for the text, for backends
	// that support it.
	Embeddings(ctx context.Context, text string) ([]float64, error)

	Name() string
	Model() string

	// Healthy reports whether the backend is reachable. Used as a
	// best-effort availability probe; failures are warnings, never fatal.
	Healthy(ctx context.Context) error
}

// GenerateRequest carries sampling parameters for one generation call.
type GenerateRequest struct {
	Prompt      string
	Temperature float64
	TopP        float64
	MaxContext  int // context window size in tokens; 0 uses the backend default
}
