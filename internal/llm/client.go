package llm

import (
	"context"
)

// Completion is one model response together with its usage accounting.
type Completion struct {
	Text      string
	TokensIn  int
	TokensOut int
}

// LLMClient generates a completion for a prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (Completion, error)
}

// EmbedderClient produces embedding vectors. IsConfigured reports whether
// the client can actually serve embeddings; callers treat an unconfigured
// embedder as absent rather than as an error.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	IsConfigured() bool
}
