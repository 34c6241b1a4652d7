// Package llm wraps hosted model providers behind the pipeline's ports.
// The deterministic reference adapters remain the default stack; providers
// configured here substitute learned clients for the embedding and
// synthesis ports.
package llm

import (
	"context"
)

// LLMClient generates text from a prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient maps text to a provider embedding vector.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
