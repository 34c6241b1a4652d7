package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/sightline/internal/adapter"
	"github.com/agenthands/sightline/internal/config"
	"github.com/agenthands/sightline/internal/ports"
)

// NewPortSet builds the port set for the configured provider. The empty or
// "reference" provider returns the deterministic stack unchanged; hosted
// providers substitute their embedding and synthesis clients on top of it.
func NewPortSet(ctx context.Context, cfg config.LLMConfig) (ports.Set, error) {
	set := adapter.DefaultSet()

	switch provider := strings.ToLower(cfg.Provider); provider {
	case "", "reference":
		return set, nil

	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		wireEmbeddings(&set, c)
		wireSynthesis(&set, c)
		return set, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return ports.Set{}, err
		}
		wireEmbeddings(&set, c)
		wireSynthesis(&set, c)
		return set, nil

	case "claude":
		// No embeddings API; the deterministic embedding stack stays.
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		wireSynthesis(&set, c)
		return set, nil

	case "ollama":
		// Ollama speaks the OpenAI-compatible API; the key is a dummy.
		baseURL := strings.TrimRight(cfg.BaseURL, "/")
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		wireEmbeddings(&set, c)
		wireSynthesis(&set, c)
		return set, nil

	default:
		return ports.Set{}, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

func wireEmbeddings(set *ports.Set, client EmbedderClient) {
	embedding := NewEmbeddingPorts(client)
	set.TextEmbedder = embedding
	set.WindowTextEmbedder = embedding
	set.FrameEmbedder = embedding
	set.WindowEncoder = embedding
}

func wireSynthesis(set *ports.Set, client LLMClient) {
	set.Synthesizer = NewNarrativeSynthesizer(client, set.Synthesizer)
}
