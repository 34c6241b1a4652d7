package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/ports"
)

// EmbeddingPorts backs the text, frame, and window embedding ports with one
// provider embedder so every vector lives in the same space. Frames and
// windows are embedded through their semantic token text; mixing a learned
// query embedder with the deterministic frame encoder would put queries and
// frames in incompatible spaces, so substitution is all-or-nothing.
type EmbeddingPorts struct {
	client EmbedderClient
}

func NewEmbeddingPorts(client EmbedderClient) *EmbeddingPorts {
	return &EmbeddingPorts{client: client}
}

func (p *EmbeddingPorts) EmbedText(ctx context.Context, text string) ([]float64, error) {
	return p.embed(ctx, text)
}

func (p *EmbeddingPorts) EmbedFrame(ctx context.Context, clipID string, timestamp int, semanticTokens []string) ([]float64, error) {
	return p.embed(ctx, strings.Join(semanticTokens, " "))
}

func (p *EmbeddingPorts) ExtractWindowFeatures(ctx context.Context, window model.ActiveWindow, clip model.Clip) (model.WindowFeatures, error) {
	var steps [][]float64
	for _, frame := range clip.Frames {
		if frame.Timestamp < window.TStart || frame.Timestamp > window.TEnd {
			continue
		}
		text := strings.Join(append(append([]string{}, frame.Objects...), frame.Actions...), " ")
		vector, err := p.embed(ctx, text)
		if err != nil {
			return model.WindowFeatures{}, err
		}
		steps = append(steps, vector)
	}
	if len(steps) == 0 {
		vector, err := p.embed(ctx, strings.Join(window.SemanticTokens, " "))
		if err != nil {
			return model.WindowFeatures{}, err
		}
		steps = append(steps, vector)
	}

	pooled := make([]float64, len(steps[0]))
	for _, step := range steps {
		for i, value := range step {
			pooled[i] += value
		}
	}
	for i := range pooled {
		pooled[i] /= float64(len(steps))
	}

	return model.WindowFeatures{
		WindowID:              window.WindowID,
		ClipID:                window.ClipID,
		CameraID:              window.CameraID,
		TStart:                window.TStart,
		TEnd:                  window.TEnd,
		PooledEmbedding:       pooled,
		PerTimestepEmbeddings: steps,
		SemanticTokens:        window.SemanticTokens,
	}, nil
}

func (p *EmbeddingPorts) embed(ctx context.Context, text string) ([]float64, error) {
	raw, err := p.client.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	out := make([]float64, len(raw))
	for i, value := range raw {
		out[i] = float64(value)
	}
	return out, nil
}

// NarrativeSynthesizer rewrites the summary with a hosted model while the
// wrapped synthesizer keeps the evidence contract: claim redaction and the
// appendix stay deterministic, only the summary wording is generated. A
// provider failure keeps the deterministic summary.
type NarrativeSynthesizer struct {
	client  LLMClient
	wrapped ports.Synthesizer
}

func NewNarrativeSynthesizer(client LLMClient, wrapped ports.Synthesizer) *NarrativeSynthesizer {
	return &NarrativeSynthesizer{client: client, wrapped: wrapped}
}

func (s *NarrativeSynthesizer) Synthesize(ctx context.Context, queryText string, claims []model.ClaimRecord) (model.SynthesisOutput, error) {
	out, err := s.wrapped.Synthesize(ctx, queryText, claims)
	if err != nil {
		return model.SynthesisOutput{}, err
	}
	if len(out.Claims) == 0 {
		return out, nil
	}

	summary, err := s.client.Generate(ctx, summaryPrompt(queryText, out.Claims))
	if err != nil {
		log.Printf("narrative synthesis failed, keeping deterministic summary: %v", err)
		return out, nil
	}
	if trimmed := strings.TrimSpace(summary); trimmed != "" {
		out.Summary = trimmed
	}
	return out, nil
}

func summaryPrompt(queryText string, claims []model.ClaimRecord) string {
	var b strings.Builder
	b.WriteString("You are summarizing verified video surveillance findings.\n")
	b.WriteString("Query: ")
	b.WriteString(queryText)
	b.WriteString("\n\nVerified claims:\n")
	for i, claim := range claims {
		fmt.Fprintf(&b, "%d. %s\n", i+1, claim.Text)
	}
	b.WriteString("\nRestate only these claims as a short answer to the query. ")
	b.WriteString("Do not add events, entities, or times that are not in the claims.")
	return b.String()
}

var (
	_ ports.TextEmbedder  = (*EmbeddingPorts)(nil)
	_ ports.FrameEmbedder = (*EmbeddingPorts)(nil)
	_ ports.WindowEncoder = (*EmbeddingPorts)(nil)
	_ ports.Synthesizer   = (*NarrativeSynthesizer)(nil)
)
