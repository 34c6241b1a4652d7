package adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/ports"
)

// FrameSpaceEmbedder is the deterministic stand-in for the frame/text
// encoder (SigLIP-class). It serves both retrieval text embedding and
// per-frame embedding in the same vector space.
type FrameSpaceEmbedder struct {
	Dim int
}

func NewFrameSpaceEmbedder() *FrameSpaceEmbedder {
	return &FrameSpaceEmbedder{Dim: DefaultEmbeddingDim}
}

func (e *FrameSpaceEmbedder) EmbedText(_ context.Context, text string) ([]float64, error) {
	return DeterministicVector("siglip2:text:"+text, e.Dim), nil
}

func (e *FrameSpaceEmbedder) EmbedFrame(_ context.Context, clipID string, timestamp int, semanticTokens []string) ([]float64, error) {
	tokens := append([]string(nil), semanticTokens...)
	sort.Strings(tokens)
	seed := fmt.Sprintf("siglip2:frame:%s:%d:%s", clipID, timestamp, strings.Join(tokens, "|"))
	return DeterministicVector(seed, e.Dim), nil
}

// WindowSpaceTextEmbedder is the deterministic text head aligned to the
// window-feature space (LiT-style).
type WindowSpaceTextEmbedder struct {
	Dim int
}

func NewWindowSpaceTextEmbedder() *WindowSpaceTextEmbedder {
	return &WindowSpaceTextEmbedder{Dim: DefaultEmbeddingDim}
}

func (e *WindowSpaceTextEmbedder) EmbedText(_ context.Context, text string) ([]float64, error) {
	return DeterministicVector("lithead:text:"+text, e.Dim), nil
}

// WindowFeatureEncoder is the deterministic window feature extractor
// (InternVideo-class): a pooled embedding plus one embedding per timestep.
type WindowFeatureEncoder struct {
	Dim int
}

func NewWindowFeatureEncoder() *WindowFeatureEncoder {
	return &WindowFeatureEncoder{Dim: DefaultEmbeddingDim}
}

func (e *WindowFeatureEncoder) ExtractWindowFeatures(_ context.Context, window model.ActiveWindow, clip model.Clip) (model.WindowFeatures, error) {
	var frames []model.FrameObservation
	for _, frame := range clip.Frames {
		if frame.Timestamp >= window.TStart && frame.Timestamp <= window.TEnd {
			frames = append(frames, frame)
		}
	}
	if len(frames) == 0 {
		frames = []model.FrameObservation{{Timestamp: window.TStart}}
	}

	var semanticTokens []string
	perTimestep := make([][]float64, 0, len(frames))
	for _, frame := range frames {
		frameTokens := make([]string, 0, len(frame.Objects)+len(frame.Actions)+2)
		frameTokens = append(frameTokens, frame.Objects...)
		frameTokens = append(frameTokens, frame.Actions...)
		frameTokens = append(frameTokens, clip.CameraID, string(clip.Location))
		semanticTokens = append(semanticTokens, common.Tokenize(strings.Join(frameTokens, " "))...)

		seed := fmt.Sprintf("ivnext:frame:%s:%d:%s", clip.ClipID, frame.Timestamp, strings.Join(frameTokens, "|"))
		perTimestep = append(perTimestep, DeterministicVector(seed, e.Dim))
	}

	unique := sortedUnique(semanticTokens)
	pooledSeed := fmt.Sprintf("ivnext:pooled:%s:%d:%d:%s", clip.ClipID, window.TStart, window.TEnd, strings.Join(unique, "|"))

	return model.WindowFeatures{
		WindowID:              window.WindowID,
		ClipID:                window.ClipID,
		CameraID:              window.CameraID,
		TStart:                window.TStart,
		TEnd:                  window.TEnd,
		PooledEmbedding:       DeterministicVector(pooledSeed, e.Dim),
		PerTimestepEmbeddings: perTimestep,
		SemanticTokens:        unique,
	}, nil
}

func sortedUnique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

var (
	_ ports.TextEmbedder  = (*FrameSpaceEmbedder)(nil)
	_ ports.FrameEmbedder = (*FrameSpaceEmbedder)(nil)
	_ ports.TextEmbedder  = (*WindowSpaceTextEmbedder)(nil)
	_ ports.WindowEncoder = (*WindowFeatureEncoder)(nil)
)
