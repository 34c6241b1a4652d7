package adapter

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/sightline/internal/model"
)

func norm(v []float64) float64 {
	sum := 0.0
	for _, value := range v {
		sum += value * value
	}
	return math.Sqrt(sum)
}

func TestDeterministicVector_StableAndNormalized(t *testing.T) {
	a := DeterministicVector("seed", DefaultEmbeddingDim)
	b := DeterministicVector("seed", DefaultEmbeddingDim)
	c := DeterministicVector("other", DefaultEmbeddingDim)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, DefaultEmbeddingDim)
	assert.InDelta(t, 1.0, norm(a), 1e-9)
}

func TestFrameSpaceEmbedder_TextAndFrameSpaces(t *testing.T) {
	e := NewFrameSpaceEmbedder()
	ctx := context.Background()

	text, err := e.EmbedText(ctx, "find the red suv")
	assert.NoError(t, err)
	assert.Len(t, text, DefaultEmbeddingDim)

	frame, err := e.EmbedFrame(ctx, "clip_a", 10, []string{"red", "suv"})
	assert.NoError(t, err)
	assert.Len(t, frame, DefaultEmbeddingDim)
	assert.NotEqual(t, text, frame)
}

func TestFrameSpaceEmbedder_TokenOrderInvariant(t *testing.T) {
	e := NewFrameSpaceEmbedder()
	ctx := context.Background()

	a, err := e.EmbedFrame(ctx, "clip_a", 10, []string{"suv", "red"})
	assert.NoError(t, err)
	b, err := e.EmbedFrame(ctx, "clip_a", 10, []string{"red", "suv"})
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWindowSpaceTextEmbedder_DistinctFromFrameSpace(t *testing.T) {
	frameSpace := NewFrameSpaceEmbedder()
	windowSpace := NewWindowSpaceTextEmbedder()
	ctx := context.Background()

	a, err := frameSpace.EmbedText(ctx, "find the red suv")
	assert.NoError(t, err)
	b, err := windowSpace.EmbedText(ctx, "find the red suv")
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestWindowFeatureEncoder_FeaturesPerTimestep(t *testing.T) {
	encoder := NewWindowFeatureEncoder()
	clip := model.Clip{
		ClipID:   "clip_ext_1",
		CameraID: "cam_ext_1",
		Location: model.LocationExterior,
		Frames: []model.FrameObservation{
			{Timestamp: 8, Objects: []string{"red_suv"}},
			{Timestamp: 9, Objects: []string{"red_suv"}, Actions: []string{"person_exits_suv"}},
			{Timestamp: 20, Objects: []string{"blue_sedan"}},
		},
	}
	window := model.ActiveWindow{WindowID: "win_1", ClipID: "clip_ext_1", CameraID: "cam_ext_1", TStart: 8, TEnd: 9}

	features, err := encoder.ExtractWindowFeatures(context.Background(), window, clip)
	assert.NoError(t, err)
	assert.Equal(t, "win_1", features.WindowID)
	assert.Len(t, features.PerTimestepEmbeddings, 2)
	assert.Len(t, features.PooledEmbedding, DefaultEmbeddingDim)
	// Token sets are sorted and deduplicated; camera and location included.
	assert.Equal(t, []string{"1", "cam", "exits", "ext", "exterior", "person", "red", "suv"}, features.SemanticTokens)
}

func TestWindowFeatureEncoder_EmptyWindowStillProducesFeatures(t *testing.T) {
	encoder := NewWindowFeatureEncoder()
	clip := model.Clip{ClipID: "clip_a", CameraID: "cam_a", Location: model.LocationInterior}
	window := model.ActiveWindow{WindowID: "win_e", ClipID: "clip_a", CameraID: "cam_a", TStart: 5, TEnd: 6}

	features, err := encoder.ExtractWindowFeatures(context.Background(), window, clip)
	assert.NoError(t, err)
	assert.Len(t, features.PerTimestepEmbeddings, 1)
	assert.Len(t, features.PooledEmbedding, DefaultEmbeddingDim)
}
