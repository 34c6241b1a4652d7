// Package ports declares the capability interfaces the pipeline engine
// depends on. Any conforming implementation, deterministic or learned, can
// be substituted without touching pipeline logic.
package ports

import (
	"context"

	"github.com/agenthands/sightline/internal/model"
)

// TextEmbedder maps query text to a fixed-length normalized vector.
type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// FrameEmbedder maps a frame (identified by clip and timestamp, described
// by its semantic tokens) to a fixed-length vector.
type FrameEmbedder interface {
	EmbedFrame(ctx context.Context, clipID string, timestamp int, semanticTokens []string) ([]float64, error)
}

// WindowEncoder extracts pooled and per-timestep features for one window.
type WindowEncoder interface {
	ExtractWindowFeatures(ctx context.Context, window model.ActiveWindow, clip model.Clip) (model.WindowFeatures, error)
}

// Overlay is a rendered mask/bbox artifact produced during grounding.
// The engine persists overlays in the artifact repository.
type Overlay struct {
	URI     string
	Payload string
}

// SpatialGrounder segments and tracks entities inside a validated window.
// It may return zero tracklets.
type SpatialGrounder interface {
	Ground(ctx context.Context, window model.ValidatedWindow, clip model.Clip, queryVariant string) ([]model.Tracklet, []Overlay, error)
}

// EntityResolver links tracklets into cross-camera entity identities.
type EntityResolver interface {
	Resolve(ctx context.Context, tracklets []model.Tracklet, cameraTopology map[string][]string, maxTravelSeconds int) ([]model.EntityLink, error)
}

// LocalizeParams carries the configured temporal-localization knobs.
type LocalizeParams struct {
	SmoothingWindowSize int
	HysteresisHigh      float64
	HysteresisLow       float64
	MaskConfidenceFloor float64
}

// TemporalLocalizer infers one action segment for a tracklet.
type TemporalLocalizer interface {
	Localize(ctx context.Context, tracklet model.Tracklet, clip model.Clip, queryText string, params LocalizeParams) (model.TemporalSegment, error)
}

// Synthesizer turns claims into a grounded answer, re-validating that every
// emitted claim carries evidence.
type Synthesizer interface {
	Synthesize(ctx context.Context, queryText string, claims []model.ClaimRecord) (model.SynthesisOutput, error)
}

// QueryDecomposer splits a query into sub-queries for recall rescans.
// The first element is always the full query.
type QueryDecomposer interface {
	Decompose(queryText string) []string
}

// WindowCandidate is a raw activity span proposed by route selection.
type WindowCandidate struct {
	TStart int
	TEnd   int
	Reason string
}

// RouteSelector picks the ingestion route for a clip and derives candidate
// activity windows for it.
type RouteSelector interface {
	ChooseRoute(clip model.Clip) model.RouteID
	ExtractActiveWindows(clip model.Clip, route model.RouteID) []WindowCandidate
}

// Set bundles one implementation of every port the engine needs.
// TextEmbedder targets the frame-embedding space used for retrieval;
// WindowTextEmbedder targets the window-feature space used for validation
// scoring. The two spaces are aligned but not identical.
type Set struct {
	TextEmbedder       TextEmbedder
	WindowTextEmbedder TextEmbedder
	FrameEmbedder      FrameEmbedder
	WindowEncoder      WindowEncoder
	SpatialGrounder    SpatialGrounder
	EntityResolver     EntityResolver
	TemporalLocalizer  TemporalLocalizer
	Synthesizer        Synthesizer
	QueryDecomposer    QueryDecomposer
	RouteSelector      RouteSelector
}
