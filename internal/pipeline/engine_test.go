package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/agenthands/sightline/internal/adapter"
	"github.com/agenthands/sightline/internal/config"
	"github.com/agenthands/sightline/internal/fixture"
	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/orchestrator"
)

// permissiveConfig validates every scored window so end-to-end assertions
// do not depend on the exact pseudo-embedding similarity values.
func permissiveConfig() *config.Config {
	cfg := config.Default()
	cfg.Retrieval.MinValidationConfidence = 0.0
	return cfg
}

func hookReasons(events []orchestrator.TransitionEvent) []string {
	var reasons []string
	for _, event := range events {
		if strings.HasPrefix(event.Reason, "hook:") {
			reasons = append(reasons, event.Reason)
		}
	}
	return reasons
}

func TestEngine_RedSUVEndToEnd(t *testing.T) {
	engine := New(permissiveConfig(), adapter.DefaultSet())
	result, err := engine.Run(context.Background(), fixture.RedSUVQueryRequest())
	assert.NoError(t, err)

	// The noise clip has no person/vehicle signal, so only three clips
	// produce windows: exterior metadata window plus two interior spans.
	assert.Len(t, result.ActiveWindows, 3)
	routes := map[string]model.RouteID{}
	for _, window := range result.ActiveWindows {
		routes[window.ClipID] = window.RouteID
	}
	assert.Equal(t, model.RouteMetaSync, routes["clip_ext_1"])
	assert.Equal(t, model.RouteCVState, routes["clip_int_1"])
	assert.Equal(t, model.RouteCVState, routes["clip_int_2"])

	assert.Len(t, result.ValidatedWindows, 3)

	// Exterior window grounds the SUV and the person; interiors the person.
	assert.Len(t, result.Tracklets, 4)

	assert.Len(t, result.EntityLinks, 2)
	objectLink, personLink := result.EntityLinks[0], result.EntityLinks[1]
	assert.Equal(t, model.EntityObject, objectLink.EntityType)
	assert.Equal(t, "red_suv", objectLink.Label)
	assert.True(t, objectLink.Resolved)
	assert.Equal(t, model.EntityPerson, personLink.EntityType)
	assert.Equal(t, "person_p1", personLink.Label)
	assert.True(t, personLink.Resolved)
	assert.Len(t, personLink.TrackIDs, 3)

	assert.Len(t, result.TemporalSegments, 3)
	var extSegment *model.TemporalSegment
	for i := range result.TemporalSegments {
		if result.TemporalSegments[i].ClipID == "clip_ext_1" {
			extSegment = &result.TemporalSegments[i]
		}
	}
	if assert.NotNil(t, extSegment) {
		// Smoothed hysteresis trims the window to the exit activity.
		assert.Equal(t, 10, extSegment.TStart)
		assert.Equal(t, 13, extSegment.TEnd)
		assert.Equal(t, 0.6, extSegment.Confidence)
	}

	var exits, moves int
	for _, edge := range result.GraphEdges {
		assert.NotEmpty(t, edge.EvidenceRefs, "edge %s must carry evidence", edge.EdgeID)
		switch edge.EdgeType {
		case model.EdgeExits:
			exits++
			assert.Equal(t, "cam_ext_1", edge.CameraID)
		case model.EdgeMovesTo:
			moves++
		}
	}
	assert.Equal(t, 1, exits)
	assert.Equal(t, 2, moves)

	assert.Len(t, result.Synthesis.Claims, 3)
	assert.Equal(t, 0, result.Synthesis.RedactedClaimCount)
	assert.NotEqual(t, adapter.ConservativeSummary, result.Synthesis.Summary)
	assert.Len(t, result.Synthesis.EvidenceAppendix, 3)

	// Happy path: seven stages, six forward transitions, no hooks.
	events := engine.Runtime().Events()
	assert.Len(t, events, 6)
	assert.Empty(t, hookReasons(events))

	assert.Len(t, result.Metrics.StageDurationsMS, 7)
	for _, stage := range orchestrator.CanonicalFlow() {
		assert.Contains(t, result.Metrics.StageDurationsMS, orchestrator.StageName[stage])
	}
}

func TestEngine_RepeatedRunsAreDeterministic(t *testing.T) {
	first, err := New(permissiveConfig(), adapter.DefaultSet()).Run(context.Background(), fixture.RedSUVQueryRequest())
	assert.NoError(t, err)
	second, err := New(permissiveConfig(), adapter.DefaultSet()).Run(context.Background(), fixture.RedSUVQueryRequest())
	assert.NoError(t, err)

	diff := cmp.Diff(first, second, cmpopts.IgnoreFields(model.PipelineResult{}, "Metrics"))
	assert.Empty(t, diff)
}

func TestEngine_WarmCacheOnRepeatedQuery(t *testing.T) {
	engine := New(permissiveConfig(), adapter.DefaultSet())

	first, err := engine.Run(context.Background(), fixture.RedSUVQueryRequest())
	assert.NoError(t, err)
	assert.Equal(t, 3, first.Metrics.CacheMisses)
	assert.Greater(t, first.Metrics.CacheHits, 0)

	second, err := engine.Run(context.Background(), fixture.RedSUVQueryRequest())
	assert.NoError(t, err)
	// Counters are cumulative: the second run only hits.
	assert.Equal(t, 3, second.Metrics.CacheMisses)
	assert.Greater(t, second.Metrics.CacheHits, first.Metrics.CacheHits)
}

func TestEngine_RouteCoverage(t *testing.T) {
	engine := New(permissiveConfig(), adapter.DefaultSet())
	result, err := engine.Run(context.Background(), fixture.RouteCoverageRequest())
	assert.NoError(t, err)

	routes := map[model.RouteID]bool{}
	for _, window := range result.ActiveWindows {
		routes[window.RouteID] = true
	}
	assert.True(t, routes[model.RouteMetaSync])
	assert.True(t, routes[model.RouteSigExAdaptive])
	assert.True(t, routes[model.RouteCVState])
	assert.True(t, routes[model.RouteBgMotionTrigger])
	assert.Len(t, result.ActiveWindows, 4)
}

func TestEngine_GroundingFallbackEngagesAtUnreachableFloor(t *testing.T) {
	cfg := permissiveConfig()
	cfg.Grounding.MinMaskConfidence = 0.95

	engine := New(cfg, adapter.DefaultSet())
	result, err := engine.Run(context.Background(), fixture.RedSUVQueryRequest())
	assert.NoError(t, err)

	assert.NotEmpty(t, result.Tracklets)
	for _, tracklet := range result.Tracklets {
		assert.Equal(t, 0.51, tracklet.MaskConfidence)
		assert.True(t, strings.HasPrefix(tracklet.TrackID, "FALLBACK_TRACK_"), tracklet.TrackID)
		assert.True(t, engine.Stores().Artifacts.Has(tracklet.OverlayURI))
	}
	assert.Contains(t, hookReasons(engine.Runtime().Events()), "hook:low_mask_confidence")

	// The fallback confidence sits below the floor, so every segment is
	// flagged for low mask confidence.
	for _, segment := range result.TemporalSegments {
		assert.Contains(t, segment.FailureFlags, model.FlagLowMaskConfidence)
	}
}

func TestEngine_ImplausibleTravelIsAmbiguous(t *testing.T) {
	engine := New(permissiveConfig(), adapter.DefaultSet())
	result, err := engine.Run(context.Background(), fixture.AmbiguousPersonRequest())
	assert.NoError(t, err)

	assert.Len(t, result.EntityLinks, 1)
	link := result.EntityLinks[0]
	assert.False(t, link.Resolved)
	assert.Equal(t, 0.46, link.Confidence)

	assert.Contains(t, hookReasons(engine.Runtime().Events()), "hook:identity_ambiguity")

	// The unresolved identity still yields a MOVES_TO edge at reduced
	// confidence, with evidence attached.
	assert.Len(t, result.GraphEdges, 1)
	edge := result.GraphEdges[0]
	assert.Equal(t, model.EdgeMovesTo, edge.EdgeType)
	assert.Equal(t, 0.45, edge.Confidence)
	assert.NotEmpty(t, edge.EvidenceRefs)

	// The movement claim names both endpoints: the person entity and the
	// camera it arrived at.
	if assert.Len(t, result.Synthesis.Claims, 1) {
		assert.Equal(t, []string{edge.SourceID, edge.TargetID}, result.Synthesis.Claims[0].EntityIDs)
	}
}

func TestEngine_RetrievalFallbackWhenNothingValidates(t *testing.T) {
	cfg := config.Default()
	cfg.Retrieval.MinValidationConfidence = 0.99

	engine := New(cfg, adapter.DefaultSet())
	result, err := engine.Run(context.Background(), fixture.AmbiguousPersonRequest())
	assert.NoError(t, err)

	// Per-clip best fallback keeps one window per clip in play.
	assert.Len(t, result.ValidatedWindows, 2)
	clips := map[string]bool{}
	for _, window := range result.ValidatedWindows {
		clips[window.ClipID] = true
	}
	assert.True(t, clips["clip_amb_a"])
	assert.True(t, clips["clip_amb_b"])

	assert.Contains(t, hookReasons(engine.Runtime().Events()), "hook:low_retrieval_confidence")
}

func TestEngine_EmptyRequestProducesConservativeOutput(t *testing.T) {
	engine := New(permissiveConfig(), adapter.DefaultSet())
	result, err := engine.Run(context.Background(), &model.QueryRequest{
		QueryID:   "query_empty",
		QueryText: "Find the red SUV",
	})
	assert.NoError(t, err)

	assert.Empty(t, result.ActiveWindows)
	assert.Empty(t, result.Tracklets)
	assert.Empty(t, result.GraphEdges)
	assert.Equal(t, adapter.ConservativeSummary, result.Synthesis.Summary)

	events := engine.Runtime().Events()
	assert.Len(t, events, 6)
	assert.Empty(t, hookReasons(events))
}

func TestEngine_EvidenceAppendixMatchesClaims(t *testing.T) {
	engine := New(permissiveConfig(), adapter.DefaultSet())
	result, err := engine.Run(context.Background(), fixture.RedSUVQueryRequest())
	assert.NoError(t, err)

	assert.Equal(t, len(result.Synthesis.Claims), len(result.Synthesis.EvidenceAppendix))
	for i, claim := range result.Synthesis.Claims {
		assert.NotEmpty(t, claim.EvidenceRefs)
		assert.Contains(t, result.Synthesis.EvidenceAppendix[i], claim.ClaimID)
		for _, ref := range claim.EvidenceRefs {
			assert.NotEmpty(t, ref.EmbeddingID)
			assert.Equal(t, "v1.0", ref.ModelVersion)
		}
	}
}
