package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/ports"
)

// stageTemporalLocalization localizes one action segment per target
// tracklet. Person tracklets are preferred; only when none exist does the
// stage fall back to localizing everything. A post-pass flags segments that
// overlap another segment in the same clip as multi-actor ambiguous.
func (e *Engine) stageTemporalLocalization(ctx context.Context, request *model.QueryRequest, tracklets []model.Tracklet, clipsByID map[string]model.Clip) ([]model.TemporalSegment, error) {
	var targets []model.Tracklet
	for _, tracklet := range tracklets {
		if tracklet.EntityType == model.EntityPerson {
			targets = append(targets, tracklet)
		}
	}
	if len(targets) == 0 {
		targets = tracklets
	}

	params := ports.LocalizeParams{
		SmoothingWindowSize: e.cfg.Temporal.SmoothingWindowSize,
		HysteresisHigh:      e.cfg.Temporal.HysteresisHigh,
		HysteresisLow:       e.cfg.Temporal.HysteresisLow,
		MaskConfidenceFloor: e.cfg.Grounding.MinMaskConfidence,
	}
	segments := make([]model.TemporalSegment, 0, len(targets))
	for _, tracklet := range targets {
		segment, err := e.ports.TemporalLocalizer.Localize(ctx, tracklet, clipsByID[tracklet.ClipID], request.QueryText, params)
		if err != nil {
			return nil, fmt.Errorf("localize track %s: %w", tracklet.TrackID, err)
		}
		segments = append(segments, segment)
	}

	for i := range segments {
		for j := range segments {
			if i == j || segments[j].ClipID != segments[i].ClipID {
				continue
			}
			if segments[j].TEnd < segments[i].TStart || segments[j].TStart > segments[i].TEnd {
				continue
			}
			segments[i].FailureFlags = addFlag(segments[i].FailureFlags, model.FlagMultiActorAmbiguity)
			break
		}
	}
	return segments, nil
}

// addFlag appends a failure flag, deduplicated and sorted.
func addFlag(flags []string, flag string) []string {
	for _, existing := range flags {
		if existing == flag {
			return flags
		}
	}
	flags = append(flags, flag)
	sort.Strings(flags)
	return flags
}
