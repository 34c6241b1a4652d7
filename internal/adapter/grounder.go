package adapter

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/ports"
)

// MaskGrounder is the deterministic stand-in for the promptable
// segmentation/tracking model (SAM-class). It derives tracklets from frame
// object labels that match the query variant.
type MaskGrounder struct{}

func NewMaskGrounder() *MaskGrounder {
	return &MaskGrounder{}
}

func (g *MaskGrounder) Ground(_ context.Context, window model.ValidatedWindow, clip model.Clip, queryVariant string) ([]model.Tracklet, []ports.Overlay, error) {
	queryTokens := make(map[string]struct{})
	for _, token := range common.Tokenize(queryVariant) {
		queryTokens[token] = struct{}{}
	}

	var frames []model.FrameObservation
	for _, frame := range clip.Frames {
		if frame.Timestamp >= window.TStart && frame.Timestamp <= window.TEnd {
			frames = append(frames, frame)
		}
	}

	objectLabels := collectLabels(frames, func(label string) bool {
		lower := strings.ToLower(label)
		for _, token := range []string{"suv", "car", "truck", "vehicle"} {
			if strings.Contains(lower, token) {
				return true
			}
		}
		return false
	})
	personLabels := collectLabels(frames, func(label string) bool {
		return strings.HasPrefix(strings.ToLower(label), "person")
	})

	var tracklets []model.Tracklet
	var overlays []ports.Overlay

	if hasAny(queryTokens, "suv", "vehicle", "car") {
		for _, label := range objectLabels {
			confidence := 0.62
			if labelMatchesQuery(label, queryTokens) {
				confidence = 0.88
			}
			track, overlay := g.newTracklet(clip, window, model.EntityObject, label, confidence)
			tracklets = append(tracklets, track)
			overlays = append(overlays, overlay)
		}
	}

	if hasAny(queryTokens, "person", "who") {
		for _, label := range personLabels {
			track, overlay := g.newTracklet(clip, window, model.EntityPerson, label, 0.86)
			tracklets = append(tracklets, track)
			overlays = append(overlays, overlay)
		}
	}

	// Broad query with detections present: expose one low-confidence
	// generic track rather than nothing.
	if len(tracklets) == 0 && len(objectLabels) > 0 {
		track, overlay := g.newTracklet(clip, window, model.EntityObject, objectLabels[0], 0.42)
		tracklets = append(tracklets, track)
		overlays = append(overlays, overlay)
	}

	return tracklets, overlays, nil
}

func (g *MaskGrounder) newTracklet(clip model.Clip, window model.ValidatedWindow, entityType model.EntityType, label string, confidence float64) (model.Tracklet, ports.Overlay) {
	trackID := common.StableID("TRACK", clip.ClipID, window.WindowID, string(entityType), label)
	overlayURI := fmt.Sprintf("overlay://%s/%s.json", clip.ClipID, trackID)
	overlay := ports.Overlay{
		URI:     overlayURI,
		Payload: fmt.Sprintf("mask_bbox_overlay:%s:%d-%d", label, window.TStart, window.TEnd),
	}

	return model.Tracklet{
		TrackID:        trackID,
		ClipID:         clip.ClipID,
		CameraID:       clip.CameraID,
		WindowID:       window.WindowID,
		EntityType:     entityType,
		Label:          label,
		TStart:         window.TStart,
		TEnd:           window.TEnd,
		MaskConfidence: round3(clamp01(confidence)),
		OverlayURI:     overlayURI,
	}, overlay
}

func collectLabels(frames []model.FrameObservation, match func(string) bool) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, frame := range frames {
		for _, label := range frame.Objects {
			if !match(label) {
				continue
			}
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

func labelMatchesQuery(label string, queryTokens map[string]struct{}) bool {
	lower := strings.ToLower(label)
	for token := range queryTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func hasAny(tokens map[string]struct{}, wanted ...string) bool {
	for _, token := range wanted {
		if _, ok := tokens[token]; ok {
			return true
		}
	}
	return false
}

func clamp01(value float64) float64 {
	return math.Min(math.Max(value, 0.0), 1.0)
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}

var _ ports.SpatialGrounder = (*MaskGrounder)(nil)
