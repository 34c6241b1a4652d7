package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
)

const fallbackMaskConfidence = 0.51

// stageSpatialGrounding grounds each validated window, retrying with query
// variants when the mean mask confidence stays under the floor, and falling
// back to coarse detector boxes when segmentation never clears it. Returns
// the tracklets plus whether any window needed the fallback path.
func (e *Engine) stageSpatialGrounding(ctx context.Context, request *model.QueryRequest, validated []model.ValidatedWindow, clipsByID map[string]model.Clip) ([]model.Tracklet, bool, error) {
	floor := e.cfg.Grounding.MinMaskConfidence
	variants := e.ports.QueryDecomposer.Decompose(request.QueryText)
	fellBack := false

	var tracklets []model.Tracklet
	for _, window := range validated {
		clip := clipsByID[window.ClipID]

		var best []model.Tracklet
		bestScore := -1.0
		for attempt := 0; attempt <= e.cfg.Grounding.RetryMaxAttempts; attempt++ {
			variant := variants[min(attempt, len(variants)-1)]
			candidates, overlays, err := e.ports.SpatialGrounder.Ground(ctx, window, clip, variant)
			if err != nil {
				return nil, false, fmt.Errorf("ground window %s: %w", window.WindowID, err)
			}
			for _, overlay := range overlays {
				e.stores.Artifacts.Put(overlay.URI, overlay.Payload)
			}
			if len(candidates) == 0 {
				continue
			}
			score := meanMaskConfidence(candidates)
			if score > bestScore {
				best, bestScore = candidates, score
			}
			if score >= floor {
				break
			}
		}

		if bestScore < floor {
			fellBack = true
			if fallback := e.detectorTrackerFallback(window, clip); len(fallback) > 0 {
				best = fallback
			}
		}

		for _, tracklet := range best {
			if tracklet.MaskConfidence >= floor {
				e.stores.FeatureCache.SetL2("l2:"+tracklet.TrackID, common.Tokenize(tracklet.Label))
			}
			tracklets = append(tracklets, tracklet)
		}
	}
	return tracklets, fellBack, nil
}

// detectorTrackerFallback builds coarse whole-window tracklets from raw
// frame object labels when segmentation stays below the confidence floor.
// Only person and vehicle labels qualify, capped at two per window.
func (e *Engine) detectorTrackerFallback(window model.ValidatedWindow, clip model.Clip) []model.Tracklet {
	seen := make(map[string]struct{})
	var labels []string
	for _, frame := range framesInSpan(clip, window.TStart, window.TEnd) {
		for _, object := range frame.Objects {
			// Lowercase only for the filter; the stored label stays raw.
			lowered := strings.ToLower(object)
			if !strings.HasPrefix(lowered, "person") && !strings.Contains(lowered, "suv") && !strings.Contains(lowered, "car") {
				continue
			}
			if _, ok := seen[object]; ok {
				continue
			}
			seen[object] = struct{}{}
			labels = append(labels, object)
		}
	}
	sort.Strings(labels)
	if len(labels) > 2 {
		labels = labels[:2]
	}

	var tracklets []model.Tracklet
	for _, label := range labels {
		entityType := model.EntityObject
		if strings.HasPrefix(strings.ToLower(label), "person") {
			entityType = model.EntityPerson
		}
		trackID := common.StableID("FALLBACK_TRACK", clip.ClipID, window.WindowID, label)
		overlayURI := fmt.Sprintf("overlay://%s/%s.json", clip.ClipID, trackID)
		e.stores.Artifacts.Put(overlayURI, "fallback_overlay:"+label)
		tracklets = append(tracklets, model.Tracklet{
			TrackID:        trackID,
			ClipID:         clip.ClipID,
			CameraID:       clip.CameraID,
			WindowID:       window.WindowID,
			EntityType:     entityType,
			Label:          label,
			TStart:         window.TStart,
			TEnd:           window.TEnd,
			MaskConfidence: fallbackMaskConfidence,
			OverlayURI:     overlayURI,
		})
	}
	return tracklets
}

func meanMaskConfidence(tracklets []model.Tracklet) float64 {
	confidences := make([]float64, len(tracklets))
	for i, tracklet := range tracklets {
		confidences[i] = tracklet.MaskConfidence
	}
	return common.Mean(confidences)
}
