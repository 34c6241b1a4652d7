package adapter

import (
	"context"
	"sort"
	"strings"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/ports"
)

const noSpanConfidence = 0.35

// HysteresisLocalizer scores frame relevance over a tracklet's span,
// smooths the curve, and extracts action segments with two-threshold
// hysteresis so noisy scores do not flap the segment boundary.
type HysteresisLocalizer struct{}

func NewHysteresisLocalizer() *HysteresisLocalizer {
	return &HysteresisLocalizer{}
}

type scoredSpan struct {
	tStart int
	tEnd   int
	score  float64
}

func (l *HysteresisLocalizer) Localize(_ context.Context, tracklet model.Tracklet, clip model.Clip, queryText string, params ports.LocalizeParams) (model.TemporalSegment, error) {
	queryTokens := common.Tokenize(queryText)

	var timestamps []int
	var scores []float64
	for _, frame := range clip.Frames {
		if frame.Timestamp < tracklet.TStart || frame.Timestamp > tracklet.TEnd {
			continue
		}
		actionTokens := common.Tokenize(strings.Join(frame.Actions, " "))
		timestamps = append(timestamps, frame.Timestamp)
		switch {
		case common.OverlapScore(queryTokens, actionTokens) > 0:
			scores = append(scores, 1.0)
		case len(frame.Actions) > 0:
			scores = append(scores, 0.3)
		default:
			scores = append(scores, 0.1)
		}
	}

	smoothed := common.SmoothCurve(scores, params.SmoothingWindowSize)
	spans := extractSpans(timestamps, smoothed, params.HysteresisHigh, params.HysteresisLow)

	var failureFlags []string
	if tracklet.MaskConfidence < params.MaskConfidenceFloor {
		failureFlags = append(failureFlags, model.FlagLowMaskConfidence)
	}

	tStart, tEnd := tracklet.TStart, tracklet.TEnd
	confidence := noSpanConfidence
	if len(spans) == 0 {
		failureFlags = append(failureFlags, model.FlagLowSimilarity)
	} else {
		tStart, tEnd, confidence = spans[0].tStart, spans[0].tEnd, spans[0].score
	}
	sort.Strings(failureFlags)

	action := "tracked_activity"
	for _, token := range queryTokens {
		if token == "exit" {
			action = "person_exits_vehicle"
			break
		}
	}

	return model.TemporalSegment{
		SegmentID:    common.StableID("SEG", tracklet.TrackID, tStart, tEnd, action),
		ClipID:       clip.ClipID,
		CameraID:     clip.CameraID,
		TrackID:      tracklet.TrackID,
		Action:       action,
		TStart:       tStart,
		TEnd:         tEnd,
		Confidence:   round3(confidence),
		FailureFlags: failureFlags,
	}, nil
}

// extractSpans walks the smoothed score curve: a span opens when the score
// first reaches high and closes on the first value strictly below low.
func extractSpans(timestamps []int, scores []float64, high, low float64) []scoredSpan {
	if len(timestamps) == 0 || len(scores) == 0 {
		return nil
	}

	var spans []scoredSpan
	inSpan := false
	currentStart := timestamps[0]
	var currentScores []float64

	for i := range timestamps {
		ts, score := timestamps[i], scores[i]
		if !inSpan && score >= high {
			inSpan = true
			currentStart = ts
			currentScores = []float64{score}
			continue
		}
		if inSpan {
			if score >= low {
				currentScores = append(currentScores, score)
			} else {
				spans = append(spans, scoredSpan{currentStart, ts, common.Mean(currentScores)})
				inSpan = false
				currentScores = nil
			}
		}
	}
	if inSpan {
		spans = append(spans, scoredSpan{currentStart, timestamps[len(timestamps)-1], common.Mean(currentScores)})
	}
	return spans
}

var _ ports.TemporalLocalizer = (*HysteresisLocalizer)(nil)
