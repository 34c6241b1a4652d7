package adapter

import (
	"sort"
	"strings"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/ports"
)

// Background-motion thresholds used by route selection and the
// bg_motion_trigger meaningful-frame filter.
const (
	routeBgMotionMean  = 0.55
	triggerFrameMotion = 0.4
)

// semanticSignalTokens mark a frame as carrying activity worth windowing
// even without an action label.
var semanticSignalTokens = []string{"suv", "person", "vehicle", "car", "truck"}

// TriggerRouter selects exactly one ingestion route per clip by priority:
// explicit metadata hints, then moving cameras, then high mean background
// motion, then the default computer-vision state route.
type TriggerRouter struct{}

func NewTriggerRouter() *TriggerRouter {
	return &TriggerRouter{}
}

func (r *TriggerRouter) ChooseRoute(clip model.Clip) model.RouteID {
	if clip.Metadata.HasMotionVectors {
		return model.RouteMetaSync
	}
	if clip.CameraType == model.CameraMoving {
		return model.RouteSigExAdaptive
	}

	motions := make([]float64, 0, len(clip.Frames))
	for _, frame := range clip.Frames {
		motions = append(motions, frame.BackgroundMotion)
	}
	if common.Mean(motions) > routeBgMotionMean {
		return model.RouteBgMotionTrigger
	}
	return model.RouteCVState
}

func (r *TriggerRouter) ExtractActiveWindows(clip model.Clip, route model.RouteID) []ports.WindowCandidate {
	if route == model.RouteMetaSync && len(clip.Metadata.ActiveWindows) > 0 {
		windows := make([]ports.WindowCandidate, 0, len(clip.Metadata.ActiveWindows))
		for _, span := range clip.Metadata.ActiveWindows {
			end := span.TEnd
			if end < span.TStart {
				end = span.TStart
			}
			windows = append(windows, ports.WindowCandidate{TStart: span.TStart, TEnd: end, Reason: "metadata_window"})
		}
		return windows
	}

	var activeTimestamps []int
	for _, frame := range clip.Frames {
		meaningful := hasSemanticSignal(frame)
		if route == model.RouteBgMotionTrigger {
			meaningful = meaningful && frame.BackgroundMotion > triggerFrameMotion
		}
		if meaningful {
			activeTimestamps = append(activeTimestamps, frame.Timestamp)
		}
	}

	spans := contiguousSpans(activeTimestamps)
	windows := make([]ports.WindowCandidate, 0, len(spans))
	for _, span := range spans {
		windows = append(windows, ports.WindowCandidate{TStart: span[0], TEnd: span[1], Reason: "activity_detected"})
	}
	return windows
}

func hasSemanticSignal(frame model.FrameObservation) bool {
	if len(frame.Actions) > 0 {
		return true
	}
	joined := strings.ToLower(strings.Join(frame.Objects, " "))
	for _, token := range semanticSignalTokens {
		if strings.Contains(joined, token) {
			return true
		}
	}
	return false
}

// contiguousSpans groups a timestamp set into integer-adjacent runs after
// sorting and de-duplicating.
func contiguousSpans(timestamps []int) [][2]int {
	if len(timestamps) == 0 {
		return nil
	}

	seen := make(map[int]struct{}, len(timestamps))
	sorted := make([]int, 0, len(timestamps))
	for _, ts := range timestamps {
		if _, ok := seen[ts]; ok {
			continue
		}
		seen[ts] = struct{}{}
		sorted = append(sorted, ts)
	}
	sort.Ints(sorted)

	var spans [][2]int
	start, end := sorted[0], sorted[0]
	for _, value := range sorted[1:] {
		if value == end+1 {
			end = value
			continue
		}
		spans = append(spans, [2]int{start, end})
		start, end = value, value
	}
	spans = append(spans, [2]int{start, end})
	return spans
}

var _ ports.RouteSelector = (*TriggerRouter)(nil)
