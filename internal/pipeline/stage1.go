package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
)

// stageActivityIngestion routes every clip, derives its candidate activity
// windows, and indexes an embedding for each in-window frame.
func (e *Engine) stageActivityIngestion(ctx context.Context, request *model.QueryRequest) ([]model.ActiveWindow, error) {
	var windows []model.ActiveWindow
	for _, clip := range request.Clips {
		route := e.ports.RouteSelector.ChooseRoute(clip)
		candidates := e.ports.RouteSelector.ExtractActiveWindows(clip, route)
		for idx, candidate := range candidates {
			frames := framesInSpan(clip, candidate.TStart, candidate.TEnd)
			tokens := windowTokens(frames)
			windowID := common.StableID("WIN", clip.ClipID, route, idx, candidate.TStart, candidate.TEnd)
			windows = append(windows, model.ActiveWindow{
				WindowID:       windowID,
				ClipID:         clip.ClipID,
				CameraID:       clip.CameraID,
				RouteID:        route,
				TStart:         candidate.TStart,
				TEnd:           candidate.TEnd,
				Reason:         candidate.Reason,
				SemanticTokens: tokens,
			})
			for _, frame := range frames {
				frameID := common.StableID("FRAME", clip.ClipID, frame.Timestamp)
				embedding, err := e.ports.FrameEmbedder.EmbedFrame(ctx, clip.ClipID, frame.Timestamp, tokens)
				if err != nil {
					return nil, fmt.Errorf("embed frame %s: %w", frameID, err)
				}
				e.stores.FrameIndex.Add(model.KeyframeRecord{
					FrameID:        frameID,
					WindowID:       windowID,
					ClipID:         clip.ClipID,
					CameraID:       clip.CameraID,
					Timestamp:      frame.Timestamp,
					Embedding:      embedding,
					EmbeddingID:    common.StableID("EMB", frameID, "siglip2"),
					SemanticTokens: tokens,
					RouteID:        route,
				})
			}
		}
	}
	return windows, nil
}

func framesInSpan(clip model.Clip, tStart, tEnd int) []model.FrameObservation {
	var frames []model.FrameObservation
	for _, frame := range clip.Frames {
		if frame.Timestamp >= tStart && frame.Timestamp <= tEnd {
			frames = append(frames, frame)
		}
	}
	return frames
}

// windowTokens unions each frame's object and action tokens into a sorted
// semantic token set for the window.
func windowTokens(frames []model.FrameObservation) []string {
	seen := make(map[string]struct{})
	for _, frame := range frames {
		text := strings.Join(append(append([]string{}, frame.Objects...), frame.Actions...), " ")
		for _, token := range common.Tokenize(text) {
			seen[token] = struct{}{}
		}
	}
	tokens := make([]string, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
