package pipeline

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
)

// Pooled, best-timestep, and token-overlap similarities blend into the
// validation confidence with fixed weights.
const (
	weightPooledSim  = 0.45
	weightStepSim    = 0.35
	weightTokenSim   = 0.20
	recallRelaxation = 0.15
	recallFloor      = 0.35
)

// stageTemporalRetrieval searches the frame index for candidate windows,
// scores them in the window-feature space, and selects a diverse validated
// set. Decomposed sub-queries rescan the candidates at a relaxed threshold
// to recover recall lost to compound queries. Returns the selected windows
// plus whether the per-clip-best fallback had to engage.
func (e *Engine) stageTemporalRetrieval(ctx context.Context, request *model.QueryRequest, activeWindows []model.ActiveWindow, clipsByID map[string]model.Clip) ([]model.ValidatedWindow, bool, error) {
	queryEmbedding, err := e.ports.TextEmbedder.EmbedText(ctx, request.QueryText)
	if err != nil {
		return nil, false, fmt.Errorf("embed query: %w", err)
	}
	queryWindowEmbedding, err := e.ports.WindowTextEmbedder.EmbedText(ctx, request.QueryText)
	if err != nil {
		return nil, false, fmt.Errorf("embed query for window space: %w", err)
	}
	queryTokens := common.Tokenize(request.QueryText)

	hits := e.stores.FrameIndex.Search(queryEmbedding, e.cfg.Retrieval.InitialTopKWindows)
	candidateIDs := make([]string, 0, len(hits))
	for _, hit := range hits {
		candidateIDs = append(candidateIDs, hit.Record.WindowID)
	}
	windowsByID := make(map[string]model.ActiveWindow, len(activeWindows))
	for _, window := range activeWindows {
		windowsByID[window.WindowID] = window
	}

	scored, err := e.scoreWindows(ctx, candidateIDs, windowsByID, clipsByID, request.QueryText, queryTokens, queryWindowEmbedding)
	if err != nil {
		return nil, false, err
	}

	threshold := e.cfg.Retrieval.MinValidationConfidence
	var validated []model.ValidatedWindow
	for _, window := range scored {
		if window.Confidence >= threshold {
			validated = append(validated, window)
		}
	}

	// Sub-query rescans: relaxed threshold plus the single best match per
	// sub-query, so a compound query still surfaces each aspect's window.
	for _, subQuery := range e.ports.QueryDecomposer.Decompose(request.QueryText)[1:] {
		subEmbedding, err := e.ports.WindowTextEmbedder.EmbedText(ctx, subQuery)
		if err != nil {
			return nil, false, fmt.Errorf("embed sub-query: %w", err)
		}
		rescored, err := e.scoreWindows(ctx, candidateIDs, windowsByID, clipsByID, subQuery, common.Tokenize(subQuery), subEmbedding)
		if err != nil {
			return nil, false, err
		}
		relaxed := math.Max(recallFloor, threshold-recallRelaxation)
		for _, window := range rescored {
			if window.Confidence >= relaxed {
				validated = append(validated, window)
			}
		}
		if len(rescored) > 0 {
			validated = append(validated, rescored[0])
		}
	}

	fellBack := false
	if len(validated) == 0 && len(scored) > 0 {
		fellBack = true
		seenClips := make(map[string]struct{})
		for _, window := range scored {
			if _, ok := seenClips[window.ClipID]; ok {
				continue
			}
			seenClips[window.ClipID] = struct{}{}
			validated = append(validated, window)
		}
	}

	return selectValidated(validated, e.cfg.Retrieval.ValidatedTopKWindows), fellBack, nil
}

// scoreWindows scores each candidate window once, in first-hit order, using
// the L1 feature cache to avoid re-extracting window features.
func (e *Engine) scoreWindows(ctx context.Context, candidateIDs []string, windowsByID map[string]model.ActiveWindow, clipsByID map[string]model.Clip, queryText string, queryTokens []string, queryEmbedding []float64) ([]model.ValidatedWindow, error) {
	seen := make(map[string]struct{}, len(candidateIDs))
	var scored []model.ValidatedWindow
	for _, windowID := range candidateIDs {
		if _, ok := seen[windowID]; ok {
			continue
		}
		seen[windowID] = struct{}{}
		window, ok := windowsByID[windowID]
		if !ok {
			continue
		}

		cacheKey := "l1:" + windowID
		features, ok := e.stores.FeatureCache.GetL1(cacheKey)
		if !ok {
			var err error
			features, err = e.ports.WindowEncoder.ExtractWindowFeatures(ctx, window, clipsByID[window.ClipID])
			if err != nil {
				return nil, fmt.Errorf("extract window features %s: %w", windowID, err)
			}
			e.stores.FeatureCache.SetL1(cacheKey, features)
		}
		e.stores.WindowIndex.Upsert(windowID, features.PooledEmbedding)

		pooledSim := (common.Cosine(queryEmbedding, features.PooledEmbedding) + 1) / 2
		stepSim := 0.0
		for _, step := range features.PerTimestepEmbeddings {
			if sim := (common.Cosine(queryEmbedding, step) + 1) / 2; sim > stepSim {
				stepSim = sim
			}
		}
		tokenSim := common.OverlapScore(queryTokens, features.SemanticTokens)
		confidence := round3(weightPooledSim*pooledSim + weightStepSim*stepSim + weightTokenSim*tokenSim)

		scored = append(scored, model.ValidatedWindow{
			WindowID:   window.WindowID,
			ClipID:     window.ClipID,
			CameraID:   window.CameraID,
			TStart:     window.TStart,
			TEnd:       window.TEnd,
			Confidence: confidence,
			QueryText:  queryText,
		})
	}
	sortByConfidence(scored)
	return scored, nil
}

// selectValidated dedupes windows keeping the highest confidence per id,
// ranks them, then applies a clip-diversity pass before filling remaining
// slots by confidence.
func selectValidated(validated []model.ValidatedWindow, topK int) []model.ValidatedWindow {
	order := make([]string, 0, len(validated))
	best := make(map[string]model.ValidatedWindow, len(validated))
	for _, window := range validated {
		prev, ok := best[window.WindowID]
		if !ok {
			order = append(order, window.WindowID)
			best[window.WindowID] = window
			continue
		}
		if window.Confidence > prev.Confidence {
			best[window.WindowID] = window
		}
	}
	ranked := make([]model.ValidatedWindow, 0, len(order))
	for _, windowID := range order {
		ranked = append(ranked, best[windowID])
	}
	sortByConfidence(ranked)

	selected := make([]model.ValidatedWindow, 0, topK)
	picked := make(map[string]struct{}, topK)
	seenClips := make(map[string]struct{})
	for _, window := range ranked {
		if _, ok := seenClips[window.ClipID]; ok {
			continue
		}
		seenClips[window.ClipID] = struct{}{}
		picked[window.WindowID] = struct{}{}
		selected = append(selected, window)
	}
	for _, window := range ranked {
		if len(selected) >= topK {
			break
		}
		if _, ok := picked[window.WindowID]; ok {
			continue
		}
		picked[window.WindowID] = struct{}{}
		selected = append(selected, window)
	}
	if len(selected) > topK {
		selected = selected[:topK]
	}
	return selected
}

// sortByConfidence ranks descending; stable so ties keep insertion order
// and repeated runs stay byte-for-byte identical.
func sortByConfidence(windows []model.ValidatedWindow) {
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Confidence > windows[j].Confidence
	})
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}
