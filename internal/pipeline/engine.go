// Package pipeline implements the seven-stage video query engine: activity
// ingestion, temporal retrieval, spatial grounding, entity resolution,
// temporal localization, graph memory assembly, and multimodal synthesis.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/sightline/internal/config"
	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/orchestrator"
	"github.com/agenthands/sightline/internal/ports"
	"github.com/agenthands/sightline/internal/store"
)

// Engine drives the seven stages in order, threading the shared store
// bundle. Stores live as long as the engine, so repeated queries reuse
// warm caches and indices by design.
type Engine struct {
	cfg      *config.Config
	ports    ports.Set
	stores   *store.Stores
	contract *orchestrator.Contract
	runtime  *orchestrator.Runtime

	enabledHooks map[string]struct{}
}

func New(cfg *config.Config, portSet ports.Set) *Engine {
	contract := orchestrator.NewContract(cfg.Orchestration.RequiredStateKeys, cfg.Orchestration.BranchingHooks)
	enabled := make(map[string]struct{}, len(cfg.Orchestration.BranchingHooks))
	for _, hook := range cfg.Orchestration.BranchingHooks {
		enabled[hook] = struct{}{}
	}
	return &Engine{
		cfg:          cfg,
		ports:        portSet,
		stores:       store.NewStores(),
		contract:     contract,
		runtime:      orchestrator.NewRuntime(contract),
		enabledHooks: enabled,
	}
}

// Stores exposes the engine's store bundle for inspection.
func (e *Engine) Stores() *store.Stores {
	return e.stores
}

// Runtime exposes the orchestration runtime and its transition log.
func (e *Engine) Runtime() *orchestrator.Runtime {
	return e.runtime
}

// Run executes the full pipeline for one query and returns an immutable
// result. The final orchestration state snapshot is validated against the
// configured contract; a missing key fails the run.
func (e *Engine) Run(ctx context.Context, request *model.QueryRequest) (*model.PipelineResult, error) {
	clipsByID := make(map[string]model.Clip, len(request.Clips))
	for _, clip := range request.Clips {
		clipsByID[clip.ClipID] = clip
	}

	metrics := model.StageMetrics{StageDurationsMS: make(map[string]float64)}
	state := map[string]any{
		"query_id":          request.QueryID,
		"normalized_query":  strings.ToLower(strings.TrimSpace(request.QueryText)),
		"candidate_windows": []model.ActiveWindow(nil),
		"grounded_tracks":   []model.Tracklet(nil),
		"entity_links":      []model.EntityLink(nil),
		"temporal_segments": []model.TemporalSegment(nil),
		"evidence_package":  []string(nil),
	}

	start := time.Now()
	activeWindows, err := e.stageActivityIngestion(ctx, request)
	e.recordDuration(&metrics, orchestrator.Stage1, start)
	if err != nil {
		return nil, fmt.Errorf("stage_1: %w", err)
	}
	state["candidate_windows"] = activeWindows
	if err := e.forward(orchestrator.Stage1, orchestrator.Stage2); err != nil {
		return nil, err
	}

	start = time.Now()
	validatedWindows, retrievalFellBack, err := e.stageTemporalRetrieval(ctx, request, activeWindows, clipsByID)
	e.recordDuration(&metrics, orchestrator.Stage2, start)
	if err != nil {
		return nil, fmt.Errorf("stage_2: %w", err)
	}
	state["candidate_windows"] = validatedWindows
	if retrievalFellBack {
		e.applyHook(orchestrator.Stage2, "low_retrieval_confidence")
	}
	if err := e.forward(orchestrator.Stage2, orchestrator.Stage3); err != nil {
		return nil, err
	}

	start = time.Now()
	tracklets, groundingFellBack, err := e.stageSpatialGrounding(ctx, request, validatedWindows, clipsByID)
	e.recordDuration(&metrics, orchestrator.Stage3, start)
	if err != nil {
		return nil, fmt.Errorf("stage_3: %w", err)
	}
	state["grounded_tracks"] = tracklets
	if groundingFellBack {
		e.applyHook(orchestrator.Stage3, "low_mask_confidence")
	}
	if err := e.forward(orchestrator.Stage3, orchestrator.Stage4); err != nil {
		return nil, err
	}

	start = time.Now()
	entityLinks, err := e.ports.EntityResolver.Resolve(ctx, tracklets, request.CameraTopology, e.cfg.ReID.MaxCrossCameraTravelSeconds)
	e.recordDuration(&metrics, orchestrator.Stage4, start)
	if err != nil {
		return nil, fmt.Errorf("stage_4: %w", err)
	}
	state["entity_links"] = entityLinks
	for _, link := range entityLinks {
		if !link.Resolved {
			e.applyHook(orchestrator.Stage4, "identity_ambiguity")
			break
		}
	}
	if err := e.forward(orchestrator.Stage4, orchestrator.Stage5); err != nil {
		return nil, err
	}

	start = time.Now()
	temporalSegments, err := e.stageTemporalLocalization(ctx, request, tracklets, clipsByID)
	e.recordDuration(&metrics, orchestrator.Stage5, start)
	if err != nil {
		return nil, fmt.Errorf("stage_5: %w", err)
	}
	state["temporal_segments"] = temporalSegments
	if err := e.forward(orchestrator.Stage5, orchestrator.Stage6); err != nil {
		return nil, err
	}

	start = time.Now()
	graphNodes, graphEdges, evidenceMissing, err := e.stageGraphMemory(request, tracklets, entityLinks, temporalSegments)
	e.recordDuration(&metrics, orchestrator.Stage6, start)
	if err != nil {
		return nil, fmt.Errorf("stage_6: %w", err)
	}
	if evidenceMissing {
		e.applyHook(orchestrator.Stage6, "missing_evidence")
	}
	if err := e.forward(orchestrator.Stage6, orchestrator.Stage7); err != nil {
		return nil, err
	}

	start = time.Now()
	synthesis, err := e.stageSynthesis(ctx, request.QueryText, graphEdges)
	e.recordDuration(&metrics, orchestrator.Stage7, start)
	if err != nil {
		return nil, fmt.Errorf("stage_7: %w", err)
	}
	state["evidence_package"] = synthesis.EvidenceAppendix

	if err := e.contract.ValidateStateSnapshot(state); err != nil {
		return nil, err
	}

	metrics.CacheHits, metrics.CacheMisses = e.stores.FeatureCache.Counters()

	return &model.PipelineResult{
		QueryID:          request.QueryID,
		QueryText:        request.QueryText,
		ActiveWindows:    activeWindows,
		ValidatedWindows: validatedWindows,
		Tracklets:        tracklets,
		EntityLinks:      entityLinks,
		TemporalSegments: temporalSegments,
		GraphNodes:       graphNodes,
		GraphEdges:       graphEdges,
		Synthesis:        synthesis,
		Metrics:          metrics,
	}, nil
}

func (e *Engine) forward(current, next orchestrator.StageID) error {
	_, err := e.runtime.Transition(current, next, "forward")
	return err
}

// applyHook records a degraded-path branch when the hook is enabled for
// this configuration. Disabled hooks are simply not recorded; the
// degradation itself is already observable in the stage outputs.
func (e *Engine) applyHook(stage orchestrator.StageID, hook string) {
	if _, ok := e.enabledHooks[hook]; !ok {
		return
	}
	if _, err := e.runtime.ApplyBranchingHook(stage, hook); err != nil {
		// Contract and enabled set agree by construction; a failure here
		// is an internal defect worth surfacing loudly.
		panic(err)
	}
}

func (e *Engine) recordDuration(metrics *model.StageMetrics, stage orchestrator.StageID, start time.Time) {
	metrics.StageDurationsMS[orchestrator.StageName[stage]] = float64(time.Since(start).Microseconds()) / 1000.0
}
