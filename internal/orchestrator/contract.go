// Package orchestrator defines the stage-transition contract and the
// runtime that applies transitions against it. The transition graph and
// branching-hook map are static data, not code branches, so the runtime
// stays a generic interpreter over configuration-declared transitions.
package orchestrator

import (
	"fmt"
	"sort"
)

// StageID identifies one of the seven pipeline stages.
type StageID string

const (
	Stage1 StageID = "stage_1"
	Stage2 StageID = "stage_2"
	Stage3 StageID = "stage_3"
	Stage4 StageID = "stage_4"
	Stage5 StageID = "stage_5"
	Stage6 StageID = "stage_6"
	Stage7 StageID = "stage_7"
)

// StageName maps stage ids to their catalog names; duration metrics are
// keyed by these names.
var StageName = map[StageID]string{
	Stage1: "activity_ingestion",
	Stage2: "temporal_retrieval",
	Stage3: "spatial_grounding",
	Stage4: "entity_resolution",
	Stage5: "temporal_localization",
	Stage6: "graph_memory",
	Stage7: "multimodal_synthesis",
}

// transitionGraph declares every legal forward transition. Stages 2-6 may
// self-loop for retry branches; stage 1 has no self-loop and stage 7 is
// terminal.
var transitionGraph = map[StageID]map[StageID]bool{
	Stage1: {Stage2: true},
	Stage2: {Stage2: true, Stage3: true},
	Stage3: {Stage3: true, Stage4: true},
	Stage4: {Stage4: true, Stage5: true},
	Stage5: {Stage5: true, Stage6: true},
	Stage6: {Stage6: true, Stage7: true},
	Stage7: {},
}

// hookToStage routes named branching hooks back to the stage that handles
// the degraded condition.
var hookToStage = map[string]StageID{
	"low_retrieval_confidence": Stage2,
	"low_mask_confidence":      Stage3,
	"identity_ambiguity":       Stage4,
	"missing_evidence":         Stage6,
}

// KnownHook reports whether a branching hook has a stage mapping.
func KnownHook(hook string) bool {
	_, ok := hookToStage[hook]
	return ok
}

// CanonicalStateKeys is the key set every full run's final state snapshot
// must contain.
var CanonicalStateKeys = []string{
	"query_id",
	"normalized_query",
	"candidate_windows",
	"grounded_tracks",
	"entity_links",
	"temporal_segments",
	"evidence_package",
}

// Contract validates transitions, branching hooks, and the end-of-run
// state snapshot for one configuration.
type Contract struct {
	requiredStateKeys map[string]struct{}
	branchingHooks    map[string]struct{}
}

// NewContract builds a contract from the configuration-declared required
// state keys and enabled branching hooks.
func NewContract(requiredStateKeys, branchingHooks []string) *Contract {
	contract := &Contract{
		requiredStateKeys: make(map[string]struct{}, len(requiredStateKeys)),
		branchingHooks:    make(map[string]struct{}, len(branchingHooks)),
	}
	for _, key := range requiredStateKeys {
		contract.requiredStateKeys[key] = struct{}{}
	}
	for _, hook := range branchingHooks {
		contract.branchingHooks[hook] = struct{}{}
	}
	return contract
}

// ValidateStateSnapshot checks that every required key is present. A
// missing key is a contract violation signaling an internal defect, not
// bad input.
func (c *Contract) ValidateStateSnapshot(snapshot map[string]any) error {
	var missing []string
	for key := range c.requiredStateKeys {
		if _, ok := snapshot[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("state snapshot missing required keys: %v", missing)
	}
	return nil
}

// CanTransition reports whether the static stage graph permits the move.
func (c *Contract) CanTransition(current, next StageID) bool {
	return transitionGraph[current][next]
}

// NextStageForHook resolves a branching hook to its target stage.
// Requesting a hook that is not enabled for this configuration, or one
// with no stage mapping, is an error the caller must not retry.
func (c *Contract) NextStageForHook(hook string) (StageID, error) {
	if _, ok := c.branchingHooks[hook]; !ok {
		return "", fmt.Errorf("hook %q is not enabled in this configuration", hook)
	}
	stage, ok := hookToStage[hook]
	if !ok {
		return "", fmt.Errorf("hook %q has no stage mapping", hook)
	}
	return stage, nil
}

// RequiredStateKeys returns the declared key set in sorted order.
func (c *Contract) RequiredStateKeys() []string {
	keys := make([]string, 0, len(c.requiredStateKeys))
	for key := range c.requiredStateKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
