package orchestrator

import (
	"fmt"
	"sync"
)

// TransitionEvent is one recorded stage transition.
type TransitionEvent struct {
	FromStage StageID `json:"from_stage"`
	ToStage   StageID `json:"to_stage"`
	Reason    string  `json:"reason"`
}

// Runtime applies stage transitions against a contract and keeps an
// append-only log of every applied transition.
type Runtime struct {
	contract *Contract

	mu     sync.Mutex
	events []TransitionEvent
}

func NewRuntime(contract *Contract) *Runtime {
	return &Runtime{contract: contract}
}

// Transition applies one stage move. An illegal transition is refused
// without mutating the log.
func (r *Runtime) Transition(current, next StageID, reason string) (StageID, error) {
	if !r.contract.CanTransition(current, next) {
		return "", fmt.Errorf("invalid transition %s -> %s", current, next)
	}
	r.mu.Lock()
	r.events = append(r.events, TransitionEvent{FromStage: current, ToStage: next, Reason: reason})
	r.mu.Unlock()
	return next, nil
}

// ApplyBranchingHook routes control through a named hook and records the
// resulting transition with a hook-tagged reason.
func (r *Runtime) ApplyBranchingHook(current StageID, hook string) (StageID, error) {
	next, err := r.contract.NextStageForHook(hook)
	if err != nil {
		return "", err
	}
	return r.Transition(current, next, "hook:"+hook)
}

// Events returns a snapshot of the transition log in apply order.
func (r *Runtime) Events() []TransitionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TransitionEvent, len(r.events))
	copy(out, r.events)
	return out
}

// CanonicalFlow returns the happy-path stage ordering.
func CanonicalFlow() []StageID {
	return []StageID{Stage1, Stage2, Stage3, Stage4, Stage5, Stage6, Stage7}
}
