package store

import (
	"sync"

	"github.com/agenthands/sightline/internal/model"
)

// WindowIndex holds pooled window embeddings keyed by window id.
type WindowIndex struct {
	mu      sync.Mutex
	vectors map[string][]float64
}

func NewWindowIndex() *WindowIndex {
	return &WindowIndex{vectors: make(map[string][]float64)}
}

func (idx *WindowIndex) Upsert(windowID string, vector []float64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors[windowID] = vector
}

func (idx *WindowIndex) Get(windowID string) ([]float64, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	vec, ok := idx.vectors[windowID]
	return vec, ok
}

func (idx *WindowIndex) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.vectors)
}

// ArtifactRepo maps overlay URIs to rendered artifact payloads.
type ArtifactRepo struct {
	mu        sync.Mutex
	artifacts map[string]string
}

func NewArtifactRepo() *ArtifactRepo {
	return &ArtifactRepo{artifacts: make(map[string]string)}
}

func (r *ArtifactRepo) Put(uri, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts[uri] = payload
}

func (r *ArtifactRepo) Get(uri string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, ok := r.artifacts[uri]
	return payload, ok
}

func (r *ArtifactRepo) Has(uri string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.artifacts[uri]
	return ok
}

// EvidenceRegistry maps track ids to evidence references in insertion order.
type EvidenceRegistry struct {
	mu      sync.Mutex
	byTrack map[string][]model.EvidenceRef
}

func NewEvidenceRegistry() *EvidenceRegistry {
	return &EvidenceRegistry{byTrack: make(map[string][]model.EvidenceRef)}
}

func (r *EvidenceRegistry) Append(trackID string, ref model.EvidenceRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTrack[trackID] = append(r.byTrack[trackID], ref)
}

// Get returns the accumulated evidence for a track, oldest first.
func (r *EvidenceRegistry) Get(trackID string) []model.EvidenceRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	refs := r.byTrack[trackID]
	out := make([]model.EvidenceRef, len(refs))
	copy(out, refs)
	return out
}

// Stores is the store-handle bundle passed by reference to every stage.
// All stores are scoped to one engine instance; concurrent queries against
// the same engine share them by design.
type Stores struct {
	FrameIndex       *FrameIndex
	WindowIndex      *WindowIndex
	FeatureCache     *FeatureCache
	Artifacts        *ArtifactRepo
	Graph            *GraphMemory
	EvidenceRegistry *EvidenceRegistry
}

func NewStores() *Stores {
	return &Stores{
		FrameIndex:       NewFrameIndex(),
		WindowIndex:      NewWindowIndex(),
		FeatureCache:     NewFeatureCache(),
		Artifacts:        NewArtifactRepo(),
		Graph:            NewGraphMemory(),
		EvidenceRegistry: NewEvidenceRegistry(),
	}
}
