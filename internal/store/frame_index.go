package store

import (
	"sort"
	"sync"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
)

// FrameHit pairs a similarity score with the matching keyframe record.
type FrameHit struct {
	Score  float64
	Record model.KeyframeRecord
}

// FrameIndex is an append-only in-memory frame embedding index with
// brute-force top-K cosine search. Records are never mutated once added.
type FrameIndex struct {
	mu      sync.Mutex
	records []model.KeyframeRecord
}

func NewFrameIndex() *FrameIndex {
	return &FrameIndex{}
}

func (idx *FrameIndex) Add(record model.KeyframeRecord) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.records = append(idx.records, record)
}

// Records returns a snapshot of the index in insertion order.
func (idx *FrameIndex) Records() []model.KeyframeRecord {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]model.KeyframeRecord, len(idx.records))
	copy(out, idx.records)
	return out
}

func (idx *FrameIndex) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.records)
}

// Search ranks every record by cosine similarity against the query
// embedding and returns the top K. Ties keep insertion order so results
// stay deterministic.
func (idx *FrameIndex) Search(queryEmbedding []float64, topK int) []FrameHit {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	ranked := make([]FrameHit, 0, len(idx.records))
	for _, record := range idx.records {
		ranked = append(ranked, FrameHit{
			Score:  common.Cosine(queryEmbedding, record.Embedding),
			Record: record,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked
}

// FindEmbeddingID returns the embedding id of the first record whose clip
// matches and whose timestamp falls inside [tStart, tEnd], or "" if none.
func (idx *FrameIndex) FindEmbeddingID(clipID string, tStart, tEnd int) string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, record := range idx.records {
		if record.ClipID == clipID && record.Timestamp >= tStart && record.Timestamp <= tEnd {
			return record.EmbeddingID
		}
	}
	return ""
}
