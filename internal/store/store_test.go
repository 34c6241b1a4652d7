package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/sightline/internal/model"
)

func TestFrameIndex_SearchRanksAndKeepsInsertionOrderOnTies(t *testing.T) {
	idx := NewFrameIndex()
	idx.Add(model.KeyframeRecord{FrameID: "f1", ClipID: "c1", Timestamp: 1, Embedding: []float64{1, 0}, EmbeddingID: "e1"})
	idx.Add(model.KeyframeRecord{FrameID: "f2", ClipID: "c1", Timestamp: 2, Embedding: []float64{0, 1}, EmbeddingID: "e2"})
	idx.Add(model.KeyframeRecord{FrameID: "f3", ClipID: "c2", Timestamp: 3, Embedding: []float64{1, 0}, EmbeddingID: "e3"})

	hits := idx.Search([]float64{1, 0}, 2)
	assert.Len(t, hits, 2)
	assert.Equal(t, "f1", hits[0].Record.FrameID)
	assert.Equal(t, "f3", hits[1].Record.FrameID)

	all := idx.Search([]float64{1, 0}, 10)
	assert.Len(t, all, 3)
	assert.Equal(t, "f2", all[2].Record.FrameID)
}

func TestFrameIndex_FindEmbeddingID(t *testing.T) {
	idx := NewFrameIndex()
	idx.Add(model.KeyframeRecord{FrameID: "f1", ClipID: "c1", Timestamp: 10, Embedding: []float64{1, 0}, EmbeddingID: "e1"})
	idx.Add(model.KeyframeRecord{FrameID: "f2", ClipID: "c1", Timestamp: 11, Embedding: []float64{1, 0}, EmbeddingID: "e2"})

	assert.Equal(t, "e1", idx.FindEmbeddingID("c1", 10, 12))
	assert.Equal(t, "e2", idx.FindEmbeddingID("c1", 11, 11))
	assert.Equal(t, "", idx.FindEmbeddingID("c1", 20, 30))
	assert.Equal(t, "", idx.FindEmbeddingID("missing", 10, 12))
}

func TestFeatureCache_CumulativeCounters(t *testing.T) {
	cache := NewFeatureCache()

	_, ok := cache.GetL1("l1:w1")
	assert.False(t, ok)

	cache.SetL1("l1:w1", model.WindowFeatures{WindowID: "w1"})
	got, ok := cache.GetL1("l1:w1")
	assert.True(t, ok)
	assert.Equal(t, "w1", got.WindowID)

	_, ok = cache.GetL2("l2:t1")
	assert.False(t, ok)
	cache.SetL2("l2:t1", []string{"person", "p1"})
	tokens, ok := cache.GetL2("l2:t1")
	assert.True(t, ok)
	assert.Equal(t, []string{"person", "p1"}, tokens)

	hits, misses := cache.Counters()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 2, misses)
}

func TestGraphMemory_FirstInsertionOrder(t *testing.T) {
	g := NewGraphMemory()
	g.UpsertNode(model.GraphNode{NodeID: "b", NodeType: model.NodeCamera})
	g.UpsertNode(model.GraphNode{NodeID: "a", NodeType: model.NodeCamera})
	// Re-upserting must not change position.
	g.UpsertNode(model.GraphNode{NodeID: "b", NodeType: model.NodeTrack})

	nodes := g.Nodes()
	assert.Len(t, nodes, 2)
	assert.Equal(t, "b", nodes[0].NodeID)
	assert.Equal(t, model.NodeTrack, nodes[0].NodeType)
	assert.Equal(t, "a", nodes[1].NodeID)
}

func TestGraphMemory_EdgesWithEvidence(t *testing.T) {
	g := NewGraphMemory()
	g.AddEdge(model.GraphEdge{EdgeID: "e1", EdgeType: model.EdgeExits})
	g.AddEdge(model.GraphEdge{
		EdgeID:       "e2",
		EdgeType:     model.EdgeMovesTo,
		EvidenceRefs: []model.EvidenceRef{{ClipID: "c1"}},
	})

	assert.Len(t, g.Edges(), 2)
	backed := g.EdgesWithEvidence()
	assert.Len(t, backed, 1)
	assert.Equal(t, "e2", backed[0].EdgeID)
}

func TestEvidenceRegistry_AccumulatesPerTrack(t *testing.T) {
	reg := NewEvidenceRegistry()
	reg.Append("t1", model.EvidenceRef{EmbeddingID: "e1"})
	reg.Append("t1", model.EvidenceRef{EmbeddingID: "e2"})

	refs := reg.Get("t1")
	assert.Len(t, refs, 2)
	assert.Equal(t, "e1", refs[0].EmbeddingID)
	assert.Equal(t, "e2", refs[1].EmbeddingID)
	assert.Empty(t, reg.Get("unknown"))
}
