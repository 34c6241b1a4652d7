package store

import (
	"sync"

	"github.com/agenthands/sightline/internal/model"
)

// GraphMemory is the in-process graph store for stage 6. Nodes and edges
// keep first-insertion order so snapshots are deterministic across runs.
type GraphMemory struct {
	mu        sync.Mutex
	nodes     map[string]model.GraphNode
	nodeOrder []string
	edges     map[string]model.GraphEdge
	edgeOrder []string
}

func NewGraphMemory() *GraphMemory {
	return &GraphMemory{
		nodes: make(map[string]model.GraphNode),
		edges: make(map[string]model.GraphEdge),
	}
}

func (g *GraphMemory) UpsertNode(node model.GraphNode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[node.NodeID]; !ok {
		g.nodeOrder = append(g.nodeOrder, node.NodeID)
	}
	g.nodes[node.NodeID] = node
}

func (g *GraphMemory) AddEdge(edge model.GraphEdge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.edges[edge.EdgeID]; !ok {
		g.edgeOrder = append(g.edgeOrder, edge.EdgeID)
	}
	g.edges[edge.EdgeID] = edge
}

// Nodes returns all nodes in first-insertion order.
func (g *GraphMemory) Nodes() []model.GraphNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.GraphNode, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in first-insertion order.
func (g *GraphMemory) Edges() []model.GraphEdge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.GraphEdge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		out = append(out, g.edges[id])
	}
	return out
}

// EdgesWithEvidence returns edges carrying at least one evidence ref.
func (g *GraphMemory) EdgesWithEvidence() []model.GraphEdge {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []model.GraphEdge
	for _, id := range g.edgeOrder {
		edge := g.edges[id]
		if len(edge.EvidenceRefs) > 0 {
			out = append(out, edge)
		}
	}
	return out
}
