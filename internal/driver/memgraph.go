package driver

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/sightline/internal/model"
)

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
}

func NewMemgraphDriver(uri, username, password string) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}
	log.Println("Connected to Memgraph")
	return &MemgraphDriver{Driver: driver}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// SaveNodes upserts graph nodes by node id. Unknown node types are skipped;
// the in-process graph is the source of truth, export is best effort.
func (d *MemgraphDriver) SaveNodes(ctx context.Context, nodes []model.GraphNode) error {
	for _, node := range nodes {
		var query string
		params := map[string]any{"node_id": node.NodeID}
		switch node.NodeType {
		case model.NodePersonEntity, model.NodeObjectCluster:
			query = SaveEntityNodeQuery
			params["node_type"] = node.NodeType
			params["label"] = node.Properties["label"]
			params["confidence"] = node.Properties["confidence"]
			params["resolved"] = node.Properties["resolved"]
		case model.NodeTrack:
			query = SaveTrackNodeQuery
			params["clip_id"] = node.Properties["clip_id"]
			params["camera_id"] = node.Properties["camera_id"]
			params["label"] = node.Properties["label"]
		case model.NodeCamera:
			query = SaveCameraNodeQuery
			params["camera_id"] = node.Properties["camera_id"]
		default:
			log.Printf("Warning: skipping node %s with unknown type %s", node.NodeID, node.NodeType)
			continue
		}
		if _, err := d.ExecuteQuery(ctx, query, params); err != nil {
			return fmt.Errorf("failed to save node %s: %w", node.NodeID, err)
		}
	}
	return nil
}

// SaveEdges upserts EXITS and MOVES_TO edges by edge id.
func (d *MemgraphDriver) SaveEdges(ctx context.Context, edges []model.GraphEdge) error {
	for _, edge := range edges {
		var query string
		switch edge.EdgeType {
		case model.EdgeExits:
			query = SaveExitsEdgeQuery
		case model.EdgeMovesTo:
			query = SaveMovesToEdgeQuery
		default:
			log.Printf("Warning: skipping edge %s with unknown type %s", edge.EdgeID, edge.EdgeType)
			continue
		}
		params := map[string]any{
			"edge_id":        edge.EdgeID,
			"source_id":      edge.SourceID,
			"target_id":      edge.TargetID,
			"t_start":        edge.TStart,
			"t_end":          edge.TEnd,
			"camera_id":      edge.CameraID,
			"confidence":     edge.Confidence,
			"evidence_count": len(edge.EvidenceRefs),
		}
		if _, err := d.ExecuteQuery(ctx, query, params); err != nil {
			return fmt.Errorf("failed to save edge %s: %w", edge.EdgeID, err)
		}
	}
	return nil
}

func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Entity(node_id);",
		"CREATE INDEX ON :Track(node_id);",
		"CREATE INDEX ON :Camera(node_id);",
		"CREATE INDEX ON :Track(camera_id);",
	}
	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// Index may already exist.
			log.Printf("Warning: failed to create index '%s': %v", q, err)
		}
	}
	return nil
}
