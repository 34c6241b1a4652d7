// Package driver exports the assembled entity graph to an external graph
// database. Export is optional; the pipeline itself only ever touches the
// in-process graph memory.
package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/sightline/internal/model"
)

type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	SaveNodes(ctx context.Context, nodes []model.GraphNode) error
	SaveEdges(ctx context.Context, edges []model.GraphEdge) error
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
