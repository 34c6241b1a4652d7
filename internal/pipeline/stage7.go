package pipeline

import (
	"context"
	"fmt"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
)

// stageSynthesis turns graph edges into claim records and hands them to the
// synthesizer, which redacts anything without evidence.
func (e *Engine) stageSynthesis(ctx context.Context, queryText string, edges []model.GraphEdge) (model.SynthesisOutput, error) {
	var claims []model.ClaimRecord
	for _, edge := range edges {
		var text string
		var entityIDs []string
		switch edge.EdgeType {
		case model.EdgeExits:
			text = fmt.Sprintf("Person entity %s exited object entity %s at camera %s between %ds and %ds.",
				edge.SourceID, edge.TargetID, edge.CameraID, edge.TStart, edge.TEnd)
			entityIDs = []string{edge.SourceID, edge.TargetID}
		case model.EdgeMovesTo:
			text = fmt.Sprintf("Person entity %s moved to camera %s during %ds to %ds.",
				edge.SourceID, edge.TargetID, edge.TStart, edge.TEnd)
			entityIDs = []string{edge.SourceID, edge.TargetID}
		default:
			continue
		}
		claims = append(claims, model.ClaimRecord{
			ClaimID:      common.StableID("CLAIM", edge.EdgeID),
			Text:         text,
			EntityIDs:    entityIDs,
			CameraID:     edge.CameraID,
			TStart:       edge.TStart,
			TEnd:         edge.TEnd,
			Confidence:   edge.Confidence,
			EvidenceRefs: edge.EvidenceRefs,
		})
	}
	return e.ports.Synthesizer.Synthesize(ctx, queryText, claims)
}
