package pipeline

import (
	"sort"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
)

const (
	movesToResolvedConfidence   = 0.80
	movesToUnresolvedConfidence = 0.45
)

// stageGraphMemory assembles the entity-relationship graph: entity, track,
// and camera nodes, EXITS edges tying a person segment to the object it
// left, and MOVES_TO edges tracing a person across cameras. Every edge
// carries evidence references; a synthesized fallback embedding id marks
// the run as evidence-degraded.
func (e *Engine) stageGraphMemory(request *model.QueryRequest, tracklets []model.Tracklet, entityLinks []model.EntityLink, segments []model.TemporalSegment) ([]model.GraphNode, []model.GraphEdge, bool, error) {
	trackByID := make(map[string]model.Tracklet, len(tracklets))
	for _, tracklet := range tracklets {
		trackByID[tracklet.TrackID] = tracklet
	}
	entityByTrack := make(map[string]model.EntityLink)
	for _, link := range entityLinks {
		for _, trackID := range link.TrackIDs {
			entityByTrack[trackID] = link
		}
	}

	for _, link := range entityLinks {
		nodeType := model.NodeObjectCluster
		if link.EntityType == model.EntityPerson {
			nodeType = model.NodePersonEntity
		}
		e.stores.Graph.UpsertNode(model.GraphNode{
			NodeID:   link.EntityID,
			NodeType: nodeType,
			Properties: map[string]any{
				"label":      link.Label,
				"confidence": link.Confidence,
				"resolved":   link.Resolved,
			},
		})
	}
	for _, tracklet := range tracklets {
		e.stores.Graph.UpsertNode(model.GraphNode{
			NodeID:   tracklet.TrackID,
			NodeType: model.NodeTrack,
			Properties: map[string]any{
				"clip_id":   tracklet.ClipID,
				"camera_id": tracklet.CameraID,
				"label":     tracklet.Label,
			},
		})
		e.stores.Graph.UpsertNode(model.GraphNode{
			NodeID:     tracklet.CameraID,
			NodeType:   model.NodeCamera,
			Properties: map[string]any{"camera_id": tracklet.CameraID},
		})
	}

	evidenceMissing := false
	var edges []model.GraphEdge

	for _, segment := range segments {
		personLink, ok := entityByTrack[segment.TrackID]
		if !ok || personLink.EntityType != model.EntityPerson {
			continue
		}
		segmentTrack := trackByID[segment.TrackID]

		var objectLink *model.EntityLink
		for _, tracklet := range tracklets {
			if tracklet.ClipID != segment.ClipID || tracklet.WindowID != segmentTrack.WindowID || tracklet.EntityType != model.EntityObject {
				continue
			}
			if link, ok := entityByTrack[tracklet.TrackID]; ok {
				objectLink = &link
				break
			}
		}
		if objectLink == nil {
			continue
		}

		refs, missing := e.appendEvidence(segmentTrack, segment.TStart, segment.TEnd)
		evidenceMissing = evidenceMissing || missing
		edge := model.GraphEdge{
			EdgeID:       common.StableID("EDGE", "EXITS", personLink.EntityID, objectLink.EntityID, segment.SegmentID),
			EdgeType:     model.EdgeExits,
			SourceID:     personLink.EntityID,
			TargetID:     objectLink.EntityID,
			TStart:       segment.TStart,
			TEnd:         segment.TEnd,
			CameraID:     segment.CameraID,
			Confidence:   segment.Confidence,
			EvidenceRefs: refs,
		}
		e.stores.Graph.AddEdge(edge)
		edges = append(edges, edge)
	}

	for _, link := range entityLinks {
		if link.EntityType != model.EntityPerson {
			continue
		}
		var linked []model.Tracklet
		for _, trackID := range link.TrackIDs {
			if tracklet, ok := trackByID[trackID]; ok {
				linked = append(linked, tracklet)
			}
		}
		sort.SliceStable(linked, func(i, j int) bool {
			if linked[i].TStart != linked[j].TStart {
				return linked[i].TStart < linked[j].TStart
			}
			return linked[i].CameraID < linked[j].CameraID
		})
		for i := 1; i < len(linked); i++ {
			arrival := linked[i]
			refs, missing := e.appendEvidence(arrival, arrival.TStart, arrival.TEnd)
			evidenceMissing = evidenceMissing || missing
			confidence := movesToResolvedConfidence
			if !link.Resolved {
				confidence = movesToUnresolvedConfidence
			}
			edge := model.GraphEdge{
				EdgeID:       common.StableID("EDGE", "MOVES_TO", link.EntityID, arrival.CameraID, arrival.TrackID),
				EdgeType:     model.EdgeMovesTo,
				SourceID:     link.EntityID,
				TargetID:     arrival.CameraID,
				TStart:       arrival.TStart,
				TEnd:         arrival.TEnd,
				CameraID:     arrival.CameraID,
				Confidence:   confidence,
				EvidenceRefs: refs,
			}
			e.stores.Graph.AddEdge(edge)
			edges = append(edges, edge)
		}
	}

	return e.stores.Graph.Nodes(), edges, evidenceMissing, nil
}

// appendEvidence records one evidence reference for the track and returns
// the track's accumulated evidence. A frame lookup miss synthesizes a
// fallback embedding id and reports the gap.
func (e *Engine) appendEvidence(tracklet model.Tracklet, tStart, tEnd int) ([]model.EvidenceRef, bool) {
	embeddingID := e.stores.FrameIndex.FindEmbeddingID(tracklet.ClipID, tStart, tEnd)
	missing := false
	if embeddingID == "" {
		embeddingID = common.StableID("EMB", tracklet.TrackID, "fallback")
		missing = true
	}
	e.stores.EvidenceRegistry.Append(tracklet.TrackID, model.EvidenceRef{
		ClipID:       tracklet.ClipID,
		CameraID:     tracklet.CameraID,
		FrameStart:   tStart,
		FrameEnd:     tEnd,
		OverlayURI:   tracklet.OverlayURI,
		EmbeddingID:  embeddingID,
		ModelVersion: e.cfg.Meta.Version,
	})
	return e.stores.EvidenceRegistry.Get(tracklet.TrackID), missing
}
