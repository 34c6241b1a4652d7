package adapter

import (
	"context"
	"sort"
	"strings"

	"github.com/agenthands/sightline/internal/common"
	"github.com/agenthands/sightline/internal/model"
	"github.com/agenthands/sightline/internal/ports"
)

// Confidence levels assigned by re-identification.
const (
	resolvedObjectConfidence  = 0.83
	resolvedPersonConfidence  = 0.87
	ambiguousPersonConfidence = 0.46
)

// ReIDResolver links tracklets into cross-camera entity identities.
// Objects of one normalized label merge unconditionally; person links are
// checked pairwise against camera topology and maximum travel time.
type ReIDResolver struct{}

func NewReIDResolver() *ReIDResolver {
	return &ReIDResolver{}
}

func (r *ReIDResolver) Resolve(_ context.Context, tracklets []model.Tracklet, cameraTopology map[string][]string, maxTravelSeconds int) ([]model.EntityLink, error) {
	links := r.resolveObjectLinks(tracklets)
	links = append(links, r.resolvePersonLinks(tracklets, cameraTopology, maxTravelSeconds)...)
	return links, nil
}

func (r *ReIDResolver) resolveObjectLinks(tracklets []model.Tracklet) []model.EntityLink {
	labels, grouped := groupByLabel(tracklets, model.EntityObject)

	links := make([]model.EntityLink, 0, len(labels))
	for _, label := range labels {
		links = append(links, model.EntityLink{
			EntityID:   common.StableID("OBJ", label),
			EntityType: model.EntityObject,
			Label:      label,
			TrackIDs:   sortedTrackIDs(grouped[label]),
			Confidence: resolvedObjectConfidence,
			Resolved:   true,
		})
	}
	return links
}

func (r *ReIDResolver) resolvePersonLinks(tracklets []model.Tracklet, cameraTopology map[string][]string, maxTravelSeconds int) []model.EntityLink {
	labels, grouped := groupByLabel(tracklets, model.EntityPerson)

	links := make([]model.EntityLink, 0, len(labels))
	for _, label := range labels {
		items := append([]model.Tracklet(nil), grouped[label]...)
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].TStart != items[j].TStart {
				return items[i].TStart < items[j].TStart
			}
			return items[i].CameraID < items[j].CameraID
		})

		resolved := true
		confidence := resolvedPersonConfidence
		for i := 0; i+1 < len(items); i++ {
			prev, curr := items[i], items[i+1]
			if prev.CameraID == curr.CameraID {
				continue
			}
			travelTime := curr.TStart - prev.TEnd
			if travelTime < 0 {
				travelTime = 0
			}
			if !isNeighbor(cameraTopology, prev.CameraID, curr.CameraID) && travelTime > maxTravelSeconds {
				resolved = false
				confidence = ambiguousPersonConfidence
				break
			}
		}

		links = append(links, model.EntityLink{
			EntityID:   common.StableID("PER", label),
			EntityType: model.EntityPerson,
			Label:      label,
			TrackIDs:   sortedTrackIDs(items),
			Confidence: confidence,
			Resolved:   resolved,
		})
	}
	return links
}

// groupByLabel buckets tracklets of one entity type by lowercased label,
// returning labels in first-occurrence order for deterministic output.
func groupByLabel(tracklets []model.Tracklet, entityType model.EntityType) ([]string, map[string][]model.Tracklet) {
	grouped := make(map[string][]model.Tracklet)
	var labels []string
	for _, track := range tracklets {
		if track.EntityType != entityType {
			continue
		}
		label := strings.ToLower(track.Label)
		if _, ok := grouped[label]; !ok {
			labels = append(labels, label)
		}
		grouped[label] = append(grouped[label], track)
	}
	return labels, grouped
}

func sortedTrackIDs(tracklets []model.Tracklet) []string {
	ids := make([]string, 0, len(tracklets))
	for _, track := range tracklets {
		ids = append(ids, track.TrackID)
	}
	sort.Strings(ids)
	return ids
}

func isNeighbor(topology map[string][]string, from, to string) bool {
	for _, neighbor := range topology[from] {
		if neighbor == to {
			return true
		}
	}
	return false
}

var _ ports.EntityResolver = (*ReIDResolver)(nil)
