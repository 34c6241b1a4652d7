package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/sightline/internal/model"
)

func personTrack(id, clipID, cameraID string, tStart, tEnd int) model.Tracklet {
	return model.Tracklet{
		TrackID:    id,
		ClipID:     clipID,
		CameraID:   cameraID,
		EntityType: model.EntityPerson,
		Label:      "person_p1",
		TStart:     tStart,
		TEnd:       tEnd,
	}
}

func TestReIDResolver_NeighborHopsResolve(t *testing.T) {
	resolver := NewReIDResolver()
	tracklets := []model.Tracklet{
		personTrack("t_ext", "clip_ext_1", "cam_ext_1", 10, 13),
		personTrack("t_int1", "clip_int_1", "cam_int_1", 30, 33),
		personTrack("t_int2", "clip_int_2", "cam_int_2", 45, 47),
	}
	topology := map[string][]string{
		"cam_ext_1": {"cam_int_1"},
		"cam_int_1": {"cam_ext_1", "cam_int_2"},
		"cam_int_2": {"cam_int_1"},
	}

	links, err := resolver.Resolve(context.Background(), tracklets, topology, 120)
	assert.NoError(t, err)
	assert.Len(t, links, 1)
	assert.True(t, links[0].Resolved)
	assert.Equal(t, resolvedPersonConfidence, links[0].Confidence)
	assert.Equal(t, model.EntityPerson, links[0].EntityType)
	assert.Equal(t, []string{"t_ext", "t_int1", "t_int2"}, links[0].TrackIDs)
}

func TestReIDResolver_NonNeighborWithinTravelTimeResolves(t *testing.T) {
	resolver := NewReIDResolver()
	tracklets := []model.Tracklet{
		personTrack("t_a", "clip_a", "cam_a", 0, 10),
		personTrack("t_b", "clip_b", "cam_b", 50, 60),
	}

	// No adjacency, but 40s travel is under the limit.
	links, err := resolver.Resolve(context.Background(), tracklets, map[string][]string{}, 120)
	assert.NoError(t, err)
	assert.Len(t, links, 1)
	assert.True(t, links[0].Resolved)
}

func TestReIDResolver_ImplausibleTravelMarksAmbiguous(t *testing.T) {
	resolver := NewReIDResolver()
	tracklets := []model.Tracklet{
		personTrack("t_a", "clip_amb_a", "cam_far_a", 5, 6),
		personTrack("t_b", "clip_amb_b", "cam_far_b", 400, 401),
	}
	topology := map[string][]string{"cam_far_a": {}, "cam_far_b": {}}

	links, err := resolver.Resolve(context.Background(), tracklets, topology, 120)
	assert.NoError(t, err)
	assert.Len(t, links, 1)
	assert.False(t, links[0].Resolved)
	assert.Equal(t, ambiguousPersonConfidence, links[0].Confidence)
	// Ambiguous links still carry all their track ids.
	assert.Equal(t, []string{"t_a", "t_b"}, links[0].TrackIDs)
}

func TestReIDResolver_SameCameraGapsDoNotCount(t *testing.T) {
	resolver := NewReIDResolver()
	tracklets := []model.Tracklet{
		personTrack("t_1", "clip_a", "cam_a", 0, 5),
		personTrack("t_2", "clip_a", "cam_a", 500, 505),
	}

	links, err := resolver.Resolve(context.Background(), tracklets, map[string][]string{}, 120)
	assert.NoError(t, err)
	assert.True(t, links[0].Resolved)
}

func TestReIDResolver_ObjectsMergeByLabel(t *testing.T) {
	resolver := NewReIDResolver()
	tracklets := []model.Tracklet{
		{TrackID: "o_1", EntityType: model.EntityObject, Label: "red_suv", CameraID: "cam_a"},
		{TrackID: "o_2", EntityType: model.EntityObject, Label: "RED_SUV", CameraID: "cam_b", TStart: 900},
		{TrackID: "o_3", EntityType: model.EntityObject, Label: "blue_sedan", CameraID: "cam_a"},
	}

	links, err := resolver.Resolve(context.Background(), tracklets, map[string][]string{}, 120)
	assert.NoError(t, err)
	assert.Len(t, links, 2)

	assert.Equal(t, "red_suv", links[0].Label)
	assert.True(t, links[0].Resolved)
	assert.Equal(t, resolvedObjectConfidence, links[0].Confidence)
	assert.Equal(t, []string{"o_1", "o_2"}, links[0].TrackIDs)
	assert.Equal(t, "blue_sedan", links[1].Label)
}

func TestReIDResolver_DeterministicEntityIDs(t *testing.T) {
	resolver := NewReIDResolver()
	tracklets := []model.Tracklet{personTrack("t_a", "clip_a", "cam_a", 0, 5)}

	first, err := resolver.Resolve(context.Background(), tracklets, nil, 120)
	assert.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), tracklets, nil, 120)
	assert.NoError(t, err)
	assert.Equal(t, first[0].EntityID, second[0].EntityID)
}
