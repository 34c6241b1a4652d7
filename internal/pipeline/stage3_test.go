package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/sightline/internal/adapter"
	"github.com/agenthands/sightline/internal/model"
)

func TestDetectorTrackerFallback_KeepsRawLabels(t *testing.T) {
	engine := New(permissiveConfig(), adapter.DefaultSet())
	clip := model.Clip{
		ClipID:   "clip_mixed",
		CameraID: "cam_mixed",
		Frames: []model.FrameObservation{
			{Timestamp: 1, Objects: []string{"Red_SUV", "bench"}},
			{Timestamp: 2, Objects: []string{"Person_P1", "Red_SUV"}},
		},
	}
	window := model.ValidatedWindow{WindowID: "win_mixed", ClipID: "clip_mixed", CameraID: "cam_mixed", TStart: 1, TEnd: 2}

	tracklets := engine.detectorTrackerFallback(window, clip)
	assert.Len(t, tracklets, 2)

	// Casing is only lowered for the person/vehicle filter; labels, sort
	// order, and track ids all derive from the raw detection strings.
	assert.Equal(t, "Person_P1", tracklets[0].Label)
	assert.Equal(t, "Red_SUV", tracklets[1].Label)
	assert.Equal(t, model.EntityPerson, tracklets[0].EntityType)
	assert.Equal(t, model.EntityObject, tracklets[1].EntityType)
	for _, tracklet := range tracklets {
		assert.Equal(t, fallbackMaskConfidence, tracklet.MaskConfidence)
	}
}

func TestDetectorTrackerFallback_CapsAtTwoLabels(t *testing.T) {
	engine := New(permissiveConfig(), adapter.DefaultSet())
	clip := model.Clip{
		ClipID:   "clip_busy",
		CameraID: "cam_busy",
		Frames: []model.FrameObservation{
			{Timestamp: 1, Objects: []string{"person_a", "person_b", "red_suv"}},
		},
	}
	window := model.ValidatedWindow{WindowID: "win_busy", ClipID: "clip_busy", CameraID: "cam_busy", TStart: 1, TEnd: 1}

	tracklets := engine.detectorTrackerFallback(window, clip)
	assert.Len(t, tracklets, 2)
	assert.Equal(t, "person_a", tracklets[0].Label)
	assert.Equal(t, "person_b", tracklets[1].Label)
}
