// Package fixture builds the synthetic datasets used by tests and demo runs.
package fixture

import (
	"github.com/agenthands/sightline/internal/model"
)

func buildFrames(durationSeconds int, defaultBackgroundMotion float64, objectsByTimestamp map[int][]string, actionsByTimestamp map[int][]string) []model.FrameObservation {
	frames := make([]model.FrameObservation, 0, durationSeconds+1)
	for ts := 0; ts <= durationSeconds; ts++ {
		frames = append(frames, model.FrameObservation{
			Timestamp:        ts,
			Objects:          objectsByTimestamp[ts],
			Actions:          actionsByTimestamp[ts],
			BackgroundMotion: defaultBackgroundMotion,
		})
	}
	return frames
}

// RedSUVQueryRequest is the canonical end-to-end fixture: a red SUV arrives
// on the exterior camera, a person exits it, and the same person appears on
// two interior cameras later.
func RedSUVQueryRequest() *model.QueryRequest {
	extObjects := map[int][]string{
		8:  {"red_suv"},
		9:  {"red_suv"},
		10: {"red_suv", "person_p1"},
		11: {"red_suv", "person_p1"},
		12: {"red_suv", "person_p1"},
		13: {"red_suv"},
	}
	extActions := map[int][]string{
		10: {"person_exits_suv"},
		11: {"person_exits_suv"},
	}

	int1Objects := map[int][]string{
		30: {"person_p1"},
		31: {"person_p1"},
		32: {"person_p1"},
		33: {"person_p1"},
	}
	int1Actions := map[int][]string{
		31: {"person_moves_to_interior"},
		32: {"person_moves_to_interior"},
	}

	int2Objects := map[int][]string{
		45: {"person_p1"},
		46: {"person_p1"},
		47: {"person_p1"},
	}
	int2Actions := map[int][]string{
		46: {"person_moves_to_interior"},
	}

	distractorObjects := map[int][]string{
		4: {"blue_sedan"},
		5: {"blue_sedan"},
	}

	clips := []model.Clip{
		{
			ClipID:          "clip_ext_1",
			CameraID:        "cam_ext_1",
			CameraType:      model.CameraStatic,
			Location:        model.LocationExterior,
			DurationSeconds: 60,
			Frames:          buildFrames(60, 0.35, extObjects, extActions),
			Metadata: model.ClipMetadata{
				HasMotionVectors: true,
				ActiveWindows:    []model.WindowSpan{{TStart: 8, TEnd: 13}},
			},
		},
		{
			ClipID:          "clip_int_1",
			CameraID:        "cam_int_1",
			CameraType:      model.CameraStatic,
			Location:        model.LocationInterior,
			DurationSeconds: 60,
			Frames:          buildFrames(60, 0.18, int1Objects, int1Actions),
		},
		{
			ClipID:          "clip_int_2",
			CameraID:        "cam_int_2",
			CameraType:      model.CameraStatic,
			Location:        model.LocationInterior,
			DurationSeconds: 60,
			Frames:          buildFrames(60, 0.22, int2Objects, int2Actions),
		},
		{
			ClipID:          "clip_noise_1",
			CameraID:        "cam_ext_2",
			CameraType:      model.CameraStatic,
			Location:        model.LocationExterior,
			DurationSeconds: 60,
			Frames:          buildFrames(60, 0.65, distractorObjects, nil),
		},
	}

	return &model.QueryRequest{
		QueryID:   "query_red_suv_tracking",
		QueryText: "Find the red SUV, identify the person who got out, and track that specific person across the interior cameras.",
		Clips:     clips,
		CameraTopology: map[string][]string{
			"cam_ext_1": {"cam_int_1"},
			"cam_int_1": {"cam_ext_1", "cam_int_2"},
			"cam_int_2": {"cam_int_1"},
			"cam_ext_2": {"cam_ext_1"},
		},
	}
}

// RouteCoverageRequest exercises all four ingestion routing paths.
func RouteCoverageRequest() *model.QueryRequest {
	clipMeta := model.Clip{
		ClipID:          "clip_meta",
		CameraID:        "cam_meta",
		CameraType:      model.CameraStatic,
		Location:        model.LocationExterior,
		DurationSeconds: 20,
		Frames: buildFrames(20, 0.2,
			map[int][]string{4: {"red_suv"}, 5: {"person_p1"}},
			map[int][]string{5: {"person_exits_suv"}}),
		Metadata: model.ClipMetadata{
			HasMotionVectors: true,
			ActiveWindows:    []model.WindowSpan{{TStart: 4, TEnd: 6}},
		},
	}

	clipMoving := model.Clip{
		ClipID:          "clip_moving",
		CameraID:        "cam_move",
		CameraType:      model.CameraMoving,
		Location:        model.LocationExterior,
		DurationSeconds: 20,
		Frames: buildFrames(20, 0.5,
			map[int][]string{7: {"person_p2"}, 8: {"person_p2"}},
			map[int][]string{8: {"person_runs"}}),
	}

	clipStaticLow := model.Clip{
		ClipID:          "clip_static_low",
		CameraID:        "cam_static_low",
		CameraType:      model.CameraStatic,
		Location:        model.LocationInterior,
		DurationSeconds: 20,
		Frames: buildFrames(20, 0.1,
			map[int][]string{9: {"person_p3"}, 10: {"person_p3"}},
			map[int][]string{10: {"person_walks"}}),
	}

	clipStaticHigh := model.Clip{
		ClipID:          "clip_static_high",
		CameraID:        "cam_static_high",
		CameraType:      model.CameraStatic,
		Location:        model.LocationExterior,
		DurationSeconds: 20,
		Frames: buildFrames(20, 0.8,
			map[int][]string{11: {"vehicle_unknown"}, 12: {"vehicle_unknown"}},
			map[int][]string{12: {"object_moves"}}),
	}

	return &model.QueryRequest{
		QueryID:   "query_route_coverage",
		QueryText: "Find person and vehicle movement",
		Clips:     []model.Clip{clipMeta, clipMoving, clipStaticLow, clipStaticHigh},
		CameraTopology: map[string][]string{
			"cam_meta":        {"cam_move"},
			"cam_move":        {"cam_meta", "cam_static_low"},
			"cam_static_low":  {"cam_move", "cam_static_high"},
			"cam_static_high": {"cam_static_low"},
		},
	}
}

// AmbiguousPersonRequest puts the same person label on two disconnected
// cameras with a travel gap no real person could cover.
func AmbiguousPersonRequest() *model.QueryRequest {
	clipA := model.Clip{
		ClipID:          "clip_amb_a",
		CameraID:        "cam_far_a",
		CameraType:      model.CameraStatic,
		Location:        model.LocationInterior,
		DurationSeconds: 30,
		Frames: buildFrames(30, 0.2,
			map[int][]string{5: {"person_px"}, 6: {"person_px"}},
			map[int][]string{6: {"person_moves"}}),
	}

	clipB := model.Clip{
		ClipID:          "clip_amb_b",
		CameraID:        "cam_far_b",
		CameraType:      model.CameraStatic,
		Location:        model.LocationInterior,
		DurationSeconds: 420,
		Frames: buildFrames(420, 0.2,
			map[int][]string{400: {"person_px"}, 401: {"person_px"}},
			map[int][]string{401: {"person_moves"}}),
	}

	return &model.QueryRequest{
		QueryID:   "query_ambiguous_person",
		QueryText: "Track this person across cameras",
		Clips:     []model.Clip{clipA, clipB},
		CameraTopology: map[string][]string{
			"cam_far_a": {},
			"cam_far_b": {},
		},
	}
}
