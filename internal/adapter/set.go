package adapter

import "github.com/agenthands/sightline/internal/ports"

// DefaultSet wires the deterministic reference implementation of every
// port. It is the stand-in stack used by tests and the demo; any port can
// be swapped for a learned client (see internal/llm) without touching the
// pipeline.
func DefaultSet() ports.Set {
	frameSpace := NewFrameSpaceEmbedder()
	return ports.Set{
		TextEmbedder:       frameSpace,
		WindowTextEmbedder: NewWindowSpaceTextEmbedder(),
		FrameEmbedder:      frameSpace,
		WindowEncoder:      NewWindowFeatureEncoder(),
		SpatialGrounder:    NewMaskGrounder(),
		EntityResolver:     NewReIDResolver(),
		TemporalLocalizer:  NewHysteresisLocalizer(),
		Synthesizer:        NewTemplateSynthesizer(),
		QueryDecomposer:    NewCommaAndDecomposer(),
		RouteSelector:      NewTriggerRouter(),
	}
}
