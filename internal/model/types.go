package model

// RouteID identifies the ingestion route chosen for a clip in stage 1.
type RouteID string

const (
	RouteMetaSync        RouteID = "meta_sync"
	RouteSigExAdaptive   RouteID = "sig_ex_adaptive"
	RouteCVState         RouteID = "cv_state"
	RouteBgMotionTrigger RouteID = "bg_motion_trigger"
)

// EntityType distinguishes person tracklets from object tracklets.
type EntityType string

const (
	EntityObject EntityType = "object"
	EntityPerson EntityType = "person"
)

type CameraType string

const (
	CameraStatic CameraType = "static"
	CameraMoving CameraType = "moving"
)

type Location string

const (
	LocationInterior Location = "interior"
	LocationExterior Location = "exterior"
)

// FrameObservation is a single decoded frame summary: detected object and
// action labels plus a scalar background-motion magnitude.
type FrameObservation struct {
	Timestamp        int      `json:"timestamp"`
	Objects          []string `json:"objects"`
	Actions          []string `json:"actions"`
	BackgroundMotion float64  `json:"background_motion"`
}

// WindowSpan is an explicit [TStart, TEnd] activity hint carried in clip
// metadata by upstream encoders.
type WindowSpan struct {
	TStart int `json:"t_start"`
	TEnd   int `json:"t_end"`
}

// ClipMetadata holds the recognized metadata keys. Upstream systems attach
// free-form metadata; only these fields influence routing.
type ClipMetadata struct {
	HasMotionVectors bool         `json:"has_motion_vectors,omitempty"`
	ActiveWindows    []WindowSpan `json:"active_windows,omitempty"`
}

type Clip struct {
	ClipID          string             `json:"clip_id"`
	CameraID        string             `json:"camera_id"`
	CameraType      CameraType         `json:"camera_type"`
	Location        Location           `json:"location"`
	DurationSeconds int                `json:"duration_seconds"`
	Frames          []FrameObservation `json:"frames"`
	Metadata        ClipMetadata       `json:"metadata"`
}

// QueryRequest is the input boundary object; immutable for the run.
// CameraTopology maps a camera id to its directly reachable neighbors.
type QueryRequest struct {
	QueryID        string              `json:"query_id"`
	QueryText      string              `json:"query_text"`
	Clips          []Clip              `json:"clips"`
	CameraTopology map[string][]string `json:"camera_topology"`
}

// ActiveWindow is a stage 1 output: one contiguous activity span per clip.
type ActiveWindow struct {
	WindowID       string   `json:"window_id"`
	ClipID         string   `json:"clip_id"`
	CameraID       string   `json:"camera_id"`
	RouteID        RouteID  `json:"route_id"`
	TStart         int      `json:"t_start"`
	TEnd           int      `json:"t_end"`
	Reason         string   `json:"reason"`
	SemanticTokens []string `json:"semantic_tokens"`
}

// KeyframeRecord is an append-only frame vector index entry.
type KeyframeRecord struct {
	FrameID        string    `json:"frame_id"`
	WindowID       string    `json:"window_id"`
	ClipID         string    `json:"clip_id"`
	CameraID       string    `json:"camera_id"`
	Timestamp      int       `json:"timestamp"`
	Embedding      []float64 `json:"embedding"`
	EmbeddingID    string    `json:"embedding_id"`
	SemanticTokens []string  `json:"semantic_tokens"`
	RouteID        RouteID   `json:"route_id"`
}

// WindowFeatures bundles pooled and per-timestep embeddings for one window.
type WindowFeatures struct {
	WindowID              string      `json:"window_id"`
	ClipID                string      `json:"clip_id"`
	CameraID              string      `json:"camera_id"`
	TStart                int         `json:"t_start"`
	TEnd                  int         `json:"t_end"`
	PooledEmbedding       []float64   `json:"pooled_embedding"`
	PerTimestepEmbeddings [][]float64 `json:"per_timestep_embeddings"`
	SemanticTokens        []string    `json:"semantic_tokens"`
}

// ValidatedWindow is a stage 2 output. QueryText records which query or
// sub-query the confidence was scored against.
type ValidatedWindow struct {
	WindowID   string  `json:"window_id"`
	ClipID     string  `json:"clip_id"`
	CameraID   string  `json:"camera_id"`
	TStart     int     `json:"t_start"`
	TEnd       int     `json:"t_end"`
	Confidence float64 `json:"confidence"`
	QueryText  string  `json:"query_text"`
}

// Tracklet is a stage 3 output: a single-window detection of one entity.
type Tracklet struct {
	TrackID        string     `json:"track_id"`
	ClipID         string     `json:"clip_id"`
	CameraID       string     `json:"camera_id"`
	WindowID       string     `json:"window_id"`
	EntityType     EntityType `json:"entity_type"`
	Label          string     `json:"label"`
	TStart         int        `json:"t_start"`
	TEnd           int        `json:"t_end"`
	MaskConfidence float64    `json:"mask_confidence"`
	OverlayURI     string     `json:"overlay_uri"`
}

// EntityLink is a stage 4 output. Resolved=false marks an identity the
// system could not confirm across cameras.
type EntityLink struct {
	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`
	Label      string     `json:"label"`
	TrackIDs   []string   `json:"track_ids"`
	Confidence float64    `json:"confidence"`
	Resolved   bool       `json:"resolved"`
}

// TemporalSegment is a stage 5 output.
type TemporalSegment struct {
	SegmentID    string   `json:"segment_id"`
	ClipID       string   `json:"clip_id"`
	CameraID     string   `json:"camera_id"`
	TrackID      string   `json:"track_id"`
	Action       string   `json:"action"`
	TStart       int      `json:"t_start"`
	TEnd         int      `json:"t_end"`
	Confidence   float64  `json:"confidence"`
	FailureFlags []string `json:"failure_flags"`
}

// Failure flags attached to temporal segments.
const (
	FlagLowSimilarity       = "low_similarity"
	FlagLowMaskConfidence   = "low_mask_confidence"
	FlagMultiActorAmbiguity = "multi_actor_ambiguity"
)

// EvidenceRef is the unit of provenance attached to every claim and edge.
type EvidenceRef struct {
	ClipID       string `json:"clip_id"`
	CameraID     string `json:"camera_id"`
	FrameStart   int    `json:"frame_start"`
	FrameEnd     int    `json:"frame_end"`
	OverlayURI   string `json:"overlay_uri"`
	EmbeddingID  string `json:"embedding_id"`
	ModelVersion string `json:"model_version"`
}

// Graph node types used by stage 6.
const (
	NodePersonEntity  = "PersonEntityID"
	NodeObjectCluster = "ObjectClusterID"
	NodeTrack         = "TrackID"
	NodeCamera        = "CameraID"
)

type EdgeType string

const (
	EdgeExits   EdgeType = "EXITS"
	EdgeMovesTo EdgeType = "MOVES_TO"
)

type GraphNode struct {
	NodeID     string         `json:"node_id"`
	NodeType   string         `json:"node_type"`
	Properties map[string]any `json:"properties"`
}

// GraphEdge carries a time span, confidence, and a non-empty evidence list.
// An edge with zero evidence must never be emitted.
type GraphEdge struct {
	EdgeID       string        `json:"edge_id"`
	EdgeType     EdgeType      `json:"edge_type"`
	SourceID     string        `json:"source_id"`
	TargetID     string        `json:"target_id"`
	TStart       int           `json:"t_start"`
	TEnd         int           `json:"t_end"`
	CameraID     string        `json:"camera_id"`
	Confidence   float64       `json:"confidence"`
	EvidenceRefs []EvidenceRef `json:"evidence_refs"`
}

// ClaimRecord is grounded text linked to entities, a time span, and evidence.
type ClaimRecord struct {
	ClaimID      string        `json:"claim_id"`
	Text         string        `json:"text"`
	EntityIDs    []string      `json:"entity_ids"`
	CameraID     string        `json:"camera_id"`
	TStart       int           `json:"t_start"`
	TEnd         int           `json:"t_end"`
	Confidence   float64       `json:"confidence"`
	EvidenceRefs []EvidenceRef `json:"evidence_refs"`
}

// SynthesisOutput holds only claims backed by non-empty evidence.
// RedactedClaimCount records claims dropped for insufficient evidence.
type SynthesisOutput struct {
	Summary            string        `json:"summary"`
	Claims             []ClaimRecord `json:"claims"`
	EvidenceAppendix   []string      `json:"evidence_appendix"`
	RedactedClaimCount int           `json:"redacted_claim_count"`
}

// StageMetrics captures per-stage wall-clock durations and the engine's
// cumulative feature-cache counters at the end of the run.
type StageMetrics struct {
	StageDurationsMS map[string]float64 `json:"stage_durations_ms"`
	CacheHits        int                `json:"cache_hits"`
	CacheMisses      int                `json:"cache_misses"`
}

// PipelineResult bundles every stage's output for one query.
type PipelineResult struct {
	QueryID          string            `json:"query_id"`
	QueryText        string            `json:"query_text"`
	ActiveWindows    []ActiveWindow    `json:"active_windows"`
	ValidatedWindows []ValidatedWindow `json:"validated_windows"`
	Tracklets        []Tracklet        `json:"tracklets"`
	EntityLinks      []EntityLink      `json:"entity_links"`
	TemporalSegments []TemporalSegment `json:"temporal_segments"`
	GraphNodes       []GraphNode       `json:"graph_nodes"`
	GraphEdges       []GraphEdge       `json:"graph_edges"`
	Synthesis        SynthesisOutput   `json:"synthesis"`
	Metrics          StageMetrics      `json:"metrics"`
}
