// Package config loads and validates the pipeline runtime configuration.
// Configuration contract violations are fatal at load time: no partial
// pipeline execution is attempted on a bad config.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/sightline/internal/orchestrator"
)

type MetaConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type RetrievalConfig struct {
	InitialTopKWindows      int     `toml:"initial_top_k_windows"`
	ValidatedTopKWindows    int     `toml:"validated_top_k_windows"`
	MinValidationConfidence float64 `toml:"min_validation_confidence"`
}

type GroundingConfig struct {
	MinMaskConfidence float64 `toml:"min_mask_confidence"`
	RetryMaxAttempts  int     `toml:"retry_max_attempts"`
}

type ReIDConfig struct {
	ObjectMinSimilarity         float64 `toml:"object_min_similarity"`
	PersonMinSimilarity         float64 `toml:"person_min_similarity"`
	MaxCrossCameraTravelSeconds int     `toml:"max_cross_camera_travel_seconds"`
}

type TemporalConfig struct {
	SmoothingMethod     string  `toml:"smoothing_method"`
	SmoothingWindowSize int     `toml:"smoothing_window_size"`
	HysteresisHigh      float64 `toml:"hysteresis_high"`
	HysteresisLow       float64 `toml:"hysteresis_low"`
}

type OrchestrationConfig struct {
	RequiredStateKeys []string `toml:"required_state_keys"`
	BranchingHooks    []string `toml:"branching_hooks"`
}

type ExportConfig struct {
	MemgraphURI      string `toml:"memgraph_uri"`
	MemgraphUser     string `toml:"memgraph_user"`
	MemgraphPassword string `toml:"memgraph_password"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type Config struct {
	Meta          MetaConfig          `toml:"meta"`
	Retrieval     RetrievalConfig     `toml:"retrieval"`
	Grounding     GroundingConfig     `toml:"grounding"`
	ReID          ReIDConfig          `toml:"reid"`
	Temporal      TemporalConfig      `toml:"temporal"`
	Orchestration OrchestrationConfig `toml:"orchestration"`
	Export        ExportConfig        `toml:"export"`
	LLM           LLMConfig           `toml:"llm"`
}

// Default returns the groundtruth constants. Tests and the demo run on it
// without any config file.
func Default() *Config {
	return &Config{
		Meta: MetaConfig{Name: "sightline", Version: "v1.0"},
		Retrieval: RetrievalConfig{
			InitialTopKWindows:      32,
			ValidatedTopKWindows:    8,
			MinValidationConfidence: 0.55,
		},
		Grounding: GroundingConfig{
			MinMaskConfidence: 0.60,
			RetryMaxAttempts:  2,
		},
		ReID: ReIDConfig{
			ObjectMinSimilarity:         0.80,
			PersonMinSimilarity:         0.75,
			MaxCrossCameraTravelSeconds: 120,
		},
		Temporal: TemporalConfig{
			SmoothingMethod:     "ema",
			SmoothingWindowSize: 3,
			HysteresisHigh:      0.70,
			HysteresisLow:       0.40,
		},
		Orchestration: OrchestrationConfig{
			RequiredStateKeys: append([]string(nil), orchestrator.CanonicalStateKeys...),
			BranchingHooks: []string{
				"low_retrieval_confidence",
				"low_mask_confidence",
				"identity_ambiguity",
				"missing_evidence",
			},
		},
	}
}

// Load reads a base TOML file plus optional ordered override files (later
// wins), then validates the merged result. Unknown keys fail decoding.
func Load(basePath string, overridePaths ...string) (*Config, error) {
	cfg := Default()
	paths := append([]string{basePath}, overridePaths...)
	for _, path := range paths {
		if err := decodeInto(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse %q: %w", path, err)
	}
	return nil
}

// Validate enforces the configuration contract.
func (c *Config) Validate() error {
	if c.Retrieval.InitialTopKWindows <= 0 {
		return fmt.Errorf("retrieval.initial_top_k_windows must be positive, got %d", c.Retrieval.InitialTopKWindows)
	}
	if c.Retrieval.ValidatedTopKWindows <= 0 {
		return fmt.Errorf("retrieval.validated_top_k_windows must be positive, got %d", c.Retrieval.ValidatedTopKWindows)
	}
	if err := unitRange("retrieval.min_validation_confidence", c.Retrieval.MinValidationConfidence); err != nil {
		return err
	}
	if err := unitRange("grounding.min_mask_confidence", c.Grounding.MinMaskConfidence); err != nil {
		return err
	}
	if c.Grounding.RetryMaxAttempts < 0 {
		return fmt.Errorf("grounding.retry_max_attempts must not be negative, got %d", c.Grounding.RetryMaxAttempts)
	}
	if err := unitRange("reid.object_min_similarity", c.ReID.ObjectMinSimilarity); err != nil {
		return err
	}
	if err := unitRange("reid.person_min_similarity", c.ReID.PersonMinSimilarity); err != nil {
		return err
	}
	if c.ReID.MaxCrossCameraTravelSeconds < 0 {
		return fmt.Errorf("reid.max_cross_camera_travel_seconds must not be negative, got %d", c.ReID.MaxCrossCameraTravelSeconds)
	}

	switch c.Temporal.SmoothingMethod {
	case "ema", "savitzky_golay":
	default:
		return fmt.Errorf("temporal.smoothing_method must be one of ema, savitzky_golay; got %q", c.Temporal.SmoothingMethod)
	}
	if c.Temporal.SmoothingWindowSize <= 0 {
		return fmt.Errorf("temporal.smoothing_window_size must be positive, got %d", c.Temporal.SmoothingWindowSize)
	}
	if err := unitRange("temporal.hysteresis_high", c.Temporal.HysteresisHigh); err != nil {
		return err
	}
	if err := unitRange("temporal.hysteresis_low", c.Temporal.HysteresisLow); err != nil {
		return err
	}
	if c.Temporal.HysteresisHigh <= c.Temporal.HysteresisLow {
		return fmt.Errorf("temporal.hysteresis_high (%v) must be greater than hysteresis_low (%v)",
			c.Temporal.HysteresisHigh, c.Temporal.HysteresisLow)
	}

	declared := make(map[string]struct{}, len(c.Orchestration.RequiredStateKeys))
	for _, key := range c.Orchestration.RequiredStateKeys {
		declared[key] = struct{}{}
	}
	for _, key := range orchestrator.CanonicalStateKeys {
		if _, ok := declared[key]; !ok {
			return fmt.Errorf("orchestration.required_state_keys missing canonical key %q", key)
		}
	}
	if len(c.Orchestration.BranchingHooks) == 0 {
		return fmt.Errorf("orchestration.branching_hooks must not be empty")
	}
	for _, hook := range c.Orchestration.BranchingHooks {
		if !orchestrator.KnownHook(hook) {
			return fmt.Errorf("orchestration.branching_hooks references unknown hook %q", hook)
		}
	}

	return nil
}

func unitRange(field string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%s must be within [0,1], got %v", field, value)
	}
	return nil
}
