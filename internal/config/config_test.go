package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testdata(name string) string {
	return filepath.Join("testdata", name)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "sightline", cfg.Meta.Name)
	assert.Equal(t, 32, cfg.Retrieval.InitialTopKWindows)
	assert.Equal(t, "ema", cfg.Temporal.SmoothingMethod)
	assert.Len(t, cfg.Orchestration.BranchingHooks, 4)
}

func TestLoad_BaseFile(t *testing.T) {
	cfg, err := Load(testdata("valid_base.toml"))
	assert.NoError(t, err)
	assert.Equal(t, "v1.1", cfg.Meta.Version)
	assert.Equal(t, 16, cfg.Retrieval.InitialTopKWindows)
	assert.Equal(t, "savitzky_golay", cfg.Temporal.SmoothingMethod)
	assert.Equal(t, 90, cfg.ReID.MaxCrossCameraTravelSeconds)
	// Unset sections keep defaults.
	assert.Equal(t, 0.80, cfg.ReID.ObjectMinSimilarity)
}

func TestLoad_OverrideWins(t *testing.T) {
	cfg, err := Load(testdata("valid_base.toml"), testdata("override.toml"))
	assert.NoError(t, err)
	// Overridden by the second file.
	assert.Equal(t, 6, cfg.Retrieval.ValidatedTopKWindows)
	assert.Equal(t, "ema", cfg.Temporal.SmoothingMethod)
	// Untouched base values survive.
	assert.Equal(t, 16, cfg.Retrieval.InitialTopKWindows)
	assert.Equal(t, 0.80, cfg.Temporal.HysteresisHigh)
}

func TestLoad_UnknownKeyFails(t *testing.T) {
	_, err := Load(testdata("unknown_key.toml"))
	assert.Error(t, err)
}

func TestLoad_HysteresisOrderingFails(t *testing.T) {
	_, err := Load(testdata("valid_base.toml"), testdata("bad_hysteresis.toml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "hysteresis_high")
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(testdata("does_not_exist.toml"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Temporal.SmoothingMethod = "boxcar"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Retrieval.MinValidationConfidence = 1.2
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Orchestration.RequiredStateKeys = []string{"query_id"}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Orchestration.BranchingHooks = []string{"made_up_hook"}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Orchestration.BranchingHooks = nil
	assert.Error(t, cfg.Validate())
}
