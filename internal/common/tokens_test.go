package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_SplitsCompoundLabels(t *testing.T) {
	assert.Equal(t, []string{"red", "suv"}, Tokenize("red_suv"))
	assert.Equal(t, []string{"person", "exits", "suv"}, Tokenize("person-exits-SUV"))
	assert.Equal(t, []string{"find", "the", "red", "suv"}, Tokenize("Find the red SUV."))
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("  ,.  "))
}

func TestOverlapScore_FractionOfUniqueQueryTokens(t *testing.T) {
	semantic := []string{"red", "suv", "person"}

	assert.Equal(t, 1.0, OverlapScore([]string{"red", "suv"}, semantic))
	assert.Equal(t, 0.5, OverlapScore([]string{"red", "bicycle"}, semantic))
	// Duplicate query tokens count once.
	assert.Equal(t, 0.5, OverlapScore([]string{"red", "red", "bicycle"}, semantic))
	assert.Equal(t, 0.0, OverlapScore(nil, semantic))
	assert.Equal(t, 0.0, OverlapScore([]string{"bicycle"}, nil))
}

func TestStableID_Deterministic(t *testing.T) {
	a := StableID("WIN", "clip_ext_1", "meta_sync", 0, 8, 13)
	b := StableID("WIN", "clip_ext_1", "meta_sync", 0, 8, 13)
	c := StableID("WIN", "clip_ext_1", "meta_sync", 1, 8, 13)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, len("WIN_")+10)
	assert.Regexp(t, `^WIN_[0-9a-f]{10}$`, a)
}
