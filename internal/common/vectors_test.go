package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine_Basics(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 3}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-9)
}

func TestCosine_ZeroVector(t *testing.T) {
	// Zero-norm vectors fall back to norm 1 instead of dividing by zero.
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
}

func TestMean_EmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestSmoothCurve_WindowOfOneIsIdentity(t *testing.T) {
	in := []float64{0.1, 1.0, 0.3}
	out := SmoothCurve(in, 1)
	assert.Equal(t, in, out)

	// Output is a copy, not an alias.
	out[0] = 9
	assert.Equal(t, 0.1, in[0])
}

func TestSmoothCurve_CenteredMovingAverage(t *testing.T) {
	out := SmoothCurve([]float64{0, 1, 0, 1, 0}, 3)
	assert.InDelta(t, 0.5, out[0], 1e-9)
	assert.InDelta(t, 1.0/3.0, out[1], 1e-9)
	assert.InDelta(t, 2.0/3.0, out[2], 1e-9)
	assert.InDelta(t, 1.0/3.0, out[3], 1e-9)
	assert.InDelta(t, 0.5, out[4], 1e-9)
}
