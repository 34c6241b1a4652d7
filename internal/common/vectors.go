package common

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Cosine returns the cosine similarity of two equal-length vectors.
// A length mismatch is a data-contract violation: all embeddings in one run
// share a fixed dimensionality, so gonum's panic is left to propagate.
func Cosine(left, right []float64) float64 {
	dot := floats.Dot(left, right)
	leftNorm := floats.Norm(left, 2)
	if leftNorm == 0 {
		leftNorm = 1.0
	}
	rightNorm := floats.Norm(right, 2)
	if rightNorm == 0 {
		rightNorm = 1.0
	}
	return dot / (leftNorm * rightNorm)
}

// Mean is an arithmetic mean with empty-slice protection.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return stat.Mean(values, nil)
}

// SmoothCurve applies a centered moving average. A window of one or less,
// or a single-sample series, is returned unsmoothed.
func SmoothCurve(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if window <= 1 || len(values) <= 1 {
		return out
	}

	halfWindow := window / 2
	if halfWindow < 1 {
		halfWindow = 1
	}
	for i := range values {
		start := i - halfWindow
		if start < 0 {
			start = 0
		}
		end := i + halfWindow + 1
		if end > len(values) {
			end = len(values)
		}
		out[i] = Mean(values[start:end])
	}
	return out
}
