package adapter

import (
	"crypto/sha256"
	"encoding/binary"

	"gonum.org/v1/gonum/floats"
)

// DefaultEmbeddingDim is the dimensionality shared by all reference
// adapters. Every embedding in one run must use the same dimensionality.
const DefaultEmbeddingDim = 16

// DeterministicVector derives a normalized pseudo-embedding from a text
// seed by chaining sha256 digests. The same seed always yields the same
// vector, which is what makes full pipeline runs reproducible.
func DeterministicVector(seed string, dim int) []float64 {
	out := make([]float64, 0, dim)
	current := seed
	for len(out) < dim {
		digest := sha256.Sum256([]byte(current))
		for idx := 0; idx+2 <= len(digest) && len(out) < dim; idx += 2 {
			value := binary.BigEndian.Uint16(digest[idx : idx+2])
			out = append(out, float64(value)/32767.5-1.0)
		}
		current += "#"
	}

	norm := floats.Norm(out, 2)
	if norm == 0 {
		norm = 1.0
	}
	floats.Scale(1.0/norm, out)
	return out
}
