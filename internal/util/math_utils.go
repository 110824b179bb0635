package util

import (
	"fmt"
	"math"
)

// CosineSimilarity computes the cosine similarity of two embedding
// vectors. Zero-magnitude vectors yield 0 rather than an error so a
// degenerate embedding simply never matches anything.
func CosineSimilarity(vec1 []float32, vec2 []float32) (float64, error) {
	if len(vec1) == 0 || len(vec2) == 0 {
		return 0, fmt.Errorf("input vectors cannot be empty")
	}
	if len(vec1) != len(vec2) {
		return 0, fmt.Errorf("vector dimensions do not match: %d vs %d", len(vec1), len(vec2))
	}

	var dot, mag1Sq, mag2Sq float64
	for i := range vec1 {
		dot += float64(vec1[i]) * float64(vec2[i])
		mag1Sq += float64(vec1[i]) * float64(vec1[i])
		mag2Sq += float64(vec2[i]) * float64(vec2[i])
	}

	mag := math.Sqrt(mag1Sq) * math.Sqrt(mag2Sq)
	if mag == 0 {
		return 0, nil
	}
	return dot / mag, nil
}
