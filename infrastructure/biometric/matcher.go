package biometric

import (
	"math"

	"facegate.io/infrastructure/biometric/types"
)

// EuclideanDistance computes the L2 distance between two embeddings.
// Length mismatch is a hard error; embeddings are never padded or truncated.
func EuclideanDistance(a []float32, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &types.DimensionMismatchError{Want: len(a), Got: len(b)}
	}
	sum := 0.0
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}

// NearestIdentity scans every enrolled identity for the stored embedding
// closest to the query. Each identity scores as the minimum distance across
// its captures; the global minimum wins. An empty store reports ("", +Inf).
func NearestIdentity(embedding []float32, enrolled map[string][][]float32) (string, float64, error) {
	bestName := ""
	bestDistance := math.Inf(1)
	for name, stored := range enrolled {
		for _, candidate := range stored {
			distance, err := EuclideanDistance(embedding, candidate)
			if err != nil {
				return "", 0, err
			}
			if distance < bestDistance {
				bestDistance = distance
				bestName = name
			}
		}
	}
	return bestName, bestDistance, nil
}

// Identify runs nearest-neighbor identification under the verification
// threshold. A nil name with a finite distance means the nearest enrolled
// identity was too far to accept.
func Identify(embedding []float32, enrolled map[string][][]float32, threshold float64) (*string, float64, error) {
	name, distance, err := NearestIdentity(embedding, enrolled)
	if err != nil {
		return nil, 0, err
	}
	if name == "" || distance >= threshold {
		return nil, distance, nil
	}
	return &name, distance, nil
}
