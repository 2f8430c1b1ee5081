package biometric

import (
	"math"
	"testing"

	"facegate.io/infrastructure/biometric/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"unit apart", []float32{0, 0}, []float32{1, 0}, 1},
		{"pythagorean", []float32{0, 0}, []float32{3, 4}, 5},
		{"empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EuclideanDistance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEuclideanDistanceDimensionMismatch(t *testing.T) {
	_, err := EuclideanDistance([]float32{1, 2, 3}, []float32{1, 2})
	var mismatch *types.DimensionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 3, mismatch.Want)
	assert.Equal(t, 2, mismatch.Got)
}

func TestNearestIdentityEmptyStore(t *testing.T) {
	name, distance, err := NearestIdentity([]float32{1, 2}, map[string][][]float32{})
	require.NoError(t, err)
	assert.Equal(t, "", name)
	assert.True(t, math.IsInf(distance, 1))
}

func TestNearestIdentityPicksPerIdentityMinimum(t *testing.T) {
	enrolled := map[string][][]float32{
		"alice": {{0, 0}, {10, 0}},
		"bob":   {{3, 0}},
	}

	// Query sits 1.0 from alice's second capture and 6.0 from bob.
	name, distance, err := NearestIdentity([]float32{9, 0}, enrolled)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
	assert.InDelta(t, 1.0, distance, 1e-9)
}

func TestIdentifyThresholdIsExclusive(t *testing.T) {
	enrolled := map[string][][]float32{
		"alice": {{0, 0}},
	}

	// Exactly at the threshold is a rejection.
	name, distance, err := Identify([]float32{1.9, 0}, enrolled, 1.9)
	require.NoError(t, err)
	assert.Nil(t, name)
	assert.InDelta(t, 1.9, distance, 1e-9)

	name, distance, err = Identify([]float32{1.8, 0}, enrolled, 1.9)
	require.NoError(t, err)
	require.NotNil(t, name)
	assert.Equal(t, "alice", *name)
	assert.InDelta(t, 1.8, distance, 1e-9)
}

func TestIdentifyInvariantToEnrollmentOrder(t *testing.T) {
	query := []float32{5, 0}
	forward := map[string][][]float32{}
	backward := map[string][][]float32{}
	captures := [][]float32{{0, 0}, {4.5, 0}, {20, 0}}
	names := []string{"alice", "bob", "carol"}
	for i := range names {
		forward[names[i]] = [][]float32{captures[i]}
		backward[names[len(names)-1-i]] = [][]float32{captures[len(names)-1-i]}
	}

	nameA, distA, err := Identify(query, forward, 1.9)
	require.NoError(t, err)
	nameB, distB, err := Identify(query, backward, 1.9)
	require.NoError(t, err)
	require.NotNil(t, nameA)
	require.NotNil(t, nameB)
	assert.Equal(t, *nameA, *nameB)
	assert.Equal(t, distA, distB)
	assert.Equal(t, "bob", *nameA)
}

func TestIdentifyEmptyStore(t *testing.T) {
	name, distance, err := Identify([]float32{1, 2}, map[string][][]float32{}, 1.9)
	require.NoError(t, err)
	assert.Nil(t, name)
	assert.True(t, math.IsInf(distance, 1))
}
