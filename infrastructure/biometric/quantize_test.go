package biometric

import (
	"testing"

	"facegate.io/infrastructure/biometric/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeAffine(t *testing.T) {
	params := types.QuantizationParams{Scale: 0.00392156862745098, ZeroPoint: -128}

	tests := []struct {
		name  string
		value float32
		want  int8
	}{
		{"zero maps to zero point", 0.0, -128},
		{"midpoint", 0.5, 0}, // round(0.5/scale) = 128, +(-128) = 0
		{"full scale", 1.0, 127},
		{"clamps above", 2.0, 127},
		{"clamps below", -1.0, -128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Quantize([]float32{tt.value}, params)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, int8(out[0]))
		})
	}
}

func TestDequantizeAffine(t *testing.T) {
	params := types.QuantizationParams{Scale: 0.003921, ZeroPoint: -128}

	// int8 0 sits 128 steps above the zero point: 128 * 0.003921.
	out := Dequantize([]byte{0}, params)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.501888, out[0], 1e-6)

	// The zero point itself recovers exactly zero.
	zeroPoint := int8(-128)
	zp := Dequantize([]byte{byte(zeroPoint)}, params)
	assert.Equal(t, float32(0), zp[0])
}

func TestQuantizeRoundsHalfAwayFromZero(t *testing.T) {
	params := types.QuantizationParams{Scale: 1.0, ZeroPoint: 0}

	out := Quantize([]float32{0.5, -0.5, 1.5}, params)
	assert.Equal(t, int8(1), int8(out[0]))
	assert.Equal(t, int8(-1), int8(out[1]))
	assert.Equal(t, int8(2), int8(out[2]))
}

func TestQuantizeRoundTripWithinScale(t *testing.T) {
	params := types.QuantizationParams{Scale: 0.0172, ZeroPoint: 11}
	values := []float32{-1.2, -0.33, 0, 0.017, 0.5, 1.9}

	recovered := Dequantize(Quantize(values, params), params)
	require.Len(t, recovered, len(values))
	for i, value := range values {
		assert.InDelta(t, value, recovered[i], params.Scale, "index %d", i)
	}
}

func TestQuantizeNativePassthrough(t *testing.T) {
	params := types.QuantizationParams{Scale: 0, ZeroPoint: 0}
	values := []float32{0.125, -3.5, 1e-7, 42}

	encoded := Quantize(values, params)
	require.Len(t, encoded, len(values)*4)
	assert.Equal(t, values, Dequantize(encoded, params))
}
