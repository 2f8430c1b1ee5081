package biometric

import (
	"encoding/binary"
	"math"

	"facegate.io/infrastructure/biometric/types"
)

// Quantize maps float tensor values onto the model's int8 wire format using
// the affine scheme value = round(f/scale) + zeroPoint, clamped to
// [-128, 127]. Rounding is round-half-away-from-zero (math.Round) to match
// the reference models' training-time quantizer; the policy is fixed because
// a different tie-break shifts decision thresholds.
//
// Native-float models (scale 0) pass through as little-endian float32 bytes.
func Quantize(values []float32, params types.QuantizationParams) []byte {
	if params.Mode() == types.QuantizationNative {
		out := make([]byte, len(values)*4)
		for i, value := range values {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(value))
		}
		return out
	}
	out := make([]byte, len(values))
	for i, value := range values {
		quantized := math.Round(float64(value)/params.Scale) + float64(params.ZeroPoint)
		if quantized < -128 {
			quantized = -128
		} else if quantized > 127 {
			quantized = 127
		}
		out[i] = byte(int8(quantized))
	}
	return out
}

// Dequantize reverses Quantize: f = (value - zeroPoint) * scale, or a
// straight float32 read on the native path.
func Dequantize(data []byte, params types.QuantizationParams) []float32 {
	if params.Mode() == types.QuantizationNative {
		out := make([]float32, len(data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return out
	}
	out := make([]float32, len(data))
	for i, value := range data {
		out[i] = float32((float64(int8(value)) - float64(params.ZeroPoint)) * params.Scale)
	}
	return out
}
