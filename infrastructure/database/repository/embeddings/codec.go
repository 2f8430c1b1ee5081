package embeddings

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeDescriptor packs an embedding into little-endian float32 bytes for
// blob storage.
func EncodeDescriptor(embedding []float32) []byte {
	out := make([]byte, len(embedding)*4)
	for i, value := range embedding {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(value))
	}
	return out
}

// DecodeDescriptor unpacks a stored blob back into an embedding.
func DecodeDescriptor(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("descriptor blob length %d is not a multiple of 4", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}
