package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64Image(t *testing.T) {
	raw, err := DecodeBase64Image("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), raw)

	raw, err = DecodeBase64Image("data:image/jpeg;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), raw)

	_, err = DecodeBase64Image("not base64!!")
	assert.Error(t, err)
}

func TestGenerateULIDStringOrdering(t *testing.T) {
	first := GenerateULIDString()
	second := GenerateULIDString()
	assert.Len(t, first, 26)
	assert.Less(t, first, second)
}
