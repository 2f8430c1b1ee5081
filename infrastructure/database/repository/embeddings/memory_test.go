package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Save("Alice", []float32{1, 2, 3}))
	require.NoError(t, store.Save("Alice", []float32{4, 5, 6}))
	require.NoError(t, store.Save("bob", []float32{7, 8, 9}))

	enrolled, err := store.Load()
	require.NoError(t, err)
	require.Len(t, enrolled, 2)
	assert.Len(t, enrolled["Alice"], 2)
	assert.Equal(t, []float32{7, 8, 9}, enrolled["bob"][0])

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "bob"}, names)
}

func TestMemoryStoreCaseInsensitiveKeys(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Save("Alice", []float32{1}))
	// Same identity under different casing accumulates and keeps the first
	// display name.
	require.NoError(t, store.Save("ALICE", []float32{2}))

	enrolled, err := store.Load()
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Len(t, enrolled["Alice"], 2)

	deleted, err := store.Delete("alice")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete("alice")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryStoreLoadReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save("alice", []float32{1, 2}))

	enrolled, err := store.Load()
	require.NoError(t, err)
	enrolled["alice"][0][0] = 99

	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, float32(1), again["alice"][0][0])
}

func TestDescriptorCodec(t *testing.T) {
	embedding := []float32{0, -1.5, 3.25, 1e-7}

	decoded, err := DecodeDescriptor(EncodeDescriptor(embedding))
	require.NoError(t, err)
	assert.Equal(t, embedding, decoded)
}

func TestDecodeDescriptorRejectsTruncatedBlob(t *testing.T) {
	_, err := DecodeDescriptor([]byte{1, 2, 3})
	assert.Error(t, err)
}
