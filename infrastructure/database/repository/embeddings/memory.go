package embeddings

import (
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps enrollments in process. Used for tests and for the
// ephemeral FACEGATE_STORE=memory mode. Writes swap whole values under the
// lock, so readers see either the old or new state, never a partial list.
type MemoryStore struct {
	mutex      sync.RWMutex
	identities map[string][][]float32 // keyed by lower-cased name
	names      map[string]string      // lower-cased name -> display name
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		identities: map[string][][]float32{},
		names:      map[string]string{},
	}
}

func (store *MemoryStore) Load() (map[string][][]float32, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	out := make(map[string][][]float32, len(store.identities))
	for key, stored := range store.identities {
		copied := make([][]float32, len(stored))
		for i, embedding := range stored {
			copied[i] = append([]float32(nil), embedding...)
		}
		out[store.names[key]] = copied
	}
	return out, nil
}

func (store *MemoryStore) Save(name string, embedding []float32) error {
	key := strings.ToLower(strings.TrimSpace(name))
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if _, exists := store.names[key]; !exists {
		store.names[key] = strings.TrimSpace(name)
	}
	store.identities[key] = append(store.identities[key], append([]float32(nil), embedding...))
	return nil
}

func (store *MemoryStore) Delete(name string) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	store.mutex.Lock()
	defer store.mutex.Unlock()

	_, existed := store.identities[key]
	delete(store.identities, key)
	delete(store.names, key)
	return existed, nil
}

func (store *MemoryStore) List() ([]string, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	names := make([]string, 0, len(store.names))
	for _, name := range store.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
