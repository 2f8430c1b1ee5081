package biometric

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"facegate.io/infrastructure/biometric/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-test embedding store.
type fakeStore struct {
	enrolled map[string][][]float32
	loadErr  error
	saveErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{enrolled: map[string][][]float32{}}
}

func (s *fakeStore) Load() (map[string][][]float32, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := map[string][][]float32{}
	for name, embeddings := range s.enrolled {
		out[name] = append([][]float32{}, embeddings...)
	}
	return out, nil
}

func (s *fakeStore) Save(name string, embedding []float32) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.enrolled[name] = append(s.enrolled[name], embedding)
	return nil
}

func (s *fakeStore) Delete(name string) (bool, error) {
	if _, ok := s.enrolled[name]; !ok {
		return false, nil
	}
	delete(s.enrolled, name)
	return true, nil
}

func (s *fakeStore) List() ([]string, error) {
	names := []string{}
	for name := range s.enrolled {
		names = append(names, name)
	}
	return names, nil
}

// pipelineExecutor serves both models: liveness logits and a fixed embedding.
func pipelineExecutor(spoofLogit float32, embedding []float32) *fakeExecutor {
	return &fakeExecutor{
		inputs: map[string]*types.TensorSpec{
			types.ModelLiveness:  {Shape: []int64{1, 80, 80, 3}, Order: "bgr"},
			types.ModelEmbedding: {Shape: []int64{1, 112, 112, 3}},
		},
		outputs: map[string]*types.TensorSpec{
			types.ModelLiveness:  {Shape: []int64{1, 2}},
			types.ModelEmbedding: {Shape: []int64{1, int64(len(embedding))}},
		},
		results: map[string][]byte{
			types.ModelLiveness:  floatBytes(-spoofLogit, spoofLogit),
			types.ModelEmbedding: floatBytes(embedding...),
		},
	}
}

func testVerifier(executor *fakeExecutor, store types.EmbeddingStore) *Verifier {
	loader := func() (types.Detector, types.Executor, error) {
		return &fakeDetector{box: &types.BoundingBox{X: 120, Y: 120, Width: 100, Height: 100}}, executor, nil
	}
	return NewVerifier(loader, store, VerifierConfig{
		SpoofThreshold:        0.088,
		VerificationThreshold: 1.9,
		DuplicateThreshold:    0.92,
		PreprocessingMode:     types.PreprocessingFast,
	})
}

func TestVerifyGrantedRequiresMatchAndLiveness(t *testing.T) {
	store := newFakeStore()
	store.enrolled["alice"] = [][]float32{{1, 0, 0, 0}}

	// Live face whose embedding matches alice exactly.
	verifier := testVerifier(pipelineExecutor(-6, []float32{1, 0, 0, 0}), store)

	outcome, err := verifier.Verify(gradientImage(500, 500))
	require.NoError(t, err)
	assert.Equal(t, types.DecisionGranted, outcome.Decision)
	require.NotNil(t, outcome.MatchedIdentity)
	assert.Equal(t, "alice", *outcome.MatchedIdentity)
	assert.True(t, outcome.IsLive)
	assert.InDelta(t, 0.0, outcome.Distance, 1e-6)
}

func TestVerifyDeniedOnSpoofDespiteMatch(t *testing.T) {
	store := newFakeStore()
	store.enrolled["alice"] = [][]float32{{1, 0, 0, 0}}

	verifier := testVerifier(pipelineExecutor(6, []float32{1, 0, 0, 0}), store)

	outcome, err := verifier.Verify(gradientImage(500, 500))
	require.NoError(t, err)
	assert.Equal(t, types.DecisionDenied, outcome.Decision)
	assert.False(t, outcome.IsLive)
	// Identification still ran and is reported alongside the denial.
	require.NotNil(t, outcome.MatchedIdentity)
	assert.Equal(t, "alice", *outcome.MatchedIdentity)
}

func TestVerifyDeniedOnUnknownFace(t *testing.T) {
	store := newFakeStore()
	store.enrolled["alice"] = [][]float32{{100, 0, 0, 0}}

	verifier := testVerifier(pipelineExecutor(-6, []float32{1, 0, 0, 0}), store)

	outcome, err := verifier.Verify(gradientImage(500, 500))
	require.NoError(t, err)
	assert.Equal(t, types.DecisionDenied, outcome.Decision)
	assert.Nil(t, outcome.MatchedIdentity)
	assert.True(t, outcome.IsLive)
	assert.InDelta(t, 99.0, outcome.Distance, 1e-4)
}

func TestVerifyEmptyStoreDenies(t *testing.T) {
	verifier := testVerifier(pipelineExecutor(-6, []float32{1, 0, 0, 0}), newFakeStore())

	outcome, err := verifier.Verify(gradientImage(500, 500))
	require.NoError(t, err)
	assert.Equal(t, types.DecisionDenied, outcome.Decision)
	assert.Nil(t, outcome.MatchedIdentity)
	assert.True(t, math.IsInf(outcome.Distance, 1))
}

func TestVerifyNoFaceReturnsDeniedOutcomeAndError(t *testing.T) {
	executor := pipelineExecutor(-6, []float32{1, 0, 0, 0})
	loader := func() (types.Detector, types.Executor, error) {
		return &fakeDetector{box: nil}, executor, nil
	}
	verifier := NewVerifier(loader, newFakeStore(), GetDefaultVerifierConfig())

	outcome, err := verifier.Verify(gradientImage(500, 500))
	assert.ErrorIs(t, err, types.ErrNoFaceDetected)
	require.NotNil(t, outcome)
	assert.Equal(t, types.DecisionDenied, outcome.Decision)
	require.NotNil(t, outcome.FailureReason)
}

func TestVerifierLazyRetryHappensOnce(t *testing.T) {
	attempts := 0
	loader := func() (types.Detector, types.Executor, error) {
		attempts++
		return nil, nil, errors.New("model file missing")
	}
	verifier := NewVerifier(loader, newFakeStore(), GetDefaultVerifierConfig())
	assert.Equal(t, 1, attempts)
	assert.False(t, verifier.IsHealthy())

	_, err := verifier.Verify(gradientImage(100, 100))
	assert.ErrorIs(t, err, types.ErrNotInitialized)
	assert.Equal(t, 2, attempts)

	// The retry budget is spent; later calls fail fast without reloading.
	_, err = verifier.Verify(gradientImage(100, 100))
	assert.ErrorIs(t, err, types.ErrNotInitialized)
	assert.Equal(t, 2, attempts)
}

// trackingExecutor layers run accounting over the canned executor so overlap
// between concurrent callers is observable.
type trackingExecutor struct {
	*fakeExecutor
	mutex       sync.Mutex
	inFlight    int
	maxInFlight int
	sequence    []string
}

func (e *trackingExecutor) Run(modelID string, input []byte) ([]byte, error) {
	e.mutex.Lock()
	e.inFlight++
	if e.inFlight > e.maxInFlight {
		e.maxInFlight = e.inFlight
	}
	e.sequence = append(e.sequence, modelID)
	e.mutex.Unlock()

	// Hold the run open long enough for a racing caller to collide.
	time.Sleep(2 * time.Millisecond)

	e.mutex.Lock()
	e.inFlight--
	e.mutex.Unlock()
	return e.results[modelID], nil
}

func TestConcurrentVerifiesSerialize(t *testing.T) {
	store := newFakeStore()
	store.enrolled["alice"] = [][]float32{{1, 0, 0, 0}}

	executor := &trackingExecutor{fakeExecutor: pipelineExecutor(-6, []float32{1, 0, 0, 0})}
	loader := func() (types.Detector, types.Executor, error) {
		return &fakeDetector{box: &types.BoundingBox{X: 120, Y: 120, Width: 100, Height: 100}}, executor, nil
	}
	verifier := NewVerifier(loader, store, VerifierConfig{
		SpoofThreshold:        0.088,
		VerificationThreshold: 1.9,
		DuplicateThreshold:    0.92,
		PreprocessingMode:     types.PreprocessingFast,
	})

	const callers = 8
	img := gradientImage(500, 500)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := verifier.Verify(img)
			assert.NoError(t, err)
			assert.Equal(t, types.DecisionGranted, outcome.Decision)
		}()
	}
	wg.Wait()

	// The pipeline mutex queues callers, so runs never overlap and every
	// caller's liveness/embedding pair stays contiguous.
	assert.Equal(t, 1, executor.maxInFlight)
	require.Len(t, executor.sequence, callers*2)
	for i := 0; i < len(executor.sequence); i += 2 {
		assert.Equal(t, types.ModelLiveness, executor.sequence[i])
		assert.Equal(t, types.ModelEmbedding, executor.sequence[i+1])
	}
}

func TestEnrollRejectsDuplicateFace(t *testing.T) {
	store := newFakeStore()
	store.enrolled["alice"] = [][]float32{{1, 0, 0, 0}}

	verifier := testVerifier(pipelineExecutor(-6, []float32{1, 0.1, 0, 0}), store)

	_, err := verifier.Enroll("bob", gradientImage(500, 500))
	existing, ok := types.IsAlreadyEnrolled(err)
	require.True(t, ok)
	assert.Equal(t, "alice", existing)
	assert.NotContains(t, store.enrolled, "bob")
}

func TestEnrollSameIdentityAccumulatesCaptures(t *testing.T) {
	store := newFakeStore()
	store.enrolled["Alice"] = [][]float32{{1, 0, 0, 0}}

	verifier := testVerifier(pipelineExecutor(-6, []float32{1, 0.1, 0, 0}), store)

	// Same face, same identity (case-insensitive): allowed, and the display
	// name stays the first capture's spelling.
	result, err := verifier.Enroll("alice", gradientImage(500, 500))
	require.NoError(t, err)
	assert.Equal(t, "Alice", result.Name)
	assert.Equal(t, 2, result.EmbeddingCount)
	assert.Len(t, store.enrolled["Alice"], 2)
}

func TestEnrollNewIdentity(t *testing.T) {
	store := newFakeStore()
	store.enrolled["alice"] = [][]float32{{10, 0, 0, 0}}

	verifier := testVerifier(pipelineExecutor(-6, []float32{1, 0, 0, 0}), store)

	result, err := verifier.Enroll("bob", gradientImage(500, 500))
	require.NoError(t, err)
	assert.Equal(t, "bob", result.Name)
	assert.Equal(t, 1, result.EmbeddingCount)
	assert.Equal(t, 4, result.EmbeddingLength)
	assert.InDelta(t, 9.0, result.NearestDistance, 1e-4)
}

func TestEnrollRejectsBlankName(t *testing.T) {
	verifier := testVerifier(pipelineExecutor(-6, []float32{1, 0, 0, 0}), newFakeStore())

	_, err := verifier.Enroll("   ", gradientImage(500, 500))
	assert.Error(t, err)
}

func TestUpdateConfigValidatesRanges(t *testing.T) {
	verifier := testVerifier(pipelineExecutor(-6, []float32{1, 0, 0, 0}), newFakeStore())

	bad := 0.7
	_, err := verifier.UpdateConfig(types.DeviceConfigUpdate{SpoofThreshold: &bad})
	assert.Error(t, err)
	assert.Equal(t, 0.088, verifier.Config().SpoofThreshold)

	good := 0.2
	mode := types.PreprocessingAccurate
	config, err := verifier.UpdateConfig(types.DeviceConfigUpdate{SpoofThreshold: &good, PreprocessingMode: &mode})
	require.NoError(t, err)
	assert.Equal(t, 0.2, config.SpoofThreshold)
	assert.Equal(t, types.PreprocessingAccurate, config.PreprocessingMode)
	// Untouched fields keep their values.
	assert.Equal(t, 1.9, config.VerificationThreshold)
}

func TestVerifierStatsTrackOutcomes(t *testing.T) {
	store := newFakeStore()
	store.enrolled["alice"] = [][]float32{{1, 0, 0, 0}}
	verifier := testVerifier(pipelineExecutor(-6, []float32{1, 0, 0, 0}), store)

	_, err := verifier.Verify(gradientImage(500, 500))
	require.NoError(t, err)
	_, err = verifier.Enroll("alice", gradientImage(500, 500))
	require.NoError(t, err)

	stats := verifier.Stats()
	assert.EqualValues(t, 2, stats.TotalRequests)
	assert.EqualValues(t, 2, stats.SuccessfulRequests)
	assert.EqualValues(t, 0, stats.FailedRequests)
	assert.False(t, stats.LastRequestAt.IsZero())
}
