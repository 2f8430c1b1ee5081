package biometric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"facegate.io/infrastructure/biometric/types"
	"facegate.io/infrastructure/env"
	"facegate.io/infrastructure/logger"
)

// VerifierConfig seeds the runtime-tunable decision surface.
type VerifierConfig struct {
	SpoofThreshold        float64
	VerificationThreshold float64
	DuplicateThreshold    float64
	PreprocessingMode     types.PreprocessingMode
}

// GetDefaultVerifierConfig reads the decision thresholds from the
// environment, falling back to the calibrated defaults.
func GetDefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{
		SpoofThreshold:        envFloat("FACEGATE_SPOOF_THRESHOLD", 0.088),
		VerificationThreshold: envFloat("FACEGATE_VERIFICATION_THRESHOLD", 1.9),
		DuplicateThreshold:    envFloat("FACEGATE_DUPLICATE_THRESHOLD", 0.92),
		PreprocessingMode:     types.PreprocessingMode(env.Get("FACEGATE_PREPROCESSING_MODE", string(types.PreprocessingFast))),
	}
}

func envFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(env.Get(key, ""), 64)
	if err != nil {
		return fallback
	}
	return value
}

// PipelineLoader builds the detector and executor handles. The verifier owns
// the returned handles exclusively and serializes access to them.
type PipelineLoader func() (types.Detector, types.Executor, error)

// Verifier sequences detection, liveness, identification and enrollment. It
// is the single owner of the model handles; one mutex serializes every
// pipeline invocation because the native inference runtime is not
// re-entrant (the queued branch of the single-flight contract).
type Verifier struct {
	loader    PipelineLoader
	store     types.EmbeddingStore
	liveness  *LivenessClassifier
	extractor *EmbeddingExtractor

	// pipeline guards the detector and executor handles end to end.
	pipeline sync.Mutex
	ready    bool
	retried  bool

	configMutex sync.RWMutex
	config      types.DeviceConfig

	statsMutex  sync.RWMutex
	stats       types.ProcessingStats
	totalTimeMs int64
}

// NewVerifier wires the pipeline. A loader failure leaves the verifier
// serving ErrNotInitialized; the first operation re-attempts the load once.
func NewVerifier(loader PipelineLoader, store types.EmbeddingStore, config VerifierConfig) *Verifier {
	v := &Verifier{
		loader: loader,
		store:  store,
		config: types.DeviceConfig{
			SpoofThreshold:        config.SpoofThreshold,
			VerificationThreshold: config.VerificationThreshold,
			DuplicateThreshold:    config.DuplicateThreshold,
			PreprocessingMode:     config.PreprocessingMode,
		},
	}
	if err := v.load(); err != nil {
		logger.Error("verifier - model pipeline failed to load, will retry on first use", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
	return v
}

func (v *Verifier) load() error {
	detector, executor, err := v.loader()
	if err != nil {
		return err
	}
	v.liveness = NewLivenessClassifier(detector, executor)
	v.extractor = NewEmbeddingExtractor(detector, executor)
	v.ready = true
	return nil
}

// ensureReady performs the single lazy re-initialization attempt allowed
// after a failed boot. Callers hold the pipeline mutex.
func (v *Verifier) ensureReady() error {
	if v.ready {
		return nil
	}
	if v.retried {
		return types.ErrNotInitialized
	}
	v.retried = true
	if err := v.load(); err != nil {
		logger.Error("verifier - lazy pipeline re-initialization failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return types.ErrNotInitialized
	}
	logger.Info("verifier - pipeline initialized lazily on first use")
	return nil
}

// Verify decides whether the image shows an enrolled, live person. Liveness
// and identification both always run; the decision is their logical AND. On
// a stage failure the returned outcome is denied with the failure reason and
// the stage error is returned alongside it for transport mapping.
func (v *Verifier) Verify(image *types.Image) (*types.VerificationOutcome, error) {
	start := time.Now()
	v.pipeline.Lock()
	defer v.pipeline.Unlock()

	outcome := &types.VerificationOutcome{
		Decision: types.DecisionDenied,
		Distance: math.Inf(1),
	}

	if err := v.ensureReady(); err != nil {
		v.recordAttempt(start, false)
		outcome.FailureReason = failureReason(err)
		outcome.ProcessingTimeMs = time.Since(start).Milliseconds()
		return outcome, err
	}

	config := v.Config()

	livenessResult, livenessErr := v.liveness.Check(image, config.SpoofThreshold)
	if livenessResult != nil {
		outcome.IsLive = livenessResult.IsLive
		outcome.SpoofProbability = livenessResult.SpoofProbability
	}

	embedding, _, embeddingErr := v.extractor.Extract(image, config.PreprocessingMode)

	var matchErr error
	if embeddingErr == nil {
		enrolled, err := v.store.Load()
		if err != nil {
			matchErr = err
		} else {
			outcome.MatchedIdentity, outcome.Distance, matchErr = Identify(embedding, enrolled, config.VerificationThreshold)
		}
	}

	outcome.ProcessingTimeMs = time.Since(start).Milliseconds()

	stageErr := firstError(livenessErr, embeddingErr, matchErr)
	if stageErr != nil {
		v.recordAttempt(start, false)
		outcome.FailureReason = failureReason(stageErr)
		return outcome, stageErr
	}

	if outcome.MatchedIdentity != nil && outcome.IsLive {
		outcome.Decision = types.DecisionGranted
	}
	v.recordAttempt(start, true)
	return outcome, nil
}

// Enroll extracts a fresh embedding and appends it to the store under name.
// A face already enrolled under a different identity (nearest distance below
// the duplicate threshold) is rejected; captures matching the same name
// accumulate as additional embeddings. Enrollment never blocks on liveness.
func (v *Verifier) Enroll(name string, image *types.Image) (*types.EnrollmentResult, error) {
	start := time.Now()
	v.pipeline.Lock()
	defer v.pipeline.Unlock()

	if err := v.ensureReady(); err != nil {
		v.recordAttempt(start, false)
		return nil, err
	}

	config := v.Config()
	name = strings.TrimSpace(name)
	if name == "" {
		v.recordAttempt(start, false)
		return nil, fmt.Errorf("identity name must not be empty")
	}

	embedding, _, err := v.extractor.Extract(image, config.PreprocessingMode)
	if err != nil {
		v.recordAttempt(start, false)
		return nil, err
	}

	enrolled, err := v.store.Load()
	if err != nil {
		v.recordAttempt(start, false)
		return nil, err
	}

	nearestName, nearestDistance, err := NearestIdentity(embedding, enrolled)
	if err != nil {
		v.recordAttempt(start, false)
		return nil, err
	}
	if nearestName != "" && nearestDistance < config.DuplicateThreshold && !strings.EqualFold(nearestName, name) {
		v.recordAttempt(start, false)
		return nil, &types.AlreadyEnrolledError{Name: nearestName}
	}

	// Re-enrollments keep the display name of the first capture so one
	// identity never splits on letter case.
	canonical := name
	count := 0
	for existing, embeddings := range enrolled {
		if strings.EqualFold(existing, name) {
			canonical = existing
			count = len(embeddings)
			break
		}
	}

	if err := v.store.Save(canonical, embedding); err != nil {
		v.recordAttempt(start, false)
		return nil, err
	}

	v.recordAttempt(start, true)
	logger.Info("verifier - identity enrolled", logger.LoggerOptions{
		Key:  "name",
		Data: canonical,
	}, logger.LoggerOptions{
		Key:  "embedding_count",
		Data: count + 1,
	})

	return &types.EnrollmentResult{
		Name:             canonical,
		EmbeddingLength:  len(embedding),
		EmbeddingCount:   count + 1,
		NearestDistance:  nearestDistance,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (v *Verifier) ListIdentities() ([]string, error) {
	return v.store.List()
}

func (v *Verifier) DeleteIdentity(name string) (bool, error) {
	return v.store.Delete(name)
}

func (v *Verifier) Config() types.DeviceConfig {
	v.configMutex.RLock()
	defer v.configMutex.RUnlock()
	return v.config
}

// UpdateConfig applies a partial config change after range checks. Nil
// fields keep their current value.
func (v *Verifier) UpdateConfig(update types.DeviceConfigUpdate) (types.DeviceConfig, error) {
	v.configMutex.Lock()
	defer v.configMutex.Unlock()

	next := v.config
	if update.SpoofThreshold != nil {
		if *update.SpoofThreshold < 0.001 || *update.SpoofThreshold > 0.5 {
			return v.config, fmt.Errorf("spoof threshold must be within [0.001, 0.5]")
		}
		next.SpoofThreshold = *update.SpoofThreshold
	}
	if update.VerificationThreshold != nil {
		if *update.VerificationThreshold <= 0 {
			return v.config, fmt.Errorf("verification threshold must be positive")
		}
		next.VerificationThreshold = *update.VerificationThreshold
	}
	if update.DuplicateThreshold != nil {
		if *update.DuplicateThreshold <= 0 {
			return v.config, fmt.Errorf("duplicate threshold must be positive")
		}
		next.DuplicateThreshold = *update.DuplicateThreshold
	}
	if update.PreprocessingMode != nil {
		switch *update.PreprocessingMode {
		case types.PreprocessingFast, types.PreprocessingAccurate:
			next.PreprocessingMode = *update.PreprocessingMode
		default:
			return v.config, fmt.Errorf("preprocessing mode must be fast or accurate")
		}
	}

	v.config = next
	logger.Info("verifier - device config updated", logger.LoggerOptions{
		Key:  "config",
		Data: next,
	})
	return next, nil
}

func (v *Verifier) IsHealthy() bool {
	v.pipeline.Lock()
	defer v.pipeline.Unlock()
	return v.ready
}

func (v *Verifier) Stats() types.ProcessingStats {
	v.statsMutex.RLock()
	defer v.statsMutex.RUnlock()
	return v.stats
}

// Close releases the model handles. The executor owns the native sessions.
func (v *Verifier) Close() {
	v.pipeline.Lock()
	defer v.pipeline.Unlock()
	if !v.ready {
		return
	}
	if closer, ok := v.liveness.executor.(interface{ Close() }); ok {
		closer.Close()
	}
	v.ready = false
}

func (v *Verifier) recordAttempt(start time.Time, success bool) {
	v.statsMutex.Lock()
	defer v.statsMutex.Unlock()
	v.stats.TotalRequests++
	if success {
		v.stats.SuccessfulRequests++
	} else {
		v.stats.FailedRequests++
	}
	v.totalTimeMs += time.Since(start).Milliseconds()
	v.stats.AverageProcessingTime = float64(v.totalTimeMs) / float64(v.stats.TotalRequests)
	v.stats.LastRequestAt = time.Now()
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func failureReason(err error) *string {
	if err == nil {
		return nil
	}
	reason := err.Error()
	return &reason
}
