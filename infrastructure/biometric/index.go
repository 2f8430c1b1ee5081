package biometric

import (
	"facegate.io/infrastructure/biometric/types"
	"facegate.io/infrastructure/detector"
	"facegate.io/infrastructure/env"
	"facegate.io/infrastructure/inference"
	"facegate.io/infrastructure/logger"
)

// BiometricService is the process-wide verification pipeline. Initialized at
// startup; tests swap in fakes.
var BiometricService types.BiometricServiceType

// InitialiseBiometricService builds the verifier over the manifest-declared
// models and the selected embedding store. A failed model load is not fatal:
// the daemon serves NotInitialized errors and a degraded health report until
// the first-use retry succeeds or operators fix the manifest.
func InitialiseBiometricService(store types.EmbeddingStore) {
	manifestPath := env.Get("FACEGATE_MODEL_MANIFEST", "models/manifest.yaml")
	loader := func() (types.Detector, types.Executor, error) {
		manifest, err := inference.LoadManifest(manifestPath)
		if err != nil {
			return nil, nil, err
		}
		pigoDetector, err := detector.NewPigoDetector(manifest.Detector.Cascade)
		if err != nil {
			return nil, nil, err
		}
		executor, err := inference.NewExecutor(manifest)
		if err != nil {
			return nil, nil, err
		}
		return pigoDetector, executor, nil
	}
	BiometricService = NewVerifier(loader, store, GetDefaultVerifierConfig())
	logger.Info("biometric service initialized", logger.LoggerOptions{
		Key:  "manifest",
		Data: manifestPath,
	})
}
