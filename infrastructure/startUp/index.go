package startup

import (
	"facegate.io/application/repository"
	"facegate.io/infrastructure/biometric"
	"facegate.io/infrastructure/database"
	"facegate.io/infrastructure/logger"
	"facegate.io/infrastructure/snapshots"
)

// Used to start services such as loggers, databases and the model pipeline.
func StartServices() {
	logger.InitializeLogger()
	database.SetUpDatabase()
	biometric.InitialiseBiometricService(repository.EmbeddingStore())
	snapshots.InitialiseSnapshotArchive()
}

// Used to clean up after services that have been shut down.
func CleanUpServices() {
	if biometric.BiometricService != nil {
		biometric.BiometricService.Close()
	}
	database.CleanUpDatabase()
}
