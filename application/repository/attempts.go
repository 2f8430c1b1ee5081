package repository

import (
	"sync"

	"facegate.io/entities"
	"facegate.io/infrastructure/database/connection/datastore"
	"facegate.io/infrastructure/database/repository/attempts"
	mongoRepo "facegate.io/infrastructure/database/repository/mongo"
	"facegate.io/infrastructure/env"
)

var attemptLogOnce = sync.Once{}

var attemptLog attempts.AttemptLogType

// AttemptLog returns the audit log over the same backend as the embedding
// store.
func AttemptLog() attempts.AttemptLogType {
	attemptLogOnce.Do(func() {
		switch env.Get("FACEGATE_STORE", "sqlite") {
		case "mongo":
			if datastore.AttemptModel != nil {
				attemptLog = attempts.NewMongoLog(&mongoRepo.MongoRepository[entities.VerificationAttempt]{
					Model: datastore.AttemptModel,
				})
				return
			}
		case "memory":
		default:
			if datastore.SQLiteDB != nil {
				attemptLog = attempts.NewSQLiteLog(datastore.SQLiteDB)
				return
			}
		}
		attemptLog = attempts.NewMemoryLog()
	})
	return attemptLog
}
