package repository

import (
	"sync"

	"facegate.io/entities"
	"facegate.io/infrastructure/biometric/types"
	"facegate.io/infrastructure/database/connection/datastore"
	"facegate.io/infrastructure/database/repository/embeddings"
	mongoRepo "facegate.io/infrastructure/database/repository/mongo"
	"facegate.io/infrastructure/env"
)

var embeddingStoreOnce = sync.Once{}

var embeddingStore types.EmbeddingStore

// EmbeddingStore returns the enrollment store over the backend
// FACEGATE_STORE selects. Falls back to the in-process store when the
// configured backend failed to connect, so the daemon still serves
// (ephemeral) verifications.
func EmbeddingStore() types.EmbeddingStore {
	embeddingStoreOnce.Do(func() {
		switch env.Get("FACEGATE_STORE", "sqlite") {
		case "mongo":
			if datastore.IdentityModel != nil {
				embeddingStore = embeddings.NewMongoStore(&mongoRepo.MongoRepository[entities.EnrolledEmbedding]{
					Model: datastore.IdentityModel,
				})
				return
			}
		case "memory":
		default:
			if datastore.SQLiteDB != nil {
				embeddingStore = embeddings.NewSQLiteStore(datastore.SQLiteDB)
				return
			}
		}
		embeddingStore = embeddings.NewMemoryStore()
	})
	return embeddingStore
}
