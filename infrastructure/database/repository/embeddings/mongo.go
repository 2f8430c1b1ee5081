package embeddings

import (
	"strings"

	"facegate.io/entities"
	"facegate.io/infrastructure/database/repository/mongo"
	"facegate.io/infrastructure/logger"
)

// MongoStore is the hub-managed backend over the generic repository layer.
type MongoStore struct {
	repo *mongo.MongoRepository[entities.EnrolledEmbedding]
}

func NewMongoStore(repo *mongo.MongoRepository[entities.EnrolledEmbedding]) *MongoStore {
	return &MongoStore{repo: repo}
}

func (store *MongoStore) Load() (map[string][][]float32, error) {
	var sortOrder interface{} = map[string]interface{}{"nameKey": 1, "createdAt": 1}
	rows, err := store.repo.FindMany(nil, mongo.FindOptions{Sort: &sortOrder})
	if err != nil {
		return nil, err
	}

	out := map[string][][]float32{}
	display := map[string]string{}
	for _, row := range *rows {
		name, seen := display[row.NameKey]
		if !seen {
			name = row.Name
			display[row.NameKey] = name
		}
		embedding, err := DecodeDescriptor(row.Descriptor)
		if err != nil {
			logger.Error("mongo store - corrupt descriptor document skipped", logger.LoggerOptions{
				Key:  "id",
				Data: row.ID,
			}, logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			continue
		}
		out[name] = append(out[name], embedding)
	}
	return out, nil
}

func (store *MongoStore) Save(name string, embedding []float32) error {
	return store.repo.CreateOne(entities.EnrolledEmbedding{
		Name:       name,
		Descriptor: EncodeDescriptor(embedding),
	})
}

func (store *MongoStore) Delete(name string) (bool, error) {
	deleted, err := store.repo.DeleteMany(map[string]interface{}{
		"nameKey": strings.ToLower(strings.TrimSpace(name)),
	})
	return deleted > 0, err
}

func (store *MongoStore) List() ([]string, error) {
	values, err := store.repo.Distinct("name", nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(values))
	for _, value := range values {
		if name, ok := value.(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}
