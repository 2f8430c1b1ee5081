package embeddings

import (
	"strings"

	"facegate.io/entities"
	"facegate.io/infrastructure/logger"
	"gorm.io/gorm"
)

// SQLiteStore is the default on-device backend: one row per capture in the
// enrolled_embeddings table, descriptors as float32 blobs. GORM runs every
// write in its own transaction, which gives enroll/delete their atomicity
// with respect to concurrent loads.
type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (store *SQLiteStore) Load() (map[string][][]float32, error) {
	var rows []entities.EnrolledEmbedding
	err := store.db.Order("name_key asc, created_at asc").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := map[string][][]float32{}
	display := map[string]string{}
	for _, row := range rows {
		name, seen := display[row.NameKey]
		if !seen {
			name = row.Name
			display[row.NameKey] = name
		}
		embedding, err := DecodeDescriptor(row.Descriptor)
		if err != nil {
			logger.Error("sqlite store - corrupt descriptor blob skipped", logger.LoggerOptions{
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

func (store *SQLiteStore) Save(name string, embedding []float32) error {
	row := entities.EnrolledEmbedding{
		Name:       name,
		Descriptor: EncodeDescriptor(embedding),
	}
	return store.db.Create(row.ParseModel()).Error
}

func (store *SQLiteStore) Delete(name string) (bool, error) {
	result := store.db.
		Where("name_key = ?", strings.ToLower(strings.TrimSpace(name))).
		Delete(&entities.EnrolledEmbedding{})
	return result.RowsAffected > 0, result.Error
}

func (store *SQLiteStore) List() ([]string, error) {
	var names []string
	err := store.db.Model(&entities.EnrolledEmbedding{}).
		Distinct("name").
		Order("name asc").
		Pluck("name", &names).Error
	return names, err
}
