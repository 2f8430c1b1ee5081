package attempts

import (
	"errors"
	"sort"
	"sync"

	"facegate.io/entities"
	"facegate.io/infrastructure/database/repository/mongo"
	"gorm.io/gorm"
)

// Audit page bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// AttemptLogType records one audit row per verify/enroll call and serves the
// paginated history. List returns newest first; before is an exclusive id
// cursor (ULIDs order by creation time).
type AttemptLogType interface {
	Record(attempt entities.VerificationAttempt) error
	List(limit int, before string) ([]entities.VerificationAttempt, error)
	Find(id string) (*entities.VerificationAttempt, error)
	Count() (int64, error)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// SQLiteLog persists attempts to the on-device database.
type SQLiteLog struct {
	db *gorm.DB
}

func NewSQLiteLog(db *gorm.DB) *SQLiteLog {
	return &SQLiteLog{db: db}
}

func (log *SQLiteLog) Record(attempt entities.VerificationAttempt) error {
	return log.db.Create(attempt.ParseModel()).Error
}

func (log *SQLiteLog) List(limit int, before string) ([]entities.VerificationAttempt, error) {
	query := log.db.Order("id desc").Limit(clampLimit(limit))
	if before != "" {
		query = query.Where("id < ?", before)
	}
	var rows []entities.VerificationAttempt
	err := query.Find(&rows).Error
	return rows, err
}

func (log *SQLiteLog) Find(id string) (*entities.VerificationAttempt, error) {
	var row entities.VerificationAttempt
	err := log.db.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (log *SQLiteLog) Count() (int64, error) {
	var total int64
	err := log.db.Model(&entities.VerificationAttempt{}).Count(&total).Error
	return total, err
}

// MongoLog persists attempts to the hub's database.
type MongoLog struct {
	repo *mongo.MongoRepository[entities.VerificationAttempt]
}

func NewMongoLog(repo *mongo.MongoRepository[entities.VerificationAttempt]) *MongoLog {
	return &MongoLog{repo: repo}
}

func (log *MongoLog) Record(attempt entities.VerificationAttempt) error {
	return log.repo.CreateOne(attempt)
}

func (log *MongoLog) List(limit int, before string) ([]entities.VerificationAttempt, error) {
	filter := map[string]interface{}{}
	if before != "" {
		filter["_id"] = map[string]interface{}{"$lt": before}
	}
	var sortOrder interface{} = map[string]interface{}{"_id": -1}
	pageSize := int64(clampLimit(limit))
	rows, err := log.repo.FindMany(filter, mongo.FindOptions{Sort: &sortOrder, Limit: &pageSize})
	if err != nil {
		return nil, err
	}
	return *rows, nil
}

func (log *MongoLog) Find(id string) (*entities.VerificationAttempt, error) {
	return log.repo.FindOneByFilter(map[string]interface{}{"_id": id})
}

func (log *MongoLog) Count() (int64, error) {
	return log.repo.CountDocs(nil)
}

// MemoryLog backs the ephemeral store mode and tests.
type MemoryLog struct {
	mutex sync.RWMutex
	rows  []entities.VerificationAttempt
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (log *MemoryLog) Record(attempt entities.VerificationAttempt) error {
	parsed := attempt.ParseModel().(*entities.VerificationAttempt)
	log.mutex.Lock()
	defer log.mutex.Unlock()
	log.rows = append(log.rows, *parsed)
	return nil
}

func (log *MemoryLog) List(limit int, before string) ([]entities.VerificationAttempt, error) {
	log.mutex.RLock()
	defer log.mutex.RUnlock()

	page := make([]entities.VerificationAttempt, 0, len(log.rows))
	for _, row := range log.rows {
		if before != "" && row.ID >= before {
			continue
		}
		page = append(page, row)
	}
	sort.Slice(page, func(i, j int) bool { return page[i].ID > page[j].ID })
	if max := clampLimit(limit); len(page) > max {
		page = page[:max]
	}
	return page, nil
}

func (log *MemoryLog) Find(id string) (*entities.VerificationAttempt, error) {
	log.mutex.RLock()
	defer log.mutex.RUnlock()
	for _, row := range log.rows {
		if row.ID == id {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (log *MemoryLog) Count() (int64, error) {
	log.mutex.RLock()
	defer log.mutex.RUnlock()
	return int64(len(log.rows)), nil
}
