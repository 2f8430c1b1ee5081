package mongo

import (
	"context"
	"time"

	"facegate.io/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 10 * time.Second

func (repo *MongoRepository[T]) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}

// CreateOne inserts payload after ParseModel stamps its id and timestamps.
func (repo *MongoRepository[T]) CreateOne(payload T) error {
	ctx, cancel := repo.queryContext()
	defer cancel()
	_, err := repo.Model.InsertOne(ctx, payload.ParseModel())
	if err != nil {
		logger.Error("mongo - error creating document", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
	}
	return err
}

// FindMany returns every document matching filter, honoring sort/skip/limit
// options when provided.
func (repo *MongoRepository[T]) FindMany(filter map[string]interface{}, opts ...FindOptions) (*[]T, error) {
	ctx, cancel := repo.queryContext()
	defer cancel()

	findOpts := options.Find()
	if len(opts) > 0 {
		if opts[0].Sort != nil {
			findOpts.SetSort(*opts[0].Sort)
		}
		if opts[0].Skip != nil {
			findOpts.SetSkip(*opts[0].Skip)
		}
		if opts[0].Limit != nil {
			findOpts.SetLimit(*opts[0].Limit)
		}
	}

	cursor, err := repo.Model.Find(ctx, normalizeFilter(filter), findOpts)
	if err != nil {
		logger.Error("mongo - error finding documents", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// FindOneByFilter returns the first match or nil without error when none
// exists.
func (repo *MongoRepository[T]) FindOneByFilter(filter map[string]interface{}) (*T, error) {
	ctx, cancel := repo.queryContext()
	defer cancel()

	var result T
	err := repo.Model.FindOne(ctx, normalizeFilter(filter)).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteMany removes every match and reports how many existed.
func (repo *MongoRepository[T]) DeleteMany(filter map[string]interface{}) (int64, error) {
	ctx, cancel := repo.queryContext()
	defer cancel()

	result, err := repo.Model.DeleteMany(ctx, normalizeFilter(filter))
	if err != nil {
		logger.Error("mongo - error deleting documents", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return 0, err
	}
	return result.DeletedCount, nil
}

// Distinct lists the unique values of field across matches.
func (repo *MongoRepository[T]) Distinct(field string, filter map[string]interface{}) ([]interface{}, error) {
	ctx, cancel := repo.queryContext()
	defer cancel()
	return repo.Model.Distinct(ctx, field, normalizeFilter(filter))
}

// CountDocs counts matches for filter.
func (repo *MongoRepository[T]) CountDocs(filter map[string]interface{}) (int64, error) {
	ctx, cancel := repo.queryContext()
	defer cancel()
	return repo.Model.CountDocuments(ctx, normalizeFilter(filter))
}

func normalizeFilter(filter map[string]interface{}) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}
