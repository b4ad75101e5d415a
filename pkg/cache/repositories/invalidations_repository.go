package cacherepositories

import (
	"context"
	"errors"
	"time"

	dbconnections "github.com/thebartekbanach/webimage/pkg/cache/repositories/connections"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const invalidationsCollection = "invalidations"

type InvalidationModel struct {
	RequestedInvalidations []string  `json:"requestedInvalidations" bson:"requestedInvalidations"`
	DoneInvalidations      []string  `json:"doneInvalidations" bson:"doneInvalidations"`
	RemovedKeys            []string  `json:"removedKeys" bson:"removedKeys"`
	InvalidationError      *string   `json:"invalidationError,omitempty" bson:"invalidationError,omitempty"`
	InvalidationDate       time.Time `json:"invalidationDate" bson:"invalidationDate"`
}

type invalidationsRepository struct {
	conn dbconnections.MetadataDBConnection
}

var _ InvalidationsRepository = (*invalidationsRepository)(nil)

func NewInvalidationsRepository(conn dbconnections.MetadataDBConnection) InvalidationsRepository {
	return &invalidationsRepository{conn}
}

func (r *invalidationsRepository) CreateInvalidation(ctx context.Context, invalidation InvalidationModel) error {
	if invalidation.InvalidationDate.IsZero() {
		return ErrInvalidationDateRequired
	}

	coll := r.conn.Collection(invalidationsCollection)
	_, err := coll.InsertOne(ctx, invalidation)
	return err
}

func (r *invalidationsRepository) GetLatestInvalidation(ctx context.Context) (InvalidationModel, error) {
	coll := r.conn.Collection(invalidationsCollection)
	opts := options.FindOne().SetSort(bson.D{{Key: "invalidationDate", Value: -1}})
	result := coll.FindOne(ctx, bson.D{}, opts)

	if result.Err() != nil {
		if result.Err() == mongo.ErrNoDocuments {
			return InvalidationModel{}, ErrInvalidationNotFound
		}

		return InvalidationModel{}, result.Err()
	}

	var invalidation InvalidationModel
	err := result.Decode(&invalidation)
	return invalidation, err
}

var (
	ErrInvalidationDateRequired = errors.New("invalidation date is required")
	ErrInvalidationNotFound     = errors.New("no invalidation was recorded")
)
