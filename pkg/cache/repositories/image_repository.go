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

const cachedImagesCollection = "cachedImages"

type cachedImagesRepository struct {
	conn dbconnections.MetadataDBConnection
}

var _ CachedImagesRepository = (*cachedImagesRepository)(nil)

func NewCachedImagesRepository(conn dbconnections.MetadataDBConnection) CachedImagesRepository {
	return &cachedImagesRepository{conn}
}

func (repo *cachedImagesRepository) SaveCachedImageInfo(ctx context.Context, info ImageMetadata) error {
	collection := repo.conn.Collection(cachedImagesCollection)

	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"key": info.Key}, info, opts)
	return err
}

func (repo *cachedImagesRepository) GetCachedImageInfo(ctx context.Context, key string) (ImageMetadata, error) {
	collection := repo.conn.Collection(cachedImagesCollection)

	var info ImageMetadata
	if err := collection.FindOne(ctx, bson.M{"key": key}).Decode(&info); err != nil {
		if err == mongo.ErrNoDocuments {
			return ImageMetadata{}, ErrCachedImageNotFound
		}

		return ImageMetadata{}, err
	}

	return info, nil
}

func (repo *cachedImagesRepository) DeleteCachedImageInfo(ctx context.Context, key string) error {
	collection := repo.conn.Collection(cachedImagesCollection)

	result, err := collection.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return ErrCachedImageNotFound
	}

	return nil
}

func (repo *cachedImagesRepository) TouchCachedImageInfo(ctx context.Context, key string, accessedAt time.Time) error {
	collection := repo.conn.Collection(cachedImagesCollection)

	result, err := collection.UpdateOne(ctx, bson.M{"key": key}, bson.M{"$set": bson.M{"lastAccess": accessedAt}})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ErrCachedImageNotFound
	}

	return nil
}

func (repo *cachedImagesRepository) GetUsage(ctx context.Context) (StorageUsage, error) {
	collection := repo.conn.Collection(cachedImagesCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "entries", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "bytes", Value: bson.D{{Key: "$sum", Value: "$size"}}},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return StorageUsage{}, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Entries int   `bson:"entries"`
		Bytes   int64 `bson:"bytes"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return StorageUsage{}, err
	}

	if len(results) == 0 {
		return StorageUsage{}, nil
	}

	return StorageUsage{results[0].Entries, results[0].Bytes}, nil
}

func (repo *cachedImagesRepository) GetLeastRecentlyAccessed(ctx context.Context, limit int64) ([]ImageMetadata, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastAccess", Value: 1}}).SetLimit(limit)
	return repo.find(ctx, bson.M{}, opts)
}

func (repo *cachedImagesRepository) GetAccessedBefore(ctx context.Context, deadline time.Time) ([]ImageMetadata, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastAccess", Value: 1}})
	return repo.find(ctx, bson.M{"lastAccess": bson.M{"$lt": deadline}}, opts)
}

func (repo *cachedImagesRepository) GetCachedImageInfosOfSource(ctx context.Context, source string) ([]ImageMetadata, error) {
	if source == "" {
		return []ImageMetadata{}, nil
	}

	return repo.find(ctx, bson.M{"source": source}, options.Find())
}

func (repo *cachedImagesRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]ImageMetadata, error) {
	collection := repo.conn.Collection(cachedImagesCollection)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	infos := []ImageMetadata{}
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, err
	}

	return infos, nil
}

var (
	ErrCachedImageNotFound = errors.New("cached image not found")
)
