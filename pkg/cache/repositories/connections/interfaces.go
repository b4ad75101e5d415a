package dbconnections

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/mongo"
)

// MetadataDBConnection gives access to the collections holding image metadata.
type MetadataDBConnection interface {
	Collection(collectionName string) *mongo.Collection
}

// ObjectStorageConnection stores encoded image bytes by object name. Missing
// objects are reported as ErrObjectNotFound.
type ObjectStorageConnection interface {
	GetObject(ctx context.Context, objectName string) (io.ReadCloser, error)
	PutObject(ctx context.Context, objectName string, objectSize int64, mimeType string, reader io.Reader) error
	DeleteObject(ctx context.Context, objectName string) error
	ObjectExists(ctx context.Context, objectName string) (exists bool, err error)
}

var (
	ErrObjectNotFound = errors.New("object not found")
)
