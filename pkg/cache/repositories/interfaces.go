package cacherepositories

import (
	"context"
	"io"
	"time"
)

// ImageMetadata describes a persisted image. The stored bytes keep their
// original encoding, metadata only carries what cannot be read back from them.
// Source is the image URL the entry was produced from. Checksum is the hex
// sha1 of the stored bytes, metadata with a mismatching checksum is ignored.
type ImageMetadata struct {
	Key        string    `json:"key" bson:"key"`
	Source     string    `json:"source,omitempty" bson:"source,omitempty"`
	MimeType   string    `json:"mimeType" bson:"mimeType"`
	Size       int64     `json:"size" bson:"size"`
	Scale      float64   `json:"scale" bson:"scale"`
	Animated   bool      `json:"animated" bson:"animated"`
	HasAlpha   bool      `json:"hasAlpha" bson:"hasAlpha"`
	LastAccess time.Time `json:"lastAccess" bson:"lastAccess"`
	Checksum   string    `json:"checksum,omitempty" bson:"checksum,omitempty"`
}

type CachedImage struct {
	Data     []byte
	Metadata ImageMetadata
}

type StorageLimits struct {
	// CapacityBytes bounds the summed size of stored images, zero means unbounded.
	CapacityBytes int64
	// MaxAge evicts images not accessed for longer than this, zero disables it.
	MaxAge time.Duration
}

type StorageUsage struct {
	Entries int
	Bytes   int64
}

type CachedImagesStorage interface {
	Save(ctx context.Context, key string, metadata ImageMetadata, reader io.Reader) error
	Get(ctx context.Context, key string) (CachedImage, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// KeysOfSource lists keys of entries produced from the source image URL.
	KeysOfSource(ctx context.Context, source string) ([]string, error)
	Usage(ctx context.Context) (StorageUsage, error)
	Trim(ctx context.Context) error
	StartMonitors(ctx context.Context, interval time.Duration)
}

type CachedImagesRepository interface {
	SaveCachedImageInfo(ctx context.Context, info ImageMetadata) error
	GetCachedImageInfo(ctx context.Context, key string) (ImageMetadata, error)
	DeleteCachedImageInfo(ctx context.Context, key string) error
	TouchCachedImageInfo(ctx context.Context, key string, accessedAt time.Time) error
	GetUsage(ctx context.Context) (StorageUsage, error)
	GetLeastRecentlyAccessed(ctx context.Context, limit int64) ([]ImageMetadata, error)
	GetAccessedBefore(ctx context.Context, deadline time.Time) ([]ImageMetadata, error)
	GetCachedImageInfosOfSource(ctx context.Context, source string) ([]ImageMetadata, error)
}

type InvalidationsRepository interface {
	CreateInvalidation(ctx context.Context, invalidation InvalidationModel) error
	GetLatestInvalidation(ctx context.Context) (InvalidationModel, error)
}

func defaultMetadata(key string) ImageMetadata {
	return ImageMetadata{Key: key, Scale: 1}
}
