package cacherepositories

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	dbconnections "github.com/thebartekbanach/webimage/pkg/cache/repositories/connections"
)

const trimBatchSize = 100

type ObjectStorageConfig struct {
	Limits StorageLimits
}

// cachedImagesStorage keeps image bytes in a minio bucket and their metadata
// in mongo. The metadata collection is the source of truth for eviction.
type cachedImagesStorage struct {
	conn   dbconnections.ObjectStorageConnection
	repo   CachedImagesRepository
	limits StorageLimits
	log    logrus.FieldLogger
	now    func() time.Time

	// blob and metadata of a key are written as one unit
	entries entryLocks

	trimRequests chan struct{}
}

var _ CachedImagesStorage = (*cachedImagesStorage)(nil)

func NewCachedImagesStorage(
	conn dbconnections.ObjectStorageConnection,
	repo CachedImagesRepository,
	config ObjectStorageConfig,
	logger logrus.FieldLogger,
) CachedImagesStorage {
	return &cachedImagesStorage{
		conn:         conn,
		repo:         repo,
		limits:       config.Limits,
		log:          logger.WithField("storage", "object"),
		now:          time.Now,
		trimRequests: make(chan struct{}, 1),
	}
}

func (s *cachedImagesStorage) Save(ctx context.Context, key string, metadata ImageMetadata, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	metadata.Key = key
	metadata.Size = int64(len(data))
	metadata.LastAccess = s.now().UTC()
	if metadata.Scale <= 0 {
		metadata.Scale = 1
	}
	if metadata.MimeType == "" {
		metadata.MimeType = http.DetectContentType(data)
	}

	unlock := s.entries.lock(key)
	defer unlock()

	// an object becomes visible only after the whole upload succeeded
	resourceID := s.makeResourceID(key)
	if err := s.conn.PutObject(ctx, resourceID, metadata.Size, metadata.MimeType, bytes.NewReader(data)); err != nil {
		return err
	}

	if err := s.repo.SaveCachedImageInfo(ctx, metadata); err != nil {
		s.repo.DeleteCachedImageInfo(ctx, key)
		s.conn.DeleteObject(ctx, resourceID)
		return err
	}

	if s.limits.CapacityBytes > 0 {
		signalTrim(s.trimRequests)
	}

	return nil
}

func (s *cachedImagesStorage) Get(ctx context.Context, key string) (CachedImage, error) {
	unlock := s.entries.lock(key)
	defer unlock()

	metadata, err := s.repo.GetCachedImageInfo(ctx, key)
	if err != nil {
		if err != ErrCachedImageNotFound {
			return CachedImage{}, err
		}

		metadata = defaultMetadata(key)
	}

	reader, err := s.conn.GetObject(ctx, s.makeResourceID(key))
	if err != nil {
		return CachedImage{}, s.convertToKnownError(err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return CachedImage{}, s.convertToKnownError(err)
	}

	if metadata.Scale <= 0 {
		metadata.Scale = 1
	}
	metadata.Size = int64(len(data))
	if metadata.MimeType == "" {
		metadata.MimeType = http.DetectContentType(data)
	}

	accessedAt := s.now().UTC()
	if err := s.repo.TouchCachedImageInfo(ctx, key, accessedAt); err == nil {
		metadata.LastAccess = accessedAt
	} else if err != ErrCachedImageNotFound {
		s.log.WithError(err).WithField("key", key).Warn("cannot update last access time")
	}

	return CachedImage{data, metadata}, nil
}

func (s *cachedImagesStorage) Exists(ctx context.Context, key string) (bool, error) {
	return s.conn.ObjectExists(ctx, s.makeResourceID(key))
}

func (s *cachedImagesStorage) Delete(ctx context.Context, key string) error {
	unlock := s.entries.lock(key)
	defer unlock()

	resourceID := s.makeResourceID(key)
	exists, err := s.conn.ObjectExists(ctx, resourceID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCachedImageInfo(ctx, key); err != nil && err != ErrCachedImageNotFound {
		return err
	}

	if !exists {
		return ErrImageNotFound
	}

	return s.conn.DeleteObject(ctx, resourceID)
}

func (s *cachedImagesStorage) KeysOfSource(ctx context.Context, source string) ([]string, error) {
	infos, err := s.repo.GetCachedImageInfosOfSource(ctx, source)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Key)
	}

	return keys, nil
}

func (s *cachedImagesStorage) Usage(ctx context.Context) (StorageUsage, error) {
	return s.repo.GetUsage(ctx)
}

func (s *cachedImagesStorage) Trim(ctx context.Context) error {
	removed, removedBytes := 0, int64(0)
	remove := func(info ImageMetadata) bool {
		if err := s.Delete(ctx, info.Key); err != nil && err != ErrImageNotFound {
			s.log.WithError(err).WithField("key", info.Key).Warn("cannot evict cached image")
			return false
		}

		removed++
		removedBytes += info.Size
		return true
	}

	if s.limits.MaxAge > 0 {
		expired, err := s.repo.GetAccessedBefore(ctx, s.now().Add(-s.limits.MaxAge))
		if err != nil {
			return err
		}

		for _, info := range expired {
			remove(info)
		}
	}

	if s.limits.CapacityBytes > 0 {
		usage, err := s.repo.GetUsage(ctx)
		if err != nil {
			return err
		}

		for usage.Bytes > s.limits.CapacityBytes {
			batch, err := s.repo.GetLeastRecentlyAccessed(ctx, trimBatchSize)
			if err != nil {
				return err
			}

			if len(batch) == 0 {
				break
			}

			progress := removed
			for _, info := range batch {
				if usage.Bytes <= s.limits.CapacityBytes {
					break
				}

				if remove(info) {
					usage.Bytes -= info.Size
				}
			}

			if removed == progress {
				break
			}
		}
	}

	if removed > 0 {
		s.log.WithFields(logrus.Fields{
			"removed": removed,
			"freed":   humanize.Bytes(uint64(removedBytes)),
		}).Info("object cache trimmed")
	}

	return nil
}

func (s *cachedImagesStorage) StartMonitors(ctx context.Context, interval time.Duration) {
	go runTrimmer(ctx, interval, s.trimRequests, s.Trim, s.log)
}

func (s *cachedImagesStorage) convertToKnownError(err error) error {
	if errors.Is(err, dbconnections.ErrObjectNotFound) {
		return ErrImageNotFound
	}

	return err
}

func (s *cachedImagesStorage) makeResourceID(key string) string {
	return url.PathEscape(key)
}

var (
	ErrImageNotFound = errors.New("image not found")
)
