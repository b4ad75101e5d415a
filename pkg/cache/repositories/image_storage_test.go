package cacherepositories_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	cacherepositories "github.com/thebartekbanach/webimage/pkg/cache/repositories"
	dbconnections "github.com/thebartekbanach/webimage/pkg/cache/repositories/connections"
	mock_cacherepositories "github.com/thebartekbanach/webimage/pkg/cache/repositories/mocks"
)

type memoryBlockStorage struct {
	objects map[string][]byte
	lock    sync.Mutex
	putErr  error
}

var _ dbconnections.ObjectStorageConnection = (*memoryBlockStorage)(nil)

func newMemoryBlockStorage() *memoryBlockStorage {
	return &memoryBlockStorage{objects: map[string][]byte{}}
}

func (s *memoryBlockStorage) GetObject(ctx context.Context, objectName string) (io.ReadCloser, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	data, found := s.objects[objectName]
	if !found {
		return nil, dbconnections.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryBlockStorage) PutObject(ctx context.Context, objectName string, objectSize int64, mimeType string, reader io.Reader) error {
	if s.putErr != nil {
		return s.putErr
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.objects[objectName] = data
	return nil
}

func (s *memoryBlockStorage) DeleteObject(ctx context.Context, objectName string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.objects, objectName)
	return nil
}

func (s *memoryBlockStorage) ObjectExists(ctx context.Context, objectName string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, found := s.objects[objectName]
	return found, nil
}

func newTestingObjectStorage(t *testing.T, limits cacherepositories.StorageLimits) (cacherepositories.CachedImagesStorage, *memoryBlockStorage, *mock_cacherepositories.MockCachedImagesRepository) {
	mockCtrl := gomock.NewController(t)
	repo := mock_cacherepositories.NewMockCachedImagesRepository(mockCtrl)
	blobs := newMemoryBlockStorage()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	storage := cacherepositories.NewCachedImagesStorage(blobs, repo, cacherepositories.ObjectStorageConfig{Limits: limits}, logger)
	return storage, blobs, repo
}

func TestCachedImagesStorage_ShouldSaveBlobAndMetadata(t *testing.T) {
	storage, blobs, repo := newTestingObjectStorage(t, cacherepositories.StorageLimits{})
	data := []byte("image-bytes")

	repo.EXPECT().SaveCachedImageInfo(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, info cacherepositories.ImageMetadata) error {
		if info.Key != "key" || info.Size != int64(len(data)) || info.Scale != 2 {
			t.Errorf("unexpected metadata saved: %+v", info)
		}
		return nil
	})

	err := storage.Save(context.Background(), "key", cacherepositories.ImageMetadata{Scale: 2, MimeType: "image/jpeg"}, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected save error: %s", err)
	}

	if exists, _ := blobs.ObjectExists(context.Background(), "key"); !exists {
		t.Errorf("expected blob to be stored")
	}
}

func TestCachedImagesStorage_ShouldRollbackBlobWhenMetadataSaveFails(t *testing.T) {
	storage, blobs, repo := newTestingObjectStorage(t, cacherepositories.StorageLimits{})
	saveErr := errors.New("mongo is down")

	repo.EXPECT().SaveCachedImageInfo(gomock.Any(), gomock.Any()).Return(saveErr)
	repo.EXPECT().DeleteCachedImageInfo(gomock.Any(), "key").Return(cacherepositories.ErrCachedImageNotFound)

	err := storage.Save(context.Background(), "key", cacherepositories.ImageMetadata{}, bytes.NewReader([]byte("data")))
	if err != saveErr {
		t.Fatalf("expected %v, got %v", saveErr, err)
	}

	if exists, _ := blobs.ObjectExists(context.Background(), "key"); exists {
		t.Errorf("expected blob to be rolled back")
	}
}

func TestCachedImagesStorage_ShouldKeepBlobAndMetadataConsistentUnderConcurrentSaves(t *testing.T) {
	storage, blobs, repo := newTestingObjectStorage(t, cacherepositories.StorageLimits{})
	payloads := map[float64][]byte{1: []byte("first-writer"), 2: []byte("second-writer")}

	var saved sync.Mutex
	var last cacherepositories.ImageMetadata
	repo.EXPECT().SaveCachedImageInfo(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, info cacherepositories.ImageMetadata) error {
		time.Sleep(2 * time.Millisecond)

		blobs.lock.Lock()
		stored := blobs.objects["key"]
		blobs.lock.Unlock()
		if !bytes.Equal(stored, payloads[info.Scale]) {
			t.Errorf("blob %q saved together with metadata of scale %v", stored, info.Scale)
		}

		saved.Lock()
		last = info
		saved.Unlock()
		return nil
	}).Times(20)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		scale := float64(i%2 + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			storage.Save(context.Background(), "key", cacherepositories.ImageMetadata{Scale: scale}, bytes.NewReader(payloads[scale]))
		}()
	}
	wg.Wait()

	if !bytes.Equal(blobs.objects["key"], payloads[last.Scale]) {
		t.Errorf("final blob %q does not match final metadata scale %v", blobs.objects["key"], last.Scale)
	}
}

func TestCachedImagesStorage_ShouldReadBlobWithDefaultMetadataWhenRecordIsMissing(t *testing.T) {
	storage, blobs, repo := newTestingObjectStorage(t, cacherepositories.StorageLimits{})
	blobs.objects["key"] = []byte("GIF89a")

	repo.EXPECT().GetCachedImageInfo(gomock.Any(), "key").Return(cacherepositories.ImageMetadata{}, cacherepositories.ErrCachedImageNotFound)
	repo.EXPECT().TouchCachedImageInfo(gomock.Any(), "key", gomock.Any()).Return(cacherepositories.ErrCachedImageNotFound)

	image, err := storage.Get(context.Background(), "key")
	if err != nil {
		t.Fatalf("unexpected get error: %s", err)
	}

	if image.Metadata.Scale != 1 || image.Metadata.Animated {
		t.Errorf("expected default metadata, got %+v", image.Metadata)
	}

	if image.Metadata.MimeType != "image/gif" {
		t.Errorf("expected sniffed mime type, got %s", image.Metadata.MimeType)
	}
}

func TestCachedImagesStorage_ShouldReturnNotFoundWhenBlobIsMissing(t *testing.T) {
	storage, _, repo := newTestingObjectStorage(t, cacherepositories.StorageLimits{})

	repo.EXPECT().GetCachedImageInfo(gomock.Any(), "key").Return(cacherepositories.ImageMetadata{Key: "key", Scale: 1}, nil)

	_, err := storage.Get(context.Background(), "key")
	if err != cacherepositories.ErrImageNotFound {
		t.Fatalf("expected %v, got %v", cacherepositories.ErrImageNotFound, err)
	}
}

func TestCachedImagesStorage_TrimShouldEvictLeastRecentlyAccessedUntilUnderCapacity(t *testing.T) {
	storage, blobs, repo := newTestingObjectStorage(t, cacherepositories.StorageLimits{CapacityBytes: 100})
	blobs.objects["a"] = make([]byte, 60)
	blobs.objects["b"] = make([]byte, 60)
	blobs.objects["c"] = make([]byte, 30)

	repo.EXPECT().GetUsage(gomock.Any()).Return(cacherepositories.StorageUsage{Entries: 3, Bytes: 150}, nil)
	repo.EXPECT().GetLeastRecentlyAccessed(gomock.Any(), int64(100)).Return([]cacherepositories.ImageMetadata{
		{Key: "a", Size: 60},
		{Key: "b", Size: 60},
		{Key: "c", Size: 30},
	}, nil)
	repo.EXPECT().DeleteCachedImageInfo(gomock.Any(), "a").Return(nil)

	if err := storage.Trim(context.Background()); err != nil {
		t.Fatalf("unexpected trim error: %s", err)
	}

	if _, found := blobs.objects["a"]; found {
		t.Errorf("expected least recently accessed blob to be evicted")
	}

	if _, found := blobs.objects["b"]; !found {
		t.Errorf("expected blob b to be kept")
	}
}

func TestCachedImagesStorageIntegration_ShouldRoundTripImage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping cachedImagesStorage integration tests")
	}

	conn := dbconnections.NewMinioTestingConnection(t)
	db := dbconnections.NewMongoTestingConnection(t)
	repo := cacherepositories.NewCachedImagesRepository(db)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	storage := cacherepositories.NewCachedImagesStorage(conn, repo, cacherepositories.ObjectStorageConfig{}, logger)

	ctx := context.Background()
	data := []byte("\xff\xd8\xff\xe0fake-jpeg")

	if err := storage.Save(ctx, "http://example.com/a.jpg", cacherepositories.ImageMetadata{Scale: 2}, bytes.NewReader(data)); err != nil {
		t.Fatalf("Error ocurred while saving image: %s", err)
	}

	image, err := storage.Get(ctx, "http://example.com/a.jpg")
	if err != nil {
		t.Fatalf("Error ocurred while getting image: %s", err)
	}

	if !bytes.Equal(image.Data, data) || image.Metadata.Scale != 2 {
		t.Fatalf("Read image is not equal to saved image: %+v", image.Metadata)
	}

	usage, err := storage.Usage(ctx)
	if err != nil || usage.Entries != 1 || usage.Bytes != int64(len(data)) {
		t.Fatalf("Unexpected usage %+v, error %v", usage, err)
	}

	if err := storage.Delete(ctx, "http://example.com/a.jpg"); err != nil {
		t.Fatalf("Error ocurred while deleting image: %s", err)
	}
}
