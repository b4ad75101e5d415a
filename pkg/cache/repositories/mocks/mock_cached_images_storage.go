package mock_cacherepositories

import (
	"context"
	"io"
	"sync"
	"time"

	cacherepositories "github.com/thebartekbanach/webimage/pkg/cache/repositories"
)

// MockCachedImagesStorage is an in-memory CachedImagesStorage.
type MockCachedImagesStorage struct {
	images map[string]cacherepositories.CachedImage
	lock   sync.Mutex
	err    error
	saves  int
}

var _ cacherepositories.CachedImagesStorage = (*MockCachedImagesStorage)(nil)

func NewMockCachedImagesStorage() *MockCachedImagesStorage {
	return &MockCachedImagesStorage{
		images: make(map[string]cacherepositories.CachedImage),
	}
}

func (s *MockCachedImagesStorage) InstantSave(key string, data []byte, metadata cacherepositories.ImageMetadata) {
	s.lock.Lock()
	defer s.lock.Unlock()

	metadata.Key = key
	metadata.Size = int64(len(data))
	s.images[key] = cacherepositories.CachedImage{Data: data, Metadata: metadata}
}

func (s *MockCachedImagesStorage) Image(key string) (cacherepositories.CachedImage, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	image, found := s.images[key]
	return image, found
}

// ReturnError makes every following call fail with err, nil restores normal behaviour.
func (s *MockCachedImagesStorage) ReturnError(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.err = err
}

func (s *MockCachedImagesStorage) Saves() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.saves
}

func (s *MockCachedImagesStorage) Save(ctx context.Context, key string, metadata cacherepositories.ImageMetadata, reader io.Reader) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.err != nil {
		return s.err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	metadata.Key = key
	metadata.Size = int64(len(data))
	metadata.LastAccess = time.Now()
	s.images[key] = cacherepositories.CachedImage{Data: data, Metadata: metadata}
	s.saves++
	return nil
}

func (s *MockCachedImagesStorage) Get(ctx context.Context, key string) (cacherepositories.CachedImage, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.err != nil {
		return cacherepositories.CachedImage{}, s.err
	}

	image, found := s.images[key]
	if !found {
		return cacherepositories.CachedImage{}, cacherepositories.ErrImageNotFound
	}

	return image, nil
}

func (s *MockCachedImagesStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.err != nil {
		return false, s.err
	}

	_, found := s.images[key]
	return found, nil
}

func (s *MockCachedImagesStorage) Delete(ctx context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.err != nil {
		return s.err
	}

	if _, found := s.images[key]; !found {
		return cacherepositories.ErrImageNotFound
	}

	delete(s.images, key)
	return nil
}

func (s *MockCachedImagesStorage) KeysOfSource(ctx context.Context, source string) ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	keys := []string{}
	for key, image := range s.images {
		if source != "" && image.Metadata.Source == source {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func (s *MockCachedImagesStorage) Usage(ctx context.Context) (cacherepositories.StorageUsage, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	usage := cacherepositories.StorageUsage{Entries: len(s.images)}
	for _, image := range s.images {
		usage.Bytes += int64(len(image.Data))
	}

	return usage, s.err
}

func (s *MockCachedImagesStorage) Trim(ctx context.Context) error {
	return nil
}

func (s *MockCachedImagesStorage) StartMonitors(ctx context.Context, interval time.Duration) {}
