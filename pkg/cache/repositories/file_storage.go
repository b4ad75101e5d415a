package cacherepositories

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

const (
	metadataSuffix = ".meta"
	tempSuffix     = ".tmp"
	staleTempAge   = time.Hour
)

type FileStorageConfig struct {
	RootPath string
	Limits   StorageLimits
}

// fileImagesStorage keeps one file per key with the original bytes and a
// JSON sidecar with metadata. The data file modification time is the last
// access time.
type fileImagesStorage struct {
	root   string
	limits StorageLimits
	log    logrus.FieldLogger
	now    func() time.Time

	entries entryLocks

	trimRequests chan struct{}
}

type storedFile struct {
	hash    string
	size    int64
	modTime time.Time
}

var _ CachedImagesStorage = (*fileImagesStorage)(nil)

func NewFileImagesStorage(config FileStorageConfig, logger logrus.FieldLogger) (CachedImagesStorage, error) {
	if config.RootPath == "" {
		return nil, ErrStoragePathRequired
	}

	root, err := filepath.Abs(config.RootPath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage path: %w", err)
	}

	return &fileImagesStorage{
		root:         root,
		limits:       config.Limits,
		log:          logger.WithField("storage", "file"),
		now:          time.Now,
		trimRequests: make(chan struct{}, 1),
	}, nil
}

func (s *fileImagesStorage) Save(ctx context.Context, key string, metadata ImageMetadata, reader io.Reader) error {
	hash := s.hash(key)
	unlock := s.entries.lock(hash)
	defer unlock()

	dataPath := s.dataPath(hash)
	dir := filepath.Dir(dataPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	checksum := sha1.New()
	dataTemp, written, err := s.writeTemp(ctx, dir, hash, io.TeeReader(reader, checksum))
	if err != nil {
		return err
	}

	metadata.Key = key
	metadata.Size = written
	metadata.Checksum = hex.EncodeToString(checksum.Sum(nil))
	metadata.LastAccess = s.now().UTC()
	if metadata.Scale <= 0 {
		metadata.Scale = 1
	}

	encoded, err := json.Marshal(metadata)
	if err != nil {
		os.Remove(dataTemp)
		return err
	}

	metaTemp, _, err := s.writeTemp(ctx, dir, hash, bytes.NewReader(encoded))
	if err != nil {
		os.Remove(dataTemp)
		return err
	}

	// a crash between the renames leaves a sidecar that does not match the
	// bytes, readMetadata falls back to defaults for it
	if err := os.Rename(dataTemp, dataPath); err != nil {
		os.Remove(dataTemp)
		os.Remove(metaTemp)
		return err
	}

	if err := os.Rename(metaTemp, dataPath+metadataSuffix); err != nil {
		os.Remove(metaTemp)
		return err
	}

	if err := os.Chtimes(dataPath, metadata.LastAccess, metadata.LastAccess); err != nil {
		return err
	}

	s.requestTrim()
	return nil
}

func (s *fileImagesStorage) Get(ctx context.Context, key string) (CachedImage, error) {
	if err := ctx.Err(); err != nil {
		return CachedImage{}, err
	}

	hash := s.hash(key)
	unlock := s.entries.lock(hash)
	defer unlock()

	dataPath := s.dataPath(hash)
	data, err := os.ReadFile(dataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CachedImage{}, ErrImageNotFound
		}
		return CachedImage{}, err
	}

	metadata := s.readMetadata(key, dataPath, data)
	metadata.Size = int64(len(data))
	if metadata.MimeType == "" {
		metadata.MimeType = http.DetectContentType(data)
	}

	accessedAt := s.now().UTC()
	if err := os.Chtimes(dataPath, accessedAt, accessedAt); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cannot update last access time")
	} else {
		metadata.LastAccess = accessedAt
	}

	return CachedImage{data, metadata}, nil
}

func (s *fileImagesStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := os.Stat(s.dataPath(s.hash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return !info.IsDir(), nil
}

func (s *fileImagesStorage) Delete(ctx context.Context, key string) error {
	hash := s.hash(key)
	unlock := s.entries.lock(hash)
	defer unlock()

	return s.removeEntry(hash)
}

// KeysOfSource scans every sidecar, entries without one are never matched.
func (s *fileImagesStorage) KeysOfSource(ctx context.Context, source string) ([]string, error) {
	keys := []string{}
	if source == "" {
		return keys, nil
	}

	files, err := s.listFiles(ctx)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		encoded, err := os.ReadFile(s.dataPath(file.hash) + metadataSuffix)
		if err != nil {
			continue
		}

		var metadata ImageMetadata
		if err := json.Unmarshal(encoded, &metadata); err != nil {
			continue
		}

		if metadata.Source == source && metadata.Key != "" {
			keys = append(keys, metadata.Key)
		}
	}

	return keys, nil
}

func (s *fileImagesStorage) Usage(ctx context.Context) (StorageUsage, error) {
	files, err := s.listFiles(ctx)
	if err != nil {
		return StorageUsage{}, err
	}

	usage := StorageUsage{Entries: len(files)}
	for _, file := range files {
		usage.Bytes += file.size
	}

	return usage, nil
}

// Trim removes expired images first, then the least recently accessed ones
// until the storage fits its capacity.
func (s *fileImagesStorage) Trim(ctx context.Context) error {
	files, err := s.listFiles(ctx)
	if err != nil {
		return err
	}

	var totalSize int64
	for _, file := range files {
		totalSize += file.size
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	now := s.now()
	removed, removedBytes := 0, int64(0)
	for _, file := range files {
		expired := s.limits.MaxAge > 0 && now.Sub(file.modTime) > s.limits.MaxAge
		oversized := s.limits.CapacityBytes > 0 && totalSize > s.limits.CapacityBytes
		if !expired && !oversized {
			break
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.removeIfUntouched(file); err != nil {
			s.log.WithError(err).WithField("file", file.hash).Warn("cannot evict cached image")
			continue
		}

		totalSize -= file.size
		removed++
		removedBytes += file.size
	}

	if removed > 0 {
		s.log.WithFields(logrus.Fields{
			"removed": removed,
			"freed":   humanize.Bytes(uint64(removedBytes)),
			"usage":   humanize.Bytes(uint64(totalSize)),
		}).Info("disk cache trimmed")
	}

	return nil
}

// StartMonitors runs the trimmer periodically and after writes until ctx is done.
func (s *fileImagesStorage) StartMonitors(ctx context.Context, interval time.Duration) {
	go runTrimmer(ctx, interval, s.trimRequests, s.Trim, s.log)
}

func (s *fileImagesStorage) requestTrim() {
	if s.limits.CapacityBytes > 0 {
		signalTrim(s.trimRequests)
	}
}

func (s *fileImagesStorage) removeIfUntouched(file storedFile) error {
	unlock := s.entries.lock(file.hash)
	defer unlock()

	info, err := os.Stat(s.dataPath(file.hash))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if info.ModTime().After(file.modTime) {
		return ErrImageAccessedDuringTrim
	}

	return s.removeEntry(file.hash)
}

func (s *fileImagesStorage) removeEntry(hash string) error {
	dataPath := s.dataPath(hash)
	if err := os.Remove(dataPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			os.Remove(dataPath + metadataSuffix)
			return ErrImageNotFound
		}
		return err
	}

	if err := os.Remove(dataPath + metadataSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

func (s *fileImagesStorage) listFiles(ctx context.Context) ([]storedFile, error) {
	var files []storedFile
	now := s.now()

	err := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, metadataSuffix) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return nil
		}

		if strings.HasSuffix(name, tempSuffix) {
			if now.Sub(info.ModTime()) > staleTempAge {
				os.Remove(path)
			}
			return nil
		}

		files = append(files, storedFile{name, info.Size(), info.ModTime()})
		return nil
	})

	return files, err
}

func (s *fileImagesStorage) readMetadata(key, dataPath string, data []byte) ImageMetadata {
	metadata := defaultMetadata(key)

	encoded, err := os.ReadFile(dataPath + metadataSuffix)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.WithError(err).WithField("key", key).Warn("cannot read image metadata")
		}
		return metadata
	}

	if err := json.Unmarshal(encoded, &metadata); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("malformed image metadata")
		return defaultMetadata(key)
	}

	if sum := sha1.Sum(data); metadata.Checksum != "" && metadata.Checksum != hex.EncodeToString(sum[:]) {
		s.log.WithField("key", key).Warn("image metadata does not match stored bytes")
		return defaultMetadata(key)
	}

	if metadata.Scale <= 0 {
		metadata.Scale = 1
	}

	metadata.Key = key
	return metadata
}

func (s *fileImagesStorage) writeTemp(ctx context.Context, dir, hash string, reader io.Reader) (string, int64, error) {
	tempFile, err := os.CreateTemp(dir, hash+".*"+tempSuffix)
	if err != nil {
		return "", 0, err
	}
	tempName := tempFile.Name()

	written, err := copyWithContext(ctx, tempFile, reader)
	if err == nil {
		err = tempFile.Sync()
	}

	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(tempName)
		return "", 0, err
	}

	return tempName, written, nil
}

func (s *fileImagesStorage) hash(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (s *fileImagesStorage) dataPath(hash string) string {
	return filepath.Join(s.root, hash[:2], hash)
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}

		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}

var (
	ErrStoragePathRequired     = errors.New("storage path required")
	ErrImageAccessedDuringTrim = errors.New("image accessed during trim")
)
