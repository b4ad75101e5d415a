package cache

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	memorycache "github.com/thebartekbanach/webimage/pkg/cache/memory"
	cacherepositories "github.com/thebartekbanach/webimage/pkg/cache/repositories"
	"github.com/thebartekbanach/webimage/pkg/codec"
	"github.com/thebartekbanach/webimage/pkg/imageerrors"
	"github.com/thebartekbanach/webimage/pkg/metrics"
)

type Config struct {
	Memory memorycache.Config
	// AllowAnimatedImage keeps all frames of images read back from disk.
	AllowAnimatedImage bool
	Policy             EncodingPolicy
}

type tieredCache struct {
	memory  *memorycache.Store[Entry]
	disk    cacherepositories.CachedImagesStorage
	decoder codec.Decoder
	policy  EncodingPolicy

	allowAnimated bool
	log           logrus.FieldLogger
	metrics       *metrics.Metrics

	// keys of memory entries by source URL, never locked while calling into memory
	sourcesLock sync.Mutex
	sources     map[string]map[string]struct{}
}

var _ ImageCache = (*tieredCache)(nil)

// NewTieredCache creates the cache. A nil disk storage disables the persistent tier.
func NewTieredCache(
	config Config,
	disk cacherepositories.CachedImagesStorage,
	decoder codec.Decoder,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
) ImageCache {
	policy := config.Policy
	if policy == nil {
		policy = OriginalBytesPolicy{JPEGQuality: DefaultJPEGQuality}
	}

	c := &tieredCache{
		memory:        memorycache.New[Entry](config.Memory),
		disk:          disk,
		decoder:       decoder,
		policy:        policy,
		allowAnimated: config.AllowAnimatedImage,
		log:           logger.WithField("component", "cache"),
		metrics:       m,
		sources:       make(map[string]map[string]struct{}),
	}

	c.memory.OnEvict(func(key string, entry Entry) {
		c.unindexSource(entry.Source, key)
		c.metrics.RecordEviction(TierMemory.String())
	})

	return c
}

func (c *tieredCache) Get(ctx context.Context, key string, tiers Tier) (Entry, Tier, bool) {
	if key == "" {
		return Entry{}, TierNone, false
	}

	if tiers.Has(TierMemory) {
		entry, found := c.memory.Get(key)
		c.metrics.RecordLookup(TierMemory.String(), found)
		if found {
			return entry, TierMemory, true
		}
	}

	if !tiers.Has(TierDisk) || c.disk == nil {
		return Entry{}, TierNone, false
	}

	entry, found := c.getFromDisk(ctx, key)
	c.metrics.RecordLookup(TierDisk.String(), found)
	if !found {
		return Entry{}, TierNone, false
	}

	c.setMemory(key, entry)
	return entry, TierDisk, true
}

func (c *tieredCache) GetData(ctx context.Context, key string) ([]byte, bool) {
	if entry, found := c.memory.Get(key); found && len(entry.Data) > 0 {
		return entry.Data, true
	}

	if c.disk == nil {
		return nil, false
	}

	image, err := c.disk.Get(ctx, key)
	if err != nil {
		c.handleDiskError(err, "get", key)
		return nil, false
	}

	return image.Data, true
}

// Set stores entry in the requested tiers. Persistent tier failures are
// logged and do not fail the call.
func (c *tieredCache) Set(ctx context.Context, key string, entry Entry, tiers Tier) error {
	if key == "" {
		return imageerrors.InvalidInput(ErrEmptyKey.Error())
	}

	if entry.IsEmpty() {
		return ErrEmptyEntry
	}

	entry.Key = key
	if entry.Hint.Scale <= 0 {
		entry.Hint = NewEntry(key, entry.Image, entry.Data).Hint
	}

	if tiers.Has(TierMemory) {
		memoryEntry := entry
		if memoryEntry.Image == nil {
			image, err := c.decoder.Decode(entry.Data, codec.Options{
				IgnoreAnimation: !c.allowAnimated,
				Scale:           entry.Hint.Scale,
			})
			if err != nil {
				c.log.WithError(err).WithField("key", key).Warn("cannot decode image for memory cache")
			} else {
				memoryEntry.Image = image
			}
		}

		if memoryEntry.Image != nil {
			c.setMemory(key, memoryEntry)
		}
	}

	if tiers.Has(TierDisk) && c.disk != nil {
		c.setDisk(ctx, key, entry)
	}

	return nil
}

func (c *tieredCache) Remove(ctx context.Context, key string, tiers Tier) {
	if tiers.Has(TierMemory) {
		c.memory.Remove(key)
		c.metrics.SetMemoryCost(c.memory.TotalCost())
	}

	if tiers.Has(TierDisk) && c.disk != nil {
		if err := c.disk.Delete(ctx, key); err != nil {
			c.handleDiskError(err, "remove", key)
		}
	}
}

func (c *tieredCache) Contains(ctx context.Context, key string, tiers Tier) bool {
	if tiers.Has(TierMemory) && c.memory.Contains(key) {
		return true
	}

	if !tiers.Has(TierDisk) || c.disk == nil {
		return false
	}

	exists, err := c.disk.Exists(ctx, key)
	if err != nil {
		c.handleDiskError(err, "contains", key)
		return false
	}

	return exists
}

func (c *tieredCache) RemoveSource(ctx context.Context, source string) []string {
	if source == "" {
		return []string{}
	}

	keys := map[string]struct{}{}

	c.sourcesLock.Lock()
	for key := range c.sources[source] {
		keys[key] = struct{}{}
	}
	c.sourcesLock.Unlock()

	if c.disk != nil {
		diskKeys, err := c.disk.KeysOfSource(ctx, source)
		if err != nil {
			c.handleDiskError(err, "list", source)
		}
		for _, key := range diskKeys {
			keys[key] = struct{}{}
		}
	}

	removed := make([]string, 0, len(keys))
	for key := range keys {
		c.Remove(ctx, key, TierAll)
		removed = append(removed, key)
	}

	sort.Strings(removed)
	return removed
}

func (c *tieredCache) GetAsync(ctx context.Context, key string, tiers Tier) <-chan GetResult {
	result := make(chan GetResult, 1)
	go func() {
		entry, from, found := c.Get(ctx, key, tiers)
		result <- GetResult{entry, from, found}
	}()
	return result
}

func (c *tieredCache) SetAsync(ctx context.Context, key string, entry Entry, tiers Tier) <-chan error {
	result := make(chan error, 1)
	go func() {
		result <- c.Set(ctx, key, entry, tiers)
	}()
	return result
}

func (c *tieredCache) RemoveAsync(ctx context.Context, key string, tiers Tier) <-chan struct{} {
	result := make(chan struct{}, 1)
	go func() {
		c.Remove(ctx, key, tiers)
		result <- struct{}{}
	}()
	return result
}

func (c *tieredCache) ContainsAsync(ctx context.Context, key string, tiers Tier) <-chan bool {
	result := make(chan bool, 1)
	go func() {
		result <- c.Contains(ctx, key, tiers)
	}()
	return result
}

func (c *tieredCache) TrimMemory() {
	c.memory.RemoveAll()
	c.sourcesLock.Lock()
	c.sources = make(map[string]map[string]struct{})
	c.sourcesLock.Unlock()
	c.metrics.SetMemoryCost(0)
	c.log.Info("memory cache emptied")
}

func (c *tieredCache) StartMonitors(ctx context.Context, interval time.Duration) {
	c.memory.StartMonitors(ctx, interval)
	if c.disk != nil {
		c.disk.StartMonitors(ctx, interval)
	}
}

// setMemory indexes before storing, an entry evicted right away by the cost
// limit is unindexed by the eviction callback.
func (c *tieredCache) setMemory(key string, entry Entry) {
	entry.Cost = entry.computeCost()
	c.indexSource(entry.Source, key)
	c.memory.Set(key, entry, entry.Cost)
	c.metrics.SetMemoryCost(c.memory.TotalCost())
}

func (c *tieredCache) indexSource(source, key string) {
	if source == "" {
		return
	}

	c.sourcesLock.Lock()
	defer c.sourcesLock.Unlock()

	keys := c.sources[source]
	if keys == nil {
		keys = make(map[string]struct{})
		c.sources[source] = keys
	}
	keys[key] = struct{}{}
}

func (c *tieredCache) unindexSource(source, key string) {
	if source == "" {
		return
	}

	c.sourcesLock.Lock()
	defer c.sourcesLock.Unlock()

	if keys := c.sources[source]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.sources, source)
		}
	}
}

func (c *tieredCache) setDisk(ctx context.Context, key string, entry Entry) {
	data, mimeType, err := c.policy.Encode(entry)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cannot encode image for disk cache")
		return
	}

	metadata := cacherepositories.ImageMetadata{
		Source:   entry.Source,
		MimeType: mimeType,
		Scale:    entry.Hint.Scale,
		Animated: entry.Hint.Animated,
		HasAlpha: entry.Hint.HasAlpha,
	}

	if err := c.disk.Save(ctx, key, metadata, bytes.NewReader(data)); err != nil {
		c.handleDiskError(err, "set", key)
	}
}

func (c *tieredCache) getFromDisk(ctx context.Context, key string) (Entry, bool) {
	stored, err := c.disk.Get(ctx, key)
	if err != nil {
		c.handleDiskError(err, "get", key)
		return Entry{}, false
	}

	image, err := c.decoder.Decode(stored.Data, codec.Options{
		IgnoreAnimation: !c.allowAnimated || !stored.Metadata.Animated,
		Scale:           stored.Metadata.Scale,
	})
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("removing undecodable image from disk cache")
		c.disk.Delete(ctx, key)
		return Entry{}, false
	}

	entry := Entry{
		Key:    key,
		Source: stored.Metadata.Source,
		Image:  image,
		Data:   stored.Data,
		Hint: EncodingHint{
			Animated: stored.Metadata.Animated,
			HasAlpha: stored.Metadata.HasAlpha,
			Scale:    stored.Metadata.Scale,
		},
	}
	entry.Cost = entry.computeCost()

	return entry, true
}

func (c *tieredCache) handleDiskError(err error, operation, key string) {
	if errors.Is(err, cacherepositories.ErrImageNotFound) {
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	c.metrics.RecordCacheIOError(operation)
	c.log.WithError(imageerrors.CacheIO(err, key)).WithFields(logrus.Fields{
		"key":       key,
		"operation": operation,
	}).Warn("disk cache failed, treating as miss")
}
