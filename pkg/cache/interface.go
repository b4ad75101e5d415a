package cache

import (
	"context"
	"time"
)

type GetResult struct {
	Entry Entry
	From  Tier
	Found bool
}

// ImageCache is a two tier image cache. A miss, including a failed read of
// the persistent tier, is never reported as an error.
type ImageCache interface {
	Get(ctx context.Context, key string, tiers Tier) (Entry, Tier, bool)
	GetData(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, entry Entry, tiers Tier) error
	Remove(ctx context.Context, key string, tiers Tier)
	Contains(ctx context.Context, key string, tiers Tier) bool
	// RemoveSource removes every entry produced from the source image URL
	// from all tiers and returns the removed keys.
	RemoveSource(ctx context.Context, source string) []string

	GetAsync(ctx context.Context, key string, tiers Tier) <-chan GetResult
	SetAsync(ctx context.Context, key string, entry Entry, tiers Tier) <-chan error
	RemoveAsync(ctx context.Context, key string, tiers Tier) <-chan struct{}
	ContainsAsync(ctx context.Context, key string, tiers Tier) <-chan bool

	// TrimMemory empties the memory tier, used on memory pressure.
	TrimMemory()
	StartMonitors(ctx context.Context, interval time.Duration)
}

type InvalidationService interface {
	Invalidate(ctx context.Context, urls []string) (InvalidationReport, error)
	GetLastKnownInvalidation(ctx context.Context) (InvalidationReport, error)
}
