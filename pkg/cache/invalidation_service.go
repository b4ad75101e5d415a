package cache

import (
	"context"
	"net/url"
	"sync"
	"time"

	cacherepositories "github.com/thebartekbanach/webimage/pkg/cache/repositories"
	"github.com/thebartekbanach/webimage/pkg/imageerrors"
)

// KeyFunc derives the cache key of an image URL.
type KeyFunc func(u *url.URL) string

type InvalidationReport = cacherepositories.InvalidationModel

type InvalidationServiceImplementation struct {
	cache      ImageCache
	repository cacherepositories.InvalidationsRepository
	keyOf      KeyFunc

	lastLock sync.Mutex
	last     *InvalidationReport
}

var _ InvalidationService = (*InvalidationServiceImplementation)(nil)

// NewInvalidationService creates the service. Without a repository only the
// last report is kept, in memory.
func NewInvalidationService(cache ImageCache, repository cacherepositories.InvalidationsRepository, keyOf KeyFunc) InvalidationService {
	if keyOf == nil {
		keyOf = func(u *url.URL) string { return u.String() }
	}

	return &InvalidationServiceImplementation{cache: cache, repository: repository, keyOf: keyOf}
}

func (s *InvalidationServiceImplementation) GetLastKnownInvalidation(ctx context.Context) (InvalidationReport, error) {
	if s.repository != nil {
		return s.repository.GetLatestInvalidation(ctx)
	}

	s.lastLock.Lock()
	defer s.lastLock.Unlock()

	if s.last == nil {
		return InvalidationReport{}, cacherepositories.ErrInvalidationNotFound
	}

	return *s.last, nil
}

// Invalidate removes the images of urls from every tier. An absolute URL also
// removes every entry produced from it. It stops at the first malformed URL
// and reports what was done until then.
func (s *InvalidationServiceImplementation) Invalidate(ctx context.Context, urls []string) (InvalidationReport, error) {
	report := InvalidationReport{
		RequestedInvalidations: urls,
		DoneInvalidations:      []string{},
		RemovedKeys:            []string{},
	}

	var invalidationError error

	for _, rawURL := range urls {
		if err := ctx.Err(); err != nil {
			invalidationError = err
			break
		}

		parsed, err := url.Parse(rawURL)
		if err != nil || rawURL == "" {
			invalidationError = imageerrors.InvalidInput("malformed image url: " + rawURL)
			break
		}

		removed := map[string]bool{}
		if parsed.IsAbs() {
			for _, key := range s.cache.RemoveSource(ctx, parsed.String()) {
				removed[key] = true
				report.RemovedKeys = append(report.RemovedKeys, key)
			}
		}

		key := s.keyOf(parsed)
		if !removed[key] && s.cache.Contains(ctx, key, TierAll) {
			s.cache.Remove(ctx, key, TierAll)
			report.RemovedKeys = append(report.RemovedKeys, key)
		}

		report.DoneInvalidations = append(report.DoneInvalidations, rawURL)
	}

	if invalidationError != nil {
		errText := invalidationError.Error()
		report.InvalidationError = &errText
	}

	report.InvalidationDate = time.Now()
	if err := s.record(ctx, report); err != nil {
		return report, err
	}

	return report, invalidationError
}

func (s *InvalidationServiceImplementation) record(ctx context.Context, report InvalidationReport) error {
	if s.repository != nil {
		return s.repository.CreateInvalidation(context.WithoutCancel(ctx), report)
	}

	s.lastLock.Lock()
	defer s.lastLock.Unlock()

	s.last = &report
	return nil
}
