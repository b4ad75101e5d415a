package cache_test

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/thebartekbanach/webimage/pkg/cache"
	mock_cache "github.com/thebartekbanach/webimage/pkg/cache/mocks"
	cacherepositories "github.com/thebartekbanach/webimage/pkg/cache/repositories"
	mock_cacherepositories "github.com/thebartekbanach/webimage/pkg/cache/repositories/mocks"
	"github.com/thebartekbanach/webimage/pkg/imageerrors"
)

func TestInvalidationService_ShouldRemoveCachedImageFromAllTiers(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)

	mockCache.EXPECT().RemoveSource(gomock.Any(), "https://example.com/a.png").Return([]string{})
	mockCache.EXPECT().Contains(gomock.Any(), "https://example.com/a.png", cache.TierAll).Return(true)
	mockCache.EXPECT().Remove(gomock.Any(), "https://example.com/a.png", cache.TierAll)

	invalidationService := cache.NewInvalidationService(mockCache, nil, nil)
	report, err := invalidationService.Invalidate(context.Background(), []string{"https://example.com/a.png"})

	if err != nil {
		t.Errorf("Expected no invalidation error, but got: %v", err)
	}

	if !reflect.DeepEqual(report.RemovedKeys, []string{"https://example.com/a.png"}) {
		t.Errorf("Expected removed keys to contain invalidated image, got: %v", report.RemovedKeys)
	}

	if !reflect.DeepEqual(report.DoneInvalidations, []string{"https://example.com/a.png"}) {
		t.Errorf("Expected invalidation to be done, got: %v", report.DoneInvalidations)
	}
}

func TestInvalidationService_ShouldRemoveEveryVariantOfSourceImage(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)
	variants := []string{
		"imaging|/original|https://example.com/a.png|url=https://example.com/a.png|",
		"imaging|/resize|https://example.com/a.png|url=https://example.com/a.png|width=10|",
	}

	mockCache.EXPECT().RemoveSource(gomock.Any(), "https://example.com/a.png").Return(variants)
	mockCache.EXPECT().Contains(gomock.Any(), "https://example.com/a.png", cache.TierAll).Return(false)

	invalidationService := cache.NewInvalidationService(mockCache, nil, nil)
	report, err := invalidationService.Invalidate(context.Background(), []string{"https://example.com/a.png"})

	if err != nil {
		t.Errorf("Expected no invalidation error, but got: %v", err)
	}

	if !reflect.DeepEqual(report.RemovedKeys, variants) {
		t.Errorf("Expected every variant to be removed, got: %v", report.RemovedKeys)
	}
}

func TestInvalidationService_ShouldNotLookUpSourceOfRelativeRequestPath(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)

	keyOf := func(u *url.URL) string { return "key:" + u.Path }
	mockCache.EXPECT().Contains(gomock.Any(), "key:/imaging/original", cache.TierAll).Return(true)
	mockCache.EXPECT().Remove(gomock.Any(), "key:/imaging/original", cache.TierAll)

	invalidationService := cache.NewInvalidationService(mockCache, nil, keyOf)
	invalidationService.Invalidate(context.Background(), []string{"/imaging/original?url=https://example.com/a.png"})
}

func TestInvalidationService_ShouldSkipImagesThatAreNotCached(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)

	mockCache.EXPECT().RemoveSource(gomock.Any(), gomock.Any()).Return([]string{})
	mockCache.EXPECT().Contains(gomock.Any(), "https://example.com/a.png", cache.TierAll).Return(false)

	invalidationService := cache.NewInvalidationService(mockCache, nil, nil)
	report, err := invalidationService.Invalidate(context.Background(), []string{"https://example.com/a.png"})

	if err != nil {
		t.Errorf("Expected no invalidation error, but got: %v", err)
	}

	if len(report.RemovedKeys) != 0 {
		t.Errorf("Expected no removed keys, got: %v", report.RemovedKeys)
	}

	if len(report.DoneInvalidations) != 1 {
		t.Errorf("Expected invalidation to be done, got: %v", report.DoneInvalidations)
	}
}

func TestInvalidationService_ShouldUseProvidedKeyFunction(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)

	keyOf := func(u *url.URL) string { return "key:" + u.Path }
	mockCache.EXPECT().RemoveSource(gomock.Any(), gomock.Any()).Return([]string{})
	mockCache.EXPECT().Contains(gomock.Any(), "key:/a.png", cache.TierAll).Return(true)
	mockCache.EXPECT().Remove(gomock.Any(), "key:/a.png", cache.TierAll)

	invalidationService := cache.NewInvalidationService(mockCache, nil, keyOf)
	invalidationService.Invalidate(context.Background(), []string{"https://example.com/a.png"})
}

func TestInvalidationService_ShouldStopAtFirstMalformedURL(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)

	mockCache.EXPECT().RemoveSource(gomock.Any(), gomock.Any()).Return([]string{})
	mockCache.EXPECT().Contains(gomock.Any(), "https://example.com/a.png", cache.TierAll).Return(true)
	mockCache.EXPECT().Remove(gomock.Any(), "https://example.com/a.png", cache.TierAll)

	invalidationService := cache.NewInvalidationService(mockCache, nil, nil)
	report, err := invalidationService.Invalidate(context.Background(), []string{
		"https://example.com/a.png",
		"http://[::1",
		"https://example.com/b.png",
	})

	if !imageerrors.IsInvalidInput(err) {
		t.Fatalf("Expected invalid input error, but got: %v", err)
	}

	if !reflect.DeepEqual(report.DoneInvalidations, []string{"https://example.com/a.png"}) {
		t.Errorf("Expected only first invalidation to be done, got: %v", report.DoneInvalidations)
	}

	if report.InvalidationError == nil || *report.InvalidationError != err.Error() {
		t.Errorf("Expected invalidation error to be reported, got: %v", report.InvalidationError)
	}

	if len(report.RequestedInvalidations) != 3 {
		t.Errorf("Expected all requested invalidations to be reported, got: %v", report.RequestedInvalidations)
	}
}

func TestInvalidationService_ShouldStopWhenContextIsCancelled(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	invalidationService := cache.NewInvalidationService(mockCache, nil, nil)
	_, err := invalidationService.Invalidate(ctx, []string{"https://example.com/a.png"})

	if err != context.Canceled {
		t.Errorf("Expected context.Canceled error, but got: %v", err)
	}
}

func TestInvalidationService_ShouldPersistReportInRepository(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)
	repository := mock_cacherepositories.NewMockInvalidationsRepository(mockCtrl)

	mockCache.EXPECT().RemoveSource(gomock.Any(), gomock.Any()).Return([]string{"variant"})
	mockCache.EXPECT().Contains(gomock.Any(), gomock.Any(), cache.TierAll).Return(false)
	repository.EXPECT().CreateInvalidation(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, report cache.InvalidationReport) error {
		if !reflect.DeepEqual(report.RemovedKeys, []string{"variant"}) || report.InvalidationDate.IsZero() {
			t.Errorf("Unexpected persisted report: %+v", report)
		}
		return nil
	})
	repository.EXPECT().GetLatestInvalidation(gomock.Any()).Return(cache.InvalidationReport{RemovedKeys: []string{"variant"}}, nil)

	invalidationService := cache.NewInvalidationService(mockCache, repository, nil)
	if _, err := invalidationService.Invalidate(context.Background(), []string{"https://example.com/a.png"}); err != nil {
		t.Errorf("Expected no invalidation error, but got: %v", err)
	}

	last, err := invalidationService.GetLastKnownInvalidation(context.Background())
	if err != nil || !reflect.DeepEqual(last.RemovedKeys, []string{"variant"}) {
		t.Errorf("Unexpected last invalidation %+v, %v", last, err)
	}
}

func TestInvalidationService_ShouldReturnRepositoryError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)
	repository := mock_cacherepositories.NewMockInvalidationsRepository(mockCtrl)
	repositoryErr := errors.New("mongo is down")

	mockCache.EXPECT().RemoveSource(gomock.Any(), gomock.Any()).Return([]string{})
	mockCache.EXPECT().Contains(gomock.Any(), gomock.Any(), cache.TierAll).Return(false)
	repository.EXPECT().CreateInvalidation(gomock.Any(), gomock.Any()).Return(repositoryErr)

	invalidationService := cache.NewInvalidationService(mockCache, repository, nil)
	report, err := invalidationService.Invalidate(context.Background(), []string{"https://example.com/a.png"})

	if err != repositoryErr || len(report.DoneInvalidations) != 1 {
		t.Errorf("Expected repository error with done report, got %v %+v", err, report)
	}
}

func TestInvalidationService_ShouldKeepLastReportInMemoryWithoutRepository(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockCache := mock_cache.NewMockImageCache(mockCtrl)
	invalidationService := cache.NewInvalidationService(mockCache, nil, nil)

	if _, err := invalidationService.GetLastKnownInvalidation(context.Background()); err != cacherepositories.ErrInvalidationNotFound {
		t.Errorf("Expected %v before any invalidation, got %v", cacherepositories.ErrInvalidationNotFound, err)
	}

	mockCache.EXPECT().RemoveSource(gomock.Any(), gomock.Any()).Return([]string{})
	mockCache.EXPECT().Contains(gomock.Any(), gomock.Any(), cache.TierAll).Return(false)
	invalidationService.Invalidate(context.Background(), []string{"https://example.com/a.png"})

	last, err := invalidationService.GetLastKnownInvalidation(context.Background())
	if err != nil || !reflect.DeepEqual(last.DoneInvalidations, []string{"https://example.com/a.png"}) {
		t.Errorf("Unexpected last invalidation %+v, %v", last, err)
	}
}
