package main

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/webimage/pkg/cache"
	memorycache "github.com/thebartekbanach/webimage/pkg/cache/memory"
	cacherepositories "github.com/thebartekbanach/webimage/pkg/cache/repositories"
	dbconnections "github.com/thebartekbanach/webimage/pkg/cache/repositories/connections"
	"github.com/thebartekbanach/webimage/pkg/codec"
	"github.com/thebartekbanach/webimage/pkg/config"
	"github.com/thebartekbanach/webimage/pkg/filefetcher"
	"github.com/thebartekbanach/webimage/pkg/manager"
	"github.com/thebartekbanach/webimage/pkg/metrics"
	"github.com/thebartekbanach/webimage/pkg/operation"
	"github.com/thebartekbanach/webimage/pkg/processor"
	imagingprocessor "github.com/thebartekbanach/webimage/pkg/processor/imaging"
	"github.com/thebartekbanach/webimage/pkg/proxy"
	"github.com/thebartekbanach/webimage/pkg/workqueue"
)

const connectionTimeout = time.Minute

type application struct {
	config      *config.Config
	logger      *logrus.Logger
	registry    *prometheus.Registry
	cache       cache.ImageCache
	queue       *workqueue.BoundedQueue
	manager     *manager.Manager
	proxy       proxy.ProxyService
	invalidator cache.InvalidationService
}

var applicationSet = wire.NewSet(
	InitializeRegistry,
	InitializeMetrics,
	InitializeMetadataDB,
	InitializeDiskStorage,
	InitializeImageCache,
	InitializeFetcher,
	InitializeQueue,
	InitializeManager,
	InitializeProxy,
	InitializeInvalidationsRepository,
	InitializeInvalidator,
	newApplication,
)

func newApplication(
	cfg *config.Config,
	logger *logrus.Logger,
	registry *prometheus.Registry,
	imageCache cache.ImageCache,
	queue *workqueue.BoundedQueue,
	imageManager *manager.Manager,
	proxyService proxy.ProxyService,
	invalidator cache.InvalidationService,
) *application {
	return &application{
		config:      cfg,
		logger:      logger,
		registry:    registry,
		cache:       imageCache,
		queue:       queue,
		manager:     imageManager,
		proxy:       proxyService,
		invalidator: invalidator,
	}
}

func InitializeRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

func InitializeMetrics(registry *prometheus.Registry) *metrics.Metrics {
	return metrics.NewMetrics(registry)
}

// InitializeMetadataDB connects to mongo when the object backend is selected,
// other backends get a nil connection.
func InitializeMetadataDB(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*dbconnections.MongoConnection, func(), error) {
	if cfg.Cache.Backend != config.BackendObject {
		return nil, func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	mongoConnection, err := dbconnections.NewMongoConnection(connectCtx, dbconnections.MongoConfig{
		ConnectionString: cfg.Mongo.ConnectionString,
		Database:         cfg.Mongo.Database,
	})
	if err != nil {
		return nil, nil, err
	}

	disconnect := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()

		if err := mongoConnection.Disconnect(disconnectCtx); err != nil {
			logger.WithError(err).Warn("cannot disconnect from mongo")
		}
	}

	return mongoConnection, disconnect, nil
}

// InitializeDiskStorage opens the persistent tier selected by cache.backend.
// The none backend yields a nil storage and the cache keeps memory only.
func InitializeDiskStorage(ctx context.Context, cfg *config.Config, metadataDB *dbconnections.MongoConnection, logger *logrus.Logger) (cacherepositories.CachedImagesStorage, error) {
	limits := cacherepositories.StorageLimits{
		CapacityBytes: int64(cfg.Cache.DiskCapacity),
		MaxAge:        cfg.Cache.DiskMaxAge,
	}

	switch cfg.Cache.Backend {
	case config.BackendFile:
		return cacherepositories.NewFileImagesStorage(cacherepositories.FileStorageConfig{
			RootPath: cfg.Cache.Path,
			Limits:   limits,
		}, logger)

	case config.BackendObject:
		return initializeObjectStorage(ctx, cfg, metadataDB, limits, logger)
	}

	return nil, nil
}

func initializeObjectStorage(
	ctx context.Context,
	cfg *config.Config,
	metadataDB *dbconnections.MongoConnection,
	limits cacherepositories.StorageLimits,
	logger *logrus.Logger,
) (cacherepositories.CachedImagesStorage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	minioConnection, err := dbconnections.NewMinioConnection(connectCtx, dbconnections.MinioConfig{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		Location:  cfg.Minio.Location,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return cacherepositories.NewCachedImagesStorage(
		minioConnection,
		cacherepositories.NewCachedImagesRepository(metadataDB),
		cacherepositories.ObjectStorageConfig{Limits: limits},
		logger,
	), nil
}

// InitializeInvalidationsRepository persists invalidation reports in mongo,
// without a metadata database reports are kept in memory.
func InitializeInvalidationsRepository(metadataDB *dbconnections.MongoConnection) cacherepositories.InvalidationsRepository {
	if metadataDB == nil {
		return nil
	}

	return cacherepositories.NewInvalidationsRepository(metadataDB)
}

func InitializeImageCache(cfg *config.Config, disk cacherepositories.CachedImagesStorage, logger *logrus.Logger, m *metrics.Metrics) cache.ImageCache {
	return cache.NewTieredCache(cache.Config{
		Memory: memorycache.Config{
			CostLimit:  int64(cfg.Cache.MemoryCostLimit),
			CountLimit: cfg.Cache.MemoryCountLimit,
			AgeLimit:   cfg.Cache.MemoryAgeLimit,
		},
		AllowAnimatedImage: cfg.Cache.AllowAnimatedImage,
		Policy:             cache.PolicyByName(cfg.Cache.EncodingPolicy, cfg.Cache.JPEGQuality),
	}, disk, codec.NewStdDecoder(), logger, m)
}

func InitializeFetcher(cfg *config.Config) filefetcher.Fetcher {
	return filefetcher.NewSchemeFetcher(
		filefetcher.NewHTTPFetcher(filefetcher.HTTPFetcherConfig{
			RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
			Burst:             cfg.Fetch.Burst,
		}),
		filefetcher.NewFileFetcher(),
	)
}

func InitializeQueue(cfg *config.Config) *workqueue.BoundedQueue {
	return workqueue.NewBoundedQueue(cfg.Fetch.MaxConcurrent)
}

func InitializeManager(
	cfg *config.Config,
	imageCache cache.ImageCache,
	fetcher filefetcher.Fetcher,
	queue *workqueue.BoundedQueue,
	logger *logrus.Logger,
	m *metrics.Metrics,
) *manager.Manager {
	headers := http.Header{}
	for name, value := range cfg.Fetch.Headers {
		headers.Set(name, value)
	}

	return manager.New(manager.Config{
		Cache:          imageCache,
		Fetcher:        fetcher,
		Decoder:        codec.NewStdDecoder(),
		Queue:          queue,
		Timeout:        cfg.Fetch.Timeout,
		Username:       cfg.Fetch.Username,
		Password:       cfg.Fetch.Password,
		Headers:        headers,
		AllowedDomains: cfg.Proxy.AllowedDomains,
		Logger:         logger,
		Metrics:        m,
	})
}

// defaultOptions are applied to every image requested through the server.
func defaultOptions(cfg *config.Config) operation.Options {
	return operation.Options{
		IgnoreFailedURL:          cfg.Fetch.FailedURLBlacklist,
		AllowInvalidCertificates: cfg.Fetch.AllowInvalidCertificates,
		IgnoreAnimatedImage:      !cfg.Cache.AllowAnimatedImage,
		ShowNetworkActivity:      true,
	}
}

func InitializeProxy(cfg *config.Config, imageManager *manager.Manager, logger *logrus.Logger) proxy.ProxyService {
	return proxy.NewProxyService(proxy.ProxyServiceConfig{
		Processors: map[string]processor.ProcessingService{
			"imaging": imagingprocessor.NewProcessor(imagingprocessor.Config{JPEGQuality: cfg.Cache.JPEGQuality}),
		},
		AllowedOrigins: cfg.Proxy.AllowedOrigins,
		Options:        defaultOptions(cfg),
	}, imageManager, logger)
}

// InitializeInvalidator accepts both proxy request paths and plain source urls.
// A source url also removes every processed variant made from it.
func InitializeInvalidator(
	imageCache cache.ImageCache,
	proxyService proxy.ProxyService,
	imageManager *manager.Manager,
	repository cacherepositories.InvalidationsRepository,
) cache.InvalidationService {
	return cache.NewInvalidationService(imageCache, repository, func(u *url.URL) string {
		if u.IsAbs() {
			return imageManager.CacheKey(u)
		}

		key, err := proxyService.CacheKey(u.RequestURI())
		if err != nil {
			return u.String()
		}

		return key
	})
}
