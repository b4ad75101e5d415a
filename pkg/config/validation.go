package config

import (
	"github.com/sirupsen/logrus"
)

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return newFieldError("log.level", err.Error())
	}

	if c.Server.Address == "" {
		return newFieldError("server.address", "is required")
	}

	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Path == "" {
			return newFieldError("cache.path", "is required for file backend")
		}
	case BackendObject:
		if err := c.validateObjectBackend(); err != nil {
			return err
		}
	case BackendNone:
	default:
		return newFieldError("cache.backend", "must be one of file, object, none")
	}

	if c.Cache.MemoryCostLimit < 0 || c.Cache.DiskCapacity < 0 {
		return newFieldError("cache", "limits must not be negative")
	}

	if c.Cache.JPEGQuality < 1 || c.Cache.JPEGQuality > 100 {
		return newFieldError("cache.jpegQuality", "must be between 1 and 100")
	}

	if c.Cache.EncodingPolicy != "original" && c.Cache.EncodingPolicy != "compact" {
		return newFieldError("cache.encodingPolicy", "must be one of original, compact")
	}

	if c.Fetch.Timeout <= 0 {
		return newFieldError("fetch.timeout", "must be positive")
	}

	if c.Fetch.MaxConcurrent < 0 {
		return newFieldError("fetch.maxConcurrent", "must not be negative")
	}

	if c.Fetch.RequestsPerSecond < 0 {
		return newFieldError("fetch.requestsPerSecond", "must not be negative")
	}

	return nil
}

func (c *Config) validateObjectBackend() error {
	if c.Minio.Endpoint == "" {
		return newFieldError("minio.endpoint", "is required for object backend")
	}

	if c.Minio.AccessKey == "" || c.Minio.SecretKey == "" {
		return newFieldError("minio.accessKey", "credentials are required for object backend")
	}

	if c.Minio.Bucket == "" {
		return newFieldError("minio.bucket", "is required for object backend")
	}

	if c.Mongo.ConnectionString == "" {
		return newFieldError("mongo.connectionString", "is required for object backend")
	}

	return nil
}
