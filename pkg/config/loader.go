package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const EnvPrefix = "WEBIMAGE"

// Load reads the optional YAML file at path and overlays WEBIMAGE_ prefixed
// environment variables, e.g. WEBIMAGE_CACHE_BACKEND.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdownTimeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.filePath", "")
	v.SetDefault("log.maxSize", 100)
	v.SetDefault("log.maxBackups", 10)
	v.SetDefault("log.compress", true)

	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.path", "./storage")
	v.SetDefault("cache.memoryCostLimit", "256MB")
	v.SetDefault("cache.memoryCountLimit", 0)
	v.SetDefault("cache.memoryAgeLimit", "0s")
	v.SetDefault("cache.diskCapacity", "1GB")
	v.SetDefault("cache.diskMaxAge", "168h")
	v.SetDefault("cache.trimInterval", "1m")
	v.SetDefault("cache.jpegQuality", 90)
	v.SetDefault("cache.encodingPolicy", "original")
	v.SetDefault("cache.allowAnimatedImage", true)

	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.maxConcurrent", 6)
	v.SetDefault("fetch.username", "")
	v.SetDefault("fetch.password", "")
	v.SetDefault("fetch.requestsPerSecond", 0)
	v.SetDefault("fetch.burst", 1)
	v.SetDefault("fetch.allowInvalidCertificates", false)
	v.SetDefault("fetch.failedURLBlacklist", true)

	v.SetDefault("proxy.allowedDomains", []string{"*"})
	v.SetDefault("proxy.allowedOrigins", []string{"*"})
	v.SetDefault("proxy.invalidateToken", "")
	v.SetDefault("proxy.requestTimeout", "1m")

	v.SetDefault("mongo.connectionString", "")
	v.SetDefault("mongo.database", "webimage")

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.accessKey", "")
	v.SetDefault("minio.secretKey", "")
	v.SetDefault("minio.location", "us-east-1")
	v.SetDefault("minio.bucket", "")
	v.SetDefault("minio.useSSL", false)
}

func applyDefaults(cfg *Config) {
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	cfg.Cache.EncodingPolicy = strings.ToLower(strings.TrimSpace(cfg.Cache.EncodingPolicy))
	cfg.Proxy.AllowedDomains = trimList(cfg.Proxy.AllowedDomains, "*")
	cfg.Proxy.AllowedOrigins = trimList(cfg.Proxy.AllowedOrigins, "*")

	if cfg.Fetch.Burst <= 0 {
		cfg.Fetch.Burst = 1
	}
}

func trimList(values []string, fallback string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return []string{fallback}
	}

	return result
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(ByteSize(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return ByteSize(0), nil
			}
			parsed, err := humanize.ParseBytes(v)
			if err != nil {
				return nil, fmt.Errorf("invalid byte size %q: %w", v, err)
			}
			return ByteSize(parsed), nil
		case int:
			return ByteSize(v), nil
		case int64:
			return ByteSize(v), nil
		case float64:
			return ByteSize(v), nil
		case ByteSize:
			return v, nil
		default:
			return nil, fmt.Errorf("unsupported byte size type: %T", v)
		}
	}
}
