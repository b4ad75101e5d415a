package config

import "time"

// ByteSize accepts plain numbers or humanized values like "256MB".
type ByteSize int64

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Proxy  ProxyConfig  `mapstructure:"proxy"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Minio  MinioConfig  `mapstructure:"minio"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"filePath"`
	MaxSize    int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	Compress   bool   `mapstructure:"compress"`
}

const (
	BackendFile   = "file"
	BackendObject = "object"
	BackendNone   = "none"
)

type CacheConfig struct {
	// Backend selects the persistent tier: file, object or none.
	Backend            string        `mapstructure:"backend"`
	Path               string        `mapstructure:"path"`
	MemoryCostLimit    ByteSize      `mapstructure:"memoryCostLimit"`
	MemoryCountLimit   int           `mapstructure:"memoryCountLimit"`
	MemoryAgeLimit     time.Duration `mapstructure:"memoryAgeLimit"`
	DiskCapacity       ByteSize      `mapstructure:"diskCapacity"`
	DiskMaxAge         time.Duration `mapstructure:"diskMaxAge"`
	TrimInterval       time.Duration `mapstructure:"trimInterval"`
	JPEGQuality        int           `mapstructure:"jpegQuality"`
	// EncodingPolicy is original or compact.
	EncodingPolicy     string        `mapstructure:"encodingPolicy"`
	AllowAnimatedImage bool          `mapstructure:"allowAnimatedImage"`
}

type FetchConfig struct {
	Timeout                  time.Duration     `mapstructure:"timeout"`
	MaxConcurrent            int64             `mapstructure:"maxConcurrent"`
	Headers                  map[string]string `mapstructure:"headers"`
	Username                 string            `mapstructure:"username"`
	Password                 string            `mapstructure:"password"`
	RequestsPerSecond        float64           `mapstructure:"requestsPerSecond"`
	Burst                    int               `mapstructure:"burst"`
	AllowInvalidCertificates bool              `mapstructure:"allowInvalidCertificates"`
	FailedURLBlacklist       bool              `mapstructure:"failedURLBlacklist"`
}

type ProxyConfig struct {
	AllowedDomains  []string      `mapstructure:"allowedDomains"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	InvalidateToken string        `mapstructure:"invalidateToken"`
	RequestTimeout  time.Duration `mapstructure:"requestTimeout"`
}

type MongoConfig struct {
	ConnectionString string `mapstructure:"connectionString"`
	Database         string `mapstructure:"database"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Location  string `mapstructure:"location"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"useSSL"`
}
