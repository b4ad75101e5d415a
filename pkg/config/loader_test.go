package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "webimage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, ByteSize(256*1000*1000), cfg.Cache.MemoryCostLimit)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 90, cfg.Cache.JPEGQuality)
	assert.Equal(t, "original", cfg.Cache.EncodingPolicy)
	assert.Equal(t, []string{"*"}, cfg.Proxy.AllowedDomains)
	assert.Equal(t, "webimage", cfg.Mongo.Database)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := writeTempConfig(t, `
server:
  address: ":9000"
cache:
  backend: none
  memoryCostLimit: 64MiB
  diskMaxAge: 2h
fetch:
  timeout: 3s
  headers:
    X-Client: webimage
proxy:
  allowedDomains:
    - "*.example.com"
    - " "
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
	assert.Equal(t, ByteSize(64*1024*1024), cfg.Cache.MemoryCostLimit)
	assert.Equal(t, 2*time.Hour, cfg.Cache.DiskMaxAge)
	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "webimage", cfg.Fetch.Headers["x-client"])
	assert.Equal(t, []string{"*.example.com"}, cfg.Proxy.AllowedDomains)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("WEBIMAGE_FETCH_TIMEOUT", "7s")
	t.Setenv("WEBIMAGE_CACHE_BACKEND", "NONE")
	t.Setenv("WEBIMAGE_PROXY_ALLOWEDDOMAINS", "a.com,b.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, BackendNone, cfg.Cache.Backend)
	assert.Equal(t, []string{"a.com", "b.com"}, cfg.Proxy.AllowedDomains)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		content string
		field   string
	}{
		"unknown backend": {"cache:\n  backend: redis\n", "cache.backend"},
		"jpeg quality":    {"cache:\n  jpegQuality: 101\n", "cache.jpegQuality"},
		"encoding policy": {"cache:\n  encodingPolicy: webp\n", "cache.encodingPolicy"},
		"log level":       {"log:\n  level: loud\n", "log.level"},
		"object backend":  {"cache:\n  backend: object\n", "minio.endpoint"},
		"zero timeout":    {"fetch:\n  timeout: 0s\n", "fetch.timeout"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.content))

			var fieldErr FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
}

func TestLoadRejectsMalformedByteSize(t *testing.T) {
	_, err := Load(writeTempConfig(t, "cache:\n  diskCapacity: lots\n"))

	assert.Error(t, err)
}

func TestLoadFailsForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}
