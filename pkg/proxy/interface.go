package proxy

import (
	"context"
	"io"
)

type ProxyResponseWriter interface {
	// WriteOK writes the image, source names the tier or the network it came from.
	WriteOK(contentType, source string, reader io.ReadCloser)
	WriteError(code int, message string)
	WriteErrorWithFallback(code int, message string, fallbackImageReader io.ReadCloser)
}

type ProxyService interface {
	Handle(ctx context.Context, requestPath, callerOrigin string, responseWriter ProxyResponseWriter)
	// CacheKey returns the cache key a proxy request path is stored under.
	CacheKey(requestPath string) (string, error)
}
