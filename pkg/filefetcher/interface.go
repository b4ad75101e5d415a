package filefetcher

import (
	"context"
	"net/http"
	"net/url"
)

type Request struct {
	URL      *url.URL
	Header   http.Header
	Username string
	Password string

	AllowInvalidCertificates bool
	// UseTransportCache lets the transport and intermediaries answer from their caches.
	UseTransportCache bool
}

type Response struct {
	StatusCode int
	Header     http.Header
	// ExpectedSize is -1 when the size is unknown.
	ExpectedSize int64
	MimeType     string
}

// Stream delivers the payload chunk by chunk. Next returns io.EOF after the
// last chunk. Cancel is synchronous: once it returns no further chunk is read.
type Stream interface {
	Response() Response
	Next() ([]byte, error)
	Cancel()
}

type Fetcher interface {
	Open(ctx context.Context, request Request) (Stream, error)
}
