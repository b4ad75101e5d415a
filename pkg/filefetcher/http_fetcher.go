package filefetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thebartekbanach/webimage/pkg/imageerrors"
	"golang.org/x/time/rate"
)

const defaultChunkSize = 32 * 1024

type HTTPFetcherConfig struct {
	// RequestsPerSecond limits requests per host, zero disables the limit.
	RequestsPerSecond float64
	Burst             int
	ChunkSize         int
}

type httpGetFunc func(request *http.Request, allowInvalidCertificates bool) (*http.Response, error)

type HTTPFetcher struct {
	getter    httpGetFunc
	limiter   *hostLimiter
	chunkSize int
}

var _ Fetcher = (*HTTPFetcher)(nil)

func newTransport(allowInvalidCertificates bool) *http.Transport {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	if allowInvalidCertificates {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return transport
}

func NewHTTPFetcher(config HTTPFetcherConfig) *HTTPFetcher {
	secure := &http.Client{Transport: newTransport(false)}
	insecure := &http.Client{Transport: newTransport(true)}

	getFunc := func(request *http.Request, allowInvalidCertificates bool) (*http.Response, error) {
		if allowInvalidCertificates {
			return insecure.Do(request)
		}

		return secure.Do(request)
	}

	return newHTTPFetcher(getFunc, config)
}

func newHTTPFetcher(getter httpGetFunc, config HTTPFetcherConfig) *HTTPFetcher {
	chunkSize := config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &HTTPFetcher{
		getter:    getter,
		limiter:   newHostLimiter(config.RequestsPerSecond, config.Burst),
		chunkSize: chunkSize,
	}
}

func (fetcher *HTTPFetcher) Open(ctx context.Context, request Request) (Stream, error) {
	if request.URL == nil {
		return nil, imageerrors.InvalidInput("image url is required")
	}
	rawURL := request.URL.Redacted()

	if err := fetcher.limiter.Wait(ctx, request.URL.Host); err != nil {
		return nil, imageerrors.FromFetch(err, rawURL)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	httpRequest, err := http.NewRequestWithContext(streamCtx, http.MethodGet, request.URL.String(), nil)
	if err != nil {
		cancel()
		return nil, imageerrors.InvalidInput(err.Error())
	}

	for key, values := range request.Header {
		for _, value := range values {
			httpRequest.Header.Add(key, value)
		}
	}

	if request.Username != "" || request.Password != "" {
		httpRequest.SetBasicAuth(request.Username, request.Password)
	}

	if !request.UseTransportCache {
		httpRequest.Header.Set("Cache-Control", "no-cache")
		httpRequest.Header.Set("Pragma", "no-cache")
	}

	response, err := fetcher.getter(httpRequest, request.AllowInvalidCertificates)
	if err != nil {
		cancel()
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, imageerrors.FromFetch(err, rawURL)
	}

	if response.StatusCode == http.StatusNotFound {
		err = ErrResponseStatus404
	} else if response.StatusCode < 200 || response.StatusCode > 299 {
		err = ErrResponseStatusNotOK
	}

	if err != nil {
		response.Body.Close()
		cancel()
		return nil, imageerrors.Network(err, rawURL)
	}

	return &httpStream{
		ctx:    streamCtx,
		cancel: cancel,
		body:   response.Body,
		buf:    make([]byte, fetcher.chunkSize),
		url:    rawURL,
		response: Response{
			StatusCode:   response.StatusCode,
			Header:       response.Header,
			ExpectedSize: response.ContentLength,
			MimeType:     response.Header.Get("Content-Type"),
		},
	}, nil
}

type httpStream struct {
	ctx      context.Context
	cancel   context.CancelFunc
	body     io.ReadCloser
	buf      []byte
	url      string
	response Response

	cancelled atomic.Bool
	closeOnce sync.Once
	eof       bool
}

func (s *httpStream) Response() Response {
	return s.response
}

func (s *httpStream) Next() ([]byte, error) {
	for {
		if s.cancelled.Load() {
			return nil, ErrStreamCancelled
		}

		if s.eof {
			s.close()
			return nil, io.EOF
		}

		n, err := s.body.Read(s.buf)
		if errors.Is(err, io.EOF) {
			s.eof = true
			err = nil
		}

		if err != nil {
			// Read the context state before close cancels it.
			cancelled := s.cancelled.Load()
			ctxErr := s.ctx.Err()
			s.close()
			if cancelled {
				return nil, ErrStreamCancelled
			}
			if ctxErr != nil {
				err = ctxErr
			}
			return nil, imageerrors.FromFetch(err, s.url)
		}

		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, s.buf[:n])
			return chunk, nil
		}
	}
}

func (s *httpStream) Cancel() {
	s.cancelled.Store(true)
	s.close()
}

func (s *httpStream) close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.body.Close()
	})
}

type hostLimiter struct {
	lock     sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newHostLimiter(requestsPerSecond float64, burst int) *hostLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}

	if burst <= 0 {
		burst = 1
	}

	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (l *hostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil {
		return nil
	}

	l.lock.Lock()
	limiter, found := l.limiters[host]
	if !found {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[host] = limiter
	}
	l.lock.Unlock()

	return limiter.Wait(ctx)
}

var (
	ErrResponseStatusNotOK = errors.New("response returned non-2xx status code")
	ErrResponseStatus404   = errors.New("response returned 404 status code")
	ErrStreamCancelled     = errors.New("stream cancelled")
)
