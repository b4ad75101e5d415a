package filefetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/thebartekbanach/webimage/pkg/imageerrors"
	testutils "github.com/thebartekbanach/webimage/test/utils"
)

type httpResponseBody struct {
	io.Reader
	closed bool
}

func (body *httpResponseBody) Close() error {
	body.closed = true
	return nil
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func fetchGetterFuncFactory(body *httpResponseBody, responseStatusCode int, err error, onGetterCall func(*http.Request)) httpGetFunc {
	return func(request *http.Request, _ bool) (*http.Response, error) {
		onGetterCall(request)

		if err != nil {
			return nil, err
		}

		return &http.Response{
			Body:          body,
			StatusCode:    responseStatusCode,
			Header:        http.Header{"Content-Type": []string{"image/png"}},
			ContentLength: -1,
		}, nil
	}
}

func testRequest(rawURL string) Request {
	u, _ := url.Parse(rawURL)
	return Request{URL: u}
}

func readAll(t *testing.T, stream Stream) []byte {
	var result []byte
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			return result
		}

		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}

		result = append(result, chunk...)
	}
}

func TestHTTPFetcher_ShouldStreamResponseBodyInChunks(t *testing.T) {
	data := bytes.Repeat([]byte{0x1, 0x2, 0x3}, 10)
	body := &httpResponseBody{Reader: bytes.NewReader(data)}
	getter := fetchGetterFuncFactory(body, 200, nil, func(*http.Request) {})

	fetcher := newHTTPFetcher(getter, HTTPFetcherConfig{ChunkSize: 4})
	stream, err := fetcher.Open(context.Background(), testRequest("http://example.com/image.png"))
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}

	first, _ := stream.Next()
	if len(first) != 4 {
		t.Errorf("Expected chunk of 4 bytes, got %d", len(first))
	}

	rest := readAll(t, stream)
	if !bytes.Equal(append(first, rest...), data) {
		t.Errorf("Expected streamed data to equal response body")
	}

	if stream.Response().ExpectedSize != -1 || stream.Response().MimeType != "image/png" {
		t.Errorf("Unexpected response: %+v", stream.Response())
	}

	if !body.closed {
		t.Errorf("Expected body to be closed after EOF")
	}
}

func TestHTTPFetcher_ShouldReturn404ErrorIf404IsReturnedByRequest(t *testing.T) {
	body := &httpResponseBody{Reader: bytes.NewReader(nil)}
	getter := fetchGetterFuncFactory(body, 404, nil, func(*http.Request) {})

	fetcher := newHTTPFetcher(getter, HTTPFetcherConfig{})
	_, err := fetcher.Open(context.Background(), testRequest("http://example.com/image.png"))

	if !errors.Is(err, ErrResponseStatus404) {
		t.Errorf("Expected fetch error to be %v, got %v", ErrResponseStatus404, err)
	}

	if !imageerrors.IsNetwork(err) {
		t.Errorf("Expected network error, got %v", err)
	}

	if !body.closed {
		t.Errorf("Expected body to be closed")
	}
}

func TestHTTPFetcher_ShouldReturnErrorIfResponseStatusIsNot2xx(t *testing.T) {
	getter := fetchGetterFuncFactory(&httpResponseBody{Reader: bytes.NewReader(nil)}, 500, nil, func(*http.Request) {})

	fetcher := newHTTPFetcher(getter, HTTPFetcherConfig{})
	_, err := fetcher.Open(context.Background(), testRequest("http://example.com/image.png"))

	if !errors.Is(err, ErrResponseStatusNotOK) {
		t.Errorf("Expected fetch error to be %v, got %v", ErrResponseStatusNotOK, err)
	}
}

func TestHTTPFetcher_ShouldReturnNetworkErrorReturnedByStreamRead(t *testing.T) {
	body := &httpResponseBody{Reader: &failingReader{io.ErrUnexpectedEOF}}
	getter := fetchGetterFuncFactory(body, 200, nil, func(*http.Request) {})

	fetcher := newHTTPFetcher(getter, HTTPFetcherConfig{})
	stream, _ := fetcher.Open(context.Background(), testRequest("http://example.com/image.png"))
	_, err := stream.Next()

	if !errors.Is(err, io.ErrUnexpectedEOF) || !imageerrors.IsNetwork(err) {
		t.Errorf("Expected network error wrapping %v, got %v", io.ErrUnexpectedEOF, err)
	}
}

func TestHTTPFetcher_ShouldReportContextErrorWhenReadFailsAfterDeadline(t *testing.T) {
	body := &httpResponseBody{Reader: &failingReader{io.ErrUnexpectedEOF}}
	getter := fetchGetterFuncFactory(body, 200, nil, func(*http.Request) {})

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()

	fetcher := newHTTPFetcher(getter, HTTPFetcherConfig{})
	stream, _ := fetcher.Open(context.Background(), testRequest("http://example.com/image.png"))
	stream.(*httpStream).ctx = ctx
	<-ctx.Done()
	_, err := stream.Next()

	if !imageerrors.IsTimeout(err) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestHTTPFetcher_ShouldSetHeadersCredentialsAndDisableTransportCache(t *testing.T) {
	var sent *http.Request
	getter := fetchGetterFuncFactory(&httpResponseBody{Reader: bytes.NewReader(nil)}, 200, nil, func(r *http.Request) { sent = r })

	request := testRequest("http://example.com/image.png")
	request.Header = http.Header{"Accept": []string{"image/webp"}}
	request.Username = "user"
	request.Password = "secret"

	fetcher := newHTTPFetcher(getter, HTTPFetcherConfig{})
	fetcher.Open(context.Background(), request)

	if sent.Header.Get("Accept") != "image/webp" {
		t.Errorf("Expected Accept header to be forwarded, got %q", sent.Header.Get("Accept"))
	}

	if username, password, ok := sent.BasicAuth(); !ok || username != "user" || password != "secret" {
		t.Errorf("Expected basic auth credentials to be set")
	}

	if sent.Header.Get("Cache-Control") != "no-cache" {
		t.Errorf("Expected transport cache to be disabled")
	}
}

func TestHTTPFetcher_ShouldAllowTransportCacheWhenRequested(t *testing.T) {
	var sent *http.Request
	getter := fetchGetterFuncFactory(&httpResponseBody{Reader: bytes.NewReader(nil)}, 200, nil, func(r *http.Request) { sent = r })

	request := testRequest("http://example.com/image.png")
	request.UseTransportCache = true

	fetcher := newHTTPFetcher(getter, HTTPFetcherConfig{})
	fetcher.Open(context.Background(), request)

	if sent.Header.Get("Cache-Control") != "" {
		t.Errorf("Expected no Cache-Control header, got %q", sent.Header.Get("Cache-Control"))
	}
}

func TestHTTPFetcher_CancelShouldStopStreamSynchronously(t *testing.T) {
	body := &httpResponseBody{Reader: bytes.NewReader(make([]byte, 1024))}
	getter := fetchGetterFuncFactory(body, 200, nil, func(*http.Request) {})

	fetcher := newHTTPFetcher(getter, HTTPFetcherConfig{ChunkSize: 16})
	stream, _ := fetcher.Open(context.Background(), testRequest("http://example.com/image.png"))
	stream.Next()
	stream.Cancel()

	if _, err := stream.Next(); err != ErrStreamCancelled {
		t.Errorf("Expected %v after cancel, got %v", ErrStreamCancelled, err)
	}

	if !body.closed {
		t.Errorf("Expected body to be closed on cancel")
	}
}

func TestHTTPFetcher_ShouldFetchFromRealServer(t *testing.T) {
	data := bytes.Repeat([]byte("image"), 1000)
	server := testutils.NewTestHttpServer()
	server.ServeBytes("/image.png", "image/png", data)
	server.Start(t)

	fetcher := NewHTTPFetcher(HTTPFetcherConfig{})
	stream, err := fetcher.Open(context.Background(), testRequest(server.URL("/image.png")))
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}

	if stream.Response().ExpectedSize != int64(len(data)) {
		t.Errorf("Expected size %d, got %d", len(data), stream.Response().ExpectedSize)
	}

	if !bytes.Equal(readAll(t, stream), data) {
		t.Errorf("Expected fetched data to equal served data")
	}
}

func TestHTTPFetcher_ShouldReportTimeoutWhenDeadlineExpires(t *testing.T) {
	server := testutils.NewTestHttpServer()
	server.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	server.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	fetcher := NewHTTPFetcher(HTTPFetcherConfig{})
	_, err := fetcher.Open(ctx, testRequest(server.URL("/slow.png")))

	if !imageerrors.IsTimeout(err) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestHTTPFetcher_ShouldLimitRequestsPerHost(t *testing.T) {
	getter := fetchGetterFuncFactory(&httpResponseBody{Reader: bytes.NewReader(nil)}, 200, nil, func(*http.Request) {})
	fetcher := newHTTPFetcher(getter, HTTPFetcherConfig{RequestsPerSecond: 0.1, Burst: 1})

	if _, err := fetcher.Open(context.Background(), testRequest("http://example.com/a.png")); err != nil {
		t.Fatalf("Expected first request to pass, got %v", err)
	}

	if _, err := fetcher.Open(context.Background(), testRequest("http://other.com/a.png")); err != nil {
		t.Fatalf("Expected request to other host to pass, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := fetcher.Open(ctx, testRequest("http://example.com/b.png")); err == nil {
		t.Errorf("Expected second request to the same host to be throttled")
	}
}
