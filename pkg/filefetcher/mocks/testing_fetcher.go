package mock_filefetcher

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/thebartekbanach/webimage/pkg/filefetcher"
	"github.com/thebartekbanach/webimage/pkg/imageerrors"
)

// TestingStream replays prepared chunks. A gated stream hands out one chunk
// per Release call.
type TestingStream struct {
	response filefetcher.Response
	chunks   [][]byte
	err      error
	gate     chan struct{}

	lock      sync.Mutex
	position  int
	cancelled chan struct{}
	once      sync.Once
}

var _ filefetcher.Stream = (*TestingStream)(nil)

func NewTestingStream(chunks [][]byte, expectedSize int64) *TestingStream {
	return &TestingStream{
		response: filefetcher.Response{
			StatusCode:   http.StatusOK,
			Header:       http.Header{},
			ExpectedSize: expectedSize,
		},
		chunks:    chunks,
		cancelled: make(chan struct{}),
	}
}

// FailWith makes the stream return err instead of io.EOF after the last chunk.
func (s *TestingStream) FailWith(err error) *TestingStream {
	s.err = err
	return s
}

func (s *TestingStream) Gated() *TestingStream {
	s.gate = make(chan struct{}, len(s.chunks)+1)
	return s
}

func (s *TestingStream) Release() {
	s.gate <- struct{}{}
}

func (s *TestingStream) Response() filefetcher.Response {
	return s.response
}

func (s *TestingStream) Next() ([]byte, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-s.cancelled:
			return nil, filefetcher.ErrStreamCancelled
		}
	}

	select {
	case <-s.cancelled:
		return nil, filefetcher.ErrStreamCancelled
	default:
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.position >= len(s.chunks) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}

	chunk := s.chunks[s.position]
	s.position++
	return chunk, nil
}

func (s *TestingStream) Cancel() {
	s.once.Do(func() {
		close(s.cancelled)
	})
}

func (s *TestingStream) Cancelled() bool {
	select {
	case <-s.cancelled:
		return true
	default:
		return false
	}
}

// TestingFetcher serves prepared streams by URL and records every Open call.
type TestingFetcher struct {
	lock     sync.Mutex
	streams  map[string]func() (filefetcher.Stream, error)
	opens    map[string]int
	requests []filefetcher.Request
}

var _ filefetcher.Fetcher = (*TestingFetcher)(nil)

func NewTestingFetcher() *TestingFetcher {
	return &TestingFetcher{
		streams: make(map[string]func() (filefetcher.Stream, error)),
		opens:   make(map[string]int),
	}
}

func (f *TestingFetcher) Serve(url string, open func() (filefetcher.Stream, error)) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.streams[url] = open
}

func (f *TestingFetcher) ServeStream(url string, stream filefetcher.Stream) {
	f.Serve(url, func() (filefetcher.Stream, error) { return stream, nil })
}

func (f *TestingFetcher) Open(ctx context.Context, request filefetcher.Request) (filefetcher.Stream, error) {
	f.lock.Lock()
	url := request.URL.String()
	f.opens[url]++
	f.requests = append(f.requests, request)
	open, found := f.streams[url]
	f.lock.Unlock()

	if !found {
		return nil, imageerrors.Network(filefetcher.ErrResponseStatus404, url)
	}

	return open()
}

func (f *TestingFetcher) Opens(url string) int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.opens[url]
}

func (f *TestingFetcher) Requests() []filefetcher.Request {
	f.lock.Lock()
	defer f.lock.Unlock()

	return append([]filefetcher.Request(nil), f.requests...)
}
