package filefetcher

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/thebartekbanach/webimage/pkg/imageerrors"
)

// FileFetcher reads file:// URLs and absolute paths from the local filesystem.
type FileFetcher struct {
	chunkSize int
}

var _ Fetcher = (*FileFetcher)(nil)

func NewFileFetcher() *FileFetcher {
	return &FileFetcher{defaultChunkSize}
}

func (fetcher *FileFetcher) Open(ctx context.Context, request Request) (Stream, error) {
	if request.URL == nil {
		return nil, imageerrors.InvalidInput("image url is required")
	}

	if err := ctx.Err(); err != nil {
		return nil, imageerrors.FromFetch(err, request.URL.String())
	}

	path := request.URL.Path
	if !filepath.IsAbs(path) {
		return nil, imageerrors.InvalidInput("file url must contain absolute path")
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrResponseStatus404
		}
		return nil, imageerrors.Network(err, request.URL.String())
	}

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		if err == nil {
			err = ErrResponseStatus404
		}
		return nil, imageerrors.Network(err, request.URL.String())
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &fileStream{
		ctx:  ctx,
		file: file,
		buf:  make([]byte, fetcher.chunkSize),
		url:  request.URL.String(),
		response: Response{
			StatusCode:   http.StatusOK,
			Header:       http.Header{"Content-Type": []string{mimeType}},
			ExpectedSize: info.Size(),
			MimeType:     mimeType,
		},
	}, nil
}

type fileStream struct {
	ctx      context.Context
	file     *os.File
	buf      []byte
	url      string
	response Response

	lock      sync.Mutex
	cancelled atomic.Bool
	closeOnce sync.Once
}

func (s *fileStream) Response() Response {
	return s.response
}

func (s *fileStream) Next() ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.cancelled.Load() {
		return nil, ErrStreamCancelled
	}

	if err := s.ctx.Err(); err != nil {
		s.close()
		return nil, imageerrors.FromFetch(err, s.url)
	}

	n, err := s.file.Read(s.buf)
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, s.buf[:n])
		return chunk, nil
	}

	s.close()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	return nil, imageerrors.Network(err, s.url)
}

func (s *fileStream) Cancel() {
	s.cancelled.Store(true)

	s.lock.Lock()
	defer s.lock.Unlock()
	s.close()
}

func (s *fileStream) close() {
	s.closeOnce.Do(func() {
		s.file.Close()
	})
}
