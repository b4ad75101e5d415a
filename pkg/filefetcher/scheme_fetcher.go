package filefetcher

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/thebartekbanach/webimage/pkg/imageerrors"
)

// SchemeFetcher routes http(s) URLs to the network and file URLs or absolute
// paths to the local filesystem.
type SchemeFetcher struct {
	remote Fetcher
	local  Fetcher
}

var _ Fetcher = (*SchemeFetcher)(nil)

func NewSchemeFetcher(remote *HTTPFetcher, local *FileFetcher) Fetcher {
	return &SchemeFetcher{remote, local}
}

func (fetcher *SchemeFetcher) Open(ctx context.Context, request Request) (Stream, error) {
	if request.URL == nil {
		return nil, imageerrors.InvalidInput("image url is required")
	}

	switch strings.ToLower(request.URL.Scheme) {
	case "http", "https":
		return fetcher.remote.Open(ctx, request)
	case "file":
		return fetcher.local.Open(ctx, request)
	case "":
		if filepath.IsAbs(request.URL.Path) {
			return fetcher.local.Open(ctx, request)
		}
	}

	return nil, imageerrors.InvalidInput("unsupported image url scheme: " + request.URL.Scheme)
}
