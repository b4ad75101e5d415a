package operation

import (
	"errors"
	"net/url"

	"github.com/thebartekbanach/webimage/pkg/codec"
	"github.com/thebartekbanach/webimage/pkg/imageerrors"
)

// Stage tells whether a delivered result is partial or terminal.
type Stage int

const (
	StageProgress  Stage = -1
	StageCancelled Stage = 0
	StageFinished  Stage = 1
	StageFailed    Stage = 2
)

func (s Stage) String() string {
	switch s {
	case StageProgress:
		return "progress"
	case StageCancelled:
		return "cancelled"
	case StageFinished:
		return "finished"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

func (s Stage) IsTerminal() bool {
	return s != StageProgress
}

// Provenance tells where a delivered image came from.
type Provenance int

const (
	FromNone Provenance = iota
	FromMemoryFast
	FromMemory
	FromDisk
	FromRemote
)

func (p Provenance) String() string {
	switch p {
	case FromMemoryFast:
		return "memory_fast"
	case FromMemory:
		return "memory"
	case FromDisk:
		return "disk"
	case FromRemote:
		return "remote"
	}
	return "none"
}

type State int32

const (
	StateCreated State = iota
	StateCacheLookup
	StateFetching
	StateDecoding
	StateTransforming
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateCacheLookup:
		return "cache_lookup"
	case StateFetching:
		return "fetching"
	case StateDecoding:
		return "decoding"
	case StateTransforming:
		return "transforming"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s State) IsTerminal() bool {
	return s >= StateCompleted
}

type Options struct {
	// IgnoreDiskCache skips the disk tier for both lookup and write.
	IgnoreDiskCache bool
	// RefreshCache always fetches and overwrites every cache tier afterwards.
	RefreshCache bool
	// IgnoreCache neither reads nor writes the cache.
	IgnoreCache bool

	Progressive     bool
	ProgressiveBlur bool

	IgnorePlaceholder bool
	AvoidSetImage     bool

	// IgnoreFailedURL blacklists URLs that failed to download or decode.
	IgnoreFailedURL bool
	// UseTransportCache leaves caching to the transport, only the memory tier is written.
	UseTransportCache bool

	IgnoreImageDecoding      bool
	IgnoreAnimatedImage      bool
	AllowInvalidCertificates bool
	ShowNetworkActivity      bool
}

func (o Options) Validate() error {
	if o.IgnoreImageDecoding && (o.Progressive || o.ProgressiveBlur) {
		return imageerrors.InvalidInput(ErrProgressiveWithoutDecoding.Error())
	}

	if o.IgnoreCache && o.RefreshCache {
		return imageerrors.InvalidInput(ErrRefreshIgnoredCache.Error())
	}

	return nil
}

// Normalized returns options with implied flags set.
func (o Options) Normalized() Options {
	if o.ProgressiveBlur {
		o.Progressive = true
	}

	return o
}

// ProgressFunc receives the byte count so far. expected is -1 when unknown.
type ProgressFunc func(received, expected int64)

// TransformFunc must be pure. Returning nil keeps the image unchanged.
type TransformFunc func(image *codec.Image, u *url.URL) *codec.Image

type CompletionFunc func(result Result)

// Result is delivered for every partial image and exactly once in a
// terminal stage. Err is set only for StageFailed.
type Result struct {
	Image *codec.Image
	// Data holds the encoded bytes when they are available.
	Data  []byte
	URL   *url.URL
	From  Provenance
	Stage Stage
	Err   error
}

var (
	ErrProgressiveWithoutDecoding = errors.New("progressive display requires image decoding")
	ErrRefreshIgnoredCache        = errors.New("refresh cache conflicts with ignore cache")
	ErrMissingURL                 = errors.New("operation url is missing")
	ErrMissingFetcher             = errors.New("operation fetcher is missing")
	ErrMissingDecoder             = errors.New("operation decoder is missing")
)
