package manager

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/ryanuber/go-glob"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/webimage/pkg/cache"
	"github.com/thebartekbanach/webimage/pkg/codec"
	"github.com/thebartekbanach/webimage/pkg/filefetcher"
	"github.com/thebartekbanach/webimage/pkg/imageerrors"
	"github.com/thebartekbanach/webimage/pkg/logging"
	"github.com/thebartekbanach/webimage/pkg/metrics"
	"github.com/thebartekbanach/webimage/pkg/operation"
	"github.com/thebartekbanach/webimage/pkg/workqueue"
)

const (
	DefaultTimeout      = 15 * time.Second
	DefaultAcceptHeader = "image/webp,image/*;q=0.8"
)

type Config struct {
	Cache   cache.ImageCache
	Fetcher filefetcher.Fetcher
	Decoder codec.Decoder
	// Queue runs operations, a nil queue runs each one on its own goroutine.
	Queue workqueue.Queue

	Timeout  time.Duration
	Username string
	Password string
	Headers  http.Header

	HeadersFilter   func(u *url.URL, header http.Header) http.Header
	CacheKeyFilter  func(u *url.URL) string
	SharedTransform operation.TransformFunc

	// AllowedDomains holds host globs, empty allows every host.
	AllowedDomains []string

	Activity  *NetworkActivity
	Blacklist *FailedURLs
	Logger    logrus.FieldLogger
	Metrics   *metrics.Metrics
}

type Request struct {
	URL     *url.URL
	Options operation.Options
	// CacheKey overrides the key derived from URL.
	CacheKey string

	Progress   operation.ProgressFunc
	Transform  operation.TransformFunc
	Completion operation.CompletionFunc
}

type Manager struct {
	config Config
	log    logrus.FieldLogger
}

func New(config Config) *Manager {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	if config.Headers == nil {
		config.Headers = http.Header{}
	}

	if config.Headers.Get("Accept") == "" {
		config.Headers.Set("Accept", DefaultAcceptHeader)
	}

	if config.Activity == nil {
		config.Activity = NewNetworkActivity(config.Metrics)
	}

	if config.Blacklist == nil {
		config.Blacklist = NewFailedURLs(config.Metrics)
	}

	if config.Logger == nil {
		config.Logger = logging.Discard()
	}

	return &Manager{
		config: config,
		log:    config.Logger.WithField("component", "manager"),
	}
}

func (m *Manager) Cache() cache.ImageCache {
	return m.config.Cache
}

func (m *Manager) Activity() *NetworkActivity {
	return m.config.Activity
}

func (m *Manager) Blacklist() *FailedURLs {
	return m.config.Blacklist
}

func (m *Manager) Timeout() time.Duration {
	return m.config.Timeout
}

func (m *Manager) CacheKey(u *url.URL) string {
	if u == nil {
		return ""
	}

	if m.config.CacheKeyFilter != nil {
		return m.config.CacheKeyFilter(u)
	}

	return u.String()
}

// Headers returns a copy of the configured headers passed through HeadersFilter.
func (m *Manager) Headers(u *url.URL) http.Header {
	header := m.config.Headers.Clone()
	if m.config.HeadersFilter != nil {
		header = m.config.HeadersFilter(u, header)
	}

	return header
}

func (m *Manager) IsAllowedDomain(u *url.URL) bool {
	if len(m.config.AllowedDomains) == 0 || u.Scheme == "file" || u.Scheme == "" {
		return true
	}

	for _, allowedDomain := range m.config.AllowedDomains {
		if glob.Glob(allowedDomain, u.Hostname()) {
			return true
		}
	}

	return false
}

// Request creates an operation and schedules it. The returned operation can
// be cancelled at any time.
func (m *Manager) Request(ctx context.Context, request Request) (*operation.Operation, error) {
	if request.URL == nil {
		return nil, imageerrors.InvalidInput(operation.ErrMissingURL.Error())
	}

	if !m.IsAllowedDomain(request.URL) {
		return nil, ErrDomainNotAllowed
	}

	key := request.CacheKey
	if key == "" {
		key = m.CacheKey(request.URL)
	}

	transform := request.Transform
	if transform == nil {
		transform = m.config.SharedTransform
	}

	o, err := operation.New(operation.Config{
		URL:      request.URL,
		CacheKey: key,
		Options:  request.Options,
		Request: filefetcher.Request{
			Header:   m.Headers(request.URL),
			Username: m.config.Username,
			Password: m.config.Password,
		},
		Timeout:    m.config.Timeout,
		Cache:      m.config.Cache,
		Fetcher:    m.config.Fetcher,
		Decoder:    m.config.Decoder,
		Progress:   request.Progress,
		Transform:  transform,
		Completion: request.Completion,
		Hooks: operation.Hooks{
			FetchStarted: func(options operation.Options) {
				m.config.Activity.Start(options.ShowNetworkActivity)
			},
			FetchFinished: func(options operation.Options, elapsed time.Duration) {
				m.config.Activity.Stop(options.ShowNetworkActivity, elapsed)
			},
			IsBlacklisted: m.config.Blacklist.Contains,
			Blacklist:     m.config.Blacklist.Add,
		},
		Logger:  m.config.Logger,
		Metrics: m.config.Metrics,
	})
	if err != nil {
		return nil, err
	}

	if m.config.Queue == nil {
		go o.Run(ctx)
	} else {
		m.config.Queue.Submit(ctx, o)
	}

	return o, nil
}

var (
	ErrDomainNotAllowed = errors.New("image source domain is not allowed")
)
