// Package slot binds a reusable display target to at most one image request
// at a time. Every request captures a sentinel and its results are delivered
// only while that sentinel is still the live one.
package slot

import (
	"context"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/webimage/pkg/cache"
	"github.com/thebartekbanach/webimage/pkg/codec"
	"github.com/thebartekbanach/webimage/pkg/logging"
	"github.com/thebartekbanach/webimage/pkg/manager"
	"github.com/thebartekbanach/webimage/pkg/operation"
)

// Requester starts operations. *manager.Manager implements it.
type Requester interface {
	Request(ctx context.Context, request manager.Request) (*operation.Operation, error)
	CacheKey(u *url.URL) string
	Cache() cache.ImageCache
}

var _ Requester = (*manager.Manager)(nil)

// Target receives placeholders and delivered images.
type Target interface {
	SetImage(image *codec.Image)
}

type TargetFunc func(image *codec.Image)

func (f TargetFunc) SetImage(image *codec.Image) {
	f(image)
}

type Request struct {
	URL         *url.URL
	Options     operation.Options
	Placeholder *codec.Image

	Progress   operation.ProgressFunc
	Transform  operation.TransformFunc
	Completion operation.CompletionFunc
}

// Controller serializes requests of one slot. Callbacks are invoked while the
// controller lock is held and must not call back into the same controller.
type Controller struct {
	lock      sync.Mutex
	requester Requester
	target    Target
	log       logrus.FieldLogger

	sentinel  int64
	url       *url.URL
	operation *operation.Operation
}

// NewController creates a controller, target may be nil.
func NewController(requester Requester, target Target, logger logrus.FieldLogger) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}

	return &Controller{
		requester: requester,
		target:    target,
		log:       logger.WithField("component", "slot"),
	}
}

// BeginRequest supersedes the current request and starts a new one. A memory
// hit is delivered before BeginRequest returns.
func (c *Controller) BeginRequest(ctx context.Context, request Request) int64 {
	c.lock.Lock()
	stale := c.supersedeLocked(request.URL)
	sentinel := c.sentinel
	c.beginLocked(ctx, sentinel, request)
	c.lock.Unlock()

	cancelStale(stale)
	return sentinel
}

// Cancel supersedes the current request and clears the bound URL.
func (c *Controller) Cancel() int64 {
	return c.CancelWithNewURL(nil)
}

// CancelWithNewURL supersedes the current request and binds u without
// starting any work.
func (c *Controller) CancelWithNewURL(u *url.URL) int64 {
	c.lock.Lock()
	stale := c.supersedeLocked(u)
	sentinel := c.sentinel
	c.lock.Unlock()

	cancelStale(stale)
	return sentinel
}

func (c *Controller) Sentinel() int64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.sentinel
}

func (c *Controller) URL() *url.URL {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.url
}

// Operation returns the bound in-flight operation, nil when there is none.
func (c *Controller) Operation() *operation.Operation {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.operation
}

func (c *Controller) supersedeLocked(u *url.URL) *operation.Operation {
	stale := c.operation
	c.sentinel++
	c.url = u
	c.operation = nil
	return stale
}

// cancelStale runs outside the lock, cancelling an operation that never ran
// delivers synchronously.
func cancelStale(stale *operation.Operation) {
	if stale != nil {
		stale.Cancel()
	}
}

func (c *Controller) beginLocked(ctx context.Context, sentinel int64, request Request) {
	options := request.Options

	if request.URL == nil {
		c.setPlaceholderLocked(request)
		return
	}

	if result, found := c.fastLookupLocked(ctx, request); found {
		c.applyLocked(request, result)
		return
	}

	c.setPlaceholderLocked(request)

	o, err := c.requester.Request(ctx, manager.Request{
		URL:     request.URL,
		Options: options,
		Progress: func(received, expected int64) {
			c.deliverProgress(sentinel, request, received, expected)
		},
		Transform: request.Transform,
		Completion: func(result operation.Result) {
			c.deliver(sentinel, request, result)
		},
	})
	if err != nil {
		c.log.WithError(err).WithField("url", request.URL.Redacted()).Warn("cannot start image request")
		c.applyLocked(request, operation.Result{URL: request.URL, Stage: operation.StageFailed, Err: err})
		return
	}

	c.operation = o
}

func (c *Controller) fastLookupLocked(ctx context.Context, request Request) (operation.Result, bool) {
	options := request.Options
	if options.IgnoreCache || options.RefreshCache || options.UseTransportCache || options.IgnoreImageDecoding {
		return operation.Result{}, false
	}

	imageCache := c.requester.Cache()
	if imageCache == nil {
		return operation.Result{}, false
	}

	entry, _, found := imageCache.Get(ctx, c.requester.CacheKey(request.URL), cache.TierMemory)
	if !found || entry.Image == nil {
		return operation.Result{}, false
	}

	image := entry.Image
	if image.IsAnimated() && options.IgnoreAnimatedImage {
		image = codec.NewStillImage(image.First(), image.Format, image.Scale)
	}

	return operation.Result{
		Image: image,
		Data:  entry.Data,
		URL:   request.URL,
		From:  operation.FromMemoryFast,
		Stage: operation.StageFinished,
	}, true
}

func (c *Controller) deliver(sentinel int64, request Request, result operation.Result) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if sentinel != c.sentinel {
		return
	}

	if result.Stage.IsTerminal() {
		c.operation = nil
	}

	c.applyLocked(request, result)
}

func (c *Controller) deliverProgress(sentinel int64, request Request, received, expected int64) {
	if request.Progress == nil {
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if sentinel == c.sentinel {
		request.Progress(received, expected)
	}
}

func (c *Controller) applyLocked(request Request, result operation.Result) {
	if result.Image != nil && c.target != nil && !request.Options.AvoidSetImage {
		c.target.SetImage(result.Image)
	}

	if request.Completion != nil {
		request.Completion(result)
	}
}

func (c *Controller) setPlaceholderLocked(request Request) {
	if c.target != nil && !request.Options.IgnorePlaceholder {
		c.target.SetImage(request.Placeholder)
	}
}
