package operation

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/webimage/pkg/cache"
	"github.com/thebartekbanach/webimage/pkg/codec"
	"github.com/thebartekbanach/webimage/pkg/filefetcher"
	"github.com/thebartekbanach/webimage/pkg/imageerrors"
	"github.com/thebartekbanach/webimage/pkg/logging"
	"github.com/thebartekbanach/webimage/pkg/metrics"
)

const (
	progressiveBlurSigma = 8
	maxPreallocatedBytes = 16 << 20
)

// Hooks connect an operation to process wide state owned by its manager.
type Hooks struct {
	FetchStarted  func(options Options)
	FetchFinished func(options Options, elapsed time.Duration)
	IsBlacklisted func(u *url.URL) bool
	Blacklist     func(u *url.URL)
}

type Config struct {
	URL      *url.URL
	CacheKey string
	Options  Options
	// Request carries headers and credentials, its URL is replaced by URL.
	Request filefetcher.Request
	// Timeout bounds the network phase, zero means no limit.
	Timeout time.Duration

	Cache   cache.ImageCache
	Fetcher filefetcher.Fetcher
	Decoder codec.Decoder

	Progress   ProgressFunc
	Transform  TransformFunc
	Completion CompletionFunc

	Hooks   Hooks
	Logger  logrus.FieldLogger
	Metrics *metrics.Metrics
}

// Operation fetches a single image. It is run once through Run and delivers
// exactly one terminal result.
type Operation struct {
	ID uuid.UUID

	config Config
	log    logrus.FieldLogger

	state     atomic.Int32
	cancelled atomic.Bool
	received  atomic.Int64
	expected  atomic.Int64

	streamLock sync.Mutex
	stream     filefetcher.Stream

	finishOnce sync.Once
	done       chan struct{}
}

var errCancelled = errors.New("operation cancelled")

func New(config Config) (*Operation, error) {
	if config.URL == nil {
		return nil, imageerrors.InvalidInput(ErrMissingURL.Error())
	}

	if config.Fetcher == nil {
		return nil, ErrMissingFetcher
	}

	if config.Decoder == nil {
		return nil, ErrMissingDecoder
	}

	if err := config.Options.Validate(); err != nil {
		return nil, err
	}

	config.Options = config.Options.Normalized()
	if config.CacheKey == "" {
		config.CacheKey = config.URL.String()
	}

	if config.Logger == nil {
		config.Logger = logging.Discard()
	}

	id := uuid.New()
	o := &Operation{
		ID:     id,
		config: config,
		log:    config.Logger.WithFields(logging.RequestFields(id, config.URL, config.CacheKey)),
		done:   make(chan struct{}),
	}
	o.expected.Store(-1)

	return o, nil
}

func (o *Operation) URL() *url.URL {
	return o.config.URL
}

func (o *Operation) CacheKey() string {
	return o.config.CacheKey
}

func (o *Operation) Options() Options {
	return o.config.Options
}

func (o *Operation) State() State {
	return State(o.state.Load())
}

// Progress returns the received byte count and the expected size, -1 when unknown.
func (o *Operation) Progress() (received, expected int64) {
	return o.received.Load(), o.expected.Load()
}

// Done is closed after the terminal result was delivered.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

func (o *Operation) IsCancelled() bool {
	return o.cancelled.Load()
}

// Cancel stops the operation at its next check point and cancels the running
// download synchronously. An operation that did not start yet is finished
// right away.
func (o *Operation) Cancel() {
	if !o.cancelled.CompareAndSwap(false, true) {
		return
	}

	o.streamLock.Lock()
	stream := o.stream
	o.streamLock.Unlock()

	if stream != nil {
		stream.Cancel()
	}

	if o.state.CompareAndSwap(int32(StateCreated), int32(StateCancelled)) {
		o.deliverTerminal(Result{Stage: StageCancelled})
	}
}

// Run drives the operation to a terminal state. It is meant to be called once,
// subsequent calls return immediately.
func (o *Operation) Run(ctx context.Context) {
	if !o.state.CompareAndSwap(int32(StateCreated), int32(StateCacheLookup)) {
		return
	}

	if o.checkCancelled(ctx) {
		o.finishCancelled()
		return
	}

	if result, found := o.lookup(ctx); found {
		o.finishCompleted(result)
		return
	}

	if o.checkCancelled(ctx) {
		o.finishCancelled()
		return
	}

	options := o.config.Options
	if options.IgnoreFailedURL && o.config.Hooks.IsBlacklisted != nil && o.config.Hooks.IsBlacklisted(o.config.URL) {
		o.finishFailed(imageerrors.PreviouslyFailed(o.config.URL.Redacted()))
		return
	}

	data, err := o.fetch(ctx)
	if err != nil {
		o.handleError(err)
		return
	}

	image, err := o.decode(data)
	if err != nil {
		o.handleError(err)
		return
	}

	if o.checkCancelled(ctx) {
		o.finishCancelled()
		return
	}

	image, transformed := o.transform(image)
	if o.checkCancelled(ctx) {
		o.finishCancelled()
		return
	}

	o.store(ctx, image, data, transformed)

	if transformed {
		data = nil
	}

	o.finishCompleted(Result{Image: image, Data: data, From: FromRemote})
}

func (o *Operation) lookup(ctx context.Context) (Result, bool) {
	options := o.config.Options
	if o.config.Cache == nil || options.IgnoreCache || options.RefreshCache || options.UseTransportCache {
		return Result{}, false
	}

	key := o.config.CacheKey
	if entry, _, found := o.config.Cache.Get(ctx, key, cache.TierMemory); found && o.usable(entry) {
		return o.cachedResult(entry, FromMemory), true
	}

	if options.IgnoreDiskCache {
		return Result{}, false
	}

	var entry cache.Entry
	var found bool

	if options.IgnoreImageDecoding {
		data, dataFound := awaitData(ctx, o.config.Cache, key)
		entry, found = cache.Entry{Key: key, Data: data}, dataFound
	} else {
		select {
		case result := <-o.config.Cache.GetAsync(ctx, key, cache.TierDisk):
			entry, found = result.Entry, result.Found
		case <-ctx.Done():
		}
	}

	if !found || !o.usable(entry) {
		return Result{}, false
	}

	return o.cachedResult(entry, FromDisk), true
}

func awaitData(ctx context.Context, c cache.ImageCache, key string) ([]byte, bool) {
	type dataResult struct {
		data  []byte
		found bool
	}

	result := make(chan dataResult, 1)
	go func() {
		data, found := c.GetData(ctx, key)
		result <- dataResult{data, found}
	}()

	select {
	case r := <-result:
		return r.data, r.found
	case <-ctx.Done():
		return nil, false
	}
}

func (o *Operation) usable(entry cache.Entry) bool {
	if o.config.Options.IgnoreImageDecoding {
		return len(entry.Data) > 0
	}

	return entry.Image != nil
}

func (o *Operation) cachedResult(entry cache.Entry, from Provenance) Result {
	image := entry.Image
	if image.IsAnimated() && o.config.Options.IgnoreAnimatedImage {
		image = codec.NewStillImage(image.First(), image.Format, image.Scale)
	}

	return Result{Image: image, Data: entry.Data, From: from}
}

func (o *Operation) fetch(ctx context.Context) ([]byte, error) {
	options := o.config.Options
	o.setState(StateFetching)

	if o.config.Hooks.FetchStarted != nil {
		o.config.Hooks.FetchStarted(options)
	}
	started := time.Now()
	defer func() {
		if o.config.Hooks.FetchFinished != nil {
			o.config.Hooks.FetchFinished(options, time.Since(started))
		}
	}()

	fetchCtx := ctx
	if o.config.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		defer cancel()
	}

	request := o.config.Request
	request.URL = o.config.URL
	request.AllowInvalidCertificates = request.AllowInvalidCertificates || options.AllowInvalidCertificates
	request.UseTransportCache = request.UseTransportCache || options.UseTransportCache

	stream, err := o.config.Fetcher.Open(fetchCtx, request)
	if err != nil {
		return nil, o.classifyFetchError(ctx, fetchCtx, err)
	}

	o.streamLock.Lock()
	o.stream = stream
	o.streamLock.Unlock()

	if o.IsCancelled() {
		stream.Cancel()
		return nil, errCancelled
	}

	stop := context.AfterFunc(fetchCtx, stream.Cancel)
	defer stop()

	expected := stream.Response().ExpectedSize
	o.expected.Store(expected)

	var incremental codec.Incremental
	if options.Progressive {
		if progressive, ok := o.config.Decoder.(codec.ProgressiveDecoder); ok {
			incremental = progressive.NewIncremental(codec.ScaleFromPath(o.config.URL.Path))
		}
	}

	var buffer bytes.Buffer
	if expected > 0 && expected <= maxPreallocatedBytes {
		buffer.Grow(int(expected))
	}

	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, o.classifyFetchError(ctx, fetchCtx, err)
		}

		buffer.Write(chunk)
		received := o.received.Add(int64(len(chunk)))

		if o.IsCancelled() {
			stream.Cancel()
			return nil, errCancelled
		}

		if o.config.Progress != nil {
			o.config.Progress(received, expected)
		}

		complete := expected > 0 && received >= expected
		if incremental != nil && !complete {
			o.deliverPartial(incremental, buffer.Bytes())
		}
	}

	o.log.WithField("size", buffer.Len()).Debug("image downloaded")
	return buffer.Bytes(), nil
}

func (o *Operation) deliverPartial(incremental codec.Incremental, prefix []byte) {
	partial, ok := incremental.Update(prefix)
	if !ok {
		return
	}

	if o.config.Options.ProgressiveBlur {
		blurred := codec.NewStillImage(imaging.Blur(partial.First(), progressiveBlurSigma), partial.Format, partial.Scale)
		blurred.Partial = true
		partial = blurred
	}

	o.deliver(Result{Image: partial, From: FromRemote, Stage: StageProgress})
}

func (o *Operation) classifyFetchError(ctx, fetchCtx context.Context, err error) error {
	if o.IsCancelled() {
		return errCancelled
	}

	if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		return imageerrors.Timeout(fetchCtx.Err(), o.config.URL.Redacted())
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return errCancelled
	}

	return imageerrors.FromFetch(err, o.config.URL.Redacted())
}

func (o *Operation) decode(data []byte) (*codec.Image, error) {
	options := o.config.Options
	if options.IgnoreImageDecoding {
		return nil, nil
	}

	o.setState(StateDecoding)
	image, err := o.config.Decoder.Decode(data, codec.Options{
		IgnoreAnimation: options.IgnoreAnimatedImage,
		Scale:           codec.ScaleFromPath(o.config.URL.Path),
	})
	if err != nil && !imageerrors.IsDecode(err) {
		err = imageerrors.Decode(err)
	}

	return image, err
}

func (o *Operation) transform(image *codec.Image) (*codec.Image, bool) {
	if image == nil || o.config.Transform == nil {
		return image, false
	}

	o.setState(StateTransforming)
	transformed := o.config.Transform(image, o.config.URL)
	if transformed == nil || transformed == image {
		return image, false
	}

	return transformed, true
}

func (o *Operation) store(ctx context.Context, image *codec.Image, data []byte, transformed bool) {
	options := o.config.Options
	if o.config.Cache == nil || options.IgnoreCache {
		return
	}

	tiers := cache.TierAll
	if options.IgnoreDiskCache || options.UseTransportCache {
		tiers = cache.TierMemory
	}

	if transformed {
		data = nil
	}

	entry := cache.NewEntry(o.config.CacheKey, image, data)
	entry.Source = o.config.URL.String()

	if err := o.config.Cache.Set(ctx, o.config.CacheKey, entry, tiers); err != nil {
		o.log.WithError(err).Warn("cannot cache image")
	}
}

func (o *Operation) handleError(err error) {
	if errors.Is(err, errCancelled) {
		o.finishCancelled()
		return
	}

	if o.config.Options.IgnoreFailedURL && imageerrors.Blacklistable(err) && o.config.Hooks.Blacklist != nil {
		o.config.Hooks.Blacklist(o.config.URL)
	}

	o.finishFailed(err)
}

func (o *Operation) checkCancelled(ctx context.Context) bool {
	return o.IsCancelled() || ctx.Err() != nil
}

func (o *Operation) finishCompleted(result Result) {
	o.setState(StateCompleted)
	result.Stage = StageFinished
	o.deliverTerminal(result)
}

func (o *Operation) finishCancelled() {
	o.setState(StateCancelled)
	o.deliverTerminal(Result{Stage: StageCancelled})
}

func (o *Operation) finishFailed(err error) {
	o.setState(StateFailed)
	o.log.WithError(err).Warn("image request failed")
	o.deliverTerminal(Result{Stage: StageFailed, Err: err})
}

func (o *Operation) deliverTerminal(result Result) {
	o.finishOnce.Do(func() {
		o.config.Metrics.RecordOperation(result.Stage.String(), result.From.String())
		o.deliver(result)
		close(o.done)
	})
}

func (o *Operation) deliver(result Result) {
	if o.config.Completion == nil {
		return
	}

	result.URL = o.config.URL
	o.config.Completion(result)
}

func (o *Operation) setState(state State) {
	for {
		current := o.state.Load()
		if State(current).IsTerminal() {
			return
		}

		if o.state.CompareAndSwap(current, int32(state)) {
			o.log.WithField("state", state.String()).Debug("operation state changed")
			return
		}
	}
}
