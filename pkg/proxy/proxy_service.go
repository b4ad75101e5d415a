package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/ryanuber/go-glob"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/webimage/pkg/filefetcher"
	"github.com/thebartekbanach/webimage/pkg/imageerrors"
	"github.com/thebartekbanach/webimage/pkg/logging"
	"github.com/thebartekbanach/webimage/pkg/manager"
	"github.com/thebartekbanach/webimage/pkg/operation"
	"github.com/thebartekbanach/webimage/pkg/processor"
)

// ImageRequester starts image operations. *manager.Manager implements it.
type ImageRequester interface {
	Request(ctx context.Context, request manager.Request) (*operation.Operation, error)
	IsAllowedDomain(u *url.URL) bool
}

var _ ImageRequester = (*manager.Manager)(nil)

type ProxyServiceConfig struct {
	Processors     map[string]processor.ProcessingService
	AllowedOrigins []string

	// Options are applied to every operation started by the proxy.
	Options operation.Options
}

type proxyService struct {
	config    ProxyServiceConfig
	requester ImageRequester
	log       logrus.FieldLogger
}

var _ ProxyService = (*proxyService)(nil)

func NewProxyService(config ProxyServiceConfig, requester ImageRequester, logger logrus.FieldLogger) ProxyService {
	if logger == nil {
		logger = logging.Discard()
	}

	return &proxyService{
		config:    config,
		requester: requester,
		log:       logger.WithField("component", "proxy"),
	}
}

func (p *proxyService) Handle(ctx context.Context, rawRequestPath, callerOrigin string, responseWriter ProxyResponseWriter) {
	if !p.isAllowedOrigin(callerOrigin) {
		responseWriter.WriteError(403, "request origin not allowed")
		return
	}

	processorType, requestPath, err := p.parseRawRequestPath(rawRequestPath)
	if err != nil {
		responseWriter.WriteError(400, "bad request")
		return
	}

	processor, found := p.config.Processors[processorType]
	if !found {
		responseWriter.WriteError(400, "unknown processor")
		return
	}

	parsedRequest, err := processor.ParseRequest(requestPath)
	if err != nil {
		responseWriter.WriteError(400, "request parsing error")
		return
	}

	sourceURL, err := url.Parse(parsedRequest.SourceImageURL)
	if err != nil || !sourceURL.IsAbs() {
		responseWriter.WriteError(400, "invalid source image url")
		return
	}

	if !p.requester.IsAllowedDomain(sourceURL) {
		responseWriter.WriteError(403, "source image domain not allowed")
		return
	}

	results := make(chan operation.Result, 1)
	o, err := p.requester.Request(ctx, manager.Request{
		URL:       sourceURL,
		Options:   p.config.Options,
		CacheKey:  processorType + parsedRequest.Signature,
		Transform: parsedRequest.Transform,
		Completion: func(result operation.Result) {
			if result.Stage.IsTerminal() {
				results <- result
			}
		},
	})
	if errors.Is(err, manager.ErrDomainNotAllowed) {
		responseWriter.WriteError(403, "source image domain not allowed")
		return
	}
	if err != nil {
		p.log.WithError(err).WithField("request", rawRequestPath).Error("cannot start image operation")
		responseWriter.WriteError(500, "image operation error")
		return
	}

	var result operation.Result
	select {
	case result = <-results:
	case <-ctx.Done():
		o.Cancel()
		result = <-results
	}

	switch result.Stage {
	case operation.StageFinished:
		p.writeImage(responseWriter, processor, parsedRequest, result)

	case operation.StageFailed:
		code, message := errorResponse(result.Err)
		if code == 500 {
			p.log.WithError(result.Err).WithField("request", rawRequestPath).Error("image operation failed")
		}
		responseWriter.WriteError(code, message)

	default:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			responseWriter.WriteError(504, "request timed out")
			return
		}
		responseWriter.WriteError(503, "request cancelled")
	}
}

func (p *proxyService) CacheKey(rawRequestPath string) (string, error) {
	processorType, requestPath, err := p.parseRawRequestPath(rawRequestPath)
	if err != nil {
		return "", err
	}

	processor, found := p.config.Processors[processorType]
	if !found {
		return "", fmt.Errorf("unknown processor %q", processorType)
	}

	parsedRequest, err := processor.ParseRequest(requestPath)
	if err != nil {
		return "", err
	}

	return processorType + parsedRequest.Signature, nil
}

func (p *proxyService) writeImage(responseWriter ProxyResponseWriter, proc processor.ProcessingService, request processor.ParsedRequest, result operation.Result) {
	content, contentType, err := proc.Encode(request, result.Image, result.Data)
	if err == nil {
		responseWriter.WriteOK(contentType, result.From.String(), io.NopCloser(bytes.NewReader(content)))
		return
	}

	p.log.WithError(err).WithField("signature", request.Signature).Error("cannot encode image")
	if len(result.Data) > 0 {
		responseWriter.WriteErrorWithFallback(500, "image encoding error", io.NopCloser(bytes.NewReader(result.Data)))
		return
	}

	responseWriter.WriteError(500, "image encoding error")
}

func errorResponse(err error) (int, string) {
	switch {
	case imageerrors.IsPreviouslyFailed(err):
		return 404, "image failed recently"
	case imageerrors.IsTimeout(err):
		return 504, "image fetch timed out"
	case errors.Is(err, filefetcher.ErrResponseStatus404):
		return 404, "image not found"
	case imageerrors.IsDecode(err):
		return 415, "unsupported image"
	case imageerrors.IsNetwork(err):
		return 502, "image fetch failed"
	case imageerrors.IsInvalidInput(err):
		return 400, "invalid image request"
	}

	return 500, "image operation error"
}

func (p *proxyService) parseRawRequestPath(rawRequestPath string) (processorType string, requestPath string, err error) {
	url, err := url.Parse(rawRequestPath)
	if err != nil {
		return
	}

	pathSegments := strings.SplitN(url.Path, "/", 3)
	if len(pathSegments) != 3 || pathSegments[0] != "" {
		err = errors.New("parsed path consists of more or less that 2 fragments")
		return
	}

	processorType = pathSegments[1]
	requestPath = fmt.Sprintf("/%s?%s", pathSegments[2], url.RawQuery)
	return
}

func (p *proxyService) isAllowedOrigin(origin string) bool {
	if len(p.config.AllowedOrigins) == 0 {
		return true
	}

	for _, allowedOrigin := range p.config.AllowedOrigins {
		if glob.Glob(allowedOrigin, origin) {
			return true
		}
	}

	return false
}
