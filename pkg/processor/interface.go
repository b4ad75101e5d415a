package processor

import (
	"github.com/thebartekbanach/webimage/pkg/codec"
	"github.com/thebartekbanach/webimage/pkg/operation"
)

type ParsedRequest struct {
	// Signature identifies the processed image and is used as its cache key.
	Signature         string
	SourceImageURL    string
	ProcessorEndpoint string
	ProcessingParams  map[string][]string
	// Transform is nil when the endpoint serves the source image unchanged.
	Transform operation.TransformFunc
}

type ProcessingService interface {
	ParseRequest(requestPath string) (ParsedRequest, error)
	// Encode renders the delivered image in the format the request asked for.
	Encode(request ParsedRequest, image *codec.Image, data []byte) (content []byte, contentType string, err error)
}
