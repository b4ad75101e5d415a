package imagingprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/thebartekbanach/webimage/pkg/cache"
	"github.com/thebartekbanach/webimage/pkg/codec"
	"github.com/thebartekbanach/webimage/pkg/operation"
	"github.com/thebartekbanach/webimage/pkg/processor"
)

type Config struct {
	// JPEGQuality is used when the request gives no quality param.
	JPEGQuality int
}

type Processor struct {
	config Config
}

var _ processor.ProcessingService = (*Processor)(nil)

func NewProcessor(config Config) *Processor {
	if config.JPEGQuality <= 0 || config.JPEGQuality > 100 {
		config.JPEGQuality = cache.DefaultJPEGQuality
	}

	return &Processor{config}
}

func (proc *Processor) ParseRequest(requestPath string) (processor.ParsedRequest, error) {
	info, err := url.Parse(requestPath)
	if err != nil {
		return processor.ParsedRequest{}, err
	}

	query := info.Query()
	if !query.Has("url") {
		return processor.ParsedRequest{}, ErrURLParamNotIncluded
	}

	if !proc.isOperationSupported(info.Path) {
		return processor.ParsedRequest{}, ErrOperationNotSupported
	}

	if err := proc.validateOutputParams(query); err != nil {
		return processor.ParsedRequest{}, err
	}

	transform, err := proc.buildTransform(info.Path, query)
	if err != nil {
		return processor.ParsedRequest{}, err
	}

	source := query.Get("url")

	return processor.ParsedRequest{
		Signature:         proc.generateSignature(info.Path, source, query),
		SourceImageURL:    source,
		ProcessorEndpoint: info.Path,
		ProcessingParams:  query,
		Transform:         transform,
	}, nil
}

func (proc *Processor) Encode(request processor.ParsedRequest, img *codec.Image, data []byte) ([]byte, string, error) {
	params := url.Values(request.ProcessingParams)
	quality := proc.config.JPEGQuality
	if params.Has("quality") {
		quality, _ = strconv.Atoi(params.Get("quality"))
	}

	format := params.Get("type")
	if format == "" || format == "auto" {
		if img == nil && len(data) == 0 {
			return nil, "", ErrNothingToEncode
		}

		return cache.OriginalBytesPolicy{JPEGQuality: quality}.Encode(cache.NewEntry(request.Signature, img, data))
	}

	if img == nil {
		return nil, "", ErrNothingToEncode
	}

	if format == "gif" && img.IsAnimated() {
		return cache.OriginalBytesPolicy{}.Encode(cache.NewEntry(request.Signature, img, nil))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img.First(), outputFormats[format], imaging.JPEGQuality(quality)); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), "image/" + format, nil
}

func (proc *Processor) buildTransform(endpoint string, query url.Values) (operation.TransformFunc, error) {
	width, err := intParam(query, "width")
	if err != nil {
		return nil, err
	}

	height, err := intParam(query, "height")
	if err != nil {
		return nil, err
	}

	switch endpoint {
	case "/original":
		return nil, nil

	case "/resize":
		if width == 0 && height == 0 {
			return nil, fmt.Errorf("%w: width or height is required", ErrInvalidParam)
		}
		return applyToFrames(func(frame image.Image) image.Image {
			return imaging.Resize(frame, width, height, imaging.Lanczos)
		}), nil

	case "/fit", "/fill", "/thumbnail", "/crop":
		if width == 0 || height == 0 {
			return nil, fmt.Errorf("%w: width and height are required", ErrInvalidParam)
		}
		return applyToFrames(sizedOperations[endpoint](width, height)), nil

	case "/blur", "/sharpen":
		sigma, err := floatParam(query, "sigma")
		if err != nil {
			return nil, err
		}
		if sigma <= 0 {
			return nil, fmt.Errorf("%w: sigma must be positive", ErrInvalidParam)
		}
		if endpoint == "/blur" {
			return applyToFrames(func(frame image.Image) image.Image { return imaging.Blur(frame, sigma) }), nil
		}
		return applyToFrames(func(frame image.Image) image.Image { return imaging.Sharpen(frame, sigma) }), nil

	case "/grayscale":
		return applyToFrames(func(frame image.Image) image.Image { return imaging.Grayscale(frame) }), nil

	case "/rotate":
		angle, err := floatParam(query, "rotate")
		if err != nil {
			return nil, err
		}
		return applyToFrames(rotation(angle)), nil

	case "/flip":
		return applyToFrames(func(frame image.Image) image.Image { return imaging.FlipV(frame) }), nil

	case "/flop":
		return applyToFrames(func(frame image.Image) image.Image { return imaging.FlipH(frame) }), nil
	}

	return nil, ErrOperationNotSupported
}

var sizedOperations = map[string]func(width, height int) func(image.Image) image.Image{
	"/fit": func(width, height int) func(image.Image) image.Image {
		return func(frame image.Image) image.Image { return imaging.Fit(frame, width, height, imaging.Lanczos) }
	},
	"/fill": func(width, height int) func(image.Image) image.Image {
		return func(frame image.Image) image.Image {
			return imaging.Fill(frame, width, height, imaging.Center, imaging.Lanczos)
		}
	},
	"/thumbnail": func(width, height int) func(image.Image) image.Image {
		return func(frame image.Image) image.Image { return imaging.Thumbnail(frame, width, height, imaging.Lanczos) }
	},
	"/crop": func(width, height int) func(image.Image) image.Image {
		return func(frame image.Image) image.Image { return imaging.CropCenter(frame, width, height) }
	},
}

func rotation(angle float64) func(image.Image) image.Image {
	switch angle {
	case 90:
		return func(frame image.Image) image.Image { return imaging.Rotate90(frame) }
	case 180:
		return func(frame image.Image) image.Image { return imaging.Rotate180(frame) }
	case 270:
		return func(frame image.Image) image.Image { return imaging.Rotate270(frame) }
	}

	return func(frame image.Image) image.Image { return imaging.Rotate(frame, angle, color.Transparent) }
}

// applyToFrames runs fn on every frame, animation timing is preserved.
func applyToFrames(fn func(image.Image) image.Image) operation.TransformFunc {
	return func(img *codec.Image, _ *url.URL) *codec.Image {
		if img.First() == nil {
			return nil
		}

		if !img.IsAnimated() {
			return codec.NewStillImage(fn(img.First()), img.Format, img.Scale)
		}

		frames := make([]image.Image, len(img.Frames))
		for i, frame := range img.Frames {
			frames[i] = fn(frame)
		}

		return &codec.Image{
			Frames:    frames,
			Delays:    img.Delays,
			LoopCount: img.LoopCount,
			Format:    img.Format,
			Scale:     img.Scale,
			HasAlpha:  img.HasAlpha,
		}
	}
}

func (proc *Processor) validateOutputParams(query url.Values) error {
	if format := query.Get("type"); format != "" && format != "auto" {
		if _, supported := outputFormats[format]; !supported {
			return fmt.Errorf("%w: unsupported type %q", ErrInvalidParam, format)
		}
	}

	if query.Has("quality") {
		quality, err := strconv.Atoi(query.Get("quality"))
		if err != nil || quality < 1 || quality > 100 {
			return fmt.Errorf("%w: quality must be between 1 and 100", ErrInvalidParam)
		}
	}

	return nil
}

func intParam(query url.Values, name string) (int, error) {
	if !query.Has(name) {
		return 0, nil
	}

	value, err := strconv.Atoi(query.Get(name))
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidParam, name)
	}

	return value, nil
}

func floatParam(query url.Values, name string) (float64, error) {
	if !query.Has(name) {
		return 0, nil
	}

	value, err := strconv.ParseFloat(query.Get(name), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidParam, name)
	}

	return value, nil
}

func (proc *Processor) generateSignature(path, source string, params map[string][]string) string {
	signature := "|" + path + "|" + source + "|"
	for _, key := range proc.getSortedMapKeys(params) {
		signature += key + "=" + strings.Join(params[key], ",") + "|"
	}

	return signature
}

func (proc *Processor) getSortedMapKeys(mapToSort map[string][]string) []string {
	keys := make([]string, 0, len(mapToSort))
	for key := range mapToSort {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}

func (proc *Processor) isOperationSupported(endpoint string) bool {
	for _, supportedEndpoint := range supportedEndpoints {
		if supportedEndpoint == endpoint {
			return true
		}
	}

	return false
}

var (
	ErrURLParamNotIncluded   = errors.New("url param not included")
	ErrOperationNotSupported = errors.New("operation not supported")
	ErrInvalidParam          = errors.New("invalid processing param")
	ErrNothingToEncode       = errors.New("no image to encode")
)

var outputFormats = map[string]imaging.Format{
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
	"gif":  imaging.GIF,
	"bmp":  imaging.BMP,
	"tiff": imaging.TIFF,
}

var supportedEndpoints = []string{
	"/original",
	"/resize",
	"/fit",
	"/fill",
	"/thumbnail",
	"/crop",
	"/blur",
	"/sharpen",
	"/grayscale",
	"/rotate",
	"/flip",
	"/flop",
}
