package codec

import (
	"bytes"
	"errors"
	"image"
	"image/gif"

	"github.com/disintegration/imaging"
	"github.com/thebartekbanach/webimage/pkg/imageerrors"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type Options struct {
	IgnoreAnimation bool
	Scale           float64
}

type Decoder interface {
	Decode(data []byte, opts Options) (*Image, error)
}

// ProgressiveDecoder is implemented by decoders able to render a prefix of the payload.
type ProgressiveDecoder interface {
	NewIncremental(scale float64) Incremental
}

// Incremental holds the progressive decode state of a single fetch.
type Incremental interface {
	// Update returns a partial image when prefix completes a new renderable scan.
	Update(prefix []byte) (*Image, bool)
}

type StdDecoder struct{}

var _ Decoder = (*StdDecoder)(nil)
var _ ProgressiveDecoder = (*StdDecoder)(nil)

func NewStdDecoder() *StdDecoder {
	return &StdDecoder{}
}

func (d *StdDecoder) Decode(data []byte, opts Options) (*Image, error) {
	if len(data) == 0 {
		return nil, imageerrors.Decode(ErrEmptyData)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, imageerrors.Decode(err)
	}

	if format == "gif" && !opts.IgnoreAnimation {
		return d.decodeAnimated(data, opts.Scale)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, imageerrors.Decode(err)
	}

	return NewStillImage(img, format, opts.Scale), nil
}

func (d *StdDecoder) NewIncremental(scale float64) Incremental {
	return &jpegScanDecoder{scale: scale}
}

func (d *StdDecoder) decodeAnimated(data []byte, scale float64) (*Image, error) {
	decoded, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, imageerrors.Decode(err)
	}

	if len(decoded.Image) == 1 {
		return NewStillImage(decoded.Image[0], "gif", scale), nil
	}

	bounds := image.Rect(0, 0, decoded.Config.Width, decoded.Config.Height)
	canvas := image.NewNRGBA(bounds)
	frames := make([]image.Image, 0, len(decoded.Image))
	alpha := false

	for i, frame := range decoded.Image {
		disposal := byte(0)
		if i < len(decoded.Disposal) {
			disposal = decoded.Disposal[i]
		}

		var previous *image.NRGBA
		if disposal == gif.DisposalPrevious {
			previous = image.NewNRGBA(bounds)
			draw.Copy(previous, image.Point{}, canvas, bounds, draw.Src, nil)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		snapshot := image.NewNRGBA(bounds)
		draw.Copy(snapshot, image.Point{}, canvas, bounds, draw.Src, nil)
		frames = append(frames, snapshot)
		alpha = alpha || hasAlpha(snapshot)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}

	if scale <= 0 {
		scale = 1
	}

	return &Image{
		Frames:    frames,
		Delays:    decoded.Delay,
		LoopCount: decoded.LoopCount,
		Format:    "gif",
		Scale:     scale,
		HasAlpha:  alpha,
	}, nil
}

var (
	ErrEmptyData = errors.New("image data is empty")
)
