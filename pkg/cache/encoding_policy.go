package cache

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"net/http"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

const DefaultJPEGQuality = 90

// EncodingPolicy chooses the bytes written to the persistent tier.
type EncodingPolicy interface {
	Encode(entry Entry) (data []byte, mimeType string, err error)
}

// OriginalBytesPolicy keeps the downloaded bytes whenever they are present.
// Otherwise animated images become GIF, images with alpha PNG and opaque
// images JPEG.
type OriginalBytesPolicy struct {
	JPEGQuality int
}

var _ EncodingPolicy = OriginalBytesPolicy{}

func (p OriginalBytesPolicy) Encode(entry Entry) ([]byte, string, error) {
	if len(entry.Data) > 0 {
		return entry.Data, http.DetectContentType(entry.Data), nil
	}

	if entry.Image == nil || entry.Image.First() == nil {
		return nil, "", ErrEmptyEntry
	}

	var buf bytes.Buffer
	switch {
	case entry.Image.IsAnimated():
		if err := gif.EncodeAll(&buf, p.toGIF(entry)); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/gif", nil

	case entry.Image.HasAlpha:
		if err := imaging.Encode(&buf, entry.Image.First(), imaging.PNG); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil

	default:
		if err := imaging.Encode(&buf, entry.Image.First(), imaging.JPEG, imaging.JPEGQuality(p.quality())); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

func (p OriginalBytesPolicy) quality() int {
	if p.JPEGQuality <= 0 || p.JPEGQuality > 100 {
		return DefaultJPEGQuality
	}

	return p.JPEGQuality
}

func (p OriginalBytesPolicy) toGIF(entry Entry) *gif.GIF {
	frames := entry.Image.Frames
	colors := color.Palette(palette.Plan9)
	if entry.Image.HasAlpha {
		colors = append(color.Palette{color.Transparent}, palette.Plan9[:255]...)
	}

	result := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		LoopCount: entry.Image.LoopCount,
	}

	for i, frame := range frames {
		paletted, ok := frame.(*image.Paletted)
		if !ok {
			paletted = image.NewPaletted(frame.Bounds(), colors)
			draw.FloydSteinberg.Draw(paletted, frame.Bounds(), frame, frame.Bounds().Min)
		}

		delay := 10
		if i < len(entry.Image.Delays) {
			delay = entry.Image.Delays[i]
		}

		result.Image = append(result.Image, paletted)
		result.Delay = append(result.Delay, delay)
	}

	return result
}

// CompactOpaquePolicy re-encodes opaque still images as JPEG to shrink the
// persistent tier. Animated images and images with alpha keep their original
// bytes.
type CompactOpaquePolicy struct {
	JPEGQuality int
}

var _ EncodingPolicy = CompactOpaquePolicy{}

func (p CompactOpaquePolicy) Encode(entry Entry) ([]byte, string, error) {
	original := OriginalBytesPolicy(p)

	if entry.Hint.Animated || entry.Hint.HasAlpha || entry.Image == nil || entry.Image.First() == nil {
		return original.Encode(entry)
	}

	if len(entry.Data) > 0 && http.DetectContentType(entry.Data) == "image/jpeg" {
		return entry.Data, "image/jpeg", nil
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, entry.Image.First(), imaging.JPEG, imaging.JPEGQuality(original.quality())); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), "image/jpeg", nil
}

const (
	PolicyOriginal = "original"
	PolicyCompact  = "compact"
)

// PolicyByName resolves a configured policy name, unknown names fall back to PolicyOriginal.
func PolicyByName(name string, jpegQuality int) EncodingPolicy {
	if name == PolicyCompact {
		return CompactOpaquePolicy{jpegQuality}
	}

	return OriginalBytesPolicy{jpegQuality}
}
