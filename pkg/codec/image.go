package codec

import (
	"image"
	"path"
	"strconv"
	"strings"
)

// Image is a decoded still or animated image.
type Image struct {
	Frames []image.Image
	// Delays holds per-frame delays in 100ths of a second, animated images only.
	Delays    []int
	LoopCount int
	Format    string
	Scale     float64
	HasAlpha  bool
	Partial   bool
}

func NewStillImage(img image.Image, format string, scale float64) *Image {
	if scale <= 0 {
		scale = 1
	}

	return &Image{
		Frames:   []image.Image{img},
		Format:   format,
		Scale:    scale,
		HasAlpha: hasAlpha(img),
	}
}

func (img *Image) First() image.Image {
	if img == nil || len(img.Frames) == 0 {
		return nil
	}

	return img.Frames[0]
}

func (img *Image) IsAnimated() bool {
	return img != nil && len(img.Frames) > 1
}

func (img *Image) Bounds() image.Rectangle {
	first := img.First()
	if first == nil {
		return image.Rectangle{}
	}

	return first.Bounds()
}

// Cost estimates the in-memory footprint as 4 bytes per pixel of every frame.
func (img *Image) Cost() int64 {
	if img == nil {
		return 0
	}

	var cost int64
	for _, frame := range img.Frames {
		size := frame.Bounds().Size()
		cost += int64(size.X) * int64(size.Y) * 4
	}

	return cost
}

// ScaleFromPath reads the scale factor from an "@2x" style file name suffix.
func ScaleFromPath(p string) float64 {
	name := strings.TrimSuffix(path.Base(p), path.Ext(p))
	at := strings.LastIndex(name, "@")
	if at < 0 || !strings.HasSuffix(name, "x") {
		return 1
	}

	scale, err := strconv.ParseFloat(name[at+1:len(name)-1], 64)
	if err != nil || scale <= 0 {
		return 1
	}

	return scale
}

func hasAlpha(img image.Image) bool {
	if img == nil {
		return false
	}

	if opaque, ok := img.(interface{ Opaque() bool }); ok {
		return !opaque.Opaque()
	}

	return true
}
