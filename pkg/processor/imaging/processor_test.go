package imagingprocessor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/franela/goblin"
	"github.com/thebartekbanach/webimage/pkg/codec"
	"github.com/thebartekbanach/webimage/pkg/processor"
)

func testingImage(width, height int) *codec.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{255, 0, 0, 255})
	}
	for x := 0; x < width; x++ {
		for y := 1; y < height; y++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 0, 255, 255})
		}
	}
	return codec.NewStillImage(img, "png", 1)
}

func transformed(g *goblin.G, request processor.ParsedRequest, img *codec.Image) *codec.Image {
	g.Assert(request.Transform == nil).IsFalse()
	return request.Transform(img, nil)
}

func TestImagingProcessor(t *testing.T) {
	g := goblin.Goblin(t)

	g.Describe("Processor", func() {
		g.Describe("ParseRequest", func() {
			g.It("Should correctly destruct given request path into request information", func() {
				processor := NewProcessor(Config{})
				result, err := processor.ParseRequest("/crop?width=1&height=2&url=http://google.com/image.jpg")

				g.Assert(err).IsNil()
				g.Assert(result.ProcessorEndpoint).Equal("/crop")
				g.Assert(result.SourceImageURL).Equal("http://google.com/image.jpg")
				g.Assert(result.ProcessingParams).Equal(map[string][]string{
					"width":  {"1"},
					"height": {"2"},
					"url":    {"http://google.com/image.jpg"},
				})
			})

			g.It("Should generate the same signature regardless of param order", func() {
				processor := NewProcessor(Config{})
				firstResult, _ := processor.ParseRequest("/crop?width=1&height=2&url=http://google.com/image.jpg")
				secondResult, _ := processor.ParseRequest("/crop?width=1&url=http://google.com/image.jpg&height=2")

				g.Assert(firstResult.Signature).Equal(secondResult.Signature)
				g.Assert(firstResult.Signature).Equal("|/crop|http://google.com/image.jpg|height=2|url=http://google.com/image.jpg|width=1|")
			})

			g.It("Should return error if source image url is not found in request", func() {
				processor := NewProcessor(Config{})
				_, err := processor.ParseRequest("/crop?width=1&height=2")

				g.Assert(err).Equal(ErrURLParamNotIncluded)
			})

			g.It("Should return error if processor endpoint is not supported", func() {
				processor := NewProcessor(Config{})
				_, err := processor.ParseRequest("/unknown?url=http://google.com/image.jpg")

				g.Assert(err).Equal(ErrOperationNotSupported)
			})

			g.It("Should reject malformed or missing params", func() {
				processor := NewProcessor(Config{})
				paths := []string{
					"/resize?url=http://google.com/image.jpg",
					"/fit?width=10&url=http://google.com/image.jpg",
					"/crop?width=-1&height=2&url=http://google.com/image.jpg",
					"/blur?url=http://google.com/image.jpg",
					"/rotate?rotate=abc&url=http://google.com/image.jpg",
					"/original?type=webp&url=http://google.com/image.jpg",
					"/original?quality=101&url=http://google.com/image.jpg",
				}

				for _, path := range paths {
					_, err := processor.ParseRequest(path)
					g.Assert(errors.Is(err, ErrInvalidParam)).IsTrue(path)
				}
			})

			g.It("Should not transform original image", func() {
				processor := NewProcessor(Config{})
				result, err := processor.ParseRequest("/original?url=http://google.com/image.jpg")

				g.Assert(err).IsNil()
				g.Assert(result.Transform == nil).IsTrue()
			})
		})

		g.Describe("Transforms", func() {
			processor := NewProcessor(Config{})
			source := testingImage(40, 20)

			g.It("Should resize keeping aspect ratio when one dimension is missing", func() {
				request, _ := processor.ParseRequest("/resize?width=20&url=http://a/b.png")

				result := transformed(g, request, source)

				g.Assert(result.Bounds().Dx()).Equal(20)
				g.Assert(result.Bounds().Dy()).Equal(10)
			})

			g.It("Should fit, fill, thumbnail and crop into requested box", func() {
				cases := map[string]image.Point{
					"/fit?width=10&height=10&url=http://a/b.png":     {10, 5},
					"/fill?width=10&height=10&url=http://a/b.png":    {10, 10},
					"/thumbnail?width=8&height=6&url=http://a/b.png": {8, 6},
					"/crop?width=12&height=4&url=http://a/b.png":     {12, 4},
					"/rotate?rotate=90&url=http://a/b.png":           {20, 40},
					"/grayscale?url=http://a/b.png":                  {40, 20},
					"/blur?sigma=1.5&url=http://a/b.png":             {40, 20},
					"/sharpen?sigma=0.5&url=http://a/b.png":          {40, 20},
					"/rotate?rotate=180&url=http://a/b.png&type=png": {40, 20},
					"/resize?width=4&height=4&url=http://a/b.png":    {4, 4},
				}

				for path, size := range cases {
					request, err := processor.ParseRequest(path)
					g.Assert(err).IsNil(path)

					result := transformed(g, request, source)
					g.Assert(result.Bounds().Size()).Equal(size)
				}
			})

			g.It("Should flip vertically and flop horizontally", func() {
				flip, _ := processor.ParseRequest("/flip?url=http://a/b.png")
				flop, _ := processor.ParseRequest("/flop?url=http://a/b.png")

				flipped := transformed(g, flip, source).First()
				flopped := transformed(g, flop, source).First()

				r, _, _, _ := flipped.At(0, 19).RGBA()
				g.Assert(r > 0).IsTrue()
				r, _, _, _ = flopped.At(0, 0).RGBA()
				g.Assert(r > 0).IsTrue()
			})

			g.It("Should transform every frame of animated image", func() {
				animated := &codec.Image{
					Frames:    []image.Image{source.First(), source.First(), source.First()},
					Delays:    []int{5, 6, 7},
					LoopCount: 2,
					Format:    "gif",
					Scale:     2,
				}
				request, _ := processor.ParseRequest("/resize?width=10&url=http://a/b.gif")

				result := transformed(g, request, animated)

				g.Assert(len(result.Frames)).Equal(3)
				g.Assert(result.Delays).Equal([]int{5, 6, 7})
				g.Assert(result.LoopCount).Equal(2)
				g.Assert(result.Scale).Equal(2.0)
				g.Assert(result.Frames[2].Bounds().Dx()).Equal(10)
			})
		})

		g.Describe("Encode", func() {
			processor := NewProcessor(Config{})
			source := testingImage(8, 8)

			g.It("Should keep original bytes when no type is requested", func() {
				var original bytes.Buffer
				png.Encode(&original, source.First())
				request, _ := processor.ParseRequest("/original?url=http://a/b.png")

				content, contentType, err := processor.Encode(request, source, original.Bytes())

				g.Assert(err).IsNil()
				g.Assert(contentType).Equal("image/png")
				g.Assert(bytes.Equal(content, original.Bytes())).IsTrue()
			})

			g.It("Should encode requested type", func() {
				request, _ := processor.ParseRequest("/resize?width=4&type=jpeg&quality=50&url=http://a/b.png")

				content, contentType, err := processor.Encode(request, source, nil)
				_, decodeErr := jpeg.Decode(bytes.NewReader(content))

				g.Assert(err).IsNil()
				g.Assert(contentType).Equal("image/jpeg")
				g.Assert(decodeErr).IsNil()
			})

			g.It("Should encode animated image as animated gif", func() {
				animated := &codec.Image{Frames: []image.Image{source.First(), source.First()}, Delays: []int{1, 1}, Format: "gif", Scale: 1}
				request, _ := processor.ParseRequest("/original?type=gif&url=http://a/b.gif")

				content, contentType, err := processor.Encode(request, animated, nil)
				decoded, decodeErr := gif.DecodeAll(bytes.NewReader(content))

				g.Assert(err).IsNil()
				g.Assert(contentType).Equal("image/gif")
				g.Assert(decodeErr).IsNil()
				g.Assert(len(decoded.Image)).Equal(2)
			})

			g.It("Should fail when there is nothing to encode", func() {
				request, _ := processor.ParseRequest("/original?url=http://a/b.png")

				_, _, err := processor.Encode(request, nil, nil)

				g.Assert(err).Equal(ErrNothingToEncode)
			})
		})
	})
}
