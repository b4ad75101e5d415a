package codec

import (
	"bytes"
	"testing"

	. "github.com/franela/goblin"
)

func syntheticJPEG(frameMarker byte) []byte {
	return []byte{
		0xFF, 0xD8,
		0xFF, frameMarker, 0x00, 0x04, 0xAA, 0xBB,
		0xFF, 0xDA, 0x00, 0x03, 0x01,
		0x12, 0x34, 0xFF, 0x00, 0x56,
		0xFF, 0xC4, 0x00, 0x02,
		0xFF, 0xDA, 0x00, 0x03, 0x01,
		0x78, 0x9A,
		0xFF, 0xD9,
	}
}

// progressiveJPEG is an 8x8 grayscale progressive JPEG with a DC scan and
// one AC scan. The second scan starts at offset 140.
func progressiveJPEG() []byte {
	data := []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x43, 0x00}
	data = append(data, bytes.Repeat([]byte{0x01}, 64)...)
	data = append(data,
		0xFF, 0xC2, 0x00, 0x0B, 0x08, 0x00, 0x08, 0x00, 0x08, 0x01, 0x01, 0x11, 0x00,
		0xFF, 0xC4, 0x00, 0x15, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		0xFF, 0xC4, 0x00, 0x14, 0x10, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x3F,
		0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x01, 0x3F, 0x00, 0x3F,
		0xFF, 0xD9,
	)
	return data
}

func TestCompletedScans(t *testing.T) {
	g := Goblin(t)

	g.Describe("completedScans", func() {
		g.It("Should not count scan that is still receiving data", func() {
			scans, end, progressive := completedScans(syntheticJPEG(0xC2)[:29])

			g.Assert(progressive).IsTrue()
			g.Assert(scans).Equal(1)
			g.Assert(end).Equal(18)
		})

		g.It("Should not count scan closed by end marker", func() {
			scans, end, _ := completedScans(syntheticJPEG(0xC2))

			g.Assert(scans).Equal(1)
			g.Assert(end).Equal(18)
		})

		g.It("Should skip stuffed bytes inside entropy coded data", func() {
			scans, _, _ := completedScans(syntheticJPEG(0xC2)[:17])

			g.Assert(scans).Equal(0)
		})

		g.It("Should report baseline jpeg as not progressive", func() {
			_, _, progressive := completedScans(syntheticJPEG(0xC0))

			g.Assert(progressive).IsFalse()
		})

		g.It("Should ignore data that is not a jpeg", func() {
			scans, _, progressive := completedScans([]byte("\x89PNG\r\n\x1a\n"))

			g.Assert(scans).Equal(0)
			g.Assert(progressive).IsFalse()
		})
	})

	g.Describe("jpegScanDecoder", func() {
		g.It("Should not produce partial images for baseline jpeg", func() {
			decoder := NewStdDecoder().NewIncremental(1)

			img, ok := decoder.Update(syntheticJPEG(0xC0))

			g.Assert(ok).IsFalse()
			g.Assert(img == nil).IsTrue()
		})

		g.It("Should render completed scan with given scale", func() {
			decoder := NewStdDecoder().NewIncremental(2)

			img, ok := decoder.Update(progressiveJPEG()[:142])

			g.Assert(ok).IsTrue()
			g.Assert(img.Partial).IsTrue()
			g.Assert(img.Scale).Equal(2.0)
			g.Assert(img.Bounds().Dx()).Equal(8)
		})

		g.It("Should not render again until another scan completes", func() {
			data := progressiveJPEG()
			decoder := NewStdDecoder().NewIncremental(1)
			decoder.Update(data[:142])

			_, midScan := decoder.Update(data[:151])
			_, complete := decoder.Update(data)

			g.Assert(midScan).IsFalse()
			g.Assert(complete).IsFalse()
		})
	})
}
