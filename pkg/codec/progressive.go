package codec

import (
	"bytes"
	"image/jpeg"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOF2 = 0xC2
	markerSOS  = 0xDA
	markerTEM  = 0x01
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

// jpegScanDecoder renders progressive JPEG prefixes. Baseline images and other
// formats produce no partial results.
type jpegScanDecoder struct {
	scale   float64
	emitted int
}

func (d *jpegScanDecoder) Update(prefix []byte) (*Image, bool) {
	scans, end, progressive := completedScans(prefix)
	if !progressive || scans <= d.emitted {
		return nil, false
	}

	truncated := make([]byte, end, end+2)
	copy(truncated, prefix[:end])
	truncated = append(truncated, 0xFF, markerEOI)

	img, err := jpeg.Decode(bytes.NewReader(truncated))
	if err != nil {
		return nil, false
	}

	d.emitted = scans
	partial := NewStillImage(img, "jpeg", d.scale)
	partial.Partial = true
	return partial, true
}

// completedScans walks the JPEG markers of data and returns the number of
// entropy-coded scans that are fully present along with the offset right
// after the last complete one. The scan closed by EOI is not counted, the
// payload is complete at that point and only the final decode applies.
func completedScans(data []byte) (scans int, end int, progressive bool) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return 0, 0, false
	}

	pos := 2
	for pos+1 < len(data) {
		if data[pos] != 0xFF {
			return
		}

		marker := data[pos+1]
		switch {
		case marker == 0xFF:
			pos++
			continue
		case marker == markerEOI:
			return
		case marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7):
			pos += 2
			continue
		}

		if pos+4 > len(data) {
			return
		}

		length := int(data[pos+2])<<8 | int(data[pos+3])
		segmentEnd := pos + 2 + length
		if segmentEnd > len(data) {
			return
		}

		if marker == markerSOF2 {
			progressive = true
		}

		if marker != markerSOS {
			pos = segmentEnd
			continue
		}

		next, found := nextMarker(data, segmentEnd)
		if !found || data[next+1] == markerEOI {
			return
		}

		scans++
		end = next
		pos = next
	}

	return
}

func nextMarker(data []byte, from int) (int, bool) {
	for i := from; i+1 < len(data); i++ {
		if data[i] != 0xFF {
			continue
		}

		next := data[i+1]
		if next == 0x00 || next == 0xFF || (next >= markerRST0 && next <= markerRST7) {
			continue
		}

		return i, true
	}

	return 0, false
}
