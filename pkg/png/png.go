// Package png decodes 8-bit-per-channel PNG images into flat pixel buffers.
//
// The decoder is a pure transform over in-memory bytes: it performs no I/O
// of its own (DecodeFile is a thin convenience wrapper), holds no state
// between calls, and is safe for concurrent use on independent inputs.
//
// Deliberate simplifications, carried over from the system this package
// replaces: per-chunk CRCs and the zlib Adler-32 trailer are not verified;
// Adam7 interlacing is detected and rejected rather than decoded; indexed
// images yield raw palette indices with no palette lookup; bit depths other
// than 8 are rejected.
//
// Failures are typed so callers can report precisely: FormatError,
// *SizeMismatchError, *flate.DecompressionError and *cursor.BoundsError are
// all reachable through errors.As. Every failure is fatal to the call; the
// input is invalid or unsupported, never transiently broken.
package png

import (
	"fmt"
	"os"

	"github.com/jpfielding/pngs/pkg/compress/flate"
)

// Image is a decoded raster: a flat, row-major, top-to-bottom pixel buffer
// with the channel order of its color mode.
type Image struct {
	Width  uint32
	Height uint32
	Mode   ColorMode
	Pix    []byte // len == Width * Height * Mode.BytesPerPixel()
}

// Decode turns a complete PNG byte stream into an Image.
func Decode(data []byte) (*Image, error) {
	c, err := parseContainer(data)
	if err != nil {
		return nil, err
	}
	h := c.header
	if h.Interlace == InterlaceAdam7 {
		return nil, FormatError("interlaced images are not supported")
	}

	bpp := h.Mode.BytesPerPixel()
	width, height := int(h.Width), int(h.Height)

	filtered, err := flate.Zlib(c.data, height*(1+width*bpp))
	if err != nil {
		return nil, fmt.Errorf("inflating image data: %w", err)
	}

	pix, err := reconstruct(filtered, width, height, bpp)
	if err != nil {
		return nil, err
	}
	if want := width * height * bpp; len(pix) != want {
		return nil, &SizeMismatchError{What: "pixel buffer", Want: want, Got: len(pix)}
	}

	return &Image{
		Width:  h.Width,
		Height: h.Height,
		Mode:   h.Mode,
		Pix:    pix,
	}, nil
}

// DecodeFile reads and decodes a PNG file from disk.
func DecodeFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(data)
}

// Info summarizes a container without decoding pixel data.
type Info struct {
	Header         *Header
	Chunks         []ChunkInfo
	CompressedSize int // total bytes across all data chunks
}

// Inspect parses the container structure only: header, chunk inventory and
// compressed payload size. It is what the analyze tooling uses.
func Inspect(data []byte) (*Info, error) {
	c, err := parseContainer(data)
	if err != nil {
		return nil, err
	}
	return &Info{
		Header:         c.header,
		Chunks:         c.chunks,
		CompressedSize: len(c.data),
	}, nil
}
