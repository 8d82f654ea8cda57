package png

import (
	"encoding/binary"
	"fmt"

	"github.com/jpfielding/pngs/pkg/cursor"
)

// ColorMode is the channel layout of a pixel, using the codes from the
// container's header chunk.
type ColorMode uint8

const (
	ModeGrayscale      ColorMode = 0
	ModeRGB            ColorMode = 2
	ModeIndexed        ColorMode = 3
	ModeGrayscaleAlpha ColorMode = 4
	ModeRGBA           ColorMode = 6
)

// BytesPerPixel returns the per-pixel byte width at 8-bit depth. Indexed
// pixels are one byte each (the palette index; no lookup is performed here).
func (m ColorMode) BytesPerPixel() int {
	switch m {
	case ModeGrayscale, ModeIndexed:
		return 1
	case ModeGrayscaleAlpha:
		return 2
	case ModeRGB:
		return 3
	case ModeRGBA:
		return 4
	}
	return 0
}

func (m ColorMode) String() string {
	switch m {
	case ModeGrayscale:
		return "grayscale"
	case ModeRGB:
		return "rgb"
	case ModeIndexed:
		return "indexed"
	case ModeGrayscaleAlpha:
		return "grayscale+alpha"
	case ModeRGBA:
		return "rgba"
	}
	return fmt.Sprintf("colormode(%d)", uint8(m))
}

// Interlace is the sub-image ordering mode declared in the header.
type Interlace uint8

const (
	InterlaceNone  Interlace = 0
	InterlaceAdam7 Interlace = 1
)

func (i Interlace) String() string {
	switch i {
	case InterlaceNone:
		return "none"
	case InterlaceAdam7:
		return "adam7"
	}
	return fmt.Sprintf("interlace(%d)", uint8(i))
}

// Header holds the image metadata from the first chunk of the container.
// It is created once per decode and never mutated afterwards.
type Header struct {
	Width       uint32
	Height      uint32
	BitDepth    uint8
	Mode        ColorMode
	Compression uint8
	Filter      uint8
	Interlace   Interlace
}

const headerSize = 13

// parseHeader decodes and validates the 13-byte header chunk payload.
func parseHeader(payload []byte) (*Header, error) {
	if len(payload) != headerSize {
		return nil, FormatError(fmt.Sprintf("header chunk is %d bytes, want %d", len(payload), headerSize))
	}
	cur, err := cursor.New(payload, 0, binary.BigEndian)
	if err != nil {
		return nil, err
	}

	var h Header
	if h.Width, err = cur.Uint32(); err != nil {
		return nil, err
	}
	if h.Height, err = cur.Uint32(); err != nil {
		return nil, err
	}
	if h.BitDepth, err = cur.Uint8(); err != nil {
		return nil, err
	}
	mode, err := cur.Uint8()
	if err != nil {
		return nil, err
	}
	h.Mode = ColorMode(mode)
	if h.Compression, err = cur.Uint8(); err != nil {
		return nil, err
	}
	if h.Filter, err = cur.Uint8(); err != nil {
		return nil, err
	}
	interlace, err := cur.Uint8()
	if err != nil {
		return nil, err
	}
	h.Interlace = Interlace(interlace)

	if h.Width == 0 || h.Height == 0 {
		return nil, FormatError(fmt.Sprintf("invalid dimensions %dx%d", h.Width, h.Height))
	}
	if h.BitDepth != 8 {
		return nil, FormatError(fmt.Sprintf("unsupported bit depth %d", h.BitDepth))
	}
	if h.Mode.BytesPerPixel() == 0 {
		return nil, FormatError(fmt.Sprintf("unrecognized color mode %d", mode))
	}
	if h.Compression != 0 {
		return nil, FormatError(fmt.Sprintf("unsupported compression method %d", h.Compression))
	}
	if h.Filter != 0 {
		return nil, FormatError(fmt.Sprintf("unsupported filter method %d", h.Filter))
	}
	if h.Interlace != InterlaceNone && h.Interlace != InterlaceAdam7 {
		return nil, FormatError(fmt.Sprintf("unrecognized interlace mode %d", interlace))
	}
	return &h, nil
}
