package png

import "fmt"

// FormatError reports a malformed or unsupported container: a bad signature,
// an unrecognized header field, an unknown scanline filter type, or a
// structurally incomplete chunk sequence.
type FormatError string

func (e FormatError) Error() string { return "png: " + string(e) }

// SizeMismatchError reports a byte count that disagrees with the geometry
// declared in the header.
type SizeMismatchError struct {
	What string // which buffer was checked
	Want int
	Got  int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("png: %s is %d bytes, header implies %d", e.What, e.Got, e.Want)
}
