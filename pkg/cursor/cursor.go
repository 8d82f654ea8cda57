// Package cursor provides a bounds-checked, positionable reader over an
// in-memory byte buffer with selectable endianness.
//
// A Cursor never copies the underlying buffer and never mutates it; slices
// returned by Bytes and Peek share storage with the input. Every read that
// would run past the end of the buffer fails with a *BoundsError and leaves
// the cursor position unchanged, so a failed read can be safely retried with
// a smaller width.
package cursor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BoundsError reports a read that would exceed the underlying buffer.
type BoundsError struct {
	Off  int // position the read started from
	Need int // bytes requested
	Size int // total buffer size
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("cursor: read of %d bytes at offset %d exceeds buffer of %d bytes", e.Need, e.Off, e.Size)
}

// Cursor reads typed values from a byte buffer, advancing as it goes.
type Cursor struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

// New creates a Cursor over data starting at offset. The offset must lie
// within [0, len(data)]; anything else fails with a *BoundsError.
func New(data []byte, offset int, order binary.ByteOrder) (*Cursor, error) {
	if offset < 0 || offset > len(data) {
		return nil, &BoundsError{Off: offset, Need: 0, Size: len(data)}
	}
	return &Cursor{data: data, pos: offset, order: order}, nil
}

// Pos returns the current read position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// require checks that n bytes are readable at pos+off without advancing.
func (c *Cursor) require(off, n int) error {
	if n < 0 || off < 0 || c.pos+off+n > len(c.data) {
		return &BoundsError{Off: c.pos + off, Need: n, Size: len(c.data)}
	}
	return nil
}

// Bytes reads n raw bytes and advances the cursor. The returned slice
// aliases the underlying buffer and must not be modified.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.require(0, n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// String reads a fixed-length text string of n bytes.
func (c *Cursor) String(n int) (string, error) {
	b, err := c.Bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Skip advances the cursor by n bytes without reading.
func (c *Cursor) Skip(n int) error {
	if err := c.require(0, n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

func (c *Cursor) Uint8() (uint8, error) {
	if err := c.require(0, 1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *Cursor) Int8() (int8, error) {
	v, err := c.Uint8()
	return int8(v), err
}

func (c *Cursor) Uint16() (uint16, error) {
	if err := c.require(0, 2); err != nil {
		return 0, err
	}
	v := c.order.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *Cursor) Int16() (int16, error) {
	v, err := c.Uint16()
	return int16(v), err
}

func (c *Cursor) Uint32() (uint32, error) {
	if err := c.require(0, 4); err != nil {
		return 0, err
	}
	v := c.order.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	return math.Float32frombits(v), err
}

func (c *Cursor) Float64() (float64, error) {
	if err := c.require(0, 8); err != nil {
		return 0, err
	}
	v := c.order.Uint64(c.data[c.pos:])
	c.pos += 8
	return math.Float64frombits(v), nil
}

// PeekUint8 reads a byte at pos+off without moving the cursor.
func (c *Cursor) PeekUint8(off int) (uint8, error) {
	if err := c.require(off, 1); err != nil {
		return 0, err
	}
	return c.data[c.pos+off], nil
}

// PeekUint16 reads a 16-bit value at pos+off without moving the cursor.
func (c *Cursor) PeekUint16(off int) (uint16, error) {
	if err := c.require(off, 2); err != nil {
		return 0, err
	}
	return c.order.Uint16(c.data[c.pos+off:]), nil
}

// PeekUint32 reads a 32-bit value at pos+off without moving the cursor.
func (c *Cursor) PeekUint32(off int) (uint32, error) {
	if err := c.require(off, 4); err != nil {
		return 0, err
	}
	return c.order.Uint32(c.data[c.pos+off:]), nil
}

// PeekBytes reads n bytes at pos+off without moving the cursor.
func (c *Cursor) PeekBytes(off, n int) ([]byte, error) {
	if err := c.require(off, n); err != nil {
		return nil, err
	}
	return c.data[c.pos+off : c.pos+off+n], nil
}

// Slice returns an independent Cursor over the sub-range
// [pos+off, pos+off+length) of the same underlying storage. The parent
// cursor does not move.
func (c *Cursor) Slice(off, length int) (*Cursor, error) {
	if err := c.require(off, length); err != nil {
		return nil, err
	}
	return &Cursor{data: c.data[c.pos+off : c.pos+off+length], order: c.order}, nil
}
