// Package flate implements a DEFLATE (RFC 1951) inflater over in-memory
// buffers, plus the thin zlib (RFC 1950) wrapper used by PNG image data.
//
// The inflater is one-way: there is no encoder here. The caller supplies the
// exact number of decompressed bytes it expects, which bounds memory and turns
// a short or long stream into a hard error instead of a silent truncation.
//
// The zlib trailing Adler-32 checksum is read past but not verified; this is
// a deliberate simplification carried over from the system this decoder
// replaces, not an oversight.
package flate

import "fmt"

const (
	maxBits      = 15      // longest prefix code
	maxLitLen    = 286     // literal/length alphabet size
	maxDistCodes = 30      // distance alphabet size
	numCodeLen   = 19      // code-length alphabet size
	endOfBlock   = 256     // symbol terminating a compressed block
	windowSize   = 1 << 15 // back-reference window
)

// DecompressionError reports a malformed DEFLATE or zlib stream. Offset is
// the compressed byte offset at which the problem was detected.
type DecompressionError struct {
	Offset int
	Reason string
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("flate: %s (at input byte %d)", e.Reason, e.Offset)
}

// Zlib decompresses a zlib-wrapped DEFLATE stream into exactly expected
// bytes. The 2-byte header is validated minimally: the compression method
// must be 8 (deflate) and preset dictionaries are rejected. The trailing
// Adler-32 is not verified.
func Zlib(data []byte, expected int) ([]byte, error) {
	if len(data) < 6 {
		return nil, &DecompressionError{Offset: 0, Reason: "zlib stream too short"}
	}
	cmf, flg := data[0], data[1]
	if cmf&0x0F != 8 {
		return nil, &DecompressionError{Offset: 0, Reason: fmt.Sprintf("unsupported zlib compression method %d", cmf&0x0F)}
	}
	if flg&0x20 != 0 {
		return nil, &DecompressionError{Offset: 1, Reason: "zlib preset dictionary not supported"}
	}
	return Inflate(data[2:len(data)-4], expected)
}

// Inflate decompresses a raw DEFLATE stream into exactly expected bytes.
// It tolerates any mix of stored, fixed-code and dynamic-code blocks, and it
// fails if the stream finishes with any other output length.
func Inflate(data []byte, expected int) ([]byte, error) {
	f := &inflator{
		in:       data,
		out:      make([]byte, 0, expected),
		expected: expected,
	}
	for {
		final, err := f.bits(1)
		if err != nil {
			return nil, err
		}
		typ, err := f.bits(2)
		if err != nil {
			return nil, err
		}
		switch typ {
		case 0:
			err = f.stored()
		case 1:
			err = f.block(&fixedLitLen, &fixedDist)
		case 2:
			var litlen, dist *prefixTable
			if litlen, dist, err = f.dynamicTables(); err == nil {
				err = f.block(litlen, dist)
			}
		default:
			err = f.corrupt("invalid block type 3")
		}
		if err != nil {
			return nil, err
		}
		if final == 1 {
			break
		}
	}
	if len(f.out) != f.expected {
		return nil, f.corrupt(fmt.Sprintf("decompressed %d bytes, expected %d", len(f.out), f.expected))
	}
	return f.out, nil
}

// inflator holds the bit cursor and accumulated output for one stream.
type inflator struct {
	in       []byte
	pos      int    // next unread input byte
	bit      uint32 // bit buffer, filled LSB-first per RFC 1951
	nbits    uint
	out      []byte
	expected int
}

func (f *inflator) corrupt(reason string) error {
	return &DecompressionError{Offset: f.pos, Reason: reason}
}

// bits consumes n bits (n <= 24) from the stream, LSB-first.
func (f *inflator) bits(n uint) (uint32, error) {
	for f.nbits < n {
		if f.pos >= len(f.in) {
			return 0, f.corrupt("unexpected end of stream")
		}
		f.bit |= uint32(f.in[f.pos]) << f.nbits
		f.pos++
		f.nbits += 8
	}
	v := f.bit & (1<<n - 1)
	f.bit >>= n
	f.nbits -= n
	return v, nil
}

// stored copies a literal (uncompressed) block. The bit cursor is discarded
// down to the next byte boundary first.
func (f *inflator) stored() error {
	f.bit = 0
	f.nbits = 0
	if f.pos+4 > len(f.in) {
		return f.corrupt("stored block header truncated")
	}
	n := int(f.in[f.pos]) | int(f.in[f.pos+1])<<8
	inv := int(f.in[f.pos+2]) | int(f.in[f.pos+3])<<8
	if uint16(n) != ^uint16(inv) {
		return f.corrupt("stored block length check failed")
	}
	f.pos += 4
	if f.pos+n > len(f.in) {
		return f.corrupt("stored block truncated")
	}
	if len(f.out)+n > f.expected {
		return f.corrupt("output exceeds expected size")
	}
	f.out = append(f.out, f.in[f.pos:f.pos+n]...)
	f.pos += n
	return nil
}

// Base values and extra-bit counts for length symbols 257..285.
var (
	lengthBase = [29]int{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = [29]uint{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
)

// Base values and extra-bit counts for distance symbols 0..29.
var (
	distBase = [30]int{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
	distExtra = [30]uint{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

// block decodes one compressed block using the given literal/length and
// distance tables, stopping at the end-of-block symbol.
func (f *inflator) block(litlen, dist *prefixTable) error {
	for {
		sym, err := f.decodeSym(litlen)
		if err != nil {
			return err
		}
		switch {
		case sym < endOfBlock:
			if len(f.out) >= f.expected {
				return f.corrupt("output exceeds expected size")
			}
			f.out = append(f.out, byte(sym))
		case sym == endOfBlock:
			return nil
		case sym < maxLitLen:
			sym -= endOfBlock + 1
			extra, err := f.bits(lengthExtra[sym])
			if err != nil {
				return err
			}
			length := lengthBase[sym] + int(extra)

			dsym, err := f.decodeSym(dist)
			if err != nil {
				return err
			}
			if dsym >= maxDistCodes {
				return f.corrupt(fmt.Sprintf("invalid distance symbol %d", dsym))
			}
			extra, err = f.bits(distExtra[dsym])
			if err != nil {
				return err
			}
			d := distBase[dsym] + int(extra)
			if d > len(f.out) || d > windowSize {
				return f.corrupt(fmt.Sprintf("back-reference distance %d beyond available output", d))
			}
			if len(f.out)+length > f.expected {
				return f.corrupt("output exceeds expected size")
			}
			// Byte-by-byte so overlapping copies (d < length) replicate.
			for i := 0; i < length; i++ {
				f.out = append(f.out, f.out[len(f.out)-d])
			}
		default:
			return f.corrupt(fmt.Sprintf("invalid literal/length symbol %d", sym))
		}
	}
}

// dynamicTables decodes the in-stream description of the literal/length and
// distance code tables preceding a dynamic block.
func (f *inflator) dynamicTables() (*prefixTable, *prefixTable, error) {
	hlit, err := f.bits(5)
	if err != nil {
		return nil, nil, err
	}
	hdist, err := f.bits(5)
	if err != nil {
		return nil, nil, err
	}
	hclen, err := f.bits(4)
	if err != nil {
		return nil, nil, err
	}
	nlit := int(hlit) + 257
	ndist := int(hdist) + 1
	nclen := int(hclen) + 4
	if nlit > maxLitLen {
		return nil, nil, f.corrupt(fmt.Sprintf("too many literal/length codes (%d)", nlit))
	}
	if ndist > maxDistCodes {
		return nil, nil, f.corrupt(fmt.Sprintf("too many distance codes (%d)", ndist))
	}

	// The code-length alphabet arrives in this fixed permuted order.
	order := [numCodeLen]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}
	var clLengths [numCodeLen]uint8
	for i := 0; i < nclen; i++ {
		v, err := f.bits(3)
		if err != nil {
			return nil, nil, err
		}
		clLengths[order[i]] = uint8(v)
	}
	clTable, err := buildTable(clLengths[:])
	if err != nil {
		return nil, nil, f.corrupt(err.Error())
	}

	// Literal/length and distance code lengths share one run-length encoded
	// sequence: 0-15 are literal lengths, 16/17/18 are repeats.
	lengths := make([]uint8, nlit+ndist)
	for i := 0; i < len(lengths); {
		sym, err := f.decodeSym(clTable)
		if err != nil {
			return nil, nil, err
		}
		if sym < 16 {
			lengths[i] = uint8(sym)
			i++
			continue
		}
		var repeat int
		var value uint8
		switch sym {
		case 16:
			if i == 0 {
				return nil, nil, f.corrupt("repeat code with no previous length")
			}
			value = lengths[i-1]
			extra, err := f.bits(2)
			if err != nil {
				return nil, nil, err
			}
			repeat = 3 + int(extra)
		case 17:
			extra, err := f.bits(3)
			if err != nil {
				return nil, nil, err
			}
			repeat = 3 + int(extra)
		default: // 18
			extra, err := f.bits(7)
			if err != nil {
				return nil, nil, err
			}
			repeat = 11 + int(extra)
		}
		if i+repeat > len(lengths) {
			return nil, nil, f.corrupt("code length repeat past end of table")
		}
		for j := 0; j < repeat; j++ {
			lengths[i] = value
			i++
		}
	}
	if lengths[endOfBlock] == 0 {
		return nil, nil, f.corrupt("missing end-of-block code")
	}

	litlen, err := buildTable(lengths[:nlit])
	if err != nil {
		return nil, nil, f.corrupt(err.Error())
	}
	dist, err := buildTable(lengths[nlit:])
	if err != nil {
		return nil, nil, f.corrupt(err.Error())
	}
	return litlen, dist, nil
}
