package flate

import "errors"

// prefixTable is a canonical prefix code in the two-array form used by
// zlib's reference inflater: count[n] holds the number of codes of length n,
// and symbol lists the coded symbols sorted by (length, symbol value).
type prefixTable struct {
	count  [maxBits + 1]uint16
	symbol []uint16
}

var errOverSubscribed = errors.New("over-subscribed prefix code set")

// buildTable constructs a decoding table from per-symbol code lengths
// (length 0 means the symbol is unused). Over-subscribed sets fail here;
// incomplete sets build fine and fail at decode time if an unassigned code
// is actually encountered, which permits the single-code distance tables
// some encoders emit.
func buildTable(lengths []uint8) (*prefixTable, error) {
	t := &prefixTable{symbol: make([]uint16, len(lengths))}
	for _, n := range lengths {
		t.count[n]++
	}
	if int(t.count[0]) == len(lengths) {
		return t, nil // no codes at all; any decode attempt will fail
	}

	left := 1
	for n := 1; n <= maxBits; n++ {
		left <<= 1
		left -= int(t.count[n])
		if left < 0 {
			return nil, errOverSubscribed
		}
	}

	// Offsets of the first symbol of each length within the symbol table.
	var offs [maxBits + 1]uint16
	for n := 1; n < maxBits; n++ {
		offs[n+1] = offs[n] + t.count[n]
	}
	for sym, n := range lengths {
		if n != 0 {
			t.symbol[offs[n]] = uint16(sym)
			offs[n]++
		}
	}
	return t, nil
}

// decodeSym reads bits one at a time until they form a code in t, returning
// the corresponding symbol. Codes are at most maxBits long, so a walk that
// falls off the end means the stream contains an unassigned code.
func (f *inflator) decodeSym(t *prefixTable) (int, error) {
	code, first, index := 0, 0, 0
	for n := 1; n <= maxBits; n++ {
		b, err := f.bits(1)
		if err != nil {
			return 0, err
		}
		code |= int(b)
		count := int(t.count[n])
		if code-count < first {
			return int(t.symbol[index+code-first]), nil
		}
		index += count
		first = (first + count) << 1
		code <<= 1
	}
	return 0, f.corrupt("invalid prefix code")
}

// The two predefined tables used by fixed-code blocks (RFC 1951 §3.2.6).
var fixedLitLen, fixedDist prefixTable

func init() {
	var litLengths [288]uint8
	for i := 0; i < 144; i++ {
		litLengths[i] = 8
	}
	for i := 144; i < 256; i++ {
		litLengths[i] = 9
	}
	for i := 256; i < 280; i++ {
		litLengths[i] = 7
	}
	for i := 280; i < 288; i++ {
		litLengths[i] = 8
	}
	t, err := buildTable(litLengths[:])
	if err != nil {
		panic(err)
	}
	fixedLitLen = *t

	var distLengths [maxDistCodes]uint8
	for i := range distLengths {
		distLengths[i] = 5
	}
	t, err = buildTable(distLengths[:])
	if err != nil {
		panic(err)
	}
	fixedDist = *t
}
