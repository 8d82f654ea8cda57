package png

import "fmt"

// Scanline filter types (one byte preceding each encoded row).
const (
	filterNone    = 0
	filterSub     = 1
	filterUp      = 2
	filterAverage = 3
	filterPaeth   = 4
)

// reconstruct undoes the per-row predictive filters, turning filtered
// scanline bytes into true pixel bytes. Rows are processed strictly top to
// bottom: each byte may depend on the byte bpp to its left and on the row
// above, both already reconstructed. All sums wrap at 256.
func reconstruct(in []byte, width, height, bpp int) ([]byte, error) {
	stride := width * bpp
	rowLen := 1 + stride
	if want := height * rowLen; want != len(in) {
		return nil, &SizeMismatchError{What: "filtered scanline data", Want: want, Got: len(in)}
	}

	out := make([]byte, height*stride)
	for y := 0; y < height; y++ {
		ft := in[y*rowLen]
		if ft > filterPaeth {
			return nil, FormatError(fmt.Sprintf("unknown scanline filter type %d in row %d", ft, y))
		}
		row := in[y*rowLen+1 : (y+1)*rowLen]
		cur := out[y*stride : (y+1)*stride]
		var prev []byte
		if y > 0 {
			prev = out[(y-1)*stride : y*stride]
		}
		for x := 0; x < stride; x++ {
			var a, b, c byte // left, above, above-left; zero off the edges
			if x >= bpp {
				a = cur[x-bpp]
			}
			if prev != nil {
				b = prev[x]
				if x >= bpp {
					c = prev[x-bpp]
				}
			}
			switch ft {
			case filterNone:
				cur[x] = row[x]
			case filterSub:
				cur[x] = row[x] + a
			case filterUp:
				cur[x] = row[x] + b
			case filterAverage:
				cur[x] = row[x] + byte((int(a)+int(b))/2)
			case filterPaeth:
				cur[x] = row[x] + paethPredict(a, b, c)
			}
		}
	}
	return out, nil
}

// paethPredict picks whichever of a (left), b (above), c (above-left) is
// closest to a+b-c, breaking ties in the order a, b, c.
func paethPredict(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
