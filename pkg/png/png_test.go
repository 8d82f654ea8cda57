package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
	"testing"

	kzlib "github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Reference encoder (test-side only; the package itself never encodes)
// ============================================================================

// chunkBytes assembles a length/tag/payload/CRC chunk. The CRC is real so
// fixtures look like files a compliant encoder would write, even though the
// decoder deliberately ignores it.
func chunkBytes(tag string, payload []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(payload)))
	buf.WriteString(tag)
	buf.Write(payload)
	crc := crc32.NewIEEE()
	crc.Write([]byte(tag))
	crc.Write(payload)
	binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func headerPayload(width, height uint32, mode ColorMode, interlace Interlace) []byte {
	p := make([]byte, headerSize)
	binary.BigEndian.PutUint32(p[0:], width)
	binary.BigEndian.PutUint32(p[4:], height)
	p[8] = 8 // bit depth
	p[9] = byte(mode)
	p[10] = 0 // compression method
	p[11] = 0 // filter method
	p[12] = byte(interlace)
	return p
}

// filterRows applies the forward scanline filters, one filter type per row
// (cycling through filters if there are fewer than height entries).
func filterRows(t *testing.T, pix []byte, width, height, bpp int, filters []byte) []byte {
	t.Helper()
	stride := width * bpp
	require.Len(t, pix, height*stride)

	out := make([]byte, 0, height*(1+stride))
	for y := 0; y < height; y++ {
		ft := filters[y%len(filters)]
		out = append(out, ft)
		row := pix[y*stride : (y+1)*stride]
		var prev []byte
		if y > 0 {
			prev = pix[(y-1)*stride : y*stride]
		}
		for x := 0; x < stride; x++ {
			var a, b, c byte
			if x >= bpp {
				a = row[x-bpp]
			}
			if prev != nil {
				b = prev[x]
				if x >= bpp {
					c = prev[x-bpp]
				}
			}
			switch ft {
			case filterNone:
				out = append(out, row[x])
			case filterSub:
				out = append(out, row[x]-a)
			case filterUp:
				out = append(out, row[x]-b)
			case filterAverage:
				out = append(out, row[x]-byte((int(a)+int(b))/2))
			case filterPaeth:
				out = append(out, row[x]-paethPredict(a, b, c))
			}
		}
	}
	return out
}

// encodePNG builds a complete PNG stream from raw pixels, splitting the
// compressed payload across dataChunks IDAT chunks.
func encodePNG(t *testing.T, width, height int, mode ColorMode, pix []byte, filters []byte, dataChunks int) []byte {
	t.Helper()
	filtered := filterRows(t, pix, width, height, mode.BytesPerPixel(), filters)

	var z bytes.Buffer
	zw := kzlib.NewWriter(&z)
	_, err := zw.Write(filtered)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var buf bytes.Buffer
	buf.Write(signature)
	buf.Write(chunkBytes(tagHeader, headerPayload(uint32(width), uint32(height), mode, InterlaceNone)))

	compressed := z.Bytes()
	per := (len(compressed) + dataChunks - 1) / dataChunks
	for off := 0; off < len(compressed); off += per {
		end := off + per
		if end > len(compressed) {
			end = len(compressed)
		}
		buf.Write(chunkBytes(tagData, compressed[off:end]))
	}
	buf.Write(chunkBytes(tagEnd, nil))
	return buf.Bytes()
}

// testPixels fills a deterministic gradient so neighboring filters have
// something real to predict from.
func testPixels(width, height, bpp int) []byte {
	pix := make([]byte, width*height*bpp)
	for i := range pix {
		pix[i] = byte(i*7 + i/13)
	}
	return pix
}

// ============================================================================
// Decode round trips
// ============================================================================

// TestDecode_RoundTrip encodes synthetic images with the reference encoder
// and expects bit-exact pixel buffers back, in every supported color mode
// and with every filter type exercised.
func TestDecode_RoundTrip(t *testing.T) {
	modes := []ColorMode{ModeGrayscale, ModeRGB, ModeIndexed, ModeGrayscaleAlpha, ModeRGBA}
	allFilters := []byte{filterNone, filterSub, filterUp, filterAverage, filterPaeth}

	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			const width, height = 23, 17 // odd sizes catch stride mistakes
			bpp := mode.BytesPerPixel()
			pix := testPixels(width, height, bpp)

			img, err := Decode(encodePNG(t, width, height, mode, pix, allFilters, 1))
			require.NoError(t, err)

			assert.Equal(t, uint32(width), img.Width)
			assert.Equal(t, uint32(height), img.Height)
			assert.Equal(t, mode, img.Mode)
			require.Len(t, img.Pix, width*height*bpp)
			assert.Equal(t, pix, img.Pix)
		})
	}
}

// TestDecode_SplitData verifies that image data split across several data
// chunks decodes byte-identically to the same payload in one chunk.
func TestDecode_SplitData(t *testing.T) {
	const width, height = 16, 16
	pix := testPixels(width, height, 3)
	filters := []byte{filterPaeth}

	single, err := Decode(encodePNG(t, width, height, ModeRGB, pix, filters, 1))
	require.NoError(t, err)

	split, err := Decode(encodePNG(t, width, height, ModeRGB, pix, filters, 3))
	require.NoError(t, err)

	assert.Equal(t, single.Pix, split.Pix)
	assert.Equal(t, pix, split.Pix)
}

func TestDecode_OnePixel(t *testing.T) {
	pix := []byte{1, 2, 3, 4}
	img, err := Decode(encodePNG(t, 1, 1, ModeRGBA, pix, []byte{filterNone}, 1))
	require.NoError(t, err)
	assert.Equal(t, pix, img.Pix)
}

func TestDecode_SkipsAncillaryChunks(t *testing.T) {
	const width, height = 4, 4
	pix := testPixels(width, height, 1)
	stream := encodePNG(t, width, height, ModeGrayscale, pix, []byte{filterSub}, 1)

	// splice a tEXt chunk in front of the IDAT
	cut := len(signature) + len(chunkBytes(tagHeader, headerPayload(width, height, ModeGrayscale, InterlaceNone)))
	var buf bytes.Buffer
	buf.Write(stream[:cut])
	buf.Write(chunkBytes("tEXt", []byte("Comment\x00synthetic")))
	buf.Write(stream[cut:])

	img, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, pix, img.Pix)
}

// ============================================================================
// Failure modes
// ============================================================================

func TestDecode_BadSignature(t *testing.T) {
	_, err := Decode([]byte("GIF89a not a png at all"))
	var fe FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "bad signature")
}

func TestDecode_Interlaced(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(signature)
	buf.Write(chunkBytes(tagHeader, headerPayload(4, 4, ModeRGBA, InterlaceAdam7)))
	buf.Write(chunkBytes(tagData, []byte{0x78, 0x9C, 0x03, 0x00, 0x00, 0x00, 0x00, 0x01}))
	buf.Write(chunkBytes(tagEnd, nil))

	_, err := Decode(buf.Bytes())
	var fe FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "interlaced")
}

func TestDecode_ConcurrentUse(t *testing.T) {
	const width, height = 32, 32
	pix := testPixels(width, height, 4)
	stream := encodePNG(t, width, height, ModeRGBA, pix, []byte{filterUp, filterPaeth}, 2)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := Decode(stream)
			if err == nil && !bytes.Equal(img.Pix, pix) {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestDecodeFile(t *testing.T) {
	const width, height = 8, 8
	pix := testPixels(width, height, 3)
	stream := encodePNG(t, width, height, ModeRGB, pix, []byte{filterAverage}, 1)

	path := filepath.Join(t.TempDir(), "test.png")
	require.NoError(t, os.WriteFile(path, stream, 0o644))

	img, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, pix, img.Pix)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	const width, height = 16, 8
	pix := testPixels(width, height, 2)
	stream := encodePNG(t, width, height, ModeGrayscaleAlpha, pix, []byte{filterNone}, 2)

	info, err := Inspect(stream)
	require.NoError(t, err)
	require.NotNil(t, info.Header)
	assert.Equal(t, uint32(width), info.Header.Width)
	assert.Equal(t, uint32(height), info.Header.Height)
	assert.Equal(t, ModeGrayscaleAlpha, info.Header.Mode)

	var tags []string
	total := 0
	for _, ch := range info.Chunks {
		tags = append(tags, ch.Tag)
		if ch.Tag == tagData {
			total += ch.Length
		}
	}
	assert.Equal(t, []string{"IHDR", "IDAT", "IDAT", "IEND"}, tags)
	assert.Equal(t, total, info.CompressedSize)
}
