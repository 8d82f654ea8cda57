package png

import (
	"encoding/binary"
	"log/slog"

	"github.com/jpfielding/pngs/pkg/cursor"
)

// signature is the 8-byte magic that opens every PNG file.
var signature = []byte{137, 'P', 'N', 'G', 13, 10, 26, 10}

const (
	tagHeader = "IHDR"
	tagData   = "IDAT"
	tagEnd    = "IEND"
)

// ChunkInfo describes one chunk encountered while walking the container.
// Payloads of chunks other than IHDR/IDAT are not retained.
type ChunkInfo struct {
	Tag    string
	Length int
}

// container is the result of one pass over the chunk stream: the parsed
// header, the concatenated compressed image data, and the chunk inventory.
type container struct {
	header *Header
	data   []byte
	chunks []ChunkInfo
}

// parseContainer validates the signature and walks the chunk stream until
// the end marker. Image data split across multiple data chunks is
// concatenated in encounter order, so the result is byte-identical to an
// equivalent single-chunk stream. Per-chunk CRCs are skipped, not verified,
// matching the system this decoder replaces.
func parseContainer(data []byte) (*container, error) {
	cur, err := cursor.New(data, 0, binary.BigEndian)
	if err != nil {
		return nil, err
	}
	sig, err := cur.Bytes(len(signature))
	if err != nil || string(sig) != string(signature) {
		return nil, FormatError("bad signature")
	}

	c := &container{}
	sawEnd := false
	for !sawEnd {
		length, err := cur.Uint32()
		if err != nil {
			return nil, FormatError("truncated container: missing end marker")
		}
		tag, err := cur.String(4)
		if err != nil {
			return nil, FormatError("truncated container: missing end marker")
		}
		payload, err := cur.Bytes(int(length))
		if err != nil {
			return nil, FormatError("truncated chunk " + tag)
		}
		// CRC kept only to stay aligned with the stream.
		if err := cur.Skip(4); err != nil {
			return nil, FormatError("truncated chunk " + tag)
		}
		c.chunks = append(c.chunks, ChunkInfo{Tag: tag, Length: int(length)})

		switch tag {
		case tagHeader:
			if c.header == nil {
				if c.header, err = parseHeader(payload); err != nil {
					return nil, err
				}
			}
		case tagData:
			c.data = append(c.data, payload...)
		case tagEnd:
			sawEnd = true
		default:
			slog.Debug("skipping chunk", "tag", tag, "length", length)
		}
	}

	if c.header == nil {
		return nil, FormatError("missing header")
	}
	if len(c.data) == 0 {
		return nil, FormatError("missing data")
	}
	return c, nil
}
