package psd

import (
	"fmt"

	"github.com/mrjoshuak/go-psd/compression"
	"github.com/mrjoshuak/go-psd/internal/bigend"
	"github.com/mrjoshuak/go-psd/internal/predictor"
)

// ChannelPlane is one compressed channel of a layer. The plane keeps the
// bytes as stored in the file and decodes them each time Decode is called.
type ChannelPlane struct {
	kind        ChannelKind
	compression Compression
	data        []byte // stored bytes after the compression tag
	width       int
	height      int
	depth       Depth
	zip         bool
	missing     bool // table entry with no stored bytes
}

// Kind returns the channel kind.
func (p *ChannelPlane) Kind() ChannelKind { return p.kind }

// Compression returns the compression tag of the plane.
func (p *ChannelPlane) Compression() Compression { return p.compression }

// Bytes returns the stored (possibly compressed) bytes, without the
// compression tag. The slice must not be modified.
func (p *ChannelPlane) Bytes() []byte { return p.data }

// HasData reports whether the channel table entry has stored bytes. Entries
// without data are treated as absent channels.
func (p *ChannelPlane) HasData() bool { return !p.missing }

// Width returns the plane width in pixels.
func (p *ChannelPlane) Width() int { return p.width }

// Height returns the plane height in pixels.
func (p *ChannelPlane) Height() int { return p.height }

// Decode returns the decompressed samples in row-major order,
// (width*depth+7)/8 bytes per row.
func (p *ChannelPlane) Decode() ([]byte, error) {
	return decodePlane(p.compression, p.data, p.width, p.height, p.depth, p.zip)
}

// decodePlane decompresses a single channel plane. RLE planes start with a
// table of 2-byte compressed row lengths, one per scanline.
func decodePlane(c Compression, data []byte, width, height int, depth Depth, zip bool) ([]byte, error) {
	rowBytes := depth.rowBytes(width)
	size := rowBytes * height

	switch c {
	case CompressionRaw:
		if len(data) != size {
			return nil, fmt.Errorf("%w: raw plane is %d bytes, want %d", ErrDecompression, len(data), size)
		}
		return data, nil

	case CompressionRLE:
		if len(data) < 2*height {
			return nil, fmt.Errorf("%w: RLE row table truncated", ErrDecompression)
		}
		r := bigend.NewReader(data)
		counts := make([]int, height)
		for y := range counts {
			n, err := r.ReadUint16()
			if err != nil {
				return nil, fmt.Errorf("%w: RLE row table truncated at row %d", ErrDecompression, y)
			}
			counts[y] = int(n)
		}
		body, _ := r.Slice(r.Len())
		out, err := compression.PackBitsDecompress(body, counts, rowBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
		}
		return out, nil

	case CompressionZIP, CompressionZIPPrediction:
		if !zip {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
		}
		out, err := compression.ZIPDecompress(data, size)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
		}
		if c == CompressionZIPPrediction && depth != Depth1 && size > 0 {
			if err := predictor.DecodeRows(out, width, height, int(depth)); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedCompression, uint16(c))
	}
}
