package psd

import (
	"fmt"

	"github.com/mrjoshuak/go-psd/compression"
	"github.com/mrjoshuak/go-psd/internal/bigend"
	"github.com/mrjoshuak/go-psd/internal/predictor"
)

// imageData is the merged (whole canvas) image, one decoded plane per
// header channel.
type imageData struct {
	compression Compression
	planes      [][]byte
}

// parseImageData decodes the merged image. All channels share one
// compression tag; RLE data carries a row length table for every scanline of
// every channel ahead of the first channel's data.
func parseImageData(data []byte, h Header, zip bool) (*imageData, error) {
	r := bigend.NewReader(data)
	tag, err := r.ReadUint16()
	if err != nil {
		return nil, &ImageError{Channel: -1, Err: truncated("compression tag")}
	}
	img := &imageData{compression: Compression(tag)}

	width, height := int(h.Width), int(h.Height)
	channels := int(h.Channels)
	rowBytes := h.Depth.rowBytes(width)
	size := rowBytes * height
	img.planes = make([][]byte, channels)

	switch img.compression {
	case CompressionRaw:
		for ch := range img.planes {
			plane, err := r.Slice(size)
			if err != nil {
				return nil, &ImageError{Channel: ch, Err: fmt.Errorf("%w: raw plane is %d bytes, want %d", ErrDecompression, r.Len(), size)}
			}
			img.planes[ch] = plane
		}

	case CompressionRLE:
		counts := make([]int, channels*height)
		for i := range counts {
			n, err := r.ReadUint16()
			if err != nil {
				return nil, &ImageError{Channel: i / height, Err: truncated("RLE row table")}
			}
			counts[i] = int(n)
		}
		for ch := range img.planes {
			rows := counts[ch*height : (ch+1)*height]
			total := 0
			for _, n := range rows {
				total += n
			}
			body, err := r.Slice(total)
			if err != nil {
				return nil, &ImageError{Channel: ch, Err: fmt.Errorf("%w: RLE data truncated", ErrDecompression)}
			}
			plane, err := compression.PackBitsDecompress(body, rows, rowBytes)
			if err != nil {
				return nil, &ImageError{Channel: ch, Err: fmt.Errorf("%w: %w", ErrDecompression, err)}
			}
			img.planes[ch] = plane
		}

	case CompressionZIP, CompressionZIPPrediction:
		if !zip {
			return nil, &ImageError{Channel: -1, Err: fmt.Errorf("%w: %s", ErrUnsupportedCompression, img.compression)}
		}
		rest, _ := r.Slice(r.Len())
		all, err := compression.ZIPDecompress(rest, size*channels)
		if err != nil {
			return nil, &ImageError{Channel: -1, Err: fmt.Errorf("%w: %w", ErrDecompression, err)}
		}
		for ch := range img.planes {
			plane := all[ch*size : (ch+1)*size]
			if img.compression == CompressionZIPPrediction && h.Depth != Depth1 {
				if err := predictor.DecodeRows(plane, width, height, int(h.Depth)); err != nil {
					return nil, &ImageError{Channel: ch, Err: fmt.Errorf("%w: %w", ErrDecompression, err)}
				}
			}
			img.planes[ch] = plane
		}

	default:
		return nil, &ImageError{Channel: -1, Err: fmt.Errorf("%w: tag %d", ErrUnsupportedCompression, tag)}
	}

	return img, nil
}
