package psd

import (
	"fmt"

	"github.com/mrjoshuak/go-psd/internal/bigend"
)

// Header is the fixed 26-byte file header.
type Header struct {
	Version   uint16
	Channels  uint16
	Height    uint32
	Width     uint32
	Depth     Depth
	ColorMode ColorMode
}

// parseHeader validates and decodes the header section.
func parseHeader(data []byte, opts *decodeOptions) (Header, error) {
	var h Header
	r := bigend.NewReader(data)

	sig, err := r.ReadKey()
	if err != nil {
		return h, &HeaderError{Field: "signature", Err: truncated("file signature")}
	}
	if sig != fileSignature {
		return h, &HeaderError{Field: "signature", Err: ErrInvalidSignature}
	}

	// Any short read below means the section is shorter than 26 bytes.
	short := &HeaderError{Field: "header", Err: truncated("file header")}

	if h.Version, err = r.ReadUint16(); err != nil {
		return h, short
	}
	if h.Version != fileVersion {
		return h, &HeaderError{Field: "version", Err: ErrInvalidVersion}
	}
	if err := r.Skip(6); err != nil {
		return h, short
	}
	if h.Channels, err = r.ReadUint16(); err != nil {
		return h, short
	}
	if h.Height, err = r.ReadUint32(); err != nil {
		return h, short
	}
	if h.Width, err = r.ReadUint32(); err != nil {
		return h, short
	}
	depth, err := r.ReadUint16()
	if err != nil {
		return h, short
	}
	mode, err := r.ReadUint16()
	if err != nil {
		return h, short
	}
	h.Depth = Depth(depth)
	h.ColorMode = ColorMode(mode)

	if h.Channels < 1 || h.Channels > MaxChannels {
		return h, &HeaderError{Field: "channel count", Err: fmt.Errorf("%w: %d", ErrInvalidChannelCount, h.Channels)}
	}
	if h.Width < 1 || h.Width > MaxDimension {
		return h, &HeaderError{Field: "width", Err: fmt.Errorf("%w: width %d", ErrInvalidDimensions, h.Width)}
	}
	if h.Height < 1 || h.Height > MaxDimension {
		return h, &HeaderError{Field: "height", Err: fmt.Errorf("%w: height %d", ErrInvalidDimensions, h.Height)}
	}
	if !h.Depth.valid() {
		return h, &HeaderError{Field: "depth", Err: fmt.Errorf("%w: %d", ErrInvalidDepth, depth)}
	}
	if !h.ColorMode.valid() {
		return h, &HeaderError{Field: "color mode", Err: fmt.Errorf("%w: %d", ErrInvalidColorMode, mode)}
	}
	if opts.pixelLimit > 0 && int64(h.Width)*int64(h.Height) > opts.pixelLimit {
		return h, &HeaderError{Field: "dimensions", Err: fmt.Errorf("%w: %dx%d", ErrPixelLimit, h.Width, h.Height)}
	}

	return h, nil
}

// pixels returns the number of canvas pixels.
func (h Header) pixels() int {
	return int(h.Width) * int(h.Height)
}
