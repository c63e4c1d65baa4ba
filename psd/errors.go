package psd

import (
	"errors"
	"fmt"
)

// Decode errors. They are wrapped in one of the category types below and
// can be matched with errors.Is.
var (
	ErrInvalidSignature       = errors.New("psd: invalid file signature")
	ErrInvalidVersion         = errors.New("psd: unsupported file version")
	ErrTruncated              = errors.New("psd: truncated data")
	ErrInvalidChannelCount    = errors.New("psd: invalid channel count")
	ErrInvalidDimensions      = errors.New("psd: invalid image dimensions")
	ErrInvalidDepth           = errors.New("psd: invalid depth")
	ErrInvalidColorMode       = errors.New("psd: invalid color mode")
	ErrPixelLimit             = errors.New("psd: image exceeds pixel limit")
	ErrInvalidBlockSignature  = errors.New("psd: invalid block signature")
	ErrUnbalancedGroups       = errors.New("psd: unbalanced group markers")
	ErrUnsupportedCompression = errors.New("psd: unsupported compression")
	ErrDecompression          = errors.New("psd: decompression failed")
	ErrResourceType           = errors.New("psd: resource has a different type")
	ErrInvalidResource        = errors.New("psd: malformed resource payload")
)

// HeaderError reports a problem with the file header or the framing of the
// top-level sections.
type HeaderError struct {
	Field string
	Err   error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("psd: header %s: %v", e.Field, e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }

// LayerError reports a malformed layer record. Index is the position of the
// record in the file, or -1 when the problem is in the section framing.
type LayerError struct {
	Index int
	Err   error
}

func (e *LayerError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("psd: layer section: %v", e.Err)
	}
	return fmt.Sprintf("psd: layer record %d: %v", e.Index, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }

// ImageError reports a problem decoding the merged image data. Channel is
// the channel index, or -1 for the section as a whole.
type ImageError struct {
	Channel int
	Err     error
}

func (e *ImageError) Error() string {
	if e.Channel < 0 {
		return fmt.Sprintf("psd: image data: %v", e.Err)
	}
	return fmt.Sprintf("psd: image data channel %d: %v", e.Channel, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// ResourceError reports a malformed image resource block. Offset is the
// position of the block within the image resources section.
type ResourceError struct {
	Offset int
	Err    error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("psd: image resource at offset %d: %v", e.Offset, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// truncated wraps a short read as ErrTruncated, naming what was being read.
func truncated(what string) error {
	return fmt.Errorf("%w: %s", ErrTruncated, what)
}
