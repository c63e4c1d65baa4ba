package psd

// Option configures Decode.
//
// Example:
//
//	doc, err := psd.Decode(data,
//	    psd.WithZIPDecoding(),
//	    psd.WithPixelLimit(64<<20),
//	)
type Option func(*decodeOptions)

type decodeOptions struct {
	zip        bool  // inflate ZIP planes instead of rejecting them
	pixelLimit int64 // 0 = no limit
}

func defaultOptions() *decodeOptions {
	return &decodeOptions{}
}

// WithZIPDecoding inflates ZIP and ZIP-with-prediction channel planes.
//
// By default these planes are recognized but rejected with
// ErrUnsupportedCompression when they are decoded.
func WithZIPDecoding() Option {
	return func(o *decodeOptions) {
		o.zip = true
	}
}

// WithPixelLimit rejects documents whose canvas, or any layer or mask
// rectangle, has more than n pixels. A limit of 0 disables the check.
func WithPixelLimit(n int64) Option {
	return func(o *decodeOptions) {
		o.pixelLimit = n
	}
}

// FlattenOption configures Flatten.
type FlattenOption func(*flattenOptions)

type flattenOptions struct {
	blendModes bool
}

// WithBlendModes composites layers with their separable blend modes
// (multiply, screen, overlay, ...) instead of plain source-over. Modes
// without a separable formula still composite as normal.
func WithBlendModes() FlattenOption {
	return func(o *flattenOptions) {
		o.blendModes = true
	}
}
