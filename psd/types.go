// Package psd decodes Adobe Photoshop documents (PSD) into queryable layer,
// group and resource data and composites selected layers into a flat RGBA
// raster.
//
// A Document is built once from the bytes of a file with Decode and is
// immutable afterwards, so any number of goroutines may query or flatten it
// concurrently. Only the standard PSD variant (version 1) is supported;
// large documents (PSB) are rejected with ErrInvalidVersion.
package psd

import "fmt"

// Format limits for the standard (non-PSB) variant.
const (
	MaxDimension = 30000
	MaxChannels  = 56
)

// ColorMode is the color mode declared in the file header.
type ColorMode uint16

// Color modes
const (
	ColorModeBitmap       ColorMode = 0
	ColorModeGrayscale    ColorMode = 1
	ColorModeIndexed      ColorMode = 2
	ColorModeRGB          ColorMode = 3
	ColorModeCMYK         ColorMode = 4
	ColorModeMultichannel ColorMode = 7
	ColorModeDuotone      ColorMode = 8
	ColorModeLab          ColorMode = 9
)

// String returns the human-readable color mode name.
func (m ColorMode) String() string {
	switch m {
	case ColorModeBitmap:
		return "Bitmap"
	case ColorModeGrayscale:
		return "Grayscale"
	case ColorModeIndexed:
		return "Indexed"
	case ColorModeRGB:
		return "RGB"
	case ColorModeCMYK:
		return "CMYK"
	case ColorModeMultichannel:
		return "Multichannel"
	case ColorModeDuotone:
		return "Duotone"
	case ColorModeLab:
		return "Lab"
	default:
		return fmt.Sprintf("ColorMode(%d)", uint16(m))
	}
}

func (m ColorMode) valid() bool {
	switch m {
	case ColorModeBitmap, ColorModeGrayscale, ColorModeIndexed, ColorModeRGB,
		ColorModeCMYK, ColorModeMultichannel, ColorModeDuotone, ColorModeLab:
		return true
	}
	return false
}

// Depth is the number of bits per channel sample.
type Depth uint16

// Supported depths
const (
	Depth1  Depth = 1
	Depth8  Depth = 8
	Depth16 Depth = 16
	Depth32 Depth = 32
)

func (d Depth) valid() bool {
	return d == Depth1 || d == Depth8 || d == Depth16 || d == Depth32
}

// rowBytes returns the number of bytes in one scanline of width samples.
func (d Depth) rowBytes(width int) int {
	return (width*int(d) + 7) / 8
}

// Compression is the compression tag of a channel plane or of the merged
// image data.
type Compression uint16

// Compression methods
const (
	CompressionRaw           Compression = 0
	CompressionRLE           Compression = 1
	CompressionZIP           Compression = 2
	CompressionZIPPrediction Compression = 3
)

// String returns the compression method name.
func (c Compression) String() string {
	switch c {
	case CompressionRaw:
		return "Raw"
	case CompressionRLE:
		return "RLE"
	case CompressionZIP:
		return "ZIP"
	case CompressionZIPPrediction:
		return "ZIPPrediction"
	default:
		return fmt.Sprintf("Compression(%d)", uint16(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZIPPrediction
}

// ChannelKind identifies a layer channel. Non-negative values are color
// component indices; negative values are masks.
type ChannelKind int16

// Channel kinds
const (
	ChannelRed          ChannelKind = 0
	ChannelGreen        ChannelKind = 1
	ChannelBlue         ChannelKind = 2
	ChannelBlack        ChannelKind = 3 // K plate of CMYK layers
	ChannelTransparency ChannelKind = -1
	ChannelUserMask     ChannelKind = -2
	ChannelRealUserMask ChannelKind = -3
)

// String returns the channel name.
func (k ChannelKind) String() string {
	switch k {
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	case ChannelBlack:
		return "black"
	case ChannelTransparency:
		return "alpha"
	case ChannelUserMask:
		return "mask"
	case ChannelRealUserMask:
		return "real-mask"
	default:
		return fmt.Sprintf("channel(%d)", int16(k))
	}
}

func (k ChannelKind) isMask() bool {
	return k == ChannelUserMask || k == ChannelRealUserMask
}

// Rect is a canvas-relative rectangle. Top and Left are inclusive, Bottom and
// Right exclusive. Coordinates may lie outside the canvas and the rectangle
// may be empty.
type Rect struct {
	Top, Left, Bottom, Right int32
}

// Width returns the width of the rectangle, 0 if it is degenerate.
func (r Rect) Width() int {
	if r.Right <= r.Left {
		return 0
	}
	return int(r.Right) - int(r.Left)
}

// Height returns the height of the rectangle, 0 if it is degenerate.
func (r Rect) Height() int {
	if r.Bottom <= r.Top {
		return 0
	}
	return int(r.Bottom) - int(r.Top)
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Contains reports whether the pixel at (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= int(r.Left) && x < int(r.Right) && y >= int(r.Top) && y < int(r.Bottom)
}

// BlendMode is the 4-character blend mode key of a layer, e.g. "norm".
type BlendMode string

// Blend mode keys
const (
	BlendPassThrough  BlendMode = "pass"
	BlendNormal       BlendMode = "norm"
	BlendDissolve     BlendMode = "diss"
	BlendDarken       BlendMode = "dark"
	BlendMultiply     BlendMode = "mul "
	BlendColorBurn    BlendMode = "idiv"
	BlendLinearBurn   BlendMode = "lbrn"
	BlendDarkerColor  BlendMode = "dkCl"
	BlendLighten      BlendMode = "lite"
	BlendScreen       BlendMode = "scrn"
	BlendColorDodge   BlendMode = "div "
	BlendLinearDodge  BlendMode = "lddg"
	BlendLighterColor BlendMode = "lgCl"
	BlendOverlay      BlendMode = "over"
	BlendSoftLight    BlendMode = "sLit"
	BlendHardLight    BlendMode = "hLit"
	BlendVividLight   BlendMode = "vLit"
	BlendLinearLight  BlendMode = "lLit"
	BlendPinLight     BlendMode = "pLit"
	BlendHardMix      BlendMode = "hMix"
	BlendDifference   BlendMode = "diff"
	BlendExclusion    BlendMode = "smud"
	BlendSubtract     BlendMode = "fsub"
	BlendDivide       BlendMode = "fdiv"
	BlendHue          BlendMode = "hue "
	BlendSaturation   BlendMode = "sat "
	BlendColor        BlendMode = "colr"
	BlendLuminosity   BlendMode = "lum "
)

var blendModeNames = map[BlendMode]string{
	BlendPassThrough:  "pass_through",
	BlendNormal:       "normal",
	BlendDissolve:     "dissolve",
	BlendDarken:       "darken",
	BlendMultiply:     "multiply",
	BlendColorBurn:    "color_burn",
	BlendLinearBurn:   "linear_burn",
	BlendDarkerColor:  "darker_color",
	BlendLighten:      "lighten",
	BlendScreen:       "screen",
	BlendColorDodge:   "color_dodge",
	BlendLinearDodge:  "linear_dodge",
	BlendLighterColor: "lighter_color",
	BlendOverlay:      "overlay",
	BlendSoftLight:    "soft_light",
	BlendHardLight:    "hard_light",
	BlendVividLight:   "vivid_light",
	BlendLinearLight:  "linear_light",
	BlendPinLight:     "pin_light",
	BlendHardMix:      "hard_mix",
	BlendDifference:   "difference",
	BlendExclusion:    "exclusion",
	BlendSubtract:     "subtract",
	BlendDivide:       "divide",
	BlendHue:          "hue",
	BlendSaturation:   "saturation",
	BlendColor:        "color",
	BlendLuminosity:   "luminosity",
}

// String returns the blend mode name, or the raw key if it is unknown.
func (b BlendMode) String() string {
	if name, ok := blendModeNames[b]; ok {
		return name
	}
	return string(b)
}
