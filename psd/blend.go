package psd

import "math"

// pixel is one non-premultiplied RGBA8 sample.
type pixel [4]uint8

// withOpacity scales the pixel's alpha by a layer opacity.
func (p pixel) withOpacity(opacity uint8) pixel {
	p[3] = uint8(uint16(p[3]) * uint16(opacity) / 255)
	return p
}

// over composites src over dst with the source-over operator.
func over(src, dst pixel) pixel {
	switch {
	case src[3] == 255 || dst[3] == 0:
		return src
	case src[3] == 0:
		return dst
	}

	sa := float64(src[3]) / 255
	da := float64(dst[3]) / 255 * (1 - sa)
	oa := sa + da

	var out pixel
	for i := 0; i < 3; i++ {
		c := (float64(src[i])*sa + float64(dst[i])*da) / oa
		out[i] = clampByte(c)
	}
	out[3] = clampByte(oa * 255)
	return out
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// separableBlend holds the per-component blend functions B(Cb, Cs) of the
// separable blend modes, on values in [0, 1].
var separableBlend = map[BlendMode]func(cb, cs float64) float64{
	BlendMultiply: func(cb, cs float64) float64 { return cb * cs },
	BlendScreen:   func(cb, cs float64) float64 { return cb + cs - cb*cs },
	BlendDarken:   math.Min,
	BlendLighten:  math.Max,
	BlendDifference: func(cb, cs float64) float64 {
		return math.Abs(cb - cs)
	},
	BlendExclusion: func(cb, cs float64) float64 {
		return cb + cs - 2*cb*cs
	},
	BlendOverlay: func(cb, cs float64) float64 {
		return hardLight(cs, cb)
	},
	BlendHardLight: hardLight,
	BlendSoftLight: softLight,
	BlendLinearDodge: func(cb, cs float64) float64 {
		return math.Min(1, cb+cs)
	},
	BlendLinearBurn: func(cb, cs float64) float64 {
		return math.Max(0, cb+cs-1)
	},
	BlendColorDodge: func(cb, cs float64) float64 {
		switch {
		case cb == 0:
			return 0
		case cs >= 1:
			return 1
		}
		return math.Min(1, cb/(1-cs))
	},
	BlendColorBurn: func(cb, cs float64) float64 {
		switch {
		case cb >= 1:
			return 1
		case cs <= 0:
			return 0
		}
		return 1 - math.Min(1, (1-cb)/cs)
	},
}

func hardLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb * 2 * cs
	}
	s := 2*cs - 1
	return cb + s - cb*s
}

func softLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb - (1-2*cs)*cb*(1-cb)
	}
	var d float64
	if cb <= 0.25 {
		d = ((16*cb-12)*cb + 4) * cb
	} else {
		d = math.Sqrt(cb)
	}
	return cb + (2*cs-1)*(d-cb)
}

// blendsWithBackdrop reports whether mode mixes source and backdrop colors
// rather than replacing the backdrop.
func blendsWithBackdrop(mode BlendMode) bool {
	_, ok := separableBlend[mode]
	return ok
}

// blendOver mixes the source color with the backdrop through mode and then
// composites the result over the backdrop:
//
//	Cs' = (1 - ab)*Cs + ab*B(Cb, Cs)
func blendOver(src, dst pixel, mode BlendMode) pixel {
	fn, ok := separableBlend[mode]
	if !ok || dst[3] == 0 || src[3] == 0 {
		return over(src, dst)
	}

	ab := float64(dst[3]) / 255
	mixed := src
	for i := 0; i < 3; i++ {
		cs := float64(src[i]) / 255
		cb := float64(dst[i]) / 255
		mixed[i] = clampByte(((1-ab)*cs + ab*fn(cb, cs)) * 255)
	}
	return over(mixed, dst)
}
