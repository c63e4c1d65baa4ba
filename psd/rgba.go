package psd

// planeSet is the input of the channel composer: same-sized decoded planes
// plus the pixel format. Absent planes are nil. Whole-canvas and per-layer
// RGBA conversion both go through composeInto.
type planeSet struct {
	width, height int
	depth         Depth
	mode          ColorMode
	palette       []byte // 768-byte indexed color table, if any

	red, green, blue, black, alpha []byte
}

// sample returns the most significant 8 bits of sample i of plane. 1-bit
// planes expand to 0 for a set bit (black) and 255 otherwise.
func (s *planeSet) sample(plane []byte, i int) byte {
	switch s.depth {
	case Depth1:
		x, y := i%s.width, i/s.width
		off := y*s.depth.rowBytes(s.width) + x/8
		if off >= len(plane) {
			return 0
		}
		if plane[off]&(0x80>>(x%8)) != 0 {
			return 0
		}
		return 255
	case Depth16:
		i *= 2
	case Depth32:
		i *= 4
	}
	if i >= len(plane) {
		return 0
	}
	return plane[i]
}

// composeInto writes interleaved RGBA8 pixels into dst. index maps a pixel
// index of the plane set to a pixel index of dst; a negative result drops
// the pixel.
func (s *planeSet) composeInto(dst []byte, index func(i int) int) {
	n := s.width * s.height
	if n == 0 || s.red == nil {
		return
	}

	for i := 0; i < n; i++ {
		j := index(i)
		if j < 0 {
			continue
		}
		px := dst[j*4 : j*4+4]

		v := s.sample(s.red, i)
		switch s.mode {
		case ColorModeGrayscale, ColorModeDuotone, ColorModeBitmap:
			px[0], px[1], px[2] = v, v, v

		case ColorModeIndexed:
			if len(s.palette) >= 768 {
				px[0], px[1], px[2] = s.palette[v], s.palette[256+int(v)], s.palette[512+int(v)]
			} else {
				px[0], px[1], px[2] = v, v, v
			}

		case ColorModeCMYK:
			var k int
			if s.black != nil {
				k = int(s.sample(s.black, i))
			}
			c, m, y := int(v), int(v), int(v)
			if s.green != nil {
				m = int(s.sample(s.green, i))
			}
			if s.blue != nil {
				y = int(s.sample(s.blue, i))
			}
			px[0] = byte(255 - min(255, c+k))
			px[1] = byte(255 - min(255, m+k))
			px[2] = byte(255 - min(255, y+k))

		default:
			// Missing green or blue planes repeat red, as in single
			// channel images.
			g, b := v, v
			if s.green != nil {
				g = s.sample(s.green, i)
			}
			if s.blue != nil {
				b = s.sample(s.blue, i)
			}
			px[0], px[1], px[2] = v, g, b
		}

		if s.alpha != nil {
			px[3] = s.sample(s.alpha, i)
		} else {
			px[3] = 255
		}
	}
}

func identityIndex(i int) int { return i }

// canvasPlanes assigns the merged image channels to color roles for the
// document's color mode.
func (d *Document) canvasPlanes() *planeSet {
	s := &planeSet{
		width:   int(d.header.Width),
		height:  int(d.header.Height),
		depth:   d.header.Depth,
		mode:    d.header.ColorMode,
		palette: d.palette(),
	}
	planes := d.image.planes
	at := func(i int) []byte {
		if i < len(planes) {
			return planes[i]
		}
		return nil
	}

	s.red = at(0)
	switch s.mode {
	case ColorModeGrayscale, ColorModeDuotone, ColorModeBitmap, ColorModeIndexed:
		// A second channel in grayscale documents has no known meaning and
		// is ignored.
	case ColorModeCMYK:
		s.green, s.blue, s.black, s.alpha = at(1), at(2), at(3), at(4)
	default:
		s.green, s.blue, s.alpha = at(1), at(2), at(3)
	}
	return s
}

// layerPlanes decodes the channels of l needed for RGBA conversion.
func (l *Layer) layerPlanes() (*planeSet, error) {
	s := &planeSet{
		width:   l.Rect.Width(),
		height:  l.Rect.Height(),
		depth:   l.canvas.depth,
		mode:    l.canvas.mode,
		palette: l.canvas.palette,
	}
	if s.width == 0 || s.height == 0 {
		return s, nil
	}

	roles := []struct {
		kind ChannelKind
		dst  *[]byte
	}{
		{ChannelRed, &s.red},
		{ChannelGreen, &s.green},
		{ChannelBlue, &s.blue},
		{ChannelBlack, &s.black},
		{ChannelTransparency, &s.alpha},
	}
	for _, role := range roles {
		p, ok := l.Channel(role.kind)
		if !ok || p.missing {
			continue
		}
		if role.kind == ChannelBlack && s.mode != ColorModeCMYK {
			continue
		}
		plane, err := p.Decode()
		if err != nil {
			return nil, err
		}
		*role.dst = plane
	}

	// Layers without color channels still cover their rectangle.
	if s.red == nil {
		s.red = make([]byte, s.depth.rowBytes(s.width)*s.height)
	}
	return s, nil
}

// RGBA returns the layer's pixels as interleaved RGBA8 over its own
// rectangle: Width()*Height()*4 bytes.
func (l *Layer) RGBA() ([]byte, error) {
	s, err := l.layerPlanes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, s.width*s.height*4)
	s.composeInto(out, identityIndex)
	return out, nil
}

// CanvasRGBA returns the layer's pixels placed on a transparent canvas of
// the given size. Parts of the layer outside the canvas are dropped.
func (l *Layer) CanvasRGBA(width, height int) ([]byte, error) {
	s, err := l.layerPlanes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, width*height*4)
	left, top, w := int(l.Rect.Left), int(l.Rect.Top), s.width
	s.composeInto(out, func(i int) int {
		x, y := left+i%w, top+i/w
		if x < 0 || x >= width || y < 0 || y >= height {
			return -1
		}
		return y*width + x
	})
	return out, nil
}
