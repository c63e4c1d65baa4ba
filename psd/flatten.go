package psd

// candidate is a layer taking part in one Flatten call. Its local RGBA is
// computed on first use and kept for the rest of the call only.
type candidate struct {
	layer *Layer
	rgba  []byte
	err   error
	done  bool
}

func (c *candidate) pixels() ([]byte, error) {
	if !c.done {
		c.rgba, c.err = c.layer.RGBA()
		c.done = true
	}
	return c.rgba, c.err
}

// at returns the layer pixel at canvas position (x, y), which must lie
// inside the layer rectangle.
func (c *candidate) at(x, y int) (pixel, error) {
	buf, err := c.pixels()
	if err != nil {
		return pixel{}, err
	}
	r := c.layer.Rect
	i := ((y-int(r.Top))*r.Width() + (x - int(r.Left))) * 4
	return pixel{buf[i], buf[i+1], buf[i+2], buf[i+3]}, nil
}

// Flatten composites the selected layers into an interleaved RGBA8 buffer of
// Width()*Height()*4 bytes.
//
// A layer takes part when it is visible with non-zero opacity, or when it is
// a clipping layer, and filter (if non-nil) accepts its index and value.
// Layers are combined top to bottom with the source-over operator; the
// declared blend mode is ignored unless WithBlendModes is given. A document
// without layer records flattens to its merged image (RGBA). When no layer
// is selected the result is fully transparent.
//
// Flatten does not modify the document and may be called concurrently.
func (d *Document) Flatten(filter func(index int, l *Layer) bool, opts ...FlattenOption) ([]byte, error) {
	o := &flattenOptions{}
	for _, opt := range opts {
		opt(o)
	}

	layers := d.lm.layers
	if len(layers) == 0 {
		return d.RGBA(), nil
	}

	width, height := int(d.header.Width), int(d.header.Height)
	out := make([]byte, width*height*4)

	// Candidates in top-to-bottom order.
	var cands []*candidate
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		if !((l.Opacity > 0 && l.Visible) || l.Clipping) {
			continue
		}
		if filter != nil && !filter(i, l) {
			continue
		}
		cands = append(cands, &candidate{layer: l})
	}
	if len(cands) == 0 {
		return out, nil
	}

	hits := make([]pixel, 0, len(cands))
	modes := make([]BlendMode, 0, len(cands))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			hits, modes = hits[:0], modes[:0]

			// Walk down the stack until an opaque pixel hides the rest.
			for _, c := range cands {
				l := c.layer
				if !l.Rect.Contains(x, y) {
					continue
				}
				p, err := c.at(x, y)
				if err != nil {
					return nil, err
				}
				opaque := p[3] == 255 && l.Opacity == 255
				hits = append(hits, p.withOpacity(l.Opacity))
				modes = append(modes, l.BlendMode)
				if opaque && !(o.blendModes && blendsWithBackdrop(l.BlendMode)) {
					break
				}
			}

			var acc pixel
			for j := len(hits) - 1; j >= 0; j-- {
				if o.blendModes {
					acc = blendOver(hits[j], acc, modes[j])
				} else {
					acc = over(hits[j], acc)
				}
			}

			i := (y*width + x) * 4
			copy(out[i:i+4], acc[:])
		}
	}

	return out, nil
}
