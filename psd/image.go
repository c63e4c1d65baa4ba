package psd

import "image"

// nrgba wraps an interleaved RGBA8 buffer of the canvas size. The buffers
// produced by the composer are not premultiplied.
func (d *Document) nrgba(pix []byte) *image.NRGBA {
	w, h := int(d.header.Width), int(d.header.Height)
	return &image.NRGBA{
		Pix:    pix,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}
}

// Image returns the merged image as an *image.NRGBA.
func (d *Document) Image() *image.NRGBA {
	return d.nrgba(d.RGBA())
}

// FlattenImage is Flatten returning an *image.NRGBA.
func (d *Document) FlattenImage(filter func(index int, l *Layer) bool, opts ...FlattenOption) (*image.NRGBA, error) {
	pix, err := d.Flatten(filter, opts...)
	if err != nil {
		return nil, err
	}
	return d.nrgba(pix), nil
}

// Image returns the layer pixels as an *image.NRGBA whose bounds are the
// layer rectangle in canvas coordinates.
func (l *Layer) Image() (*image.NRGBA, error) {
	pix, err := l.RGBA()
	if err != nil {
		return nil, err
	}
	r := l.Rect
	return &image.NRGBA{
		Pix:    pix,
		Stride: l.Width() * 4,
		Rect:   image.Rect(int(r.Left), int(r.Top), int(r.Left)+l.Width(), int(r.Top)+l.Height()),
	}, nil
}
