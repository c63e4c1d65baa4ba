package psd

import (
	"fmt"
)

// Document is a decoded PSD file. It is immutable and safe for concurrent
// use.
type Document struct {
	header        Header
	colorModeData []byte
	resources     []ImageResource
	lm            *layerAndMask
	image         *imageData
}

// Decode parses a complete PSD file. Any structural problem aborts decoding
// with a *HeaderError, *LayerError, *ImageError or *ResourceError; no partial
// document is returned.
//
// Layer channel planes are kept compressed and decoded when their pixels
// are requested. The merged image is decoded here, so decompression errors in
// it surface from Decode.
func Decode(data []byte, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s, err := splitSections(data)
	if err != nil {
		return nil, err
	}
	h, err := parseHeader(s.header, o)
	if err != nil {
		return nil, err
	}

	d := &Document{header: h, colorModeData: s.colorModeData}
	if d.resources, err = parseResources(s.imageResources); err != nil {
		return nil, err
	}

	canvas := &canvasFormat{
		depth:      h.Depth,
		mode:       h.ColorMode,
		palette:    d.palette(),
		zip:        o.zip,
		pixelLimit: o.pixelLimit,
	}
	if d.lm, err = parseLayerAndMask(s.layerAndMask, canvas); err != nil {
		return nil, err
	}
	if d.image, err = parseImageData(s.imageData, h, o.zip); err != nil {
		return nil, err
	}

	return d, nil
}

// palette returns the color table of indexed documents, or nil.
func (d *Document) palette() []byte {
	if d.header.ColorMode != ColorModeIndexed || len(d.colorModeData) < 768 {
		return nil
	}
	return d.colorModeData[:768]
}

// Header returns the file header.
func (d *Document) Header() Header { return d.header }

// Width returns the canvas width in pixels.
func (d *Document) Width() uint32 { return d.header.Width }

// Height returns the canvas height in pixels.
func (d *Document) Height() uint32 { return d.header.Height }

// Depth returns the bits per channel sample.
func (d *Document) Depth() Depth { return d.header.Depth }

// ColorMode returns the document color mode.
func (d *Document) ColorMode() ColorMode { return d.header.ColorMode }

// Channels returns the number of channels of the merged image.
func (d *Document) Channels() int { return int(d.header.Channels) }

// ColorModeData returns the raw color mode data section. For indexed
// documents it holds the 768-byte color table.
func (d *Document) ColorModeData() []byte { return d.colorModeData }

// Compression returns the compression tag of the merged image data.
func (d *Document) Compression() Compression { return d.image.compression }

// MergedAlphaMask reports whether the layer count was stored negative, which
// marks the first alpha channel as the transparency of the merged result.
func (d *Document) MergedAlphaMask() bool { return d.lm.mergedAlpha }

// Layers returns the leaf layers in stacking order, index 0 at the bottom.
// The slice must not be modified.
func (d *Document) Layers() []*Layer { return d.lm.layers }

// LayerByIndex returns the layer at stacking index i. It panics if i is out
// of range.
func (d *Document) LayerByIndex(i int) *Layer {
	if i < 0 || i >= len(d.lm.layers) {
		panic(fmt.Sprintf("psd: layer index %d out of range [0, %d)", i, len(d.lm.layers)))
	}
	return d.lm.layers[i]
}

// LayerByName returns the bottom-most layer with the given name.
func (d *Document) LayerByName(name string) (*Layer, bool) {
	for _, l := range d.lm.layers {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Groups returns the layer groups keyed by id. The map must not be
// modified.
func (d *Document) Groups() map[uint32]*Group { return d.lm.groups }

// GroupIDs returns the group ids in the order their records were read.
func (d *Document) GroupIDs() []uint32 { return d.lm.groupIDs }

// GroupLayers returns the layers contained in group id, nested groups
// included.
func (d *Document) GroupLayers(id uint32) ([]*Layer, bool) {
	g, ok := d.lm.groups[id]
	if !ok {
		return nil, false
	}
	return d.lm.layers[g.Start:g.End:g.End], true
}

// Resources returns the image resources in file order.
func (d *Document) Resources() []ImageResource { return d.resources }

// Resource returns the first image resource with the given id.
func (d *Document) Resource(id uint16) (ImageResource, bool) {
	for _, res := range d.resources {
		if res.ID == id {
			return res, true
		}
	}
	return ImageResource{}, false
}

// RGBA returns the merged image as interleaved RGBA8, Width()*Height()*4
// bytes. A new buffer is returned on every call.
func (d *Document) RGBA() []byte {
	out := make([]byte, d.header.pixels()*4)
	d.canvasPlanes().composeInto(out, identityIndex)
	return out
}
