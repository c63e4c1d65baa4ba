package psd

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/mrjoshuak/go-psd/internal/bigend"
)

// Layer is one leaf layer of a document. Group folders and their closing
// dividers are not layers; they are exposed as Groups.
type Layer struct {
	Name         string
	ID           uint32 // from the "lyid" block, 0 when absent
	Rect         Rect
	MaskRect     Rect // user mask rectangle, empty when the layer has no mask
	RealMaskRect Rect // real user mask (channel -3) rectangle, empty when absent
	Opacity      uint8
	Visible      bool
	Clipping     bool
	BlendMode    BlendMode
	ParentID     uint32 // innermost enclosing group, 0 at top level

	channels []*ChannelPlane
	canvas   *canvasFormat
}

// canvasFormat is the document-wide pixel format shared by all layers.
type canvasFormat struct {
	depth      Depth
	mode       ColorMode
	palette    []byte
	zip        bool
	pixelLimit int64 // 0 = no limit
}

// Channels returns the kinds of the layer's channels in file order.
func (l *Layer) Channels() []ChannelKind {
	kinds := make([]ChannelKind, len(l.channels))
	for i, p := range l.channels {
		kinds[i] = p.kind
	}
	return kinds
}

// Channel returns the plane of the given kind.
func (l *Layer) Channel(kind ChannelKind) (*ChannelPlane, bool) {
	for _, p := range l.channels {
		if p.kind == kind {
			return p, true
		}
	}
	return nil, false
}

// Width returns the width of the layer rectangle.
func (l *Layer) Width() int { return l.Rect.Width() }

// Height returns the height of the layer rectangle.
func (l *Layer) Height() int { return l.Rect.Height() }

// Section divider types of the "lsct" block.
const (
	dividerNone     = 0
	dividerOpen     = 1
	dividerClosed   = 2
	dividerBounding = 3
)

// channelInfo is one entry of a layer record's channel table.
type channelInfo struct {
	kind   ChannelKind
	length uint32
}

// layerRecord is a layer record as read from the file, before group
// reconstruction separates folders from leaf layers.
type layerRecord struct {
	layer      *Layer
	channels   []channelInfo
	divider    uint32
	hasDivider bool
}

// parseLayerRecord reads one layer record starting at the reader position.
func parseLayerRecord(r *bigend.Reader, canvas *canvasFormat) (*layerRecord, error) {
	l := &Layer{canvas: canvas}
	rec := &layerRecord{layer: l}

	var err error
	if l.Rect.Top, err = r.ReadInt32(); err != nil {
		return nil, truncated("layer rectangle")
	}
	if l.Rect.Left, err = r.ReadInt32(); err != nil {
		return nil, truncated("layer rectangle")
	}
	if l.Rect.Bottom, err = r.ReadInt32(); err != nil {
		return nil, truncated("layer rectangle")
	}
	if l.Rect.Right, err = r.ReadInt32(); err != nil {
		return nil, truncated("layer rectangle")
	}

	n, err := r.ReadUint16()
	if err != nil {
		return nil, truncated("channel count")
	}
	if n > MaxChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidChannelCount, n)
	}
	rec.channels = make([]channelInfo, n)
	for i := range rec.channels {
		kind, err := r.ReadInt16()
		if err != nil {
			return nil, truncated("channel length table")
		}
		length, err := r.ReadUint32()
		if err != nil {
			return nil, truncated("channel length table")
		}
		rec.channels[i] = channelInfo{kind: ChannelKind(kind), length: length}
	}

	sig, err := r.ReadKey()
	if err != nil {
		return nil, truncated("blend mode signature")
	}
	if sig != resourceSignature {
		return nil, fmt.Errorf("%w: blend mode signature %q", ErrInvalidBlockSignature, sig)
	}
	key, err := r.ReadKey()
	if err != nil {
		return nil, truncated("blend mode key")
	}
	l.BlendMode = BlendMode(key)

	var fields [4]byte // opacity, clipping, flags, filler
	for i := range fields {
		if fields[i], err = r.ReadByte(); err != nil {
			return nil, truncated("layer flags")
		}
	}
	l.Opacity = fields[0]
	l.Clipping = fields[1] != 0
	l.Visible = fields[2]&0x02 == 0

	extra, err := r.ReadSection()
	if err != nil {
		return nil, truncated("layer extra data")
	}
	if err := rec.parseExtra(extra); err != nil {
		return nil, err
	}
	if err := l.checkSize(); err != nil {
		return nil, err
	}

	return rec, nil
}

// checkSize rejects rectangles that no plane of a standard document can
// have, so that pixel buffers sized from them stay bounded.
func (l *Layer) checkSize() error {
	rects := []struct {
		what string
		r    Rect
	}{
		{"layer", l.Rect},
		{"mask", l.MaskRect},
		{"real mask", l.RealMaskRect},
	}
	for _, rc := range rects {
		w, h := rc.r.Width(), rc.r.Height()
		if w > MaxDimension || h > MaxDimension {
			return fmt.Errorf("%w: %s rectangle is %dx%d", ErrInvalidDimensions, rc.what, w, h)
		}
		if limit := l.canvas.pixelLimit; limit > 0 && int64(w)*int64(h) > limit {
			return fmt.Errorf("%w: %s rectangle is %dx%d", ErrPixelLimit, rc.what, w, h)
		}
	}
	return nil
}

// parseExtra reads the mask, blending ranges, name and additional layer
// information blocks of a record.
func (rec *layerRecord) parseExtra(extra []byte) error {
	l := rec.layer
	r := bigend.NewReader(extra)

	mask, err := r.ReadSection()
	if err != nil {
		return truncated("layer mask data")
	}
	if len(mask) >= 16 {
		parseMask(mask, l)
	}

	if _, err := r.ReadSection(); err != nil {
		return truncated("layer blending ranges")
	}

	if l.Name, err = r.ReadPascalString(4); err != nil {
		return truncated("layer name")
	}

	// Additional layer information runs to the end of the extra data.
	for r.Len() > 0 {
		if r.Len() < 12 {
			// Trailing alignment padding.
			break
		}
		sig, _ := r.ReadKey()
		if sig != resourceSignature && sig != "8B64" {
			return fmt.Errorf("%w: additional layer info %q", ErrInvalidBlockSignature, sig)
		}
		key, _ := r.ReadKey()
		data, err := r.ReadSection()
		if err != nil {
			return truncated("additional layer info " + key)
		}
		if err := rec.applyInfo(key, data); err != nil {
			return err
		}
	}

	return nil
}

// parseMask reads the rectangles of a layer mask record: the user mask
// rectangle, default color and flags, the optional mask parameters, then
// real flags, real background and the real user mask rectangle. Records of
// 20 bytes end in padding after the flags.
func parseMask(mask []byte, l *Layer) {
	r := bigend.NewReader(mask)
	l.MaskRect = readRect(r)

	_ = r.Skip(1) // default color
	flags, err := r.ReadByte()
	if err != nil {
		return
	}
	if flags&0x10 != 0 {
		params, err := r.ReadByte()
		if err != nil {
			return
		}
		// User and vector mask density (1 byte each) and feather (8 bytes
		// each), in bit order.
		for bit, size := range []int{1, 8, 1, 8} {
			if params&(1<<bit) != 0 {
				if r.Skip(size) != nil {
					return
				}
			}
		}
	}

	if r.Len() < 18 {
		return
	}
	_ = r.Skip(2) // real flags, real user mask background
	l.RealMaskRect = readRect(r)
}

func readRect(r *bigend.Reader) Rect {
	var rect Rect
	rect.Top, _ = r.ReadInt32()
	rect.Left, _ = r.ReadInt32()
	rect.Bottom, _ = r.ReadInt32()
	rect.Right, _ = r.ReadInt32()
	return rect
}

// applyInfo interprets the additional layer information blocks the decoder
// understands. Other blocks are skipped.
func (rec *layerRecord) applyInfo(key string, data []byte) error {
	l := rec.layer
	switch key {
	case "lsct", "lsdk":
		if len(data) < 4 {
			return truncated("section divider")
		}
		rec.divider = binary.BigEndian.Uint32(data)
		rec.hasDivider = true
		if len(data) >= 12 && string(data[4:8]) == resourceSignature {
			l.BlendMode = BlendMode(data[8:12])
		}
	case "luni":
		units, err := bigend.NewReader(data).ReadUnicodeString()
		if err != nil {
			return truncated("unicode layer name")
		}
		// Some writers include the terminating NUL in the count.
		for len(units) > 0 && units[len(units)-1] == 0 {
			units = units[:len(units)-1]
		}
		l.Name = string(utf16.Decode(units))
	case "lyid":
		if len(data) < 4 {
			return truncated("layer id")
		}
		l.ID = binary.BigEndian.Uint32(data)
	}
	return nil
}

// isFolder reports whether the record is a folder header.
func (rec *layerRecord) isFolder() bool {
	return rec.hasDivider && (rec.divider == dividerOpen || rec.divider == dividerClosed)
}

// isBoundingDivider reports whether the record is the hidden divider that
// marks the bottom end of a folder.
func (rec *layerRecord) isBoundingDivider() bool {
	return rec.hasDivider && rec.divider == dividerBounding
}

// attachChannels slices each channel's data out of r, in table order.
func (rec *layerRecord) attachChannels(r *bigend.Reader) error {
	l := rec.layer
	for _, ci := range rec.channels {
		data, err := r.Slice(int(ci.length))
		if err != nil {
			return truncated(fmt.Sprintf("channel %s data", ci.kind))
		}

		p := &ChannelPlane{
			kind:   ci.kind,
			depth:  l.canvas.depth,
			zip:    l.canvas.zip,
			width:  l.Rect.Width(),
			height: l.Rect.Height(),
		}
		switch {
		case ci.kind == ChannelRealUserMask && !l.RealMaskRect.Empty():
			p.width, p.height = l.RealMaskRect.Width(), l.RealMaskRect.Height()
		case ci.kind.isMask():
			p.width, p.height = l.MaskRect.Width(), l.MaskRect.Height()
		}

		switch {
		case len(data) == 0:
			p.missing = true
		case len(data) < 2:
			return truncated(fmt.Sprintf("channel %s compression tag", ci.kind))
		default:
			p.compression = Compression(binary.BigEndian.Uint16(data))
			if !p.compression.valid() {
				return fmt.Errorf("%w: channel %s tag %d", ErrUnsupportedCompression, ci.kind, uint16(p.compression))
			}
			p.data = data[2:]
		}
		l.channels = append(l.channels, p)
	}
	return nil
}
