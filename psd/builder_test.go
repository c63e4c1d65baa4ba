package psd

import (
	"bytes"
	"testing"

	"github.com/mrjoshuak/go-psd/compression"
	"github.com/mrjoshuak/go-psd/internal/bigend"
	"github.com/mrjoshuak/go-psd/internal/predictor"
)

// testChannel is one layer channel to encode: uncompressed samples plus the
// compression to store them with.
type testChannel struct {
	kind ChannelKind
	data []byte
	comp Compression
}

// testLayer describes one layer record in file order.
type testLayer struct {
	name     string
	unicode  string
	id       uint32
	rect     Rect
	maskRect *Rect
	realMask *Rect // real user mask rectangle, written after maskRect
	opacity  uint8
	hidden   bool
	clipping bool
	blend    BlendMode
	divider  int // -1 for none
	channels []testChannel
}

// leaf returns a visible, opaque normal layer with no divider.
func leaf(name string, rect Rect, channels ...testChannel) testLayer {
	return testLayer{name: name, rect: rect, opacity: 255, divider: -1, channels: channels}
}

// folder returns a folder record; the folder closes the group opened by the
// matching bounding divider.
func folder(name string) testLayer {
	return testLayer{name: name, opacity: 255, divider: dividerOpen}
}

// boundary returns the hidden divider that opens a group in file order.
func boundary() testLayer {
	return testLayer{name: "</Layer group>", opacity: 255, divider: dividerBounding}
}

// testResource is one image resource block.
type testResource struct {
	id   uint16
	name string
	data []byte
}

// testDoc builds a complete PSD file for tests.
type testDoc struct {
	width, height int
	depth         Depth
	mode          ColorMode
	channels      int
	colorModeData []byte
	resources     []testResource
	layers        []testLayer
	negCount      bool
	globalInfo    string // "Lr16" etc: store layer info in a global block
	noLayerInfo   bool   // empty layer and mask section
	image         [][]byte
	imageComp     Compression
}

func newTestDoc(width, height int) *testDoc {
	return &testDoc{width: width, height: height, depth: Depth8, mode: ColorModeRGB, channels: 3}
}

// solid returns a w*h plane filled with v.
func solid(w, h int, v byte) []byte {
	return bytes.Repeat([]byte{v}, w*h)
}

// rgbLayer returns a leaf layer of a uniform color.
func rgbLayer(name string, rect Rect, r, g, b, a byte) testLayer {
	w, h := rect.Width(), rect.Height()
	return leaf(name, rect,
		testChannel{kind: ChannelTransparency, data: solid(w, h, a)},
		testChannel{kind: ChannelRed, data: solid(w, h, r)},
		testChannel{kind: ChannelGreen, data: solid(w, h, g)},
		testChannel{kind: ChannelBlue, data: solid(w, h, b)},
	)
}

// encodePlane returns the compression tag followed by the stored bytes.
func encodePlane(t testing.TB, c Compression, data []byte, width, height int, depth Depth) []byte {
	t.Helper()
	w := bigend.NewWriter()
	w.WriteUint16(uint16(c))
	rowBytes := depth.rowBytes(width)

	switch c {
	case CompressionRaw:
		w.WriteBytes(data)
	case CompressionRLE:
		counts, body := compression.PackBitsCompressRows(data, rowBytes)
		for _, n := range counts {
			w.WriteUint16(uint16(n))
		}
		w.WriteBytes(body)
	case CompressionZIP, CompressionZIPPrediction:
		src := append([]byte(nil), data...)
		if c == CompressionZIPPrediction {
			if err := predictor.EncodeRows(src, width, height, int(depth)); err != nil {
				t.Fatalf("EncodeRows: %v", err)
			}
		}
		z, err := compression.ZIPCompress(src)
		if err != nil {
			t.Fatalf("ZIPCompress: %v", err)
		}
		w.WriteBytes(z)
	default:
		w.WriteBytes(data)
	}
	return w.Bytes()
}

func writeBlock(w *bigend.Writer, key string, data []byte) {
	w.WriteKey(resourceSignature)
	w.WriteKey(key)
	w.WriteSection(data)
}

func (td *testDoc) layerRecord(t testing.TB, l testLayer, encoded [][]byte) []byte {
	t.Helper()
	w := bigend.NewWriter()
	w.WriteInt32(l.rect.Top)
	w.WriteInt32(l.rect.Left)
	w.WriteInt32(l.rect.Bottom)
	w.WriteInt32(l.rect.Right)

	w.WriteUint16(uint16(len(l.channels)))
	for i, ch := range l.channels {
		w.WriteInt16(int16(ch.kind))
		w.WriteUint32(uint32(len(encoded[i])))
	}

	w.WriteKey(resourceSignature)
	blend := l.blend
	if blend == "" {
		blend = BlendNormal
	}
	w.WriteKey(string(blend))
	_ = w.WriteByte(l.opacity)
	if l.clipping {
		_ = w.WriteByte(1)
	} else {
		_ = w.WriteByte(0)
	}
	var flags byte
	if l.hidden {
		flags |= 0x02
	}
	_ = w.WriteByte(flags)
	_ = w.WriteByte(0)

	extra := bigend.NewWriter()
	writeRect := func(m *bigend.Writer, r Rect) {
		m.WriteInt32(r.Top)
		m.WriteInt32(r.Left)
		m.WriteInt32(r.Bottom)
		m.WriteInt32(r.Right)
	}
	switch {
	case l.realMask != nil:
		m := bigend.NewWriter()
		var user Rect
		if l.maskRect != nil {
			user = *l.maskRect
		}
		writeRect(m, user)
		m.WriteBytes([]byte{0, 0}) // default color, flags
		m.WriteBytes([]byte{0, 0}) // real flags, real background
		writeRect(m, *l.realMask)
		extra.WriteSection(m.Bytes())
	case l.maskRect != nil:
		m := bigend.NewWriter()
		writeRect(m, *l.maskRect)
		m.WriteBytes([]byte{0, 0, 0, 0}) // default color, flags, padding
		extra.WriteSection(m.Bytes())
	default:
		extra.WriteSection(nil)
	}
	extra.WriteSection(nil) // blending ranges
	extra.WritePascalString(l.name, 4)

	if l.divider >= 0 {
		d := bigend.NewWriter()
		d.WriteUint32(uint32(l.divider))
		if l.blend != "" {
			d.WriteKey(resourceSignature)
			d.WriteKey(string(l.blend))
		}
		writeBlock(extra, "lsct", d.Bytes())
	}
	if l.unicode != "" {
		u := bigend.NewWriter()
		runes := []rune(l.unicode)
		u.WriteUint32(uint32(len(runes)))
		for _, r := range runes {
			u.WriteUint16(uint16(r))
		}
		writeBlock(extra, "luni", u.Bytes())
	}
	if l.id != 0 {
		u := bigend.NewWriter()
		u.WriteUint32(l.id)
		writeBlock(extra, "lyid", u.Bytes())
	}

	w.WriteSection(extra.Bytes())
	return w.Bytes()
}

func (td *testDoc) layerInfo(t testing.TB) []byte {
	t.Helper()
	w := bigend.NewWriter()
	count := int16(len(td.layers))
	if td.negCount {
		count = -count
	}
	w.WriteInt16(count)

	var data [][][]byte
	for _, l := range td.layers {
		var enc [][]byte
		for _, ch := range l.channels {
			cw, chh := l.rect.Width(), l.rect.Height()
			switch {
			case ch.kind == ChannelRealUserMask && l.realMask != nil:
				cw, chh = l.realMask.Width(), l.realMask.Height()
			case ch.kind.isMask() && l.maskRect != nil:
				cw, chh = l.maskRect.Width(), l.maskRect.Height()
			}
			if ch.data == nil && ch.comp == CompressionRaw {
				enc = append(enc, nil)
				continue
			}
			enc = append(enc, encodePlane(t, ch.comp, ch.data, cw, chh, td.depth))
		}
		data = append(data, enc)
		w.WriteBytes(td.layerRecord(t, l, enc))
	}
	for _, enc := range data {
		for _, b := range enc {
			w.WriteBytes(b)
		}
	}
	if w.Len()%2 == 1 {
		_ = w.WriteByte(0)
	}
	return w.Bytes()
}

func (td *testDoc) layerAndMask(t testing.TB) []byte {
	t.Helper()
	if td.noLayerInfo {
		return nil
	}
	w := bigend.NewWriter()
	info := td.layerInfo(t)
	if td.globalInfo == "" {
		w.WriteSection(info)
		w.WriteSection(nil) // global layer mask
		return w.Bytes()
	}

	w.WriteSection(nil)
	w.WriteSection(nil)
	writeBlock(w, "Patt", []byte{1, 2}) // unrelated block, padded to 4
	w.WriteBytes([]byte{0, 0})
	writeBlock(w, td.globalInfo, info)
	return w.Bytes()
}

func (td *testDoc) imageData(t testing.TB) []byte {
	t.Helper()
	planes := td.image
	size := td.depth.rowBytes(td.width) * td.height
	for len(planes) < td.channels {
		planes = append(planes, make([]byte, size))
	}

	w := bigend.NewWriter()
	w.WriteUint16(uint16(td.imageComp))
	switch td.imageComp {
	case CompressionRLE:
		var bodies [][]byte
		for _, p := range planes {
			counts, body := compression.PackBitsCompressRows(p, td.depth.rowBytes(td.width))
			for _, n := range counts {
				w.WriteUint16(uint16(n))
			}
			bodies = append(bodies, body)
		}
		for _, b := range bodies {
			w.WriteBytes(b)
		}
	case CompressionZIP, CompressionZIPPrediction:
		var all []byte
		for _, p := range planes {
			p = append([]byte(nil), p...)
			if td.imageComp == CompressionZIPPrediction {
				if err := predictor.EncodeRows(p, td.width, td.height, int(td.depth)); err != nil {
					t.Fatalf("EncodeRows: %v", err)
				}
			}
			all = append(all, p...)
		}
		z, err := compression.ZIPCompress(all)
		if err != nil {
			t.Fatalf("ZIPCompress: %v", err)
		}
		w.WriteBytes(z)
	default:
		for _, p := range planes {
			w.WriteBytes(p)
		}
	}
	return w.Bytes()
}

// bytes encodes the whole document.
func (td *testDoc) bytes(t testing.TB) []byte {
	t.Helper()
	w := bigend.NewWriter()
	w.WriteKey(fileSignature)
	w.WriteUint16(fileVersion)
	w.WriteBytes(make([]byte, 6))
	w.WriteUint16(uint16(td.channels))
	w.WriteUint32(uint32(td.height))
	w.WriteUint32(uint32(td.width))
	w.WriteUint16(uint16(td.depth))
	w.WriteUint16(uint16(td.mode))

	w.WriteSection(td.colorModeData)

	res := bigend.NewWriter()
	for _, r := range td.resources {
		res.WriteKey(resourceSignature)
		res.WriteUint16(r.id)
		res.WritePascalString(r.name, 2)
		res.WriteSection(r.data)
		if len(r.data)%2 == 1 {
			_ = res.WriteByte(0)
		}
	}
	w.WriteSection(res.Bytes())

	w.WriteSection(td.layerAndMask(t))
	w.WriteBytes(td.imageData(t))
	return w.Bytes()
}

// decode builds and decodes the document, failing the test on error.
func (td *testDoc) decode(t testing.TB, opts ...Option) *Document {
	t.Helper()
	doc, err := Decode(td.bytes(t), opts...)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return doc
}

// rgbaAt returns pixel (x, y) of an interleaved RGBA buffer of width w.
func rgbaAt(buf []byte, w, x, y int) [4]byte {
	i := (y*w + x) * 4
	return [4]byte{buf[i], buf[i+1], buf[i+2], buf[i+3]}
}
