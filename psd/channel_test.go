package psd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mrjoshuak/go-psd/compression"
)

// gradient returns n bytes with a repeating pattern that exercises both runs
// and literals in PackBits.
func gradient(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		if (i/5)%2 == 0 {
			b[i] = 200
		} else {
			b[i] = byte(i * 7)
		}
	}
	return b
}

func TestDecodePlaneRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		comp  Compression
		depth Depth
		w, h  int
	}{
		{"raw 8-bit", CompressionRaw, Depth8, 7, 3},
		{"rle 8-bit", CompressionRLE, Depth8, 13, 4},
		{"rle 16-bit", CompressionRLE, Depth16, 5, 5},
		{"rle 1-bit", CompressionRLE, Depth1, 11, 3},
		{"zip 8-bit", CompressionZIP, Depth8, 9, 2},
		{"zip prediction 8-bit", CompressionZIPPrediction, Depth8, 9, 4},
		{"zip prediction 16-bit", CompressionZIPPrediction, Depth16, 6, 3},
		{"zip prediction 32-bit", CompressionZIPPrediction, Depth32, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := gradient(tt.depth.rowBytes(tt.w) * tt.h)
			enc := encodePlane(t, tt.comp, data, tt.w, tt.h, tt.depth)

			got, err := decodePlane(tt.comp, enc[2:], tt.w, tt.h, tt.depth, true)
			if err != nil {
				t.Fatalf("decodePlane() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("decodePlane() = %v, want %v", got, data)
			}
		})
	}
}

func TestDecodePlaneRawLength(t *testing.T) {
	for _, n := range []int{5, 7} {
		_, err := decodePlane(CompressionRaw, make([]byte, n), 3, 2, Depth8, false)
		if !errors.Is(err, ErrDecompression) {
			t.Errorf("%d raw bytes for a 3x2 plane: error = %v, want ErrDecompression", n, err)
		}
	}
}

func TestDecodePlaneRLEMismatch(t *testing.T) {
	// Row table claims 2 bytes per row; the rows decode to 3 bytes, not 4.
	short := []byte{0, 2, 0, 2, signed(-2), 9, signed(-2), 9}
	_, err := decodePlane(CompressionRLE, short, 4, 2, Depth8, false)
	if !errors.Is(err, ErrDecompression) || !errors.Is(err, compression.ErrRLEShort) {
		t.Errorf("short rows: error = %v, want ErrDecompression wrapping ErrRLEShort", err)
	}

	// Valid rows followed by stray bytes the row table does not cover.
	extra := []byte{0, 2, 0, 2, signed(-3), 9, signed(-3), 9, 0, 1}
	_, err = decodePlane(CompressionRLE, extra, 4, 2, Depth8, false)
	if !errors.Is(err, ErrDecompression) {
		t.Errorf("trailing bytes: error = %v, want ErrDecompression", err)
	}

	// The row table itself is cut off.
	_, err = decodePlane(CompressionRLE, []byte{0, 2, 0}, 4, 2, Depth8, false)
	if !errors.Is(err, ErrDecompression) {
		t.Errorf("short row table: error = %v, want ErrDecompression", err)
	}
}

func signed(v int8) byte { return byte(v) }

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func TestZIPRequiresOption(t *testing.T) {
	td := newTestDoc(3, 2)
	td.layers = []testLayer{leaf("z", Rect{0, 0, 2, 3},
		testChannel{kind: ChannelRed, data: gradient(6), comp: CompressionZIP})}
	data := td.bytes(t)

	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	l := doc.Layers()[0]
	if _, err := l.RGBA(); !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("RGBA() without ZIP decoding: error = %v, want ErrUnsupportedCompression", err)
	}
	if _, err := doc.Flatten(nil); !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("Flatten() without ZIP decoding: error = %v, want ErrUnsupportedCompression", err)
	}

	doc, err = Decode(data, WithZIPDecoding())
	if err != nil {
		t.Fatalf("Decode(WithZIPDecoding) error = %v", err)
	}
	p, _ := doc.Layers()[0].Channel(ChannelRed)
	if p.Compression() != CompressionZIP {
		t.Errorf("Compression() = %v, want ZIP", p.Compression())
	}
	plane, err := p.Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(plane, gradient(6)) {
		t.Errorf("plane = %v, want %v", plane, gradient(6))
	}
}

func TestImageData(t *testing.T) {
	planes := [][]byte{gradient(12), reversed(gradient(12)), solid(4, 3, 77)}

	tests := []struct {
		name string
		comp Compression
		opts []Option
	}{
		{"raw", CompressionRaw, nil},
		{"rle", CompressionRLE, nil},
		{"zip", CompressionZIP, []Option{WithZIPDecoding()}},
		{"zip prediction", CompressionZIPPrediction, []Option{WithZIPDecoding()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := newTestDoc(4, 3)
			td.image = planes
			td.imageComp = tt.comp
			doc := td.decode(t, tt.opts...)

			if doc.Compression() != tt.comp {
				t.Errorf("Compression() = %v, want %v", doc.Compression(), tt.comp)
			}
			for ch, want := range planes {
				if !bytes.Equal(doc.image.planes[ch], want) {
					t.Errorf("channel %d = %v, want %v", ch, doc.image.planes[ch], want)
				}
			}
		})
	}
}

func TestImageDataErrors(t *testing.T) {
	rleShort := newTestDoc(4, 1)
	rleShort.imageComp = CompressionRLE
	data := rleShort.bytes(t)
	// Drop the last byte of the last channel's compressed row.
	rleBroken := append([]byte(nil), data[:len(data)-1]...)

	zip := newTestDoc(4, 1)
	zip.imageComp = CompressionZIP

	raw := newTestDoc(4, 2)
	rawData := raw.bytes(t)

	header := newTestDoc(2, 2).bytes(t)
	unknownTag := patch16(header, len(header)-2*2*3-2, 7)

	tests := []struct {
		name    string
		data    []byte
		want    error
		channel int
	}{
		{"rle data truncated", rleBroken, ErrDecompression, 2},
		{"zip without option", zip.bytes(t), ErrUnsupportedCompression, -1},
		{"raw plane short", rawData[:len(rawData)-1], ErrDecompression, 2},
		{"unknown tag", unknownTag, ErrUnsupportedCompression, -1},
		{"no compression tag", header[:len(header)-2*2*3-1], ErrTruncated, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
			var ie *ImageError
			if !errors.As(err, &ie) {
				t.Fatalf("error %T is not an *ImageError", err)
			}
			if ie.Channel != tt.channel {
				t.Errorf("Channel = %d, want %d", ie.Channel, tt.channel)
			}
		})
	}
}

func TestImageDataRLEMismatch(t *testing.T) {
	// One 4-pixel channel whose only row decodes to 3 bytes.
	h := Header{Channels: 1, Width: 4, Height: 1, Depth: Depth8, ColorMode: ColorModeGrayscale}
	data := []byte{0, 2, signed(-2), 5}
	_, err := parseImageData(data, h, false)
	var ie *ImageError
	if !errors.As(err, &ie) || !errors.Is(err, ErrDecompression) {
		t.Fatalf("error = %v, want *ImageError wrapping ErrDecompression", err)
	}
	if !errors.Is(err, compression.ErrRLEShort) {
		t.Errorf("error = %v, want it to wrap ErrRLEShort", err)
	}
}
