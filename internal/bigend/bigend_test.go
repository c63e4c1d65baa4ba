package bigend

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderIntegers(t *testing.T) {
	data := []byte{
		0x12, 0x34, // uint16
		0x12, 0x34, 0x56, 0x78, // uint32
		0xFF, 0xFE, // int16: -2
		0xFF, 0xFF, 0xFF, 0xFD, // int32: -3
	}
	r := NewReader(data)

	u16, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16() error = %v", err)
	}
	if u16 != 0x1234 {
		t.Errorf("ReadUint16() = 0x%04X, want 0x1234", u16)
	}

	u32, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32() error = %v", err)
	}
	if u32 != 0x12345678 {
		t.Errorf("ReadUint32() = 0x%08X, want 0x12345678", u32)
	}

	i16, _ := r.ReadInt16()
	if i16 != -2 {
		t.Errorf("ReadInt16() = %d, want -2", i16)
	}
	i32, _ := r.ReadInt32()
	if i32 != -3 {
		t.Errorf("ReadInt32() = %d, want -3", i32)
	}

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if _, err := r.ReadByte(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("ReadByte() past end error = %v, want ErrShortBuffer", err)
	}
}

func TestReaderShort(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.ReadUint32(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("ReadUint32() error = %v, want ErrShortBuffer", err)
	}
	if r.Pos() != 0 {
		t.Errorf("failed read moved position to %d", r.Pos())
	}
	if err := r.Skip(-1); !errors.Is(err, ErrNegativeSize) {
		t.Errorf("Skip(-1) error = %v, want ErrNegativeSize", err)
	}
	if err := r.Skip(4); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Skip(4) error = %v, want ErrShortBuffer", err)
	}
}

func TestSliceIsView(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	r := NewReader(data)
	b, err := r.Slice(2)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 9
	if b[0] != 9 {
		t.Error("Slice should alias the source buffer")
	}

	c, _ := r.ReadBytes(2)
	data[2] = 9
	if c[0] != 3 {
		t.Error("ReadBytes should copy")
	}
}

func TestPascalString(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		align int
		size  int
	}{
		{"empty even", "", 2, 2},
		{"odd length even", "ab", 2, 4},
		{"even length even", "abc", 2, 4},
		{"layer name", "Layer 1", 4, 8},
		{"layer name pad", "Bg", 4, 4},
		{"no padding", "abc", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter()
			w.WritePascalString(tt.s, tt.align)
			if w.Len() != tt.size {
				t.Fatalf("written size = %d, want %d", w.Len(), tt.size)
			}

			r := NewReader(append(w.Bytes(), 0xAA))
			got, err := r.ReadPascalString(tt.align)
			if err != nil {
				t.Fatalf("ReadPascalString() error = %v", err)
			}
			if got != tt.s {
				t.Errorf("ReadPascalString() = %q, want %q", got, tt.s)
			}
			if r.Pos() != tt.size {
				t.Errorf("Pos() = %d, want %d", r.Pos(), tt.size)
			}
		})
	}
}

func TestReadSection(t *testing.T) {
	w := NewWriter()
	w.WriteSection([]byte("payload"))
	w.WriteKey("8BIM")

	r := NewReader(w.Bytes())
	b, err := r.ReadSection()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte("payload")) {
		t.Errorf("ReadSection() = %q", b)
	}
	key, _ := r.ReadKey()
	if key != "8BIM" {
		t.Errorf("ReadKey() = %q, want 8BIM", key)
	}

	bad := NewReader([]byte{0, 0, 0, 9, 1, 2})
	if _, err := bad.ReadSection(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("oversized section error = %v, want ErrShortBuffer", err)
	}
}

func TestUnicodeString(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 2, 0x00, 'H', 0x00, 'i'})
	units, err := r.ReadUnicodeString()
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 || units[0] != 'H' || units[1] != 'i' {
		t.Errorf("ReadUnicodeString() = %v", units)
	}

	r = NewReader([]byte{0, 0, 0, 5, 0x00, 'H'})
	if _, err := r.ReadUnicodeString(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short unicode string error = %v", err)
	}
}

func TestWriteKeyPads(t *testing.T) {
	w := NewWriter()
	w.WriteKey("mul")
	if string(w.Bytes()) != "mul " {
		t.Errorf("WriteKey() = %q, want %q", w.Bytes(), "mul ")
	}
}
