// Package bigend provides a bounds-checked big-endian reader for the
// byte spans of a Photoshop document.
//
// Every multi-byte value in a PSD file is stored big-endian. The Reader
// never copies unless asked to: Slice returns views into the source buffer,
// which stays owned by the caller.
package bigend

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrShortBuffer is returned when a read would run past the end of the data.
	ErrShortBuffer = errors.New("bigend: buffer too short")

	// ErrNegativeSize is returned when a size parameter is negative.
	ErrNegativeSize = errors.New("bigend: negative size")
)

// Reader reads big-endian values from a byte slice while tracking a position.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	if n > r.Len() {
		return ErrShortBuffer
	}
	r.pos += n
	return nil
}

// Slice returns the next n bytes without copying and advances past them.
func (r *Reader) Slice(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	if n > r.Len() {
		return nil, ErrShortBuffer
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBytes reads n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.Slice(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrShortBuffer
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.Len() < 2 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadInt16 reads a signed 16-bit integer.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.Len() < 4 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadKey reads a 4-byte ASCII signature or key such as "8BIM" or "lsct".
func (r *Reader) ReadKey() (string, error) {
	b, err := r.Slice(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadPascalString reads a length-prefixed string and then skips padding so
// that the whole field (length byte included) is a multiple of align bytes.
// An align of 0 or 1 means no padding.
func (r *Reader) ReadPascalString(align int) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b, err := r.Slice(int(n))
	if err != nil {
		return "", err
	}
	if align > 1 {
		if rem := (int(n) + 1) % align; rem != 0 {
			if err := r.Skip(align - rem); err != nil {
				return "", err
			}
		}
	}
	return string(b), nil
}

// ReadUnicodeString reads a 4-byte length (in UTF-16 code units) followed by
// that many big-endian code units.
func (r *Reader) ReadUnicodeString() ([]uint16, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int64(n)*2 > int64(r.Len()) {
		return nil, ErrShortBuffer
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(r.data[r.pos:])
		r.pos += 2
	}
	return units, nil
}

// ReadSection reads a 4-byte length followed by that many bytes, returning
// the bytes as a view.
func (r *Reader) ReadSection() ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int64(n) > int64(r.Len()) {
		return nil, ErrShortBuffer
	}
	return r.Slice(int(n))
}

// Writer appends big-endian values to a growing buffer. It is used to build
// documents in tests and by tooling that re-encodes channel planes.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the written data.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteBytes appends b.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteUint16 appends an unsigned 16-bit integer.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// WriteInt16 appends a signed 16-bit integer.
func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteUint32 appends an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// WriteInt32 appends a signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteKey appends a 4-byte key. Shorter keys are space padded.
func (w *Writer) WriteKey(key string) {
	var k [4]byte
	copy(k[:], "    ")
	copy(k[:], key)
	w.buf = append(w.buf, k[:]...)
}

// WritePascalString appends a length-prefixed string padded to align bytes.
func (w *Writer) WritePascalString(s string, align int) {
	if len(s) > 255 {
		s = s[:255]
	}
	w.buf = append(w.buf, byte(len(s)))
	w.buf = append(w.buf, s...)
	if align > 1 {
		if rem := (len(s) + 1) % align; rem != 0 {
			w.buf = append(w.buf, make([]byte, align-rem)...)
		}
	}
}

// WriteSection appends a 4-byte length followed by b.
func (w *Writer) WriteSection(b []byte) {
	w.WriteUint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}
