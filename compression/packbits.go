// Package compression provides the codecs used by Photoshop channel planes.
package compression

import (
	"errors"
)

// PackBits compression errors
var (
	ErrRLECorrupted = errors.New("compression: corrupted RLE data")
	ErrRLEOverflow  = errors.New("compression: RLE decompressed size overflow")
	ErrRLEShort     = errors.New("compression: RLE scanline decoded short")
)

// PackBits constants
const (
	// rleMinRunLength is the minimum run length that triggers encoding
	rleMinRunLength = 3
	// rleMaxRunLength is the longest run or literal a single control byte covers
	rleMaxRunLength = 128
)

// PackBitsCompress compresses a single scanline using Apple PackBits.
//
// Control bytes are signed:
//   - 0 to 127 (n): the next n+1 bytes are copied literally
//   - -1 to -127 (n): the next byte is repeated 1-n times
//   - -128: no-op, never emitted by this encoder
//
// For example:
//
//	[A, A, A, A, B, C, D] -> [-3, A, 2, B, C, D]
func PackBitsCompress(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}

	dst := make([]byte, 0, len(src)+len(src)/128+1)

	i := 0
	for i < len(src) {
		val := src[i]
		runEnd := i + 1
		for runEnd < len(src) && src[runEnd] == val && runEnd-i < rleMaxRunLength {
			runEnd++
		}
		runLength := runEnd - i

		if runLength >= rleMinRunLength {
			dst = append(dst, byte(int8(1-runLength)), val)
			i = runEnd
			continue
		}

		literalStart := i
		for i < len(src) && i-literalStart < rleMaxRunLength {
			if i+rleMinRunLength <= len(src) {
				val := src[i]
				if src[i+1] == val && src[i+2] == val {
					break
				}
			}
			i++
		}

		dst = append(dst, byte(i-literalStart-1))
		dst = append(dst, src[literalStart:i]...)
	}

	return dst
}

// PackBitsDecompressTo decodes one scanline into dst.
// The whole of src must be consumed and dst must be filled exactly.
func PackBitsDecompressTo(src []byte, dst []byte) error {
	dstPos := 0
	expectedSize := len(dst)

	i := 0
	for i < len(src) {
		count := int(int8(src[i]))
		i++

		switch {
		case count == -128:
			// no-op
		case count < 0:
			runLength := 1 - count
			if i >= len(src) {
				return ErrRLECorrupted
			}
			if dstPos+runLength > expectedSize {
				return ErrRLEOverflow
			}
			val := src[i]
			i++
			for end := dstPos + runLength; dstPos < end; dstPos++ {
				dst[dstPos] = val
			}
		default:
			literalLength := count + 1
			if i+literalLength > len(src) {
				return ErrRLECorrupted
			}
			if dstPos+literalLength > expectedSize {
				return ErrRLEOverflow
			}
			copy(dst[dstPos:], src[i:i+literalLength])
			dstPos += literalLength
			i += literalLength
		}
	}

	if dstPos != expectedSize {
		return ErrRLEShort
	}

	return nil
}

// PackBitsDecompress decodes a plane of len(rowCounts) scanlines, each
// rowSize bytes once decoded. rowCounts holds the compressed byte length of
// every scanline and src the concatenated compressed scanlines; src must be
// consumed exactly.
func PackBitsDecompress(src []byte, rowCounts []int, rowSize int) ([]byte, error) {
	// Two input bytes expand to at most 128 output bytes.
	if int64(rowSize)*int64(len(rowCounts)) > int64(len(src))*64 {
		return nil, ErrRLEShort
	}
	dst := make([]byte, rowSize*len(rowCounts))
	if err := PackBitsDecompressRows(dst, src, rowCounts, rowSize); err != nil {
		return nil, err
	}
	return dst, nil
}

// PackBitsDecompressRows is PackBitsDecompress into a caller-supplied buffer
// of exactly rowSize*len(rowCounts) bytes.
func PackBitsDecompressRows(dst, src []byte, rowCounts []int, rowSize int) error {
	if len(dst) != rowSize*len(rowCounts) {
		return ErrRLEOverflow
	}

	pos := 0
	for row, n := range rowCounts {
		if n < 0 || pos+n > len(src) {
			return ErrRLECorrupted
		}
		if err := PackBitsDecompressTo(src[pos:pos+n], dst[row*rowSize:(row+1)*rowSize]); err != nil {
			return err
		}
		pos += n
	}
	if pos != len(src) {
		return ErrRLECorrupted
	}
	return nil
}

// PackBitsCompressRows compresses data as consecutive scanlines of rowSize
// bytes. It returns the per-row compressed lengths and the concatenated
// compressed rows.
func PackBitsCompressRows(data []byte, rowSize int) ([]int, []byte) {
	if rowSize <= 0 {
		return nil, nil
	}
	rows := len(data) / rowSize
	counts := make([]int, rows)
	var out []byte
	for y := 0; y < rows; y++ {
		enc := PackBitsCompress(data[y*rowSize : (y+1)*rowSize])
		counts[y] = len(enc)
		out = append(out, enc...)
	}
	return counts, out
}
