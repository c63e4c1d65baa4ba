// Package predictor implements the horizontal differencing predictor used by
// the "ZIP with prediction" channel compression in Photoshop documents.
//
// Prediction runs per scanline and never crosses row boundaries. 8-bit
// samples are differenced byte by byte, 16-bit samples as big-endian words,
// and 32-bit rows are first split into four byte planes (most significant
// plane first) and then differenced byte by byte across the whole row.
package predictor

import "errors"

// ErrRowSize is returned when data is not a whole number of rows.
var ErrRowSize = errors.New("predictor: data is not a whole number of rows")

// Encode applies horizontal differencing to data in place.
// The first byte remains unchanged, subsequent bytes become
// differences from their predecessor.
func Encode(data []byte) {
	for i := len(data) - 1; i >= 1; i-- {
		data[i] -= data[i-1]
	}
}

// Decode reverses horizontal differencing in place.
func Decode(data []byte) {
	n := len(data)
	if n < 2 {
		return
	}

	// Process in chunks of 8 for better pipelining
	i := 1
	for ; i+7 < n; i += 8 {
		data[i] += data[i-1]
		data[i+1] += data[i]
		data[i+2] += data[i+1]
		data[i+3] += data[i+2]
		data[i+4] += data[i+3]
		data[i+5] += data[i+4]
		data[i+6] += data[i+5]
		data[i+7] += data[i+6]
	}
	for ; i < n; i++ {
		data[i] += data[i-1]
	}
}

// Decode16 reverses differencing on big-endian 16-bit samples in place.
func Decode16(data []byte) {
	var prev uint16
	for i := 0; i+1 < len(data); i += 2 {
		v := uint16(data[i])<<8 | uint16(data[i+1])
		v += prev
		data[i] = byte(v >> 8)
		data[i+1] = byte(v)
		prev = v
	}
}

// Encode16 applies differencing to big-endian 16-bit samples in place.
func Encode16(data []byte) {
	var prev uint16
	for i := 0; i+1 < len(data); i += 2 {
		v := uint16(data[i])<<8 | uint16(data[i+1])
		d := v - prev
		data[i] = byte(d >> 8)
		data[i+1] = byte(d)
		prev = v
	}
}

// DecodeRows reverses prediction for a plane of height rows, each width
// samples of depth bits. Only depths 8, 16 and 32 carry prediction.
func DecodeRows(data []byte, width, height, depth int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	rowBytes := width * depth / 8
	if rowBytes == 0 || len(data) != rowBytes*height {
		return ErrRowSize
	}

	var scratch []byte
	if depth == 32 {
		scratch = make([]byte, rowBytes)
	}

	for y := 0; y < height; y++ {
		row := data[y*rowBytes : (y+1)*rowBytes]
		switch depth {
		case 16:
			Decode16(row)
		case 32:
			Decode(row)
			// Byte planes back to interleaved big-endian samples.
			for x := 0; x < width; x++ {
				scratch[x*4] = row[x]
				scratch[x*4+1] = row[width+x]
				scratch[x*4+2] = row[2*width+x]
				scratch[x*4+3] = row[3*width+x]
			}
			copy(row, scratch)
		default:
			Decode(row)
		}
	}
	return nil
}

// EncodeRows is the inverse of DecodeRows.
func EncodeRows(data []byte, width, height, depth int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	rowBytes := width * depth / 8
	if rowBytes == 0 || len(data) != rowBytes*height {
		return ErrRowSize
	}

	var scratch []byte
	if depth == 32 {
		scratch = make([]byte, rowBytes)
	}

	for y := 0; y < height; y++ {
		row := data[y*rowBytes : (y+1)*rowBytes]
		switch depth {
		case 16:
			Encode16(row)
		case 32:
			for x := 0; x < width; x++ {
				scratch[x] = row[x*4]
				scratch[width+x] = row[x*4+1]
				scratch[2*width+x] = row[x*4+2]
				scratch[3*width+x] = row[x*4+3]
			}
			copy(row, scratch)
			Encode(row)
		default:
			Encode(row)
		}
	}
	return nil
}
