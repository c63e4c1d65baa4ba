package compression

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// ZIP compression errors
var (
	ErrZIPCorrupted = errors.New("compression: corrupted ZIP data")
	ErrZIPOverflow  = errors.New("compression: ZIP decompressed size overflow")
)

// maxDeflateRatio bounds how far a deflate stream can expand.
const maxDeflateRatio = 1032

// ZIPCompress deflates src into a zlib stream at the default level.
// Photoshop stores ZIP planes as a single zlib stream per channel.
func ZIPCompress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// zlibReaderPoolItem wraps a zlib reader for pooling
type zlibReaderPoolItem struct {
	reader io.ReadCloser
	srcBuf *bytes.Reader
}

var zlibReaderPool = sync.Pool{
	New: func() any {
		return &zlibReaderPoolItem{
			srcBuf: bytes.NewReader(nil),
		}
	},
}

// ZIPDecompress inflates a zlib stream that must decode to exactly
// expectedSize bytes.
func ZIPDecompress(src []byte, expectedSize int) ([]byte, error) {
	if len(src) == 0 {
		if expectedSize != 0 {
			return nil, ErrZIPCorrupted
		}
		return nil, nil
	}
	if int64(expectedSize) > int64(len(src))*maxDeflateRatio {
		return nil, ErrZIPCorrupted
	}

	dst := make([]byte, expectedSize)
	if err := ZIPDecompressTo(dst, src); err != nil {
		return nil, err
	}
	return dst, nil
}

// ZIPDecompressTo inflates src into dst, which must be exactly the
// decompressed size.
func ZIPDecompressTo(dst, src []byte) error {
	if len(src) == 0 {
		if len(dst) != 0 {
			return ErrZIPCorrupted
		}
		return nil
	}

	item := zlibReaderPool.Get().(*zlibReaderPoolItem)
	defer zlibReaderPool.Put(item)
	item.srcBuf.Reset(src)

	var err error
	if resetter, ok := item.reader.(zlib.Resetter); ok {
		err = resetter.Reset(item.srcBuf, nil)
	} else {
		item.reader, err = zlib.NewReader(item.srcBuf)
	}
	if err != nil {
		item.reader = nil
		return ErrZIPCorrupted
	}

	n, err := io.ReadFull(item.reader, dst)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ErrZIPCorrupted
	}
	if n != len(dst) {
		return ErrZIPCorrupted
	}

	// Anything left in the stream means the plane is larger than declared.
	// The read past the end also verifies the adler32 trailer.
	var extra [1]byte
	m, err := item.reader.Read(extra[:])
	if m > 0 {
		return ErrZIPOverflow
	}
	if err != nil && err != io.EOF {
		return ErrZIPCorrupted
	}

	return nil
}
