package psd

import (
	"github.com/mrjoshuak/go-psd/internal/bigend"
)

const (
	fileSignature  = "8BPS"
	fileVersion    = 1
	fileHeaderSize = 26
)

// sections holds views of the five top-level regions of a document.
type sections struct {
	header         []byte
	colorModeData  []byte
	imageResources []byte
	layerAndMask   []byte
	imageData      []byte
}

// splitSections cuts data into its top-level sections. The header is fixed
// size; color-mode data, image resources and layer-and-mask information are
// each preceded by a 4-byte length; image data is the rest of the buffer.
func splitSections(data []byte) (*sections, error) {
	if len(data) < 4 {
		return nil, &HeaderError{Field: "signature", Err: truncated("file signature")}
	}
	if string(data[:4]) != fileSignature {
		return nil, &HeaderError{Field: "signature", Err: ErrInvalidSignature}
	}
	if len(data) < fileHeaderSize {
		return nil, &HeaderError{Field: "header", Err: truncated("file header")}
	}
	if v := uint16(data[4])<<8 | uint16(data[5]); v != fileVersion {
		return nil, &HeaderError{Field: "version", Err: ErrInvalidVersion}
	}

	r := bigend.NewReader(data)
	s := &sections{}
	s.header, _ = r.Slice(fileHeaderSize)

	var err error
	if s.colorModeData, err = r.ReadSection(); err != nil {
		return nil, &HeaderError{Field: "color mode data", Err: truncated("color mode data section")}
	}
	if s.imageResources, err = r.ReadSection(); err != nil {
		return nil, &HeaderError{Field: "image resources", Err: truncated("image resources section")}
	}
	if s.layerAndMask, err = r.ReadSection(); err != nil {
		return nil, &HeaderError{Field: "layer and mask information", Err: truncated("layer and mask section")}
	}
	s.imageData, _ = r.Slice(r.Len())

	return s, nil
}
