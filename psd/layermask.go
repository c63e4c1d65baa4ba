package psd

import (
	"github.com/mrjoshuak/go-psd/internal/bigend"
)

// layerAndMask is the decoded layer and mask information section.
type layerAndMask struct {
	layers      []*Layer // index 0 = bottom
	groups      map[uint32]*Group
	groupIDs    []uint32
	mergedAlpha bool // negative layer count
}

// Global additional information keys that carry the layer info of 16 and
// 32-bit documents.
var layerInfoKeys = map[string]bool{"Lr16": true, "Lr32": true, "Layr": true}

// parseLayerAndMask decodes the layer and mask information section.
func parseLayerAndMask(data []byte, canvas *canvasFormat) (*layerAndMask, error) {
	lm := &layerAndMask{groups: map[uint32]*Group{}}
	if len(data) == 0 {
		return lm, nil
	}

	r := bigend.NewReader(data)
	info, err := r.ReadSection()
	if err != nil {
		return nil, &LayerError{Index: -1, Err: truncated("layer info")}
	}

	if len(info) == 0 {
		info = findLayerInfoBlock(r)
	}

	if err := lm.parseLayerInfo(info, canvas); err != nil {
		return nil, err
	}
	return lm, nil
}

// findLayerInfoBlock skips the global layer mask info and scans the global
// additional information blocks for a layer info block. It returns nil if
// there is none.
func findLayerInfoBlock(r *bigend.Reader) []byte {
	if r.Len() < 4 {
		return nil
	}
	if _, err := r.ReadSection(); err != nil {
		return nil
	}

	for r.Len() >= 12 {
		sig, _ := r.ReadKey()
		if sig != resourceSignature && sig != "8B64" {
			return nil
		}
		key, _ := r.ReadKey()
		block, err := r.ReadSection()
		if err != nil {
			return nil
		}
		if layerInfoKeys[key] {
			return block
		}
		// Global blocks are padded to a multiple of 4.
		if pad := len(block) % 4; pad != 0 {
			if r.Skip(4-pad) != nil {
				return nil
			}
		}
	}
	return nil
}

// parseLayerInfo reads the layer count, the layer records and the channel
// image data that follows them.
func (lm *layerAndMask) parseLayerInfo(info []byte, canvas *canvasFormat) error {
	if len(info) == 0 {
		return nil
	}

	r := bigend.NewReader(info)
	count, err := r.ReadInt16()
	if err != nil {
		return &LayerError{Index: -1, Err: truncated("layer count")}
	}
	// A negative count flags the first alpha channel as the transparency of
	// the merged image; the magnitude is the layer count.
	n := int(count)
	if n < 0 {
		n = -n
		lm.mergedAlpha = true
	}

	records := make([]*layerRecord, n)
	for i := range records {
		if records[i], err = parseLayerRecord(r, canvas); err != nil {
			return &LayerError{Index: i, Err: err}
		}
	}

	for i, rec := range records {
		if err := rec.attachChannels(r); err != nil {
			return &LayerError{Index: i, Err: err}
		}
	}

	b := newGroupBuilder(n)
	for i, rec := range records {
		if err := b.add(i, rec); err != nil {
			return err
		}
	}
	if err := b.finish(); err != nil {
		return err
	}

	lm.layers = b.layers
	lm.groups = b.groups
	lm.groupIDs = b.order
	return nil
}
