package psd

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/mrjoshuak/go-psd/internal/bigend"
)

const resourceSignature = "8BIM"

// Image resource IDs with typed accessors.
const (
	ResourceResolutionInfo  uint16 = 1005
	ResourceThumbnailLegacy uint16 = 1033
	ResourceThumbnail       uint16 = 1036
	ResourceICCProfile      uint16 = 1039
	ResourceXMP             uint16 = 1060
)

// ImageResource is one block of the image resources section. Data holds the
// logical payload without the even padding used on disk.
type ImageResource struct {
	ID   uint16
	Name string
	Data []byte
}

// parseResources walks the resource blocks in file order.
func parseResources(data []byte) ([]ImageResource, error) {
	var resources []ImageResource
	r := bigend.NewReader(data)

	for r.Len() > 0 {
		start := r.Pos()

		sig, err := r.ReadKey()
		if err != nil {
			return nil, &ResourceError{Offset: start, Err: truncated("resource signature")}
		}
		if sig != resourceSignature {
			return nil, &ResourceError{Offset: start, Err: fmt.Errorf("%w: %q", ErrInvalidBlockSignature, sig)}
		}

		var res ImageResource
		if res.ID, err = r.ReadUint16(); err != nil {
			return nil, &ResourceError{Offset: start, Err: truncated("resource id")}
		}
		if res.Name, err = r.ReadPascalString(2); err != nil {
			return nil, &ResourceError{Offset: start, Err: truncated("resource name")}
		}
		if res.Data, err = r.ReadSection(); err != nil {
			return nil, &ResourceError{Offset: start, Err: truncated("resource data")}
		}
		// Payloads are padded to even length; the last block may omit it.
		if len(res.Data)%2 == 1 && r.Len() > 0 {
			_ = r.Skip(1)
		}

		resources = append(resources, res)
	}

	return resources, nil
}

// ResolutionInfo is the payload of resource 1005.
type ResolutionInfo struct {
	HRes       float64 // pixels per inch or per cm, see HResUnit
	HResUnit   uint16  // 1 = pixels per inch, 2 = pixels per cm
	WidthUnit  uint16
	VRes       float64
	VResUnit   uint16
	HeightUnit uint16
}

// Resolution decodes a ResolutionInfo resource.
func (res ImageResource) Resolution() (ResolutionInfo, error) {
	var info ResolutionInfo
	if res.ID != ResourceResolutionInfo {
		return info, fmt.Errorf("%w: id %d is not resolution info", ErrResourceType, res.ID)
	}
	r := bigend.NewReader(res.Data)
	if r.Len() < 16 {
		return info, fmt.Errorf("%w: resolution info is %d bytes", ErrInvalidResource, r.Len())
	}
	h, _ := r.ReadUint32()
	info.HResUnit, _ = r.ReadUint16()
	info.WidthUnit, _ = r.ReadUint16()
	v, _ := r.ReadUint32()
	info.VResUnit, _ = r.ReadUint16()
	info.HeightUnit, _ = r.ReadUint16()
	info.HRes = float64(h) / 65536
	info.VRes = float64(v) / 65536
	return info, nil
}

// Thumbnail is the payload of resources 1033 and 1036.
type Thumbnail struct {
	Format uint32 // 1 = JFIF
	Width  uint32
	Height uint32
	Data   []byte // JFIF stream when Format is 1
}

// Thumbnail decodes a thumbnail resource header.
func (res ImageResource) Thumbnail() (*Thumbnail, error) {
	if res.ID != ResourceThumbnail && res.ID != ResourceThumbnailLegacy {
		return nil, fmt.Errorf("%w: id %d is not a thumbnail", ErrResourceType, res.ID)
	}
	r := bigend.NewReader(res.Data)
	if r.Len() < 28 {
		return nil, fmt.Errorf("%w: thumbnail header is %d bytes", ErrInvalidResource, r.Len())
	}
	th := &Thumbnail{}
	th.Format, _ = r.ReadUint32()
	th.Width, _ = r.ReadUint32()
	th.Height, _ = r.ReadUint32()
	_ = r.Skip(16) // row bytes, total size, compressed size, bpp, planes
	th.Data, _ = r.Slice(r.Len())
	return th, nil
}

// Image decodes the JFIF thumbnail. Legacy (1033) thumbnails store their
// channels in BGR order; they are returned as decoded.
func (th *Thumbnail) Image() (image.Image, error) {
	if th.Format != 1 {
		return nil, fmt.Errorf("%w: raw thumbnail format %d", ErrInvalidResource, th.Format)
	}
	img, err := jpeg.Decode(bytes.NewReader(th.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResource, err)
	}
	return img, nil
}

// ICCProfile returns the embedded ICC color profile of resource 1039 as
// stored. The profile is not parsed.
func (res ImageResource) ICCProfile() ([]byte, error) {
	if res.ID != ResourceICCProfile {
		return nil, fmt.Errorf("%w: id %d is not an ICC profile", ErrResourceType, res.ID)
	}
	if len(res.Data) < 128 {
		return nil, fmt.Errorf("%w: ICC profile is %d bytes", ErrInvalidResource, len(res.Data))
	}
	return res.Data, nil
}

// XMP returns the XMP metadata packet of resource 1060.
func (res ImageResource) XMP() (string, error) {
	if res.ID != ResourceXMP {
		return "", fmt.Errorf("%w: id %d is not XMP metadata", ErrResourceType, res.ID)
	}
	return string(res.Data), nil
}
