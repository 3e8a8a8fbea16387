package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

// Crop is the sub-image for one detected region.
//
// Empty is set when the region's rectangle has no overlap with the image
// (or is degenerate to begin with). Image is nil in that case and callers
// treat the region as having no recognizable text.
type Crop struct {
	Image  image.Image
	Bounds image.Rectangle // clamped region in source-image coordinates
	Empty  bool
}

// ClampRect intersects r with bounds. The result is image.ZR when the two do
// not overlap or r is degenerate (x1 >= x2 or y1 >= y2).
func ClampRect(r, bounds image.Rectangle) image.Rectangle {
	if r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
		return image.Rectangle{}
	}
	return r.Intersect(bounds)
}

// CropRegion extracts the part of img covered by rect. It never fails: a
// rectangle outside the image yields Crop{Empty: true}.
func CropRegion(img image.Image, rect invoice.Rect) Crop {
	clamped := ClampRect(rect.Image(), img.Bounds())
	if clamped.Empty() {
		return Crop{Empty: true}
	}
	return Crop{
		Image:  imaging.Crop(img, clamped),
		Bounds: clamped,
	}
}

// CropResult contains a cropped region encoded for transport.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	X1          int    `json:"x1"`
	Y1          int    `json:"y1"`
	X2          int    `json:"x2"`
	Y2          int    `json:"y2"`
	Empty       bool   `json:"empty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

// EncodeCrop renders c as a base64 PNG, optionally rescaled. An empty crop
// is returned as a result with Empty set and no image data.
func EncodeCrop(c Crop, scale float64) (*CropResult, error) {
	if c.Empty {
		return &CropResult{Empty: true}, nil
	}

	out := c.Image
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(out.Bounds().Dx()) * scale)
		newHeight := int(float64(out.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f shrinks region to nothing", scale)
		}
		out = imaging.Resize(out, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		X1:          c.Bounds.Min.X,
		Y1:          c.Bounds.Min.Y,
		X2:          c.Bounds.Max.X,
		Y2:          c.Bounds.Max.Y,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// EncodePNG encodes img as PNG bytes, the form the recognizers consume.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
