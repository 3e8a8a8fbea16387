package invoice

import (
	"image"
	"strings"
)

// TableLabel is the detector category whose region holds the line-item table.
const TableLabel = "TABLE"

// Rect is a detector bounding box in source-image pixels.
type Rect struct {
	X1 float64 `json:"x1"` // Left edge
	Y1 float64 `json:"y1"` // Top edge
	X2 float64 `json:"x2"` // Right edge
	Y2 float64 `json:"y2"` // Bottom edge
}

// Image converts the box to integer pixel coordinates. Fractional
// coordinates are truncated toward zero.
func (r Rect) Image() image.Rectangle {
	return image.Rectangle{
		Min: image.Point{X: int(r.X1), Y: int(r.Y1)},
		Max: image.Point{X: int(r.X2), Y: int(r.Y2)},
	}
}

// DetectedRegion is one labeled object found by the detector.
type DetectedRegion struct {
	// Label is the detector category, e.g. "BUYER", "TOTAL", "TABLE".
	Label string `json:"label"`

	// Confidence is the detector score in [0,1].
	Confidence float64 `json:"confidence"`

	// Rect is the region's bounding box.
	Rect Rect `json:"bounding_box"`
}

// IsTable reports whether the region holds the line-item table.
// The comparison is case-insensitive.
func (r DetectedRegion) IsTable() bool {
	return IsTableLabel(r.Label)
}

// IsTableLabel reports whether label names the table category.
func IsTableLabel(label string) bool {
	return strings.ToUpper(label) == TableLabel
}

// RawRegionText is the recognizer's output for one region.
type RawRegionText struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}
