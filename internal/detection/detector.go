package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

// Detector finds labeled regions on one invoice image.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]invoice.DetectedRegion, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, img image.Image) ([]invoice.DetectedRegion, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, img image.Image) ([]invoice.DetectedRegion, error) {
	return f(ctx, img)
}

// Static is a Detector that always returns the same regions.
type Static []invoice.DetectedRegion

// Detect returns a copy of s.
func (s Static) Detect(ctx context.Context, img image.Image) ([]invoice.DetectedRegion, error) {
	out := make([]invoice.DetectedRegion, len(s))
	copy(out, s)
	return out, nil
}

// Resolver picks the Detector for one image file. File-based detection needs
// the image's path; model-backed detectors ignore it.
type Resolver func(imagePath string) Detector

// Shared returns a Resolver that uses d for every image.
func Shared(d Detector) Resolver {
	return func(string) Detector { return d }
}

// Decode reads a detection list in the detector's JSON format.
func Decode(r io.Reader) ([]invoice.DetectedRegion, error) {
	var regions []invoice.DetectedRegion
	if err := json.NewDecoder(r).Decode(&regions); err != nil {
		return nil, fmt.Errorf("failed to decode detections: %w", err)
	}
	return regions, nil
}

// Encode writes regions in the detector's JSON format.
func Encode(w io.Writer, regions []invoice.DetectedRegion) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if regions == nil {
		regions = []invoice.DetectedRegion{}
	}
	return enc.Encode(regions)
}

// FilterConfidence returns the regions whose confidence is at least minConfidence,
// in their original order.
func FilterConfidence(regions []invoice.DetectedRegion, minConfidence float64) []invoice.DetectedRegion {
	if minConfidence <= 0 {
		return regions
	}
	out := make([]invoice.DetectedRegion, 0, len(regions))
	for _, r := range regions {
		if r.Confidence >= minConfidence {
			out = append(out, r)
		}
	}
	return out
}
