package extract

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/invoice-tools/internal/detection"
	"github.com/ironsheep/invoice-tools/internal/invoice"
)

// Result is the outcome of extracting one image.
type Result struct {
	ImageID string                   `json:"image_id"`
	Regions []invoice.DetectedRegion `json:"regions"`
	Record  *invoice.Record          `json:"record"`
}

// Extractor runs detection and assembly for whole images.
type Extractor struct {
	Assembler *Assembler

	// Detectors resolves the detector for an image ID. Image IDs are file
	// paths, so sidecar detection files can be found next to the image.
	Detectors detection.Resolver

	// MinConfidence drops regions scored below it. Zero keeps every region.
	MinConfidence float64

	// Load opens the image for an ID in RunBatch. Defaults to imaging.Open.
	Load func(path string) (image.Image, error)
}

// Extract detects the regions of img and assembles its record. Detector
// failures are returned as a *invoice.CollaboratorError.
func (e *Extractor) Extract(ctx context.Context, imageID string, img image.Image) (*Result, error) {
	if e.Detectors == nil {
		return nil, errors.New("extractor has no detector")
	}
	regions, err := e.Detectors(imageID).Detect(ctx, img)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &invoice.CollaboratorError{Stage: invoice.StageDetect, ImageID: imageID, Err: err}
	}
	regions = detection.FilterConfidence(regions, e.MinConfidence)

	rec, err := e.Assembler.Assemble(ctx, Document{ID: imageID, Image: img, Regions: regions})
	if err != nil {
		return nil, err
	}
	return &Result{ImageID: imageID, Regions: regions, Record: rec}, nil
}
