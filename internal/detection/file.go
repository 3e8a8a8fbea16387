package detection

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

// FileDetector returns the detections stored in a JSON file.
type FileDetector struct {
	Path string
}

// Detect reads and decodes f.Path. img is not inspected.
func (f FileDetector) Detect(ctx context.Context, img image.Image) ([]invoice.DetectedRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open detections: %w", err)
	}
	defer file.Close()
	return Decode(file)
}

// SidecarPath returns the detections file for imagePath: the image's base
// name with a .json extension, in dir, or next to the image when dir is empty.
func SidecarPath(dir, imagePath string) string {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if dir == "" {
		dir = filepath.Dir(imagePath)
	}
	return filepath.Join(dir, stem+".json")
}

// Sidecars returns a Resolver that reads each image's sidecar detections file.
func Sidecars(dir string) Resolver {
	return func(imagePath string) Detector {
		return FileDetector{Path: SidecarPath(dir, imagePath)}
	}
}
