package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/invoice-tools/internal/imaging"
	"github.com/ironsheep/invoice-tools/internal/invoice"
)

// Artifacts are the output files written for one document.
type Artifacts struct {
	JSON     string
	Workbook string
	Boxes    string
}

// NewArtifacts returns document-unique output paths in dir for the image at
// sourcePath. An 8-character random suffix keeps parallel documents with the
// same file name apart.
func NewArtifacts(dir, sourcePath string) Artifacts {
	stem := DocumentStem(sourcePath) + "-" + uuid.NewString()[:8]
	return Artifacts{
		JSON:     filepath.Join(dir, stem+"_output.json"),
		Workbook: filepath.Join(dir, stem+"_invoice_data.xlsx"),
		Boxes:    filepath.Join(dir, stem+"_boxes.png"),
	}
}

// DocumentStem returns the file name of path without directory or extension.
func DocumentStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "invoice"
	}
	return stem
}

// Write saves the record as JSON and workbook, and the source image with
// the detected regions outlined. The output directory is created if needed.
func (a Artifacts) Write(img image.Image, regions []invoice.DetectedRegion, rec *invoice.Record) error {
	if err := os.MkdirAll(filepath.Dir(a.JSON), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := SaveJSON(a.JSON, rec); err != nil {
		return err
	}
	if err := SaveWorkbook(a.Workbook, rec); err != nil {
		return err
	}
	boxes, err := imaging.EncodePNG(imaging.Annotate(img, regions))
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.Boxes, boxes, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.Boxes, err)
	}
	return nil
}
