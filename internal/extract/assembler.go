// Package extract turns detected regions of an invoice image into a Record.
//
// The Assembler handles one document at a time: for each detected region, in
// detector order, it crops the image, reads the crop in the mode the label
// calls for, and stores either a reconstructed table or a normalized scalar.
// The Extractor adds detection in front of the Assembler, and RunBatch
// processes many documents in parallel.
package extract

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"github.com/ironsheep/invoice-tools/internal/imaging"
	"github.com/ironsheep/invoice-tools/internal/invoice"
	"github.com/ironsheep/invoice-tools/internal/normalize"
	"github.com/ironsheep/invoice-tools/internal/ocr"
	"github.com/ironsheep/invoice-tools/internal/table"
)

// Document is one invoice image together with its detected regions.
type Document struct {
	ID      string
	Image   image.Image
	Regions []invoice.DetectedRegion
}

// Assembler builds a Record from a Document. It holds no per-document state
// and is safe for concurrent use when its Recognizer is.
type Assembler struct {
	recognizer ocr.Recognizer
	normalizer *normalize.Normalizer
	log        zerolog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for per-region events.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Assembler) { a.log = log }
}

// NewAssembler returns an Assembler that reads regions with r and cleans
// scalar values with n. A nil normalizer only trims whitespace.
func NewAssembler(r ocr.Recognizer, n *normalize.Normalizer, opts ...Option) *Assembler {
	a := &Assembler{
		recognizer: r,
		normalizer: n,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble reads every region of doc and returns the record.
//
// A label seen twice keeps the value of the later region. A region that lies
// outside the image is not sent to the recognizer and yields "" (or the
// unparseable table marker for a table region). Only a recognizer failure
// or a canceled context aborts the document; the failure is returned as a
// *invoice.CollaboratorError.
func (a *Assembler) Assemble(ctx context.Context, doc Document) (*invoice.Record, error) {
	rec := invoice.NewRecord()
	log := a.log.With().Str("image", doc.ID).Logger()

	for i, region := range doc.Regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mode := ocr.ModeSingleBlock
		if region.IsTable() {
			mode = ocr.ModeTabular
		}
		rlog := log.With().
			Int("region", i).
			Str("label", region.Label).
			Float64("confidence", region.Confidence).
			Str("mode", mode.String()).
			Logger()

		text := ""
		crop := imaging.CropRegion(doc.Image, region.Rect)
		if crop.Empty {
			rlog.Warn().Interface("bounding_box", region.Rect).Msg("region outside image, skipping recognition")
		} else {
			var err error
			text, err = a.recognizer.Recognize(ctx, crop.Image, mode)
			if err != nil {
				return nil, &invoice.CollaboratorError{
					Stage:   invoice.StageRecognize,
					ImageID: doc.ID,
					Label:   region.Label,
					Err:     err,
				}
			}
		}
		rlog.Debug().Int("text_len", len(text)).Msg("region recognized")

		var replaced bool
		if region.IsTable() {
			t := table.Reconstruct(text)
			if !t.Parsed() {
				rlog.Warn().Msg("table region could not be parsed")
			}
			replaced = rec.SetTable(t)
		} else {
			replaced = rec.Set(region.Label, a.normalizer.Normalize(region.Label, text))
		}
		if replaced {
			rlog.Warn().Msg("duplicate label, keeping the later region")
		}
	}
	return rec, nil
}
