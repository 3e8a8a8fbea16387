package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/invoice-tools/internal/imaging"
)

// Mode selects how a region is read.
type Mode int

const (
	// ModeSingleBlock reads the region as a single uniform block of text.
	ModeSingleBlock Mode = iota
	// ModeTabular preserves inter-word spacing so columns stay separated.
	ModeTabular
)

func (m Mode) String() string {
	switch m {
	case ModeSingleBlock:
		return "single_block"
	case ModeTabular:
		return "tabular"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single_block", "single", "block":
		return ModeSingleBlock, nil
	case "tabular", "table":
		return ModeTabular, nil
	default:
		return ModeSingleBlock, fmt.Errorf("unknown recognition mode %q", s)
	}
}

// Preprocess returns the imaging cleanup used for m.
func (m Mode) Preprocess() imaging.PreprocessOptions {
	if m == ModeTabular {
		return imaging.TablePreprocess
	}
	return imaging.FieldPreprocess
}

// Recognizer reads the text of one cropped region. An unreadable region is
// not an error: it yields "". Errors are reserved for backend failures.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, mode Mode) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image, mode Mode) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	return f(ctx, img, mode)
}

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Backend names accepted by New.
const (
	BackendTesseract = "tesseract"
	BackendAzure     = "azure"
)

// Options configures the recognizer built by New.
type Options struct {
	Backend       string
	Language      string
	AzureEndpoint string
	AzureKey      string
}

// ErrTesseractUnavailable is returned by the Tesseract backend in builds
// without cgo.
var ErrTesseractUnavailable = errors.New("tesseract support not compiled in; rebuild with CGO_ENABLED=1")

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown OCR backend")

// New builds the recognizer named by opts.Backend. An empty backend selects
// Tesseract.
func New(opts Options) (Recognizer, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendTesseract:
		t, err := NewTesseract(opts.Language)
		if err != nil {
			return nil, err
		}
		return t, nil
	case BackendAzure:
		a, err := NewAzure(opts.AzureEndpoint, opts.AzureKey, opts.Language)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
