//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/invoice-tools/internal/imaging"
)

// Tesseract recognizes text with the Tesseract engine. A fresh gosseract
// client is created for every call, so one Tesseract value can be shared by
// concurrent workers.
type Tesseract struct {
	language string
}

// NewTesseract returns a Tesseract recognizer for the given language code
// (e.g. "eng", or "eng+deu" for several).
func NewTesseract(language string) (*Tesseract, error) {
	if language == "" {
		language = DefaultLanguage
	}
	return &Tesseract{language: language}, nil
}

// Recognize preprocesses img for mode and runs Tesseract on it.
//
// Single-block mode uses page segmentation mode 6. Tabular mode uses mode 4
// with preserve_interword_spaces=1 so column gaps survive as runs of spaces.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := imaging.EncodePNG(imaging.Preprocess(img, mode.Preprocess()))
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(t.language, "+")...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	psm := gosseract.PSM_SINGLE_BLOCK
	if mode == ModeTabular {
		psm = gosseract.PSM_SINGLE_COLUMN
		if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
			return "", fmt.Errorf("failed to set variable: %w", err)
		}
	}
	if err := client.SetPageSegMode(psm); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
