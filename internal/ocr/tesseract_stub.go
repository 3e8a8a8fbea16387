//go:build !cgo

package ocr

import (
	"context"
	"image"
)

// Tesseract is unavailable in builds without cgo.
type Tesseract struct{}

// NewTesseract always fails in builds without cgo.
func NewTesseract(language string) (*Tesseract, error) {
	return nil, ErrTesseractUnavailable
}

// Recognize always fails in builds without cgo.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	return "", ErrTesseractUnavailable
}
