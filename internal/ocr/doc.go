// Package ocr turns cropped invoice regions into text.
//
// A Recognizer reads one region at a time in one of two modes. Single-block
// mode reads a region as one block of text. Tabular mode keeps wide column
// gaps as runs of at least two spaces so the table package can split rows
// into cells.
//
// Two backends are provided:
//   - Tesseract, through gosseract. Built only with cgo; without it
//     NewTesseract returns ErrTesseractUnavailable.
//   - Azure Computer Vision printed-text OCR.
//
// # Prerequisites
//
// The Tesseract backend needs the Tesseract library and language data:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// The Azure backend needs an endpoint and a subscription key.
package ocr
