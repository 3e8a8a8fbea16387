package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"

	"github.com/ironsheep/invoice-tools/internal/imaging"
)

const (
	// azureMinSide is the smallest width or height the OCR endpoint accepts.
	azureMinSide = 50

	// wideGapChars is the horizontal gap, in average character widths, at
	// which two words on one line are treated as separate columns.
	wideGapChars = 1.5
)

// Azure recognizes printed text with the Azure Computer Vision OCR API.
type Azure struct {
	client   computervision.BaseClient
	language computervision.OcrLanguages
}

// NewAzure returns an Azure recognizer for the given endpoint and key.
// language is a Tesseract-style code; unknown codes let the service detect
// the language.
func NewAzure(endpoint, key, language string) (*Azure, error) {
	if endpoint == "" || key == "" {
		return nil, errors.New("azure OCR requires an endpoint and a key")
	}
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(key)
	return &Azure{client: client, language: azureLanguage(language)}, nil
}

// Recognize uploads the preprocessed region and lays out the returned words.
func (a *Azure) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	opts := mode.Preprocess()
	b := img.Bounds()
	if side := math.Min(float64(b.Dx()), float64(b.Dy())); side > 0 && side*opts.Scale < azureMinSide {
		opts.Scale = math.Ceil(azureMinSide / side)
	}

	data, err := imaging.EncodePNG(imaging.Preprocess(img, opts))
	if err != nil {
		return "", err
	}

	result, err := a.client.RecognizePrintedTextInStream(ctx, true, io.NopCloser(bytes.NewReader(data)), a.language)
	if err != nil {
		return "", fmt.Errorf("azure OCR failed: %w", err)
	}
	return layoutText(result, mode), nil
}

func azureLanguage(code string) computervision.OcrLanguages {
	switch strings.ToLower(code) {
	case "", "eng", "en":
		return computervision.OcrLanguagesEn
	case "deu", "de":
		return computervision.OcrLanguagesDe
	case "fra", "fr":
		return computervision.OcrLanguagesFr
	case "spa", "es":
		return computervision.OcrLanguagesEs
	case "ita", "it":
		return computervision.OcrLanguagesIt
	default:
		return computervision.OcrLanguagesUnk
	}
}

type box struct {
	x, y, w, h int
}

// parseBox reads an OCR bounding box of the form "x,y,width,height".
func parseBox(s *string) (box, bool) {
	if s == nil {
		return box{}, false
	}
	parts := strings.Split(*s, ",")
	if len(parts) != 4 {
		return box{}, false
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return box{}, false
		}
		v[i] = n
	}
	return box{x: v[0], y: v[1], w: v[2], h: v[3]}, true
}

type word struct {
	text string
	box  box
}

type line struct {
	box   box
	words []word
}

func collectLines(result computervision.OcrResult) []line {
	var lines []line
	if result.Regions == nil {
		return lines
	}
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, l := range *region.Lines {
			if l.Words == nil {
				continue
			}
			var ln line
			ln.box, _ = parseBox(l.BoundingBox)
			for _, w := range *l.Words {
				if w.Text == nil || *w.Text == "" {
					continue
				}
				wb, _ := parseBox(w.BoundingBox)
				ln.words = append(ln.words, word{text: *w.Text, box: wb})
			}
			if len(ln.words) > 0 {
				lines = append(lines, ln)
			}
		}
	}
	return lines
}

// layoutText flattens an OCR result into text.
//
// Single-block mode keeps the service's reading order with words joined by
// one space. Tabular mode merges lines that share a baseline (the service
// often returns each column as its own region), orders words left to right
// and separates words with a wide gap by two spaces.
func layoutText(result computervision.OcrResult, mode Mode) string {
	lines := collectLines(result)
	if len(lines) == 0 {
		return ""
	}

	var sb strings.Builder
	if mode != ModeTabular {
		for i, l := range lines {
			if i > 0 {
				sb.WriteByte('\n')
			}
			for j, w := range l.words {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(w.text)
			}
		}
		return sb.String()
	}

	for i, row := range mergeRows(lines) {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(joinWords(row))
	}
	return sb.String()
}

// mergeRows groups lines whose vertical centers fall within half a line
// height of each other and returns each group's words sorted by x.
func mergeRows(lines []line) [][]word {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].box.y < lines[j].box.y
	})

	type row struct {
		center float64
		height int
		words  []word
	}
	var rows []*row
	for _, l := range lines {
		c := float64(l.box.y) + float64(l.box.h)/2
		var target *row
		for _, r := range rows {
			tol := float64(max(r.height, l.box.h)) / 2
			if math.Abs(r.center-c) <= tol {
				target = r
				break
			}
		}
		if target == nil {
			target = &row{center: c, height: l.box.h}
			rows = append(rows, target)
		}
		target.words = append(target.words, l.words...)
	}

	out := make([][]word, len(rows))
	for i, r := range rows {
		sort.SliceStable(r.words, func(a, b int) bool {
			return r.words[a].box.x < r.words[b].box.x
		})
		out[i] = r.words
	}
	return out
}

func joinWords(words []word) string {
	var width, chars int
	for _, w := range words {
		width += w.box.w
		chars += utf8.RuneCountInString(w.text)
	}
	charWidth := 0.0
	if chars > 0 {
		charWidth = float64(width) / float64(chars)
	}

	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			prev := words[i-1].box
			gap := float64(w.box.x - (prev.x + prev.w))
			if charWidth > 0 && gap >= wideGapChars*charWidth {
				sb.WriteString("  ")
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(w.text)
	}
	return sb.String()
}
