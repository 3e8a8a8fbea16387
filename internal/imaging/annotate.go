package imaging

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

const (
	boxThickness = 2
	labelPadding = 2
)

// LabelColor returns a stable color for a detector label. The hue is derived
// from the label text so the same category has the same color in every
// overlay.
func LabelColor(label string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(label))
	hue := float64(h.Sum32() % 360)
	r, g, b := colorful.Hsv(hue, 0.85, 0.9).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Annotate returns a copy of img with every region's rectangle outlined and
// captioned with its label and confidence. Regions are clamped to the image;
// regions with no overlap are skipped.
func Annotate(img image.Image, regions []invoice.DetectedRegion) *image.NRGBA {
	out := imaging.Clone(img)
	bounds := out.Bounds()

	for _, r := range regions {
		rect := ClampRect(r.Rect.Image(), bounds)
		if rect.Empty() {
			continue
		}
		c := LabelColor(r.Label)
		drawOutline(out, rect, c)
		drawCaption(out, rect, fmt.Sprintf("%s %.2f", r.Label, r.Confidence), c)
	}
	return out
}

func drawOutline(dst draw.Image, r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	t := boxThickness
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), // top
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), // left
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(r), src, image.Point{}, draw.Src)
	}
}

// drawCaption writes text on a filled tab above the box, or inside its top
// edge when the box touches the top of the image.
func drawCaption(dst draw.Image, r image.Rectangle, text string, bg color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 2*labelPadding
	height := face.Height + 2*labelPadding

	top := r.Min.Y - height
	if top < dst.Bounds().Min.Y {
		top = r.Min.Y
	}
	tab := image.Rect(r.Min.X, top, r.Min.X+width, top+height).Intersect(dst.Bounds())
	draw.Draw(dst, tab, image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(tab.Min.X+labelPadding, tab.Min.Y+labelPadding+face.Ascent),
	}
	d.DrawString(text)
}
