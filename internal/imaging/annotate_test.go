package imaging

import (
	"image/color"
	"testing"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

func TestLabelColor_Stable(t *testing.T) {
	a := LabelColor("TOTAL")
	b := LabelColor("TOTAL")
	if a != b {
		t.Errorf("same label gave different colors: %v vs %v", a, b)
	}
	if a.A != 255 {
		t.Errorf("alpha: got %d, want 255", a.A)
	}
}

func TestAnnotate(t *testing.T) {
	img := newSolidImage(200, 200, color.White)
	regions := []invoice.DetectedRegion{
		{Label: "TOTAL", Confidence: 0.91, Rect: invoice.Rect{X1: 50, Y1: 60, X2: 150, Y2: 120}},
	}

	out := Annotate(img, regions)
	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds: got %v, want %v", out.Bounds(), img.Bounds())
	}

	want := LabelColor("TOTAL")
	// Bottom edge of the box, away from the caption.
	if r, g, b := rgbAt(out, 100, 119); r != want.R || g != want.G || b != want.B {
		t.Errorf("outline: got (%d,%d,%d), want (%d,%d,%d)", r, g, b, want.R, want.G, want.B)
	}
	// Interior is untouched.
	if r, g, b := rgbAt(out, 100, 100); r != 255 || g != 255 || b != 255 {
		t.Errorf("interior: got (%d,%d,%d), want white", r, g, b)
	}
	// Source image is not modified.
	if r, g, b := rgbAt(img, 100, 119); r != 255 || g != 255 || b != 255 {
		t.Error("Annotate modified its input")
	}
}

func TestAnnotate_OutOfBoundsSkipped(t *testing.T) {
	img := newSolidImage(50, 50, color.White)
	regions := []invoice.DetectedRegion{
		{Label: "BUYER", Confidence: 0.5, Rect: invoice.Rect{X1: 100, Y1: 100, X2: 200, Y2: 200}},
	}

	out := Annotate(img, regions)
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, g, bl := rgbAt(out, x, y); r != 255 || g != 255 || bl != 255 {
				t.Fatalf("pixel (%d,%d) changed to (%d,%d,%d)", x, y, r, g, bl)
			}
		}
	}
}

func TestAnnotate_CaptionAtTop(t *testing.T) {
	img := newSolidImage(120, 60, color.White)
	regions := []invoice.DetectedRegion{
		{Label: "DATE", Confidence: 0.8, Rect: invoice.Rect{X1: 0, Y1: 0, X2: 100, Y2: 40}},
	}

	// A box touching the top edge draws its caption inside the box.
	out := Annotate(img, regions)
	want := LabelColor("DATE")
	if r, g, b := rgbAt(out, 1, 1); r != want.R || g != want.G || b != want.B {
		t.Errorf("caption tab: got (%d,%d,%d)", r, g, b)
	}
}
