package imaging

import (
	"image"
	"image/color"
	"testing"
)

// newTextLikeImage draws dark horizontal strokes on a light background.
func newTextLikeImage(width, height int) *image.RGBA {
	img := newSolidImage(width, height, color.RGBA{230, 230, 230, 255})
	for y := 10; y < 14; y++ {
		for x := 5; x < width-5; x++ {
			img.Set(x, y, color.RGBA{20, 20, 20, 255})
		}
	}
	return img
}

func TestOtsuLevel_Bimodal(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 100; x++ {
			if x < 30 {
				img.SetGray(x, y, color.Gray{Y: 40})
			} else {
				img.SetGray(x, y, color.Gray{Y: 200})
			}
		}
	}

	level := OtsuLevel(img)
	if level <= 40 || level > 200 {
		t.Errorf("OtsuLevel: got %d, want in (40,200]", level)
	}
}

func TestOtsuLevel_Uniform(t *testing.T) {
	// A single-valued histogram has no split; the result is still usable.
	img := newSolidImage(10, 10, color.White)
	_ = OtsuLevel(img)
}

func TestPreprocess_Field(t *testing.T) {
	img := newTextLikeImage(60, 30)

	out := Preprocess(img, FieldPreprocess)
	if out.Bounds().Dx() != 120 || out.Bounds().Dy() != 60 {
		t.Errorf("dimensions: got %dx%d, want 120x60", out.Bounds().Dx(), out.Bounds().Dy())
	}

	// Output is binary: every pixel is black or white.
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _ := rgbAt(out, x, y)
			if r != 0 && r != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, r)
			}
		}
	}

	// Background stays white, the stroke turns black.
	if r, _, _ := rgbAt(out, 2, 2); r != 255 {
		t.Errorf("background: got %d, want 255", r)
	}
	if r, _, _ := rgbAt(out, 60, 24); r != 0 {
		t.Errorf("stroke: got %d, want 0", r)
	}
}

func TestPreprocess_TableDenoise(t *testing.T) {
	img := newTextLikeImage(60, 30)

	out := Preprocess(img, TablePreprocess)
	if out.Bounds().Dx() != 120 || out.Bounds().Dy() != 60 {
		t.Errorf("dimensions: got %dx%d, want 120x60", out.Bounds().Dx(), out.Bounds().Dy())
	}
	if r, _, _ := rgbAt(out, 4, 4); r != 255 {
		t.Errorf("background: got %d, want 255", r)
	}
	if r, _, _ := rgbAt(out, 60, 24); r != 0 {
		t.Errorf("stroke: got %d, want 0", r)
	}
}

func TestPreprocess_NoScale(t *testing.T) {
	img := newTextLikeImage(40, 20)
	out := Preprocess(img, PreprocessOptions{Scale: 1})
	if out.Bounds().Dx() != 40 || out.Bounds().Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 40x20", out.Bounds().Dx(), out.Bounds().Dy())
	}
}
