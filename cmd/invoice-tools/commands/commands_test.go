package commands

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/invoice-tools/internal/detection"
	"github.com/ironsheep/invoice-tools/internal/extract"
	"github.com/ironsheep/invoice-tools/internal/invoice"
	"github.com/ironsheep/invoice-tools/internal/logging"
	"github.com/ironsheep/invoice-tools/internal/normalize"
	"github.com/ironsheep/invoice-tools/internal/ocr"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{"extract": false, "serve": false, "mcp": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "invoice-tools "+Version) {
		t.Errorf("output: got %q", out.String())
	}
}

func TestExtractRequiresImages(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"extract"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err == nil {
		t.Error("extract without images should fail")
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestExtractBatch(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	broken := filepath.Join(dir, "broken.png")
	writePNG(t, a)
	writePNG(t, b)
	if err := os.WriteFile(broken, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	recognizer := ocr.RecognizerFunc(func(ctx context.Context, img image.Image, mode ocr.Mode) (string, error) {
		return "TOTAL: 5.00", nil
	})
	ex := &extract.Extractor{
		Assembler: extract.NewAssembler(recognizer, normalize.New(normalize.DefaultRules())),
		Detectors: detection.Shared(detection.Static{
			{Label: "TOTAL", Confidence: 0.9, Rect: invoice.Rect{X1: 5, Y1: 5, X2: 100, Y2: 40}},
		}),
	}

	var out bytes.Buffer
	failed := extractBatch(context.Background(), ex, logging.Nop(), []string{a, broken, b}, outDir, 2, &out)
	if failed != 1 {
		t.Errorf("failed: got %d, want 1", failed)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed paths: got %q, want 2 lines", out.String())
	}
	if !strings.HasPrefix(filepath.Base(lines[0]), "a-") || !strings.HasPrefix(filepath.Base(lines[1]), "b-") {
		t.Errorf("paths not in input order: %q", lines)
	}
	for _, l := range lines {
		if _, err := os.Stat(l); err != nil {
			t.Errorf("artifact %s: %v", l, err)
		}
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 6 {
		t.Errorf("artifacts: got %d files, want 6 (json, xlsx, png per document)", len(entries))
	}
}
