package detection

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

const sampleDetections = `[
    {"label": "NUMBER", "confidence": 0.93, "bounding_box": {"x1": 10.5, "y1": 20, "x2": 200.9, "y2": 48}},
    {"label": "TABLE", "confidence": 0.88, "bounding_box": {"x1": 0, "y1": 300, "x2": 800, "y2": 700}},
    {"label": "NOTE", "confidence": 0.31, "bounding_box": {"x1": 5, "y1": 900, "x2": 400, "y2": 950}}
]`

func TestDecode(t *testing.T) {
	regions, err := Decode(strings.NewReader(sampleDetections))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(regions) != 3 {
		t.Fatalf("got %d regions, want 3", len(regions))
	}

	first := regions[0]
	if first.Label != "NUMBER" || first.Confidence != 0.93 {
		t.Errorf("first region: got %+v", first)
	}
	want := invoice.Rect{X1: 10.5, Y1: 20, X2: 200.9, Y2: 48}
	if first.Rect != want {
		t.Errorf("Rect: got %+v, want %+v", first.Rect, want)
	}
	if !regions[1].IsTable() {
		t.Error("second region should be the table")
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []string{
		"",
		"{not json",
		`{"label": "TOTAL"}`,
	}
	for _, in := range tests {
		if _, err := Decode(strings.NewReader(in)); err == nil {
			t.Errorf("Decode(%q) should fail", in)
		}
	}
}

func TestEncode_KeepsOrder(t *testing.T) {
	regions, err := Decode(strings.NewReader(sampleDetections))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, regions); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"bounding_box"`) {
		t.Errorf("output missing bounding_box key: %s", out)
	}
	if strings.Index(out, "NUMBER") > strings.Index(out, "NOTE") {
		t.Error("Encode reordered regions")
	}
}

func TestEncode_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("got %q, want []", got)
	}
}

func TestFilterConfidence(t *testing.T) {
	regions, _ := Decode(strings.NewReader(sampleDetections))

	tests := []struct {
		min  float64
		want []string
	}{
		{0, []string{"NUMBER", "TABLE", "NOTE"}},
		{0.5, []string{"NUMBER", "TABLE"}},
		{0.88, []string{"NUMBER", "TABLE"}},
		{0.99, nil},
	}
	for _, tt := range tests {
		got := FilterConfidence(regions, tt.min)
		if len(got) != len(tt.want) {
			t.Errorf("min %v: got %d regions, want %d", tt.min, len(got), len(tt.want))
			continue
		}
		for i, r := range got {
			if r.Label != tt.want[i] {
				t.Errorf("min %v: region %d got %s, want %s", tt.min, i, r.Label, tt.want[i])
			}
		}
	}
}

func TestStatic_ReturnsCopy(t *testing.T) {
	s := Static{{Label: "TOTAL", Confidence: 0.9}}

	got, err := s.Detect(context.Background(), nil)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	got[0].Label = "CHANGED"
	if s[0].Label != "TOTAL" {
		t.Error("Detect result aliases the static list")
	}
}

func TestShared(t *testing.T) {
	s := Static{{Label: "TOTAL"}}
	r := Shared(s)
	if _, ok := r("a.png").(Static); !ok {
		t.Error("Shared should return the wrapped detector")
	}
}

func TestSidecarPath(t *testing.T) {
	tests := []struct {
		dir, image, want string
	}{
		{"", "/data/in/inv-001.png", "/data/in/inv-001.json"},
		{"/data/det", "/data/in/inv-001.jpeg", "/data/det/inv-001.json"},
		{"", "scan.v2.png", "scan.v2.json"},
		{"", "noext", "noext.json"},
	}
	for _, tt := range tests {
		if got := SidecarPath(tt.dir, tt.image); got != tt.want {
			t.Errorf("SidecarPath(%q, %q): got %q, want %q", tt.dir, tt.image, got, tt.want)
		}
	}
}

func TestFileDetector(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "invoice.png")
	if err := os.WriteFile(SidecarPath("", imgPath), []byte(sampleDetections), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	d := Sidecars("")(imgPath)
	regions, err := d.Detect(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 3 {
		t.Errorf("got %d regions, want 3", len(regions))
	}
}

func TestFileDetector_Missing(t *testing.T) {
	d := FileDetector{Path: filepath.Join(t.TempDir(), "missing.json")}
	if _, err := d.Detect(context.Background(), nil); err == nil {
		t.Error("Detect should fail for a missing file")
	}
}
