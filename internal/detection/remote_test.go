package detection

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestRemoteDetector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			t.Errorf("missing image field: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		img, err := png.Decode(file)
		if err != nil {
			t.Errorf("upload is not a PNG: %v", err)
		} else if img.Bounds().Dx() != 30 {
			t.Errorf("uploaded width: got %d, want 30", img.Bounds().Dx())
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleDetections))
	}))
	defer srv.Close()

	d := NewRemoteDetector(srv.URL)
	regions, err := d.Detect(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 3 || regions[0].Label != "NUMBER" {
		t.Errorf("got %+v", regions)
	}
}

func TestRemoteDetector_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	d := &RemoteDetector{URL: srv.URL, Client: srv.Client(), Backoff: time.Millisecond}
	regions, err := d.Detect(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("got %d regions, want 0", len(regions))
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls: got %d, want 2", got)
	}
}

func TestRemoteDetector_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unsupported image", http.StatusBadRequest)
	}))
	defer srv.Close()

	d := &RemoteDetector{URL: srv.URL, Client: srv.Client(), Backoff: time.Millisecond}
	_, err := d.Detect(context.Background(), testImage())
	if err == nil {
		t.Fatal("Detect should fail on 400")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "unsupported image") {
		t.Errorf("error should carry status and body: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls: got %d, want 1", got)
	}
}

func TestRemoteDetector_GivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := &RemoteDetector{URL: srv.URL, Client: srv.Client(), MaxRetries: 2, Backoff: time.Millisecond}
	if _, err := d.Detect(context.Background(), testImage()); err == nil {
		t.Fatal("Detect should fail after retries")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("calls: got %d, want 3", got)
	}
}

func TestRemoteDetector_NoURL(t *testing.T) {
	d := &RemoteDetector{}
	if _, err := d.Detect(context.Background(), testImage()); err == nil {
		t.Error("Detect should fail without a URL")
	}
}

func TestRemoteDetector_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &RemoteDetector{URL: srv.URL, Client: srv.Client()}
	if _, err := d.Detect(ctx, testImage()); err == nil {
		t.Error("Detect should fail on a canceled context")
	}
}
