package detection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ironsheep/invoice-tools/internal/imaging"
	"github.com/ironsheep/invoice-tools/internal/invoice"
)

const (
	defaultMaxRetries = 2
	defaultBackoff    = 500 * time.Millisecond
	maxErrorBody      = 512
)

// RemoteDetector posts the image to a model-serving endpoint. The request is
// a multipart form with the PNG-encoded image in the "image" field; the
// response body is the detection list.
type RemoteDetector struct {
	URL    string
	Client *http.Client

	// MaxRetries is the number of retries after a network error or a 5xx
	// response. Zero selects the default; negative disables retries.
	MaxRetries int

	// Backoff is the delay before the first retry, doubled for each retry.
	Backoff time.Duration
}

// NewRemoteDetector returns a RemoteDetector for url with a 60 second
// request timeout.
func NewRemoteDetector(url string) *RemoteDetector {
	return &RemoteDetector{
		URL:    url,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Detect sends img to the endpoint and decodes the returned detections.
func (d *RemoteDetector) Detect(ctx context.Context, img image.Image) ([]invoice.DetectedRegion, error) {
	if d.URL == "" {
		return nil, errors.New("remote detector URL is not set")
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	body, contentType, err := multipartImage(data)
	if err != nil {
		return nil, err
	}

	resp, err := d.do(ctx, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("detector returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return Decode(resp.Body)
}

func (d *RemoteDetector) do(ctx context.Context, body []byte, contentType string) (*http.Response, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	retries := d.MaxRetries
	if retries == 0 {
		retries = defaultMaxRetries
	} else if retries < 0 {
		retries = 0
	}
	backoff := d.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build detector request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("detector request failed: %w", err)
			continue
		}
		if resp.StatusCode >= 500 && attempt < retries {
			resp.Body.Close()
			lastErr = fmt.Errorf("detector returned status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func multipartImage(data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "invoice.png")
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
