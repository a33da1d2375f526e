package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Detector returns how many times each label was detected in an image.
type Detector interface {
	Detect(ctx context.Context, image []byte) (map[string]int, error)
}

// HTTPDetectorConfig configures an HTTPDetector.
type HTTPDetectorConfig struct {
	URL           string
	MinConfidence float64
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// HTTPDetector posts the raw image to an object detection service that
// answers {"detections":[{"label":"cat","confidence":0.9}, ...]}.
type HTTPDetector struct {
	url     string
	minConf float64
	timeout time.Duration
	client  *http.Client
}

func NewHTTPDetector(cfg HTTPDetectorConfig) *HTTPDetector {
	d := &HTTPDetector{url: cfg.URL, minConf: cfg.MinConfidence, timeout: cfg.Timeout, client: cfg.HTTPClient}
	if d.timeout <= 0 {
		d.timeout = 60 * time.Second
	}
	if d.client == nil {
		d.client = &http.Client{}
	}
	return d
}

type detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type detectResponse struct {
	Detections []detection `json:"detections"`
}

// Detect counts detections per lowercased label, ignoring those below the
// configured confidence.
func (d *HTTPDetector) Detect(ctx context.Context, image []byte) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(image))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mimetype.Detect(image).String())
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("detect: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("detect: decode: %w", err)
	}
	counts := make(map[string]int)
	for _, det := range out.Detections {
		label := strings.ToLower(strings.TrimSpace(det.Label))
		if label == "" || det.Confidence < d.minConf {
			continue
		}
		counts[label]++
	}
	return counts, nil
}
