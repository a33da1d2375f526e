package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Backend translates one chunk of text between two languages.
type Backend interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// HTTPConfig configures an HTTPBackend.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPBackend talks to a LibreTranslate-compatible service (POST /translate).
type HTTPBackend struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

func NewHTTPBackend(cfg HTTPConfig) *HTTPBackend {
	b := &HTTPBackend{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		client:  cfg.HTTPClient,
	}
	if b.timeout <= 0 {
		b.timeout = 30 * time.Second
	}
	if b.client == nil {
		b.client = &http.Client{}
	}
	return b
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText *string `json:"translatedText"`
	Error          string  `json:"error,omitempty"`
}

// ErrNoTranslation is returned when the service answers without a translation.
var ErrNoTranslation = errors.New("translation service returned no text")

func (b *HTTPBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	body, err := json.Marshal(translateRequest{Q: text, Source: source, Target: target, Format: "text", APIKey: b.apiKey})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	defer resp.Body.Close()
	var out translateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("translate: status %d: decode: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: status %d: %s", resp.StatusCode, out.Error)
	}
	if out.TranslatedText == nil {
		return "", ErrNoTranslation
	}
	return *out.TranslatedText, nil
}
