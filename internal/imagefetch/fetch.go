// Package imagefetch downloads images referenced by URL and normalises them
// into a form the vision model endpoint accepts.
package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

const defaultMaxBytes = 20 << 20

var (
	ErrInvalidURL = errors.New("URL de l'image invalide ou manquante")
	ErrTooLarge   = errors.New("image trop volumineuse")
	ErrNotImage   = errors.New("le contenu téléchargé n'est pas une image")
)

// StatusError reports a non-200 answer from the image host.
type StatusError struct{ StatusCode int }

func (e *StatusError) Error() string {
	return fmt.Sprintf("Erreur téléchargement image: %d", e.StatusCode)
}

// Image is a downloaded image with its sniffed mime type.
type Image struct {
	Data []byte
	MIME string
}

// Config configures a Fetcher.
type Config struct {
	MaxBytes   int64
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Fetcher downloads images over http(s).
type Fetcher struct {
	maxBytes int64
	timeout  time.Duration
	client   *http.Client
	log      zerolog.Logger
}

func New(cfg Config) *Fetcher {
	f := &Fetcher{
		maxBytes: cfg.MaxBytes,
		timeout:  cfg.Timeout,
		client:   cfg.HTTPClient,
		log:      cfg.Logger.With().Str("component", "imagefetch").Logger(),
	}
	if f.maxBytes <= 0 {
		f.maxBytes = defaultMaxBytes
	}
	if f.timeout <= 0 {
		f.timeout = 30 * time.Second
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	return f
}

// Fetch downloads rawURL. It rejects non-http(s) URLs, bodies larger than the
// configured limit and content that does not sniff as image/*.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Image, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Image{}, ErrInvalidURL
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Image{}, ErrInvalidURL
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Image{}, &StatusError{StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > f.maxBytes {
		return Image{}, ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return Image{}, ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		f.log.Debug().Str("url", u.Redacted()).Str("mime", mt.String()).Msg("rejected non-image content")
		return Image{}, ErrNotImage
	}
	f.log.Debug().Str("url", u.Redacted()).Str("mime", mt.String()).Int("bytes", len(data)).Msg("image fetched")
	return Image{Data: data, MIME: mt.String()}, nil
}
