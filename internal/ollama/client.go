// Package ollama is a small HTTP client for an Ollama-compatible generative
// model endpoint: catalog (/api/tags), model pulls (/api/pull), one-shot
// generation (/api/generate) and chat (/api/chat).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied by New when the corresponding Config field is unset.
const (
	defaultConnectTimeout = 5 * time.Second
	defaultRequestTimeout = 5 * time.Minute
)

// Config configures a Client.
type Config struct {
	BaseURL string
	// RequestTimeout bounds non-streaming calls (tags, generate, chat).
	// Pull streams are bounded only by the caller's context.
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
	// HTTPClient overrides the default transport (tests).
	HTTPClient *http.Client
}

// Client talks to the model endpoint over HTTP.
type Client struct {
	baseURL    string
	reqTimeout time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

// New constructs a Client.
func New(cfg Config) *Client {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	cli := cfg.HTTPClient
	if cli == nil {
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.ConnectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		// Timeout stays 0: deadlines travel on the request context so pulls can stream for hours.
		cli = &http.Client{Transport: tr, Timeout: 0}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		reqTimeout: cfg.RequestTimeout,
		httpClient: cli,
		log:        cfg.Logger.With().Str("component", "ollama").Logger(),
	}
}

// BaseURL returns the endpoint root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Ping checks that the endpoint answers on its root path.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.reqTimeout)
	defer cancel()
	resp, err := c.send(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	return nil
}

// send issues a request and returns the response when the status is 2xx.
// Non-2xx responses are drained into an *APIError.
func (c *Client) send(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Translate context timeouts/cancels
		if ctx.Err() != nil {
			return nil, &TransportError{Op: path, Err: ctx.Err()}
		}
		return nil, &TransportError{Op: path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Op: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doJSON performs a bounded request/response round trip.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.reqTimeout)
	defer cancel()
	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &TransportError{Op: path, Err: ctx.Err()}
		}
		return &DecodeError{Op: path, Err: err}
	}
	return nil
}
