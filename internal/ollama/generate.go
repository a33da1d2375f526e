package ollama

import (
	"context"
	"encoding/base64"
	"net/http"
)

// GenerateRequest is the payload for /api/generate. Images are base64
// encoded (see EncodeImage).
type GenerateRequest struct {
	Model     string         `json:"model"`
	Prompt    string         `json:"prompt"`
	Images    []string       `json:"images,omitempty"`
	Stream    bool           `json:"stream"`
	Options   map[string]any `json:"options,omitempty"`
	KeepAlive any            `json:"keep_alive,omitempty"`
}

// GenerateResponse is the non-streaming answer of /api/generate.
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate runs a single non-streaming generation.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	req.Stream = false
	var out GenerateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/generate", req, &out); err != nil {
		return GenerateResponse{}, err
	}
	return out, nil
}

// ChatMessage is one turn of a chat exchange.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload for /api/chat.
type ChatRequest struct {
	Model    string         `json:"model"`
	Messages []ChatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// ChatResponse is the non-streaming answer of /api/chat.
type ChatResponse struct {
	Model   string      `json:"model"`
	Message ChatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// Chat runs a single non-streaming chat completion.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	req.Stream = false
	var out ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", req, &out); err != nil {
		return ChatResponse{}, err
	}
	return out, nil
}

// EncodeImage returns the base64 form expected in GenerateRequest.Images.
func EncodeImage(b []byte) string { return base64.StdEncoding.EncodeToString(b) }
