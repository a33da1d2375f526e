package manager

import (
	"context"
	"fmt"
	"time"

	"docvision/internal/ollama"
)

const warmupPrompt = "Hello! This is a warmup request."

// Warmup loads name on the endpoint with a one-token generation and asks the
// endpoint to keep it resident.
func (m *Manager) Warmup(ctx context.Context, name string) error {
	start := time.Now()
	_, err := m.backend.Generate(ctx, ollama.GenerateRequest{
		Model:     name,
		Prompt:    warmupPrompt,
		Options:   map[string]any{"num_predict": 1},
		KeepAlive: -1,
	})
	if err != nil {
		m.log.Warn().Err(err).Str("model", name).Msg("warmup failed")
		return fmt.Errorf("warmup %s: %w", name, err)
	}
	m.log.Info().Str("model", name).Dur("elapsed", time.Since(start)).Msg("model warmed up")
	return nil
}
