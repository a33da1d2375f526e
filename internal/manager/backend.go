package manager

import (
	"context"

	"docvision/internal/ollama"
)

// Catalog lists the models the endpoint can serve.
type Catalog interface {
	Tags(ctx context.Context) ([]ollama.Model, error)
}

// Puller streams the progress of a model pull. The channel is closed when the
// stream ends; a final event with Err set reports a mid-stream failure.
type Puller interface {
	Pull(ctx context.Context, model string) (<-chan ollama.PullEvent, error)
}

// Generator runs a single non-streaming generation.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (ollama.GenerateResponse, error)
}

// Backend is everything the manager needs from the model endpoint.
// *ollama.Client satisfies it.
type Backend interface {
	Catalog
	Puller
	Generator
}

var _ Backend = (*ollama.Client)(nil)
