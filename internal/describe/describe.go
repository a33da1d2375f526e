// Package describe produces French descriptions of requested objects in an
// image and summaries of texts using the generative model endpoint.
package describe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"docvision/internal/cache"
	"docvision/internal/imagefetch"
	"docvision/internal/ollama"
)

// User-facing messages.
const (
	MsgGenerated = "Description générée avec succès"
	MsgFromCache = "Résultat récupéré du cache."
	MsgNoText    = "Aucun texte fourni pour le résumé."
)

var (
	// ErrNoActiveModel means no model is selected for descriptions.
	ErrNoActiveModel = errors.New("Aucun modèle actif défini.")
	// ErrEmptyResponse means the model answered with no text.
	ErrEmptyResponse = errors.New("Réponse vide")
	// ErrNoObjects rejects a description request without objects.
	ErrNoObjects = errors.New("Liste d'objets invalide ou vide.")
	// ErrNoText rejects an empty summary request.
	ErrNoText = errors.New(MsgNoText)
)

// Generator is the part of the model endpoint used here.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (ollama.GenerateResponse, error)
	Chat(ctx context.Context, req ollama.ChatRequest) (ollama.ChatResponse, error)
}

// ActiveModel reports the model currently selected for descriptions.
type ActiveModel interface {
	Active() (string, bool)
}

// Config configures a Service.
type Config struct {
	Generator    Generator
	Models       ActiveModel
	Cache        *cache.Cache
	SummaryModel string
	// ImageMaxDim caps the longest image side sent to the model; <= 0 disables.
	ImageMaxDim    int
	// ImageMaxPixels rejects larger images before decoding them;
	// <= 0 uses imagefetch.DefaultMaxPixels.
	ImageMaxPixels int
	Logger         zerolog.Logger
}

type Service struct {
	gen          Generator
	models       ActiveModel
	cache        *cache.Cache
	summaryModel string
	maxDim       int
	maxPixels    int
	log          zerolog.Logger
}

func New(cfg Config) *Service {
	s := &Service{
		gen:          cfg.Generator,
		models:       cfg.Models,
		cache:        cfg.Cache,
		summaryModel: cfg.SummaryModel,
		maxDim:       cfg.ImageMaxDim,
		maxPixels:    cfg.ImageMaxPixels,
		log:          cfg.Logger.With().Str("component", "describe").Logger(),
	}
	if s.maxPixels <= 0 {
		s.maxPixels = imagefetch.DefaultMaxPixels
	}
	if s.cache == nil {
		s.cache = cache.New(cache.WithLogger(cfg.Logger))
	}
	return s
}

// Result is a produced or cached description.
type Result struct {
	Description string
	ModelUsed   string
	Cached      bool
}

// Message returns the user-facing status message for r.
func (r Result) Message() string {
	if r.Cached {
		return MsgFromCache
	}
	return MsgGenerated
}

// Describe describes objects in image with the active model. Results are
// cached by image content and object list. Errors are ErrNoActiveModel,
// ErrNoObjects, ErrEmptyResponse, imagefetch.ErrNotImage, or an ollama
// transport/API error wrapped in cache.ErrComputationFailed.
func (s *Service) Describe(ctx context.Context, image []byte, objects []string) (Result, error) {
	if len(objects) == 0 {
		return Result{}, ErrNoObjects
	}
	model, ok := s.models.Active()
	if !ok {
		return Result{}, ErrNoActiveModel
	}
	desc, hit, err := s.cache.GetOrCompute(ctx, image, objects, func(ctx context.Context) (string, error) {
		return s.generate(ctx, model, image, objects)
	})
	if err != nil {
		s.log.Error().Err(err).Str("model", model).Strs("objects", objects).Msg("description failed")
		return Result{}, err
	}
	s.log.Info().Str("model", model).Strs("objects", objects).Bool("cached", hit).Msg("description ready")
	return Result{Description: desc, ModelUsed: model, Cached: hit}, nil
}

func (s *Service) generate(ctx context.Context, model string, image []byte, objects []string) (string, error) {
	img, err := imagefetch.Normalize(image, s.maxDim, s.maxPixels)
	if err != nil {
		return "", err
	}
	resp, err := s.gen.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  describePrompt(objects),
		Images:  []string{ollama.EncodeImage(img)},
		Options: map[string]any{"num_ctx": 2048, "temperature": 0.7},
	})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(resp.Response)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Summarize summarises text in French with the summary model.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	resp, err := s.gen.Chat(ctx, ollama.ChatRequest{
		Model:    s.summaryModel,
		Messages: []ollama.ChatMessage{{Role: "user", Content: summaryPrompt(text)}},
		Options:  map[string]any{"num_ctx": 2048, "temperature": 0.7},
	})
	if err != nil {
		return "", fmt.Errorf("Erreur lors de la génération du résumé : %w", err)
	}
	out := strings.TrimSpace(resp.Message.Content)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
