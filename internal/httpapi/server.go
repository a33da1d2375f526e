package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docvision/internal/analysis"
	"docvision/internal/describe"
	"docvision/internal/imagefetch"
	"docvision/internal/manager"
)

// ModelService is the model lifecycle surface used by the /models routes.
type ModelService interface {
	ListAvailable(ctx context.Context) []manager.ModelEntry
	Active() (string, bool)
	SetActive(ctx context.Context, name string) error
	StartDownload(name string) error
	CancelDownload() error
	DownloadStatus() manager.DownloadJob
	Warmup(ctx context.Context, name string) error
}

// Describer produces descriptions and summaries.
type Describer interface {
	Describe(ctx context.Context, image []byte, objects []string) (describe.Result, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// Analyzer cross-references detected objects with a text.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, text string) (map[string]analysis.Occurrence, error)
}

// Translator translates whole texts.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// ImageFetcher downloads the image referenced by a request.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (imagefetch.Image, error)
}

// Pinger checks reachability of the model endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EventSource exposes recent manager events for debugging.
type EventSource interface {
	Events() []manager.Event
}

// Deps are the services behind the HTTP API. Models is required; a nil
// optional service makes its routes answer 503.
type Deps struct {
	Models     ModelService
	Describer  Describer
	Analyzer   Analyzer
	Translator Translator
	Images     ImageFetcher
	Backend    Pinger
	Events     EventSource
}

type server struct {
	Deps
}

func NewMux(d Deps) http.Handler {
	if d.Models == nil {
		panic("httpapi: Deps.Models is required")
	}
	s := &server{Deps: d}

	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	r.Group(func(r chi.Router) {
		r.Use(inflightMiddleware)

		r.Route("/models", func(r chi.Router) {
			r.Get("/available", s.handleAvailable)
			r.Get("/current", s.handleCurrent)
			r.Post("/set/{model_name}", s.handleSet)
			r.Post("/download", s.handleDownload)
			r.Post("/cancel-download", s.handleCancel)
			r.Get("/download-status", s.handleDownloadStatus)
			r.Post("/run/{model_name}", s.handleRun)
		})

		r.Post("/describe", s.handleDescribe)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/resumer", s.handleSummary)
		r.Post("/translate", s.handleTranslate)

		r.Get("/health", s.handleHealth)
		r.Get("/debug/events", s.handleEvents)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.Models.Active(); ok {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON enforces the JSON content type and the body limit, then decodes
// into v. It writes the error response itself and reports success.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func notConfigured(w http.ResponseWriter, what string) {
	writeJSONError(w, http.StatusServiceUnavailable, what+" is not configured")
}
