package types

// Status values used in the {status, message} envelopes.
const (
	StatusSuccess    = "success"
	StatusError      = "error"
	StatusStarted    = "started"
	StatusCancelling = "cancelling"
)

// StatusMessage is the generic {status, message} envelope returned by the
// model management endpoints.
type StatusMessage struct {
	// example: success
	Status string `json:"status" example:"success"`
	// example: Le modèle llava:7b a été défini comme modèle actif.
	Message string `json:"message" example:"Le modèle llava:7b a été défini comme modèle actif."`
}

// ModelsResponse wraps the catalog returned by GET /models/available.
type ModelsResponse struct {
	// example: success
	Status string `json:"status" example:"success"`
	// Models known to the backend.
	Models []ModelEntry `json:"models"`
}

// CurrentModelResponse is returned by GET /models/current.
type CurrentModelResponse struct {
	// example: success
	Status string `json:"status" example:"success"`
	// Active model name; empty when Status is "error".
	// example: llava:7b
	Model string `json:"model,omitempty" example:"llava:7b"`
	// Set when no model is active.
	Message string `json:"message,omitempty"`
}

// DownloadRequest is the body of POST /models/download.
type DownloadRequest struct {
	// Name of the model to pull.
	// example: mistral
	ModelName string `json:"model_name" example:"mistral"`
}

// DownloadStatusResponse is returned by GET /models/download-status.
type DownloadStatusResponse struct {
	// One of idle, downloading, completed, cancelled, error.
	// example: downloading
	Status string `json:"status" example:"downloading"`
	// Integer percentage 0..100.
	// example: 42
	Progress int `json:"progress" example:"42"`
	// Last status line reported by the backend, or an error message.
	// example: pulling manifest
	Message string `json:"message" example:"pulling manifest"`
	// Model being (or last) downloaded; null when nothing ever ran.
	// example: mistral
	ModelName *string `json:"model_name" example:"mistral"`
}

// RunModelResponse is returned by POST /models/run/{model_name}.
type RunModelResponse struct {
	// example: success
	Status string `json:"status" example:"success"`
	// example: true
	Response bool `json:"response" example:"true"`
}

// DescribeRequest is the body of POST /describe.
type DescribeRequest struct {
	// example: https://example.com/street.png
	ImageURL string `json:"image_url" example:"https://example.com/street.png"`
	// Objects to describe, in the order they should be listed.
	// example: ["voiture","arbre"]
	Objects []string `json:"objects" example:"voiture,arbre"`
}

// DescribeResponse is returned by POST /describe.
type DescribeResponse struct {
	// example: success
	Status string `json:"status" example:"success"`
	// example: Description générée avec succès
	Message string `json:"message" example:"Description générée avec succès"`
	// Generated description.
	Description string `json:"description"`
	// Model that produced (or originally produced, when cached) the description.
	// example: llava:7b
	ModelUsed string `json:"model_used" example:"llava:7b"`
}

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	// example: https://example.com/street.png
	ImageURL string `json:"image_url" example:"https://example.com/street.png"`
	// Text to cross-reference against detected objects.
	Text string `json:"text"`
}

// AnalysisResponse maps each detected object (translated) to its occurrences.
type AnalysisResponse struct {
	Result map[string]Occurrence `json:"result"`
}

// SummaryRequest is the body of POST /resumer.
type SummaryRequest struct {
	Text string `json:"text"`
}

// SummaryResponse is returned by POST /resumer.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	Text string `json:"text"`
}

// TranslateResponse is returned by POST /translate.
type TranslateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// ok or unreachable.
	// example: ok
	OllamaConnection string `json:"ollama_connection" example:"ok"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// EventEntry is one recorded manager event, as served by GET /debug/events.
type EventEntry struct {
	// example: download_finished
	Name string `json:"name" example:"download_finished"`
	// example: mistral
	Model  string         `json:"model,omitempty" example:"mistral"`
	Fields map[string]any `json:"fields,omitempty"`
}

// EventsResponse lists recent manager events, oldest first.
type EventsResponse struct {
	Events []EventEntry `json:"events"`
}
