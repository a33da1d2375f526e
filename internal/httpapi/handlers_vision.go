package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"docvision/internal/describe"
	"docvision/internal/imagefetch"
	"docvision/internal/translate"
	"docvision/pkg/types"
)

const (
	msgInvalidURL       = "URL de l'image invalide ou manquante."
	msgNoActiveDescribe = "Aucun modèle actif défini. Veuillez définir un modèle via /models/set."
	msgEmptyTranslate   = "Le champ 'text' doit être une chaîne non vide"
)

// handleDescribe describes the requested objects in an image.
//
//	@Summary	Describe objects in an image
//	@Tags		vision
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.DescribeRequest	true	"Image and objects"
//	@Success	200		{object}	types.DescribeResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	500		{object}	types.ErrorResponse
//	@Router		/describe [post]
func (s *server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	if s.Describer == nil || s.Images == nil {
		notConfigured(w, "describe")
		return
	}
	var req types.DescribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		writeJSONError(w, http.StatusBadRequest, msgInvalidURL)
		return
	}
	if !validObjects(req.Objects) {
		writeJSONError(w, http.StatusBadRequest, describe.ErrNoObjects.Error())
		return
	}
	if _, ok := s.Models.Active(); !ok {
		writeJSONError(w, http.StatusBadRequest, msgNoActiveDescribe)
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "describe", map[string]any{"objects": req.Objects})
	ctx, cancel := workContext(r)
	defer cancel()

	img, err := s.Images.Fetch(ctx, req.ImageURL)
	if err != nil {
		if aborted(r) {
			return
		}
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Échec du téléchargement de l'image : %v", err))
		logEnd(r, lvl, "describe", http.StatusBadRequest, start, err)
		return
	}
	res, err := s.Describer.Describe(ctx, img.Data, req.Objects)
	if err != nil {
		if aborted(r) {
			return
		}
		status, msg := describeFailure(err)
		if status >= 500 {
			IncrementUpstreamFailure("describe", err)
		}
		writeJSONError(w, status, msg)
		logEnd(r, lvl, "describe", status, start, err)
		return
	}
	writeJSON(w, http.StatusOK, types.DescribeResponse{
		Status:      types.StatusSuccess,
		Message:     res.Message(),
		Description: res.Description,
		ModelUsed:   res.ModelUsed,
	})
	logEnd(r, lvl, "describe", http.StatusOK, start, nil)
}

func validObjects(objects []string) bool {
	if len(objects) == 0 {
		return false
	}
	for _, o := range objects {
		if strings.TrimSpace(o) == "" {
			return false
		}
	}
	return true
}

// describeFailure maps a Describe error to a status and message.
func describeFailure(err error) (int, string) {
	switch {
	case errors.Is(err, describe.ErrNoActiveModel):
		return http.StatusBadRequest, msgNoActiveDescribe
	case errors.Is(err, describe.ErrNoObjects):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, imagefetch.ErrNotImage):
		return http.StatusBadRequest, fmt.Sprintf("Échec du téléchargement de l'image : %v", err)
	}
	return http.StatusInternalServerError, fmt.Sprintf("Erreur lors de la génération de la description : %v", err)
}

// handleAnalyze counts detected objects and their mentions in a text.
//
//	@Summary	Cross-reference image objects with a text
//	@Tags		vision
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.AnalysisRequest	true	"Image and text"
//	@Success	200		{object}	types.AnalysisResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	500		{object}	types.ErrorResponse
//	@Router		/analyze [post]
func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.Analyzer == nil || s.Images == nil {
		notConfigured(w, "analyze")
		return
	}
	var req types.AnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		writeJSONError(w, http.StatusBadRequest, msgInvalidURL)
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "analyze", nil)
	ctx, cancel := workContext(r)
	defer cancel()

	img, err := s.Images.Fetch(ctx, req.ImageURL)
	if err != nil {
		if aborted(r) {
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, imagefetch.ErrInvalidURL) {
			status = http.StatusBadRequest
		}
		writeJSONError(w, status, fmt.Sprintf("Erreur lors de l'analyse : %v", err))
		logEnd(r, lvl, "analyze", status, start, err)
		return
	}
	result, err := s.Analyzer.Analyze(ctx, img.Data, req.Text)
	if err != nil {
		if aborted(r) {
			return
		}
		IncrementUpstreamFailure("analyze", err)
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Erreur lors de l'analyse : %v", err))
		logEnd(r, lvl, "analyze", http.StatusInternalServerError, start, err)
		return
	}
	out := types.AnalysisResponse{Result: make(map[string]types.Occurrence, len(result))}
	for label, occ := range result {
		out.Result[label] = types.Occurrence{Text: occ.Text, Image: occ.Image}
	}
	writeJSON(w, http.StatusOK, out)
	logEnd(r, lvl, "analyze", http.StatusOK, start, nil)
}

// handleSummary summarises a text in French.
//
//	@Summary	Summarise a text
//	@Tags		text
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.SummaryRequest	true	"Text"
//	@Success	200		{object}	types.SummaryResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	500		{object}	types.ErrorResponse
//	@Router		/resumer [post]
func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.Describer == nil {
		notConfigured(w, "resumer")
		return
	}
	var req types.SummaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSONError(w, http.StatusBadRequest, describe.MsgNoText)
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "summary", map[string]any{"chars": len(req.Text)})
	ctx, cancel := workContext(r)
	defer cancel()

	summary, err := s.Describer.Summarize(ctx, req.Text)
	if err != nil {
		if aborted(r) {
			return
		}
		IncrementUpstreamFailure("summary", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		logEnd(r, lvl, "summary", http.StatusInternalServerError, start, err)
		return
	}
	writeJSON(w, http.StatusOK, types.SummaryResponse{Summary: summary})
	logEnd(r, lvl, "summary", http.StatusOK, start, nil)
}

// handleTranslate translates a text into the configured target language.
//
//	@Summary	Translate a text
//	@Tags		text
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.TranslateRequest	true	"Text"
//	@Success	200		{object}	types.TranslateResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	500		{object}	types.ErrorResponse
//	@Router		/translate [post]
func (s *server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if s.Translator == nil {
		notConfigured(w, "translate")
		return
	}
	var req types.TranslateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSONError(w, http.StatusBadRequest, msgEmptyTranslate)
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "translate", map[string]any{"chars": len(req.Text)})
	ctx, cancel := workContext(r)
	defer cancel()

	out, err := s.Translator.Translate(ctx, req.Text)
	if err != nil {
		if aborted(r) {
			return
		}
		status := http.StatusInternalServerError
		msg := fmt.Sprintf("Erreur lors de la traduction : %v", err)
		if errors.Is(err, translate.ErrEmptyText) {
			status, msg = http.StatusBadRequest, msgEmptyTranslate
		}
		writeJSONError(w, status, msg)
		logEnd(r, lvl, "translate", status, start, err)
		return
	}
	writeJSON(w, http.StatusOK, types.TranslateResponse{TranslatedText: out})
	logEnd(r, lvl, "translate", http.StatusOK, start, nil)
}

// handleHealth reports liveness and model endpoint reachability.
//
//	@Summary	Health check
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Router		/health [get]
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	conn := "unreachable"
	if s.Backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.Backend.Ping(ctx); err == nil {
			conn = "ok"
		}
	}
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "healthy", OllamaConnection: conn})
}

// handleEvents lists recent manager events.
//
//	@Summary	Recent manager events
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	types.EventsResponse
//	@Router		/debug/events [get]
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		notConfigured(w, "events")
		return
	}
	evs := s.Events.Events()
	out := types.EventsResponse{Events: make([]types.EventEntry, 0, len(evs))}
	for _, e := range evs {
		out.Events = append(out.Events, types.EventEntry{Name: e.Name, Model: e.Model, Fields: e.Fields})
	}
	writeJSON(w, http.StatusOK, out)
}
