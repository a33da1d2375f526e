package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"docvision/internal/manager"
	"docvision/pkg/types"
)

const (
	msgNoActiveModel = "Aucun modèle n'est actuellement actif"
	msgCancelling    = "Annulation du téléchargement en cours"
)

// handleAvailable lists catalog models with their activation flag.
//
//	@Summary	List available models
//	@Tags		models
//	@Produce	json
//	@Success	200	{object}	types.ModelsResponse
//	@Router		/models/available [get]
func (s *server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	entries := s.Models.ListAvailable(r.Context())
	out := types.ModelsResponse{Status: types.StatusSuccess, Models: make([]types.ModelEntry, 0, len(entries))}
	for _, e := range entries {
		out.Models = append(out.Models, types.ModelEntry{Name: e.Name, IsActive: e.Active})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCurrent reports the active model.
//
//	@Summary	Current active model
//	@Tags		models
//	@Produce	json
//	@Success	200	{object}	types.CurrentModelResponse
//	@Router		/models/current [get]
func (s *server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	name, ok := s.Models.Active()
	if !ok {
		writeJSON(w, http.StatusOK, types.CurrentModelResponse{Status: types.StatusError, Message: msgNoActiveModel})
		return
	}
	writeJSON(w, http.StatusOK, types.CurrentModelResponse{Status: types.StatusSuccess, Model: name})
}

// handleSet activates a model present in the catalog.
//
//	@Summary	Set the active model
//	@Tags		models
//	@Produce	json
//	@Param		model_name	path		string	true	"Model name"
//	@Success	200			{object}	types.StatusMessage
//	@Failure	400			{object}	types.StatusMessage
//	@Router		/models/set/{model_name} [post]
func (s *server) handleSet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model_name")
	if err := s.Models.SetActive(r.Context(), name); err != nil {
		writeStatus(w, statusOf(err, http.StatusInternalServerError), types.StatusError, err.Error())
		return
	}
	writeStatus(w, http.StatusOK, types.StatusSuccess, fmt.Sprintf("Le modèle %s a été défini comme modèle actif.", name))
}

// handleDownload starts a background pull.
//
//	@Summary	Start a model download
//	@Tags		models
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.DownloadRequest	true	"Model to pull"
//	@Success	200		{object}	types.StatusMessage
//	@Failure	400		{object}	types.StatusMessage
//	@Failure	415		{object}	types.ErrorResponse
//	@Router		/models/download [post]
func (s *server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req types.DownloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.ModelName)
	if err := s.Models.StartDownload(name); err != nil {
		writeStatus(w, statusOf(err, http.StatusInternalServerError), types.StatusError, err.Error())
		return
	}
	writeStatus(w, http.StatusOK, types.StatusStarted, fmt.Sprintf("Téléchargement du modèle '%s' lancé", name))
}

// handleCancel requests cancellation of the running pull.
//
//	@Summary	Cancel the running download
//	@Tags		models
//	@Produce	json
//	@Success	200	{object}	types.StatusMessage
//	@Router		/models/cancel-download [post]
func (s *server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.Models.CancelDownload(); err != nil {
		writeStatus(w, http.StatusOK, types.StatusError, err.Error())
		return
	}
	writeStatus(w, http.StatusOK, types.StatusCancelling, msgCancelling)
}

// handleDownloadStatus returns the download job snapshot.
//
//	@Summary	Download status
//	@Tags		models
//	@Produce	json
//	@Success	200	{object}	types.DownloadStatusResponse
//	@Router		/models/download-status [get]
func (s *server) handleDownloadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, downloadStatusResponse(s.Models.DownloadStatus()))
}

func downloadStatusResponse(j manager.DownloadJob) types.DownloadStatusResponse {
	out := types.DownloadStatusResponse{Status: string(j.Status), Progress: j.Progress, Message: j.Message}
	if j.ModelName != "" {
		name := j.ModelName
		out.ModelName = &name
	}
	return out
}

// handleRun preloads a model on the endpoint.
//
//	@Summary	Warm up a model
//	@Tags		models
//	@Produce	json
//	@Param		model_name	path		string	true	"Model name"
//	@Success	200			{object}	types.RunModelResponse
//	@Failure	500			{object}	types.ErrorResponse
//	@Router		/models/run/{model_name} [post]
func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model_name")
	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "warmup", map[string]any{"model": name})
	ctx, cancel := workContext(r)
	defer cancel()
	if err := s.Models.Warmup(ctx, name); err != nil {
		if aborted(r) {
			return
		}
		IncrementUpstreamFailure("warmup", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		logEnd(r, lvl, "warmup", http.StatusInternalServerError, start, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RunModelResponse{Status: types.StatusSuccess, Response: true})
	logEnd(r, lvl, "warmup", http.StatusOK, start, nil)
}
