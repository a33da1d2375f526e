package manager

import (
	"errors"
	"fmt"
	"net/http"
)

// modelUnavailableError signals activation of a model absent from the catalog.
type modelUnavailableError struct{ name string }

func (e modelUnavailableError) Error() string {
	return fmt.Sprintf("Le modèle %s n'est pas disponible. Veuillez le télécharger d'abord.", e.name)
}

func (e modelUnavailableError) StatusCode() int { return http.StatusBadRequest }

// ErrModelUnavailable constructs a modelUnavailableError.
func ErrModelUnavailable(name string) error { return modelUnavailableError{name: name} }

// IsModelUnavailable reports whether err indicates a model missing from the catalog.
func IsModelUnavailable(err error) bool {
	var e modelUnavailableError
	return errors.As(err, &e)
}

// downloadInProgressError rejects a second concurrent download.
type downloadInProgressError struct{ model string }

func (e downloadInProgressError) Error() string { return "Un téléchargement est déjà en cours" }

func (e downloadInProgressError) StatusCode() int { return http.StatusBadRequest }

// IsDownloadInProgress reports whether err rejected a start because a job is running.
func IsDownloadInProgress(err error) bool {
	var e downloadInProgressError
	return errors.As(err, &e)
}

// noActiveDownloadError rejects a cancel with nothing running.
type noActiveDownloadError struct{}

func (noActiveDownloadError) Error() string { return "Aucun téléchargement en cours" }

func (noActiveDownloadError) StatusCode() int { return http.StatusBadRequest }

// IsNoActiveDownload reports whether err rejected a cancel with no running job.
func IsNoActiveDownload(err error) bool {
	var e noActiveDownloadError
	return errors.As(err, &e)
}

// errCancelRequested is the cancellation cause installed by CancelDownload.
var errCancelRequested = errors.New("download cancelled by request")

// invalidRequestError rejects malformed arguments.
type invalidRequestError string

func (e invalidRequestError) Error() string { return string(e) }

func (invalidRequestError) StatusCode() int { return http.StatusBadRequest }
