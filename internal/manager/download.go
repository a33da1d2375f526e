package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"docvision/internal/ollama"
)

// User-facing job messages.
const (
	msgDownloadStart      = "Début du téléchargement"
	msgDownloadCancelling = "Annulation du téléchargement en cours"
	msgDownloadCancelled  = "Téléchargement annulé"
	msgDownloadCompleted  = "Téléchargement terminé"
	msgDownloadFinalizing = "Finalisation du téléchargement"
)

// StartDownload launches the background pull of name and returns at once.
// It fails with a DownloadAlreadyInProgress error while a job is Downloading.
func (m *Manager) StartDownload(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalidRequestError("Le nom du modèle est requis")
	}
	m.mu.Lock()
	if m.job.Status == DownloadDownloading {
		running := m.job.ModelName
		m.mu.Unlock()
		return downloadInProgressError{model: running}
	}
	if m.baseCtx.Err() != nil {
		m.mu.Unlock()
		return errManagerClosed
	}
	ctx, cancel := context.WithCancelCause(m.baseCtx)
	jobCtx, stopTimer := ctx, context.CancelFunc(func() {})
	if m.pullTimeout > 0 {
		jobCtx, stopTimer = context.WithTimeout(ctx, m.pullTimeout)
	}
	done := make(chan struct{})
	job := DownloadJob{
		ID:        uuid.NewString(),
		ModelName: name,
		Status:    DownloadDownloading,
		Message:   msgDownloadStart,
		StartedAt: time.Now(),
	}
	m.job, m.cancel, m.done = job, cancel, done
	m.wg.Add(1)
	m.mu.Unlock()

	downloadInflight.Set(1)
	downloadProgress.Set(0)
	m.log.Info().Str("model", name).Str("job_id", job.ID).Msg("download started")
	m.publish(Event{Name: EventDownloadStart, Model: name, Fields: map[string]any{"job_id": job.ID}})

	go func() {
		defer m.wg.Done()
		defer close(done)
		defer cancel(nil)
		defer stopTimer()
		m.runDownload(jobCtx, job.ID, name)
	}()
	return nil
}

// CancelDownload asks the running job to stop. The job observes the request at
// its next checkpoint, so DownloadStatus may report Downloading briefly after.
// A job whose stream already ended is finalizing and is no longer cancellable.
func (m *Manager) CancelDownload() error {
	m.mu.Lock()
	if m.job.Status != DownloadDownloading || m.cancel == nil {
		m.mu.Unlock()
		return noActiveDownloadError{}
	}
	m.cancel(errCancelRequested)
	m.job.Message = msgDownloadCancelling
	name, id := m.job.ModelName, m.job.ID
	m.mu.Unlock()

	m.log.Info().Str("model", name).Str("job_id", id).Msg("download cancel requested")
	m.publish(Event{Name: EventDownloadCancel, Model: name, Fields: map[string]any{"job_id": id}})
	return nil
}

// DownloadStatus returns a snapshot of the current or last job. It reports
// Idle with an empty model name when nothing ever ran.
func (m *Manager) DownloadStatus() DownloadJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.job
}

// WaitDownload blocks until the current job (if any) leaves Downloading or ctx
// is done, and returns the job snapshot.
func (m *Manager) WaitDownload(ctx context.Context) (DownloadJob, error) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return m.DownloadStatus(), nil
	}
	select {
	case <-done:
		return m.DownloadStatus(), nil
	case <-ctx.Done():
		return m.DownloadStatus(), ctx.Err()
	}
}

func (m *Manager) runDownload(ctx context.Context, id, name string) {
	events, err := m.backend.Pull(ctx, name)
	if err != nil {
		m.fail(ctx, id, err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			m.fail(ctx, id, ctx.Err())
			return
		case ev, ok := <-events:
			// Checkpoint: cancellation wins over whatever the stream says.
			if ctx.Err() != nil {
				m.fail(ctx, id, ctx.Err())
				return
			}
			if !ok {
				m.complete(ctx, id, name)
				return
			}
			if ev.Err != nil {
				m.fail(ctx, id, ev.Err)
				return
			}
			m.apply(id, ev)
		}
	}
}

// apply folds one progress event into the job. Progress is only updated when
// both sizes are present and is not forced to be monotonic.
func (m *Manager) apply(id string, ev ollama.PullEvent) {
	m.mu.Lock()
	if m.job.ID != id {
		m.mu.Unlock()
		return
	}
	if ev.Status != "" {
		m.job.Message = ev.Status
	}
	changed := false
	if ev.Total != nil && ev.Completed != nil && *ev.Total > 0 {
		p := int(*ev.Completed * 100 / *ev.Total)
		p = max(0, min(100, p))
		changed = p != m.job.Progress
		m.job.Progress = p
	}
	progress := m.job.Progress
	m.mu.Unlock()

	if changed {
		downloadProgress.Set(float64(progress))
		m.log.Debug().
			Str("job_id", id).
			Int("progress", progress).
			Str("completed", humanize.Bytes(uint64(max(0, *ev.Completed)))).
			Str("total", humanize.Bytes(uint64(*ev.Total))).
			Msg("download progress")
	}
}

// complete commits a job whose stream ended cleanly. Past the commit point
// the job can no longer be cancelled, so a cancel that was accepted never
// ends in an activation.
func (m *Manager) complete(ctx context.Context, id, name string) {
	m.mu.Lock()
	if m.job.ID != id {
		m.mu.Unlock()
		return
	}
	if ctx.Err() != nil {
		m.mu.Unlock()
		m.fail(ctx, id, ctx.Err())
		return
	}
	m.cancel = nil
	m.job.Message = msgDownloadFinalizing
	m.mu.Unlock()

	if _, ok := m.Active(); !ok {
		m.activatePulled(name)
	}
	m.finish(id, DownloadCompleted, 100, msgDownloadCompleted)
}

// activatePulled makes a freshly pulled model active. The catalog lists
// untagged pulls as "<name>:latest".
func (m *Manager) activatePulled(name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(m.baseCtx), m.catalogTimeout)
	defer cancel()
	err := m.SetActive(ctx, name)
	if IsModelUnavailable(err) && !strings.Contains(name, ":") {
		err = m.SetActive(ctx, name+":latest")
	}
	if err != nil {
		m.log.Warn().Err(err).Str("model", name).Msg("pulled model not activated")
	}
}

// fail records a terminal state for err. Cancellation (by request or Close)
// yields Cancelled; a pull timeout and every other failure yield Error.
func (m *Manager) fail(ctx context.Context, id string, err error) {
	if ctx.Err() != nil {
		cause := context.Cause(ctx)
		switch {
		case errors.Is(cause, errCancelRequested), errors.Is(cause, errManagerClosed):
			m.finish(id, DownloadCancelled, 0, msgDownloadCancelled)
			return
		case errors.Is(cause, context.DeadlineExceeded):
			err = fmt.Errorf("délai de téléchargement dépassé (%s)", m.pullTimeout)
		}
	}
	m.finish(id, DownloadError, 0, err.Error())
}

func (m *Manager) finish(id string, state DownloadState, progress int, msg string) {
	m.mu.Lock()
	if m.job.ID != id {
		m.mu.Unlock()
		return
	}
	m.job.Status = state
	m.job.Progress = progress
	m.job.Message = msg
	m.job.FinishedAt = time.Now()
	job := m.job
	m.mu.Unlock()

	downloadsTotal.WithLabelValues(string(state)).Inc()
	downloadProgress.Set(float64(progress))
	downloadInflight.Set(0)
	ev := m.log.Info()
	if state == DownloadError {
		ev = m.log.Warn()
	}
	ev.Str("model", job.ModelName).
		Str("job_id", id).
		Str("status", string(state)).
		Dur("elapsed", job.FinishedAt.Sub(job.StartedAt)).
		Str("message", msg).
		Msg("download finished")
	m.publish(Event{Name: EventDownloadFinished, Model: job.ModelName, Fields: map[string]any{
		"job_id":  id,
		"status":  string(state),
		"message": msg,
	}})
}
