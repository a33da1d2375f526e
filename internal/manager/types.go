package manager

import "time"

// DownloadState is the lifecycle state of the download job.
type DownloadState string

const (
	DownloadIdle        DownloadState = "idle"
	DownloadDownloading DownloadState = "downloading"
	DownloadCancelled   DownloadState = "cancelled"
	DownloadCompleted   DownloadState = "completed"
	DownloadError       DownloadState = "error"
)

// Terminal reports whether s is an end state of a job.
func (s DownloadState) Terminal() bool {
	return s == DownloadCancelled || s == DownloadCompleted || s == DownloadError
}

// DownloadJob is a read-only snapshot of the download job.
type DownloadJob struct {
	ID         string
	ModelName  string
	Status     DownloadState
	Progress   int
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// ModelEntry is one catalog model with its activation flag.
type ModelEntry struct {
	Name   string
	Active bool
}
