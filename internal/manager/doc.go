// Package manager owns the generative-model lifecycle of the service: which
// model is active, which models the endpoint can serve, and the single
// background download job. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, Close.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: DownloadState, DownloadJob and ModelEntry snapshots.
//   - errors.go: typed errors and helpers (IsModelUnavailable, IsDownloadInProgress, ...).
//   - backend.go: the Backend interface the manager drives (catalog, pull, generate).
//   - registry.go: ListAvailable/SetActive/Active and startup selection.
//   - download.go: StartDownload/CancelDownload/DownloadStatus and the job loop.
//   - warmup.go: Warmup preloads a model with a one-token generation.
//   - events.go, eventpub_memory.go: lifecycle events.
//   - metrics.go: Prometheus collectors for activations and downloads.
//
// Concurrency: the active model is a single atomic cell, so reads never lock.
// The download job is guarded by a mutex held only for in-memory transitions;
// no lock is held while talking to the endpoint. At most one job is
// Downloading at a time, and cancellation is cooperative: CancelDownload
// cancels the job's context and the job observes it at its next checkpoint.
//
// External packages should construct a Manager with New/NewWithConfig and use
// its public methods only. Internal types are subject to change.
package manager
