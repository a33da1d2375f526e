package manager

// Event represents a manager lifecycle event.
// Minimal and stable: name + model and optional fields via key/values.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// Event names published by the manager.
const (
	EventModelActivated   = "model_activated"
	EventDownloadStart    = "download_start"
	EventDownloadCancel   = "download_cancel_requested"
	EventDownloadFinished = "download_finished"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
