package manager

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultCatalogTimeout = 10 * time.Second
)

// Config encapsulates all tunables for Manager construction.
type Config struct {
	Backend Backend
	Logger  zerolog.Logger
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
	// PullTimeout bounds a whole download job. Zero means no limit beyond
	// CancelDownload and Close.
	PullTimeout time.Duration
	// CatalogTimeout bounds each catalog query made by the registry.
	CatalogTimeout time.Duration
}

// NewWithConfig constructs a Manager from Config.
func NewWithConfig(cfg Config) *Manager {
	if cfg.Backend == nil {
		panic("manager: Config.Backend is required")
	}
	m := &Manager{
		backend:     cfg.Backend,
		log:         cfg.Logger.With().Str("component", "manager").Logger(),
		pub:         cfg.Publisher,
		pullTimeout: cfg.PullTimeout,
		job:         DownloadJob{Status: DownloadIdle},
	}
	if m.pub == nil {
		m.pub = noopPublisher{}
	}
	if cfg.PullTimeout < 0 {
		m.pullTimeout = 0
	}
	if cfg.CatalogTimeout <= 0 {
		m.catalogTimeout = defaultCatalogTimeout
	} else {
		m.catalogTimeout = cfg.CatalogTimeout
	}
	m.baseCtx, m.stop = newBaseContext()
	return m
}
