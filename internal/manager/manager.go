package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// errManagerClosed is the cancellation cause installed by Close.
var errManagerClosed = errors.New("manager closed")

type Manager struct {
	backend        Backend
	log            zerolog.Logger
	pubMu          sync.RWMutex
	pub            EventPublisher
	pullTimeout    time.Duration
	catalogTimeout time.Duration

	// active holds the selected model name; nil means unset.
	active atomic.Pointer[string]

	// Download job state. mu guards job, cancel and done.
	mu     sync.Mutex
	job    DownloadJob
	cancel context.CancelCauseFunc
	done   chan struct{}

	baseCtx   context.Context
	stop      context.CancelCauseFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New constructs a Manager over backend with a Nop logger.
func New(backend Backend) *Manager {
	// Delegate to NewWithConfig to centralize defaults
	return NewWithConfig(Config{Backend: backend, Logger: zerolog.Nop()})
}

func newBaseContext() (context.Context, context.CancelCauseFunc) {
	return context.WithCancelCause(context.Background())
}

// SetEventPublisher replaces the event sink. Passing nil drops events.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.pubMu.Lock()
	m.pub = p
	m.pubMu.Unlock()
}

func (m *Manager) publish(e Event) {
	m.pubMu.RLock()
	p := m.pub
	m.pubMu.RUnlock()
	p.Publish(e)
}

// Close cancels any running download and waits for its goroutine to exit.
// It is safe to call more than once.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.stop(errManagerClosed)
		m.mu.Unlock()
	})
	m.wg.Wait()
	return nil
}
