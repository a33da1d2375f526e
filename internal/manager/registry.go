package manager

import (
	"context"
	"errors"
	"strings"

	"docvision/internal/ollama"
)

// ErrNoModels is returned by SelectDefault when the catalog is empty or unreachable.
var ErrNoModels = errors.New("aucun modèle disponible")

// defaultModelHint is preferred when no default model is configured.
const defaultModelHint = "llava"

func (m *Manager) catalog(ctx context.Context) ([]ollama.Model, error) {
	ctx, cancel := context.WithTimeout(ctx, m.catalogTimeout)
	defer cancel()
	return m.backend.Tags(ctx)
}

// ListAvailable returns the current catalog snapshot. A catalog failure is
// logged and reported as an empty list.
func (m *Manager) ListAvailable(ctx context.Context) []ModelEntry {
	models, err := m.catalog(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("catalog unreachable, reporting no models")
		return []ModelEntry{}
	}
	active, ok := m.Active()
	out := make([]ModelEntry, 0, len(models))
	for _, md := range models {
		out = append(out, ModelEntry{Name: md.Name, Active: ok && md.Name == active})
	}
	return out
}

// SetActive validates name against a fresh catalog snapshot and makes it the
// active model. An unreachable catalog counts as empty.
func (m *Manager) SetActive(ctx context.Context, name string) error {
	for _, e := range m.ListAvailable(ctx) {
		if e.Name == name {
			m.activate(name)
			return nil
		}
	}
	return ErrModelUnavailable(name)
}

// Active returns the active model name, or false when none is set.
func (m *Manager) Active() (string, bool) {
	p := m.active.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

// SelectDefault picks the startup model. A non-empty preferred name is
// validated like SetActive. Otherwise the first catalog model whose name
// contains "llava" wins, falling back to the first model listed.
func (m *Manager) SelectDefault(ctx context.Context, preferred string) (string, error) {
	if preferred != "" {
		if err := m.SetActive(ctx, preferred); err != nil {
			return "", err
		}
		return preferred, nil
	}
	models := m.ListAvailable(ctx)
	if len(models) == 0 {
		return "", ErrNoModels
	}
	name := models[0].Name
	for _, e := range models {
		if strings.Contains(e.Name, defaultModelHint) {
			name = e.Name
			break
		}
	}
	m.activate(name)
	return name, nil
}

func (m *Manager) activate(name string) {
	prev := m.active.Swap(&name)
	activationsTotal.Inc()
	ev := m.log.Info().Str("model", name)
	if prev != nil {
		ev = ev.Str("previous", *prev)
	}
	ev.Msg("active model set")
	m.publish(Event{Name: EventModelActivated, Model: name})
}
