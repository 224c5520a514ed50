// Package theme persists the application theme preference and notifies
// mounted components when it changes. It rides the same store and
// broadcaster as the refresh settings; swapping the theme never touches the
// refresh records.
package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-settings/broadcast"
	"github.com/goliatone/go-settings/kv"
)

// Theme names a UI color scheme.
type Theme string

const (
	Light  Theme = "light"
	Dark   Theme = "dark"
	System Theme = "system"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case Light, Dark, System:
		return true
	default:
		return false
	}
}

// ErrUnknownTheme indicates Set was called with an unrecognized theme.
var ErrUnknownTheme = errors.New("theme: unknown theme")

const defaultKey = "settings:theme"

type record struct {
	Theme Theme `json:"theme"`
}

// Manager loads and saves the theme preference. Current is total; Set
// validates, persists, and announces the change.
type Manager struct {
	store       kv.Store
	broadcaster *broadcast.Broadcaster
	fallback    Theme
	key         string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithBroadcaster wires the change broadcaster notified after every Set.
func WithBroadcaster(b *broadcast.Broadcaster) ManagerOption {
	return func(m *Manager) {
		m.broadcaster = b
	}
}

// WithFallback overrides the theme returned when storage holds nothing
// usable. Defaults to Light.
func WithFallback(t Theme) ManagerOption {
	return func(m *Manager) {
		if t.Valid() {
			m.fallback = t
		}
	}
}

// WithKey overrides the storage key.
func WithKey(key string) ManagerOption {
	return func(m *Manager) {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			m.key = trimmed
		}
	}
}

// NewManager constructs a theme manager over store.
func NewManager(store kv.Store, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("theme: store is required")
	}
	m := &Manager{store: store, fallback: Light, key: defaultKey}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Current returns the persisted theme, degrading to the fallback on missing,
// malformed, or unknown content.
func (m *Manager) Current(ctx context.Context) Theme {
	payload, ok, err := m.store.Get(ctx, m.key)
	if err != nil || !ok {
		return m.fallback
	}
	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return m.fallback
	}
	if !rec.Theme.Valid() {
		return m.fallback
	}
	return rec.Theme
}

// Set persists the theme and announces the change. Listener failures stay
// local to the listeners; the save has already succeeded.
func (m *Manager) Set(ctx context.Context, actor string, t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, t)
	}
	payload, err := json.Marshal(record{Theme: t})
	if err != nil {
		return fmt.Errorf("theme: encode: %w", err)
	}
	if err := m.store.Set(ctx, m.key, payload); err != nil {
		return fmt.Errorf("theme: save: %w", err)
	}
	if m.broadcaster != nil {
		_ = m.broadcaster.Publish(ctx, broadcast.Event{
			Verb:       broadcast.VerbThemeUpdated,
			Record:     "theme",
			ActorID:    actor,
			SnapshotID: uuid.NewString(),
			Metadata:   map[string]any{"theme": string(t)},
			OccurredAt: time.Now(),
		})
	}
	return nil
}
