package settings

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-settings/broadcast"
)

// Watcher exposes the current effective refresh interval to arbitrary
// consumers. It computes the initial value on construction, re-reads both
// records and recomputes on every change notification, and stops on Close.
// Components should consume the cadence through a Watcher rather than read
// storage directly.
type Watcher struct {
	service     *Service
	mu          sync.RWMutex
	current     int
	onChange    func(seconds int)
	unsubscribe func()
	closeOnce   sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// OnChange registers a callback invoked whenever the effective value
// changes. The callback runs synchronously on the publishing goroutine.
func OnChange(fn func(seconds int)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// NewWatcher resolves the initial effective value and subscribes to the
// broadcaster for the lifetime of the watcher.
func NewWatcher(ctx context.Context, service *Service, broadcaster *broadcast.Broadcaster, opts ...WatcherOption) (*Watcher, error) {
	if service == nil {
		return nil, errors.New("settings: service is required")
	}
	if broadcaster == nil {
		return nil, errors.New("settings: broadcaster is required")
	}
	w := &Watcher{service: service}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.current = service.Effective(ctx)
	w.unsubscribe = broadcaster.Subscribe(broadcast.ListenerFunc(func(ctx context.Context, _ broadcast.Event) error {
		w.refresh(ctx)
		return nil
	}))
	return w, nil
}

// Seconds returns the current effective refresh interval.
func (w *Watcher) Seconds() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close deregisters the watcher exactly once. Further notifications are not
// observed and no listener reference is retained.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		if w.unsubscribe != nil {
			w.unsubscribe()
		}
	})
}

func (w *Watcher) refresh(ctx context.Context) {
	next := w.service.Effective(ctx)
	w.mu.Lock()
	changed := next != w.current
	w.current = next
	w.mu.Unlock()
	if changed && w.onChange != nil {
		w.onChange(next)
	}
}
