// Package broadcast provides the in-process notification channel that tells
// mounted components a settings record changed. It replaces ad-hoc event
// plumbing with an explicit subject: listeners subscribe and receive every
// subsequent publish synchronously, in registration order, with per-listener
// fault isolation. There is no buffering and no replay; a listener registered
// after a publish never observes that publish.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Listener receives settings-change events.
type Listener interface {
	Notify(ctx context.Context, event Event) error
}

// ListenerFunc allows plain functions to satisfy Listener.
type ListenerFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn ListenerFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Broadcaster fans out events to subscribed listeners. Safe for concurrent
// use; publishes themselves run on the caller's goroutine.
type Broadcaster struct {
	mu      sync.Mutex
	nextID  uint64
	entries []subscription
}

type subscription struct {
	id       uint64
	listener Listener
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers listener and returns the capability to deregister it.
// The returned function is safe to call more than once; it removes the
// listener exactly once and retains no reference afterwards.
func (b *Broadcaster) Subscribe(listener Listener) (unsubscribe func()) {
	if listener == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.entries = append(b.entries, subscription{id: id, listener: listener})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// Len reports the number of currently registered listeners.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Publish synchronously invokes every currently registered listener in
// subscription order. A listener error or panic must not prevent sibling
// listeners from running; failures are joined and returned to the publisher.
func (b *Broadcaster) Publish(ctx context.Context, event Event) error {
	b.mu.Lock()
	listeners := make([]Listener, len(b.entries))
	for i, entry := range b.entries {
		listeners[i] = entry.listener
	}
	b.mu.Unlock()

	if len(listeners) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	normalized := NormalizeEvent(event)
	var errs []error
	for _, listener := range listeners {
		if err := notify(ctx, listener, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, entry := range b.entries {
		if entry.id == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return
		}
	}
}

func notify(ctx context.Context, listener Listener, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("broadcast: listener panic: %v", r)
		}
	}()
	return listener.Notify(ctx, event)
}
