package broadcast

import (
	"context"
	"sync"
)

// CaptureListener records events for assertions in tests.
type CaptureListener struct {
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify records the event and returns any configured error.
func (l *CaptureListener) Notify(_ context.Context, event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Events = append(l.Events, NormalizeEvent(event))
	return l.Err
}
