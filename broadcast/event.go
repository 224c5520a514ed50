package broadcast

import (
	"strings"
	"time"
)

// Verbs published by the settings service and theme manager.
const (
	VerbAdminUpdated = "settings.admin.updated"
	VerbUserUpdated  = "settings.user.updated"
	VerbThemeUpdated = "theme.updated"
)

// Event describes a settings-change occurrence fanned out to listeners. The
// payload is informational: listeners are expected to re-read the store and
// recompute rather than trust the event contents. Events stay in-process and
// are never serialized for transport.
type Event struct {
	Verb       string
	Record     string
	ActorID    string
	SnapshotID string
	Metadata   map[string]any
	OccurredAt time.Time
}

// NormalizeEvent trims identifier fields, clones metadata, and ensures a
// timestamp is present.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.Record = strings.TrimSpace(event.Record)
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.SnapshotID = strings.TrimSpace(event.SnapshotID)
	normalized.Metadata = cloneMap(event.Metadata)
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
