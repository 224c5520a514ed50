package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-settings/broadcast"
	"github.com/goliatone/go-settings/broadcast/usersink"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	snapshotID := uuid.New().String()

	event := broadcast.Event{
		Verb:       broadcast.VerbAdminUpdated,
		Record:     "admin",
		ActorID:    actorID.String(),
		SnapshotID: snapshotID,
		Metadata: map[string]any{
			"reason": "policy change",
		},
		OccurredAt: now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.Verb != broadcast.VerbAdminUpdated || record.ObjectID != "admin" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.ObjectType != "settings" || record.Channel != "settings" {
		t.Fatalf("unexpected classification: %+v", record)
	}
	if record.OccurredAt != now {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["snapshot_id"] != snapshotID {
		t.Fatalf("expected snapshot_id metadata got %v", record.Data["snapshot_id"])
	}
	if record.Data["reason"] != "policy change" {
		t.Fatalf("expected metadata passthrough got %v", record.Data["reason"])
	}
}

func TestHookNotifySkipsEmptyEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), broadcast.Event{})
	_ = hook.Notify(context.Background(), broadcast.Event{Verb: broadcast.VerbUserUpdated})
	_ = hook.Notify(context.Background(), broadcast.Event{Record: "user"})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for incomplete events, got %d", len(sink.records))
	}
}

func TestHookNotifyNilSink(t *testing.T) {
	hook := usersink.Hook{}
	if err := hook.Notify(context.Background(), broadcast.Event{Verb: broadcast.VerbUserUpdated, Record: "user"}); err != nil {
		t.Fatalf("expected nil sink to be a no-op, got %v", err)
	}
}

func TestHookNotifyUnparsableActor(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), broadcast.Event{
		Verb:    broadcast.VerbUserUpdated,
		Record:  "user",
		ActorID: "not-a-uuid",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].ActorID != uuid.Nil {
		t.Fatalf("expected nil actor for unparsable id, got %s", sink.records[0].ActorID)
	}
}

func TestHookNotifyPropagatesSinkError(t *testing.T) {
	boom := errors.New("sink down")
	sink := &recordingSink{err: boom}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), broadcast.Event{Verb: broadcast.VerbThemeUpdated, Record: "theme"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
