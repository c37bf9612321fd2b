package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-store/pkg/activity"
	"github.com/goliatone/go-store/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsStoreEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	storeID := uuid.New().String()

	event := activity.Event{
		Verb:      activity.VerbStoreUpdated,
		StoreID:   storeID,
		StoreName: "cart",
		Op:        "set",
		Previous:  1,
		Current:   2,
		Actor: activity.Actor{
			ID:       actorID.String(),
			UserID:   "not-a-uuid",
			TenantID: tenantID.String(),
		},
		Channel:    "store",
		OccurredAt: now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}

	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected ids: %+v", record)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected invalid user id to map to uuid.Nil, got %s", record.UserID)
	}
	if record.Verb != activity.VerbStoreUpdated || record.ObjectType != activity.ObjectType || record.ObjectID != storeID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "store" || !record.OccurredAt.Equal(now) {
		t.Fatalf("unexpected channel/time: %+v", record)
	}
	if record.Data["store_name"] != "cart" || record.Data["current"] != 2 {
		t.Fatalf("expected metadata passthrough, got %v", record.Data)
	}
}

func TestHookThroughHooksStampsDefaults(t *testing.T) {
	sink := &recordingSink{}
	hooks := activity.Hooks{usersink.Hook{Sink: sink}}

	if err := hooks.Notify(context.Background(), activity.Event{Verb: activity.VerbStoreCreated, StoreName: "cart"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ObjectID != "cart" || record.Channel != activity.DefaultChannel || record.OccurredAt.IsZero() {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}

	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{Verb: "x"}); err != nil {
		t.Fatalf("nil sink must be a no-op, got %v", err)
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}

	err := hook.Notify(context.Background(), activity.Event{Verb: activity.VerbStoreCreated, StoreID: "1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
