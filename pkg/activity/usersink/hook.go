// Package usersink records store activity on a go-users ActivitySink.
package usersink

import (
	"context"
	"time"

	"github.com/goliatone/go-store/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook writes each store event to Sink as an ActivityRecord. Actor ids that
// are not UUIDs are recorded as uuid.Nil.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify implements activity.Hook.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || event.Verb == "" || event.ObjectID() == "" {
		return nil
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return h.Sink.Log(ctx, usertypes.ActivityRecord{
		ActorID:    actorUUID(event.Actor.ID),
		UserID:     actorUUID(event.Actor.UserID),
		TenantID:   actorUUID(event.Actor.TenantID),
		Verb:       event.Verb,
		ObjectType: activity.ObjectType,
		ObjectID:   event.ObjectID(),
		Channel:    event.Channel,
		Data:       event.Data(),
		OccurredAt: occurred,
	})
}

func actorUUID(id string) uuid.UUID {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
