package store

import (
	"strings"

	"github.com/goliatone/go-store/pkg/activity"
)

// WithActivityHooks attaches activity hooks notified with store.created after
// Of and store.updated after every committed write. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := hooks.Compact()
	return func(cfg *storeConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on activity events.
func WithActivityChannel(channel string) Option {
	return func(cfg *storeConfig) {
		cfg.channel = strings.TrimSpace(channel)
	}
}

// WithActivityActor stamps actor, user and tenant identifiers on activity events.
func WithActivityActor(actorID, userID, tenantID string) Option {
	return func(cfg *storeConfig) {
		cfg.actor = activity.Actor{ID: actorID, UserID: userID, TenantID: tenantID}
	}
}

// ActivityHooks returns a copy of the configured activity hooks.
func (s *Store[S]) ActivityHooks() activity.Hooks {
	if !IsStore(s) {
		return nil
	}
	return s.cfg.activityHooks.Compact()
}

func (s *Store[S]) emitActivity(verb, op string, previous, current any) error {
	if len(s.cfg.activityHooks) == 0 {
		return nil
	}
	return s.cfg.activityHooks.Notify(s.cfg.context(), activity.Event{
		Verb:      verb,
		StoreID:   s.id.String(),
		StoreName: s.cfg.name,
		Op:        op,
		Previous:  previous,
		Current:   current,
		Actor:     s.cfg.actor,
		Channel:   s.cfg.channel,
	})
}
