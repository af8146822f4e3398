package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Notifier pushes session events to signed-in clients over Redis Pub/Sub and
// queues audit events for the audit worker. Failures are logged only.
type Notifier struct {
	rdb *redis.Client
	log zerolog.Logger
	now func() time.Time
}

// NewNotifier creates a new Notifier.
func NewNotifier(rdb *redis.Client, log zerolog.Logger) *Notifier {
	return &Notifier{
		rdb: rdb,
		log: log.With().Str("component", "notifier").Logger(),
		now: time.Now,
	}
}

// Publish sends an event of type t to userID's channel.
func (n *Notifier) Publish(ctx context.Context, userID string, t model.SessionEventType, message string) {
	if n == nil {
		return
	}
	data, err := json.Marshal(model.SessionEvent{
		Type:       t,
		UserID:     userID,
		Message:    message,
		OccurredAt: n.now().UTC(),
	})
	if err != nil {
		return
	}
	if err := n.rdb.Publish(ctx, config.CacheKey.UserEventsChannel(userID), data).Err(); err != nil {
		n.log.Warn().Err(err).Str("user_id", userID).Str("event", string(t)).Msg("Publish session event failed")
	}
}

// Audit queues an audit event for persistence.
func (n *Notifier) Audit(ctx context.Context, event model.AuditEvent) {
	if n == nil {
		return
	}
	if event.OccurredAt == 0 {
		event.OccurredAt = n.now().Unix()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := n.rdb.RPush(ctx, config.WorkerKey.PersistAccessAuditQueue, data).Err(); err != nil {
		n.log.Warn().Err(err).Str("kind", string(event.Kind)).Msg("Queue audit event failed")
	}
}

// Subscribe opens a subscription to userID's events channel. The caller
// closes it.
func (n *Notifier) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return n.rdb.Subscribe(ctx, config.CacheKey.UserEventsChannel(userID))
}
