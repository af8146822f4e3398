package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// AuditSink is where audit events end up. repository.AuditRepository
// implements it.
type AuditSink interface {
	BulkInsert(ctx context.Context, events []model.AuditEvent) error
	Insert(ctx context.Context, e model.AuditEvent) error
}

// AuditWorker drains the audit queue into the sink in batches.
type AuditWorker struct {
	sink AuditSink
	rdb  *redis.Client
	log  zerolog.Logger

	requeueBackoff time.Duration
}

func NewAuditWorker(sink AuditSink, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		sink:           sink,
		rdb:            rdb,
		log:            log.With().Str("component", "audit_worker").Logger(),
		requeueBackoff: 2 * time.Second,
	}
}

// Start blocks until ctx is cancelled, then flushes what it still holds.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	buffer := make([]model.AuditEvent, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// 1. Graceful shutdown
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		// 2. Flush on size or age
		if len(buffer) > 0 && (len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout) {
			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlushTime = time.Now()
		}

		// 3. BLPop returns immediately if data exists, else after PollTimeout.
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistAccessAuditQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue // next iteration runs shutdown
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			sleepCtx(ctx, 3*time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var event model.AuditEvent
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			// Malformed payloads can never succeed; drop them.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed audit event")
			continue
		}
		buffer = append(buffer, event)
	}
}

// flushSafe attempts bulk insert, then row-by-row insert, then requeue.
func (w *AuditWorker) flushSafe(ctx context.Context, batch []model.AuditEvent) {
	if err := w.sink.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
		return
	}
	w.log.Debug().Int("count", len(batch)).Msg("Audit batch persisted")
}

func (w *AuditWorker) fallbackInsert(ctx context.Context, batch []model.AuditEvent) {
	var requeueList []model.AuditEvent
	for _, e := range batch {
		if err := w.sink.Insert(ctx, e); err != nil {
			w.log.Error().Err(err).Str("user_id", e.UserID).Str("kind", string(e.Kind)).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, e)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *AuditWorker) requeue(ctx context.Context, items []model.AuditEvent) {
	pipe := w.rdb.Pipeline()
	for _, e := range items {
		data, _ := json.Marshal(e)
		pipe.RPush(ctx, config.WorkerKey.PersistAccessAuditQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue audit events. Data loss occurred.")
		return
	}

	w.log.Info().Int("count", len(items)).Msg("Requeued failed audit events")
	// Avoid thrashing while the database is down.
	sleepCtx(ctx, w.requeueBackoff)
}

func (w *AuditWorker) shutdown(buffer []model.AuditEvent) {
	w.log.Info().Int("pending", len(buffer)).Msg("AuditWorker stopping, flushing remaining buffer")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
