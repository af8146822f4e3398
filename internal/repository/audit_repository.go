package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medocupa/access-backend/internal/model"
)

var auditColumns = []string{"user_id", "tenant_id", "kind", "subject", "resource", "level", "occurred_at"}

// AuditRepository persists access audit events.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// BulkInsert copies a batch of events in one round trip.
func (r *AuditRepository) BulkInsert(ctx context.Context, events []model.AuditEvent) error {
	rows := make([][]interface{}, 0, len(events))
	for _, e := range events {
		rows = append(rows, auditRow(e))
	}

	_, err := r.pool.CopyFrom(ctx, pgx.Identifier{"access_audit_log"}, auditColumns, pgx.CopyFromRows(rows))
	return err
}

// Insert stores one event.
func (r *AuditRepository) Insert(ctx context.Context, e model.AuditEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO access_audit_log (user_id, tenant_id, kind, subject, resource, level, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		auditRow(e)...,
	)
	return err
}

func auditRow(e model.AuditEvent) []interface{} {
	return []interface{}{
		e.UserID, e.TenantID, string(e.Kind), e.Subject, e.Resource, e.Level, time.Unix(e.OccurredAt, 0).UTC(),
	}
}
