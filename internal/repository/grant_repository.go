package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medocupa/access-backend/internal/model"
)

const (
	listGrantsByUserQuery = `SELECT id::text, user_id::text, resource, level, is_active, expires_at, granted_by, created_at
		 FROM user_permission_grants
		 WHERE user_id = $1::uuid
		 ORDER BY resource`
	deleteGrantQuery = `DELETE FROM user_permission_grants WHERE id = $1::uuid AND user_id = $2::uuid`
)

// GrantRepository handles per-identity permission overrides.
type GrantRepository struct {
	pool *pgxpool.Pool
}

// NewGrantRepository creates a new GrantRepository.
func NewGrantRepository(pool *pgxpool.Pool) *GrantRepository {
	return &GrantRepository{pool: pool}
}

// ListByUser retrieves every override of a user, active or not.
func (r *GrantRepository) ListByUser(ctx context.Context, userID string) ([]model.GrantOverride, error) {
	if !isUUID(userID) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, listGrantsByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []model.GrantOverride
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// Upsert stores an override, replacing any existing one for the same resource.
func (r *GrantRepository) Upsert(ctx context.Context, g *model.GrantOverride) error {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO user_permission_grants (user_id, resource, level, is_active, expires_at, granted_by)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, resource) DO UPDATE SET
		   level = EXCLUDED.level,
		   is_active = EXCLUDED.is_active,
		   expires_at = EXCLUDED.expires_at,
		   granted_by = EXCLUDED.granted_by
		 RETURNING id::text, user_id::text, resource, level, is_active, expires_at, granted_by, created_at`,
		g.UserID, g.Resource, g.Level.String(), g.Active, g.ExpiresAt, g.GrantedBy,
	)
	stored, err := scanGrant(row)
	if err != nil {
		return err
	}
	*g = stored
	return nil
}

// Delete removes an override of a user. Returns pgx.ErrNoRows when nothing matched.
func (r *GrantRepository) Delete(ctx context.Context, userID, grantID string) error {
	if !isUUID(grantID) || !isUUID(userID) {
		return pgx.ErrNoRows
	}
	tag, err := r.pool.Exec(ctx, deleteGrantQuery, grantID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanGrant(row pgx.Row) (model.GrantOverride, error) {
	var (
		g     model.GrantOverride
		level string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Resource, &level, &g.Active, &g.ExpiresAt, &g.GrantedBy, &g.CreatedAt)
	if err != nil {
		return model.GrantOverride{}, err
	}
	g.Level = model.ParseLevel(level)
	return g, nil
}
