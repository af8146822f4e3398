package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medocupa/access-backend/internal/model"
)

const (
	identityColumns     = `id::text, email, display_name, password_hash, role, tenant_id, site_id, status, created_at, updated_at`
	identityByIDQuery   = `SELECT ` + identityColumns + ` FROM identities WHERE id = $1::uuid`
	identityByMailQuery = `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`
)

// isUUID guards uuid-typed filters. Postgres rejects a malformed literal with
// an error, while callers expect "not found".
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IdentityRepository handles identity directory data access.
type IdentityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository creates a new IdentityRepository.
func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// GetByEmail retrieves an identity by its unique email.
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*model.Identity, error) {
	return r.scanOne(ctx, identityByMailQuery, email)
}

// GetByID retrieves an identity by ID.
func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*model.Identity, error) {
	if !isUUID(id) {
		return nil, pgx.ErrNoRows
	}
	return r.scanOne(ctx, identityByIDQuery, id)
}

// Create inserts a new identity.
func (r *IdentityRepository) Create(ctx context.Context, i *model.Identity) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO identities (email, display_name, password_hash, role, tenant_id, site_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id::text, created_at, updated_at`,
		i.Email, i.DisplayName, i.PasswordHash, string(i.Role), i.TenantID, i.SiteID, string(i.Status),
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

// UpsertByEmail inserts an identity or overwrites the one with the same email.
// A non-empty ID is used for new rows, so seeded identities keep stable ids.
func (r *IdentityRepository) UpsertByEmail(ctx context.Context, i *model.Identity) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO identities (id, email, display_name, password_hash, role, tenant_id, site_id, status)
		 VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (email) DO UPDATE SET
		   display_name = EXCLUDED.display_name,
		   password_hash = EXCLUDED.password_hash,
		   role = EXCLUDED.role,
		   tenant_id = EXCLUDED.tenant_id,
		   site_id = EXCLUDED.site_id,
		   status = EXCLUDED.status,
		   updated_at = NOW()
		 RETURNING id::text, created_at, updated_at`,
		i.ID, i.Email, i.DisplayName, i.PasswordHash, string(i.Role), i.TenantID, i.SiteID, string(i.Status),
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

// List returns the identities of a tenant, or every identity when tenantID
// is empty.
func (r *IdentityRepository) List(ctx context.Context, tenantID string) ([]model.Identity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+identityColumns+` FROM identities
		 WHERE $1 = '' OR tenant_id = $1
		 ORDER BY email`, tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Identity
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		i.PasswordHash = ""
		out = append(out, *i)
	}
	return out, rows.Err()
}

func (r *IdentityRepository) scanOne(ctx context.Context, query string, arg any) (*model.Identity, error) {
	return scanIdentity(r.pool.QueryRow(ctx, query, arg))
}

func scanIdentity(row pgx.Row) (*model.Identity, error) {
	var (
		i      model.Identity
		role   string
		status string
	)
	err := row.Scan(
		&i.ID, &i.Email, &i.DisplayName, &i.PasswordHash, &role,
		&i.TenantID, &i.SiteID, &status, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.Role = model.RoleTag(role)
	i.Status = model.IdentityStatus(status)
	return &i, nil
}
