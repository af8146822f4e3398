// Package permcache caches resolved permission sets in tiers: process memory
// first, Redis second. Entries are bound to the identity scope they were
// resolved for and expire after a fixed freshness window.
package permcache

import (
	"context"
	"errors"
	"time"

	"github.com/medocupa/access-backend/internal/model"
)

// ErrMiss is returned by a Store that holds no entry for the user.
var ErrMiss = errors.New("permission cache miss")

// Entry is a scope-bound snapshot of a resolved permission set.
type Entry struct {
	UserID      string              `json:"user_id"`
	TenantID    string              `json:"tenant_id"`
	SiteID      string              `json:"site_id"`
	Role        model.RoleTag       `json:"role"`
	Permissions model.PermissionSet `json:"permissions"`
	CapturedAt  time.Time           `json:"captured_at"`
}

// NewEntry captures set for identity at now.
func NewEntry(identity *model.Identity, set model.PermissionSet, now time.Time) *Entry {
	return &Entry{
		UserID:      identity.ID,
		TenantID:    identity.TenantID,
		SiteID:      identity.SiteID,
		Role:        identity.Role,
		Permissions: set.Clone(),
		CapturedAt:  now,
	}
}

// Matches reports whether the entry was captured for exactly this scope.
func (e *Entry) Matches(identity *model.Identity) bool {
	return e.UserID == identity.ID &&
		e.TenantID == identity.TenantID &&
		e.SiteID == identity.SiteID &&
		e.Role == identity.Role
}

// Fresh reports whether the entry is younger than ttl at now.
func (e *Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CapturedAt) < ttl
}

// Store is one tier of the cache. Entries are keyed by user id; scope and
// freshness are checked by Cache, not by the store.
type Store interface {
	Name() string
	Load(ctx context.Context, userID string) (*Entry, error)
	Save(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, userID string) error
}
