package service

import (
	"context"
	"time"

	"github.com/medocupa/access-backend/internal/hierarchy"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/permcache"
	"github.com/rs/zerolog"
)

// GrantSource lists the stored overrides of an identity.
type GrantSource interface {
	ListByUser(ctx context.Context, userID string) ([]model.GrantOverride, error)
}

// Authorizer answers access questions for an identity. The cache and the
// grant source are both optional; decisions never depend on the cache.
type Authorizer struct {
	cache  *permcache.Cache
	grants GrantSource
	now    func() time.Time
	log    zerolog.Logger
}

// NewAuthorizer creates a new Authorizer.
func NewAuthorizer(cache *permcache.Cache, grants GrantSource, log zerolog.Logger) *Authorizer {
	return &Authorizer{
		cache:  cache,
		grants: grants,
		now:    time.Now,
		log:    log.With().Str("component", "authorizer").Logger(),
	}
}

// SetClock replaces the time source. Intended for tests.
func (a *Authorizer) SetClock(now func() time.Time) {
	a.now = now
}

// Resolve returns the effective permission set of identity: the role grants
// with stored overrides laid on top.
func (a *Authorizer) Resolve(ctx context.Context, identity *model.Identity) model.PermissionSet {
	base := hierarchy.Resolve(identity.Role)
	if base.Wildcard {
		return base
	}

	if a.cache != nil {
		if set, ok := a.cache.Get(ctx, identity); ok {
			return set
		}
	}

	var epoch uint64
	if a.cache != nil {
		epoch = a.cache.Epoch(identity.ID)
	}

	set, complete := a.recompute(ctx, identity, base)
	if a.cache != nil && complete {
		a.cache.PutAt(ctx, identity, set, epoch)
	}
	return set
}

// recompute overlays the identity's overrides on base. When the grant source
// fails the role grants alone are returned and reported incomplete so they
// are not cached.
func (a *Authorizer) recompute(ctx context.Context, identity *model.Identity, base model.PermissionSet) (model.PermissionSet, bool) {
	if a.grants == nil {
		return base, true
	}

	overrides, err := a.grants.ListByUser(ctx, identity.ID)
	if err != nil {
		a.log.Warn().Err(err).
			Str("user_id", identity.ID).
			Msg("Grant source unavailable, falling back to role permissions")
		return base, false
	}

	for _, o := range overrides {
		base.Overlay(o.Grant())
	}
	return base, true
}

// HasAccess reports whether identity may use resourceID at required level.
func (a *Authorizer) HasAccess(ctx context.Context, identity *model.Identity, resourceID string, required model.Level) bool {
	if identity == nil {
		return false
	}
	return a.decide(a.Resolve(ctx, identity), resourceID, required, a.now())
}

// VisibleMenu returns the catalog items identity may see, in catalog order.
func (a *Authorizer) VisibleMenu(ctx context.Context, identity *model.Identity) []model.MenuItem {
	items := make([]model.MenuItem, 0, len(model.MenuCatalog))
	if identity == nil {
		return items
	}

	set := a.Resolve(ctx, identity)
	now := a.now()
	for _, item := range model.MenuCatalog {
		if a.decide(set, item.ID, item.RequiredLevel, now) {
			items = append(items, item)
		}
	}
	return items
}

// Codes returns the effective permission codes of identity.
func (a *Authorizer) Codes(ctx context.Context, identity *model.Identity) []string {
	return a.Resolve(ctx, identity).Codes(a.now())
}

// decide is the single access rule. The wildcard is honoured here and
// nowhere else.
func (a *Authorizer) decide(set model.PermissionSet, resourceID string, required model.Level, now time.Time) bool {
	if set.Wildcard {
		return true
	}

	grant, ok := set.Lookup(resourceID)
	if !ok || !grant.Active || grant.Expired(now) {
		return false
	}
	return grant.Level.Satisfies(required)
}
