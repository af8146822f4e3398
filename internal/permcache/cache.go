package permcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/medocupa/access-backend/internal/model"
	"github.com/rs/zerolog"
)

// DefaultTTL is the freshness window of a cached permission set.
const DefaultTTL = 5 * time.Minute

// Cache composes Store tiers in order. Reads stop at the first fresh,
// scope-matching entry; writes and invalidations reach every tier.
type Cache struct {
	tiers []Store
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger

	mu     sync.Mutex
	epochs map[string]uint64
}

// New creates a Cache over tiers, read in the order given.
func New(ttl time.Duration, log zerolog.Logger, tiers ...Store) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		tiers:  tiers,
		ttl:    ttl,
		now:    time.Now,
		log:    log.With().Str("component", "permission_cache").Logger(),
		epochs: make(map[string]uint64),
	}
}

// SetClock replaces the time source. Intended for tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached set for identity. Missing, stale and
// scope-mismatched entries are all reported as absent. Tier failures are
// logged and skipped.
func (c *Cache) Get(ctx context.Context, identity *model.Identity) (model.PermissionSet, bool) {
	now := c.now()

	for i, tier := range c.tiers {
		entry, err := tier.Load(ctx, identity.ID)
		if err != nil {
			if !errors.Is(err, ErrMiss) {
				c.log.Warn().Err(err).
					Str("tier", tier.Name()).
					Str("user_id", identity.ID).
					Msg("Permission cache read failed, treating as miss")
			}
			continue
		}

		if !entry.Matches(identity) {
			c.log.Debug().
				Str("tier", tier.Name()).
				Str("user_id", identity.ID).
				Msg("Permission cache scope mismatch")
			continue
		}
		if !entry.Fresh(now, c.ttl) {
			continue
		}

		// Back-fill the faster tiers that missed.
		for _, upper := range c.tiers[:i] {
			if err := upper.Save(ctx, entry); err != nil {
				c.log.Warn().Err(err).Str("tier", upper.Name()).Msg("Permission cache back-fill failed")
			}
		}
		return entry.Permissions.Clone(), true
	}

	return model.PermissionSet{}, false
}

// Epoch returns the invalidation counter of userID. Pass it to PutAt to have
// the write discarded if an invalidation happens in between.
func (c *Cache) Epoch(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epochs[userID]
}

// Put stores set for identity in every tier, overwriting what was there.
func (c *Cache) Put(ctx context.Context, identity *model.Identity, set model.PermissionSet) {
	c.PutAt(ctx, identity, set, c.Epoch(identity.ID))
}

// PutAt stores set unless userID was invalidated after epoch was read.
// Reports whether the write survived.
func (c *Cache) PutAt(ctx context.Context, identity *model.Identity, set model.PermissionSet, epoch uint64) bool {
	if c.Epoch(identity.ID) != epoch {
		return false
	}

	entry := NewEntry(identity, set, c.now())
	for _, tier := range c.tiers {
		if err := tier.Save(ctx, entry); err != nil {
			c.log.Warn().Err(err).
				Str("tier", tier.Name()).
				Str("user_id", identity.ID).
				Msg("Permission cache write failed")
		}
	}

	// An invalidation that raced the writes above must win.
	if c.Epoch(identity.ID) != epoch {
		_ = c.deleteAll(ctx, identity.ID)
		return false
	}
	return true
}

// Invalidate drops the entry of identity from every tier.
func (c *Cache) Invalidate(ctx context.Context, identity *model.Identity) error {
	return c.InvalidateUser(ctx, identity.ID)
}

// InvalidateUser drops the entry of userID from every tier. It is
// idempotent; the returned error joins per-tier failures.
func (c *Cache) InvalidateUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.epochs[userID]++
	c.mu.Unlock()

	return c.deleteAll(ctx, userID)
}

func (c *Cache) deleteAll(ctx context.Context, userID string) error {
	var errs []error
	for _, tier := range c.tiers {
		if err := tier.Delete(ctx, userID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
