package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/medocupa/access-backend/internal/hierarchy"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/permcache"
	"github.com/rs/zerolog"
)

var (
	ErrGrantNotFound   = errors.New("grant not found")
	ErrUnknownResource = errors.New("unknown resource")
	ErrCrossTenant     = errors.New("identity belongs to another tenant")
	ErrGrantEscalation = errors.New("grant exceeds the actor's own access")
)

// GrantStore persists per-identity overrides.
type GrantStore interface {
	GrantSource
	Upsert(ctx context.Context, g *model.GrantOverride) error
	Delete(ctx context.Context, userID, grantID string) error
}

// GrantService manages overrides and keeps the permission cache in step.
type GrantService struct {
	store      GrantStore
	directory  Directory
	authorizer *Authorizer
	cache      *permcache.Cache
	notifier   *Notifier
	log        zerolog.Logger
}

// NewGrantService creates a new GrantService.
func NewGrantService(store GrantStore, directory Directory, authorizer *Authorizer, cache *permcache.Cache, notifier *Notifier, log zerolog.Logger) *GrantService {
	return &GrantService{
		store:      store,
		directory:  directory,
		authorizer: authorizer,
		cache:      cache,
		notifier:   notifier,
		log:        log.With().Str("component", "grant").Logger(),
	}
}

// List returns the overrides of userID, after checking the actor may see them.
func (s *GrantService) List(ctx context.Context, actor *model.Identity, userID string) ([]model.GrantOverride, error) {
	if _, err := s.target(ctx, actor, userID); err != nil {
		return nil, err
	}
	grants, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	if grants == nil {
		grants = []model.GrantOverride{}
	}
	return grants, nil
}

// Create stores an override for userID, replacing any existing one for the
// same resource. Outside the wildcard role an actor can neither grant to
// itself nor hand out more than it holds on the resource.
func (s *GrantService) Create(ctx context.Context, actor *model.Identity, userID string, req model.CreateGrantRequest) (*model.GrantOverride, error) {
	if _, ok := model.FindMenuItem(req.Resource); !ok {
		return nil, ErrUnknownResource
	}
	if _, err := s.target(ctx, actor, userID); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	level := model.ParseLevel(req.Level)

	if !hierarchy.IsWildcard(actor.Role) {
		if actor.ID == userID {
			s.log.Warn().Str("actor_id", actor.ID).Str("resource", req.Resource).Msg("Self grant rejected")
			return nil, ErrGrantEscalation
		}
		// An inactive or "none" override only takes access away.
		if active && level > model.LevelNone && !s.authorizer.HasAccess(ctx, actor, req.Resource, level) {
			s.log.Warn().
				Str("actor_id", actor.ID).
				Str("user_id", userID).
				Str("resource", req.Resource).
				Str("level", level.String()).
				Msg("Grant above actor access rejected")
			return nil, ErrGrantEscalation
		}
	}

	grant := &model.GrantOverride{
		UserID:    userID,
		Resource:  req.Resource,
		Level:     level,
		Active:    active,
		ExpiresAt: req.ExpiresAt,
		GrantedBy: actor.ID,
	}
	if err := s.store.Upsert(ctx, grant); err != nil {
		return nil, fmt.Errorf("store grant: %w", err)
	}

	s.changed(ctx, userID)
	s.log.Info().
		Str("actor_id", actor.ID).
		Str("user_id", userID).
		Str("resource", grant.Resource).
		Str("level", grant.Level.String()).
		Bool("active", grant.Active).
		Msg("Grant override stored")

	return grant, nil
}

// Revoke deletes an override of userID.
func (s *GrantService) Revoke(ctx context.Context, actor *model.Identity, userID, grantID string) error {
	if _, err := s.target(ctx, actor, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, userID, grantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrGrantNotFound
		}
		return fmt.Errorf("delete grant: %w", err)
	}

	s.changed(ctx, userID)
	s.log.Info().Str("actor_id", actor.ID).Str("user_id", userID).Str("grant_id", grantID).Msg("Grant override revoked")
	return nil
}

// target loads the identity an operation applies to. Only the wildcard role
// may reach across tenants.
func (s *GrantService) target(ctx context.Context, actor *model.Identity, userID string) (*model.Identity, error) {
	identity, err := s.directory.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	if identity.TenantID != actor.TenantID && !hierarchy.IsWildcard(actor.Role) {
		return nil, ErrCrossTenant
	}
	return identity, nil
}

func (s *GrantService) changed(ctx context.Context, userID string) {
	if s.cache != nil {
		if err := s.cache.InvalidateUser(ctx, userID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to invalidate permission cache")
		}
	}
	s.notifier.Publish(ctx, userID, model.EventPermissionsChanged, "Permisos actualizados")
}
