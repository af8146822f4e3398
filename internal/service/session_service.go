package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/permcache"
	"github.com/rs/zerolog"
)

// SignInResult is what a successful sign-in hands back to the caller.
type SignInResult struct {
	Identity  *model.Identity
	Token     string
	ExpiresAt time.Time
}

// SessionService signs identities in and out and restores the current
// identity from a token.
type SessionService struct {
	auth      *AuthService
	directory Directory
	cache     *permcache.Cache
	notifier  *Notifier
	log       zerolog.Logger
}

// NewSessionService creates a new SessionService. cache and notifier may be nil.
func NewSessionService(
	auth *AuthService,
	directory Directory,
	cache *permcache.Cache,
	notifier *Notifier,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		auth:      auth,
		directory: directory,
		cache:     cache,
		notifier:  notifier,
		log:       log.With().Str("component", "session").Logger(),
	}
}

// SignIn verifies the credentials and stores a new session, replacing any
// previous session of the same identity. Unknown emails and wrong secrets
// both yield ErrInvalidCredentials.
func (s *SessionService) SignIn(ctx context.Context, email, secret string) (*SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	identity, err := s.directory.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			s.notifier.Audit(ctx, model.AuditEvent{Kind: model.AuditSignInFailed, Subject: email})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	if err := s.auth.CheckPassword(identity.PasswordHash, secret); err != nil {
		s.notifier.Audit(ctx, model.AuditEvent{
			UserID:   identity.ID,
			TenantID: identity.TenantID,
			Kind:     model.AuditSignInFailed,
			Subject:  email,
		})
		return nil, ErrInvalidCredentials
	}

	if identity.Status != model.StatusActive {
		return nil, ErrAccountInactive
	}

	identity.PasswordHash = ""
	token, record, err := s.auth.IssueToken(identity)
	if err != nil {
		return nil, err
	}
	if err := s.auth.SaveSession(ctx, record); err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, identity.ID, model.EventSignedIn, "Sesión iniciada")
	s.notifier.Audit(ctx, model.AuditEvent{
		UserID:   identity.ID,
		TenantID: identity.TenantID,
		Kind:     model.AuditSignIn,
		Subject:  email,
	})

	s.log.Info().
		Str("user_id", identity.ID).
		Str("role", string(identity.Role)).
		Str("tenant_id", identity.TenantID).
		Msg("Identity signed in")

	return &SignInResult{Identity: identity, Token: token, ExpiresAt: record.ExpiresAt}, nil
}

// SignOut ends the session of identity and drops its cached permissions.
// It always succeeds; storage failures are logged.
func (s *SessionService) SignOut(ctx context.Context, identity *model.Identity) {
	if identity == nil {
		return
	}

	if err := s.auth.DeleteSession(ctx, identity.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", identity.ID).Msg("Failed to delete session record")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, identity); err != nil {
			s.log.Warn().Err(err).Str("user_id", identity.ID).Msg("Failed to invalidate permission cache")
		}
	}

	s.notifier.Publish(ctx, identity.ID, model.EventSignedOut, "Sesión cerrada")
	s.notifier.Audit(ctx, model.AuditEvent{
		UserID:   identity.ID,
		TenantID: identity.TenantID,
		Kind:     model.AuditSignOut,
	})
}

// CurrentIdentity returns the identity owning token. Tokens whose session was
// ended or replaced yield ErrNoSession.
func (s *SessionService) CurrentIdentity(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	claims, err := s.auth.ValidateToken(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("Rejected token")
		return nil, ErrNoSession
	}

	record, err := s.auth.LoadSession(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if record.TokenID != claims.ID {
		return nil, ErrNoSession
	}

	identity := record.Identity
	return &identity, nil
}

// Refresh reloads identity from the directory and stores it in the session
// record. A changed role, tenant or site also drops the cached permissions.
// An identity that is gone or no longer active is signed out.
func (s *SessionService) Refresh(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	fresh, err := s.directory.GetByID(ctx, identity.ID)
	if err != nil {
		if isNotFound(err) {
			s.SignOut(ctx, identity)
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	if fresh.Status != model.StatusActive {
		s.SignOut(ctx, identity)
		return nil, ErrAccountInactive
	}
	fresh.PasswordHash = ""

	scopeChanged := !fresh.SameScope(identity)
	if scopeChanged && s.cache != nil {
		if err := s.cache.Invalidate(ctx, identity); err != nil {
			s.log.Warn().Err(err).Str("user_id", identity.ID).Msg("Failed to invalidate permission cache")
		}
	}

	record, err := s.auth.LoadSession(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, err
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	record.Identity = *fresh
	if err := s.auth.SaveSession(ctx, record); err != nil {
		return nil, err
	}

	if scopeChanged {
		s.notifier.Publish(ctx, fresh.ID, model.EventPermissionsChanged, "Permisos actualizados")
		s.log.Info().
			Str("user_id", fresh.ID).
			Str("role", string(fresh.Role)).
			Str("site_id", fresh.SiteID).
			Msg("Identity scope changed on refresh")
	}

	return fresh, nil
}
