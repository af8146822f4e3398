package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is not active")
	ErrNoSession          = errors.New("no active session")
)

// Claims extends JWT standard claims with the identity scope.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string        `json:"user_id"`
	TenantID string        `json:"tenant_id"`
	SiteID   string        `json:"site_id"`
	Role     model.RoleTag `json:"role"`
}

// AuthService handles password hashing, JWTs and the durable session record.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, now: time.Now}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueToken signs a JWT for identity and returns it with the session record
// that must be stored for the token to be honoured.
func (s *AuthService) IssueToken(identity *model.Identity) (string, *model.SessionRecord, error) {
	jti := uuid.New().String()
	now := s.now()
	expiresAt := now.Add(s.cfg.SessionTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   identity.ID,
		TenantID: identity.TenantID,
		SiteID:   identity.SiteID,
		Role:     identity.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	record := &model.SessionRecord{
		Identity:  *identity,
		TokenID:   jti,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}
	return signed, record, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// SaveSession stores the session record in Redis until it expires.
// Any previous record of the same identity is replaced.
func (s *AuthService) SaveSession(ctx context.Context, record *model.SessionRecord) error {
	ttl := record.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	key := config.CacheKey.SessionKey(record.Identity.ID)
	if err := s.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// LoadSession restores the session record of userID.
func (s *AuthService) LoadSession(ctx context.Context, userID string) (*model.SessionRecord, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.SessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("check session: %w", err)
	}

	var record model.SessionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &record, nil
}

// DeleteSession removes the session record of userID.
func (s *AuthService) DeleteSession(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, config.CacheKey.SessionKey(userID)).Err()
}
