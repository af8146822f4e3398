package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medocupa/access-backend/internal/middleware"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/response"
	"github.com/medocupa/access-backend/internal/service"
	"github.com/medocupa/access-backend/internal/validator"
	"github.com/rs/zerolog"
)

// AuthHandler handles sign-in and session endpoints.
type AuthHandler struct {
	sessions   *service.SessionService
	authorizer *service.Authorizer
	log        zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *service.SessionService, authorizer *service.Authorizer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:   sessions,
		authorizer: authorizer,
		log:        log.With().Str("component", "auth_handler").Logger(),
	}
}

// Login godoc
// POST /api/v1/auth/login
// Verifies email + password, stores the session and returns a JWT with the
// effective permission codes.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrAccountInactive):
			response.Fail(c, http.StatusForbidden, response.ErrAccountInactive)
		default:
			response.RequestLogger(c, h.log).Error().Err(err).Msg("Sign-in failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, model.LoginResponse{
		Token:       res.Token,
		Identity:    *res.Identity,
		Permissions: h.authorizer.Codes(c.Request.Context(), res.Identity),
		ExpiresAt:   res.ExpiresAt,
	})
}

// Logout godoc
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	h.sessions.SignOut(c.Request.Context(), identity)
	response.NoContent(c)
}

// Me godoc
// GET /api/v1/auth/me
// Returns the current identity with its permission codes.
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"identity":    identity,
		"permissions": h.authorizer.Codes(c.Request.Context(), identity),
	})
}

// Refresh godoc
// POST /api/v1/auth/refresh
// Reloads the identity from the directory so role or site changes apply
// without signing in again.
func (h *AuthHandler) Refresh(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	fresh, err := h.sessions.Refresh(c.Request.Context(), identity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSession):
			response.Fail(c, http.StatusUnauthorized, response.ErrNoSession)
		case errors.Is(err, service.ErrAccountInactive):
			response.Fail(c, http.StatusForbidden, response.ErrAccountInactive)
		default:
			response.RequestLogger(c, h.log).Error().Err(err).Str("user_id", identity.ID).Msg("Refresh failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"identity":    fresh,
		"permissions": h.authorizer.Codes(c.Request.Context(), fresh),
	})
}
