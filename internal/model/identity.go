package model

import "time"

// IdentityStatus is the account state of an identity.
type IdentityStatus string

const (
	StatusActive    IdentityStatus = "active"
	StatusInactive  IdentityStatus = "inactive"
	StatusSuspended IdentityStatus = "suspended"
)

// Identity is a signed-in clinic user scoped to a tenant and a site.
type Identity struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"display_name"`
	Role         RoleTag        `json:"role"`
	TenantID     string         `json:"tenant_id"`
	SiteID       string         `json:"site_id"`
	Status       IdentityStatus `json:"status"`
	PasswordHash string         `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// SameScope reports whether other has the same user, tenant, site and role.
func (i *Identity) SameScope(other *Identity) bool {
	if i == nil || other == nil {
		return false
	}
	return i.ID == other.ID &&
		i.TenantID == other.TenantID &&
		i.SiteID == other.SiteID &&
		i.Role == other.Role
}

// LoginRequest is the payload for sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after a successful sign-in.
type LoginResponse struct {
	Token       string    `json:"token"`
	Identity    Identity  `json:"identity"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CreateIdentityRequest is used by operators to register a directory entry.
type CreateIdentityRequest struct {
	Email       string  `json:"email" binding:"required,email,max=255"`
	DisplayName string  `json:"display_name" binding:"required,max=255"`
	Password    string  `json:"password" binding:"required,min=6,max=128"`
	Role        RoleTag `json:"role" binding:"required,role"`
	TenantID    string  `json:"tenant_id" binding:"required"`
	SiteID      string  `json:"site_id" binding:"required"`
}
