package model

import "time"

// GrantOverride replaces the role grant of one resource for one identity.
type GrantOverride struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Resource  string     `json:"resource"`
	Level     Level      `json:"level"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	GrantedBy string     `json:"granted_by"`
	CreatedAt time.Time  `json:"created_at"`
}

// Grant converts the override to the grant it contributes to a PermissionSet.
func (o GrantOverride) Grant() Grant {
	return Grant{
		Resource:  o.Resource,
		Level:     o.Level,
		Active:    o.Active,
		ExpiresAt: o.ExpiresAt,
	}
}

// CreateGrantRequest is the payload for adding an override.
type CreateGrantRequest struct {
	Resource  string     `json:"resource" binding:"required,resource"`
	Level     string     `json:"level" binding:"required,oneof=none read full"`
	Active    *bool      `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
}
