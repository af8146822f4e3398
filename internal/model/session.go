package model

import "time"

// SessionRecord is the durable form of a signed-in session.
type SessionRecord struct {
	Identity  Identity  `json:"identity"`
	TokenID   string    `json:"token_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionEventType names a notification pushed to a signed-in client.
type SessionEventType string

const (
	EventSignedIn           SessionEventType = "signed_in"
	EventSignedOut          SessionEventType = "signed_out"
	EventPermissionsChanged SessionEventType = "permissions_changed"
)

// SessionEvent is published on the identity's events channel.
type SessionEvent struct {
	Type       SessionEventType `json:"type"`
	UserID     string           `json:"user_id"`
	Message    string           `json:"message"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// AuditKind classifies an access audit event.
type AuditKind string

const (
	AuditSignIn       AuditKind = "sign_in"
	AuditSignInFailed AuditKind = "sign_in_failed"
	AuditSignOut      AuditKind = "sign_out"
	AuditAccessDenied AuditKind = "access_denied"
)

// AuditEvent is queued for persistence by the audit worker.
type AuditEvent struct {
	UserID     string    `json:"user_id"`
	TenantID   string    `json:"tenant_id"`
	Kind       AuditKind `json:"kind"`
	Subject    string    `json:"subject,omitempty"`
	Resource   string    `json:"resource,omitempty"`
	Level      string    `json:"level,omitempty"`
	OccurredAt int64     `json:"occurred_at"`
}
