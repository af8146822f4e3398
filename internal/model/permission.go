package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Level is the ordinal access level granted on a resource.
type Level int

const (
	LevelNone Level = iota
	LevelRead
	LevelFull
)

// Wildcard is the permission code that authorizes every check.
const Wildcard = "*"

// ParseLevel maps "none", "read" and "full" to their Level. Anything else is LevelNone.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read":
		return LevelRead
	case "full":
		return LevelFull
	default:
		return LevelNone
	}
}

func (l Level) String() string {
	switch l {
	case LevelRead:
		return "read"
	case LevelFull:
		return "full"
	default:
		return "none"
	}
}

// Satisfies reports whether l ranks at or above required.
func (l Level) Satisfies(required Level) bool {
	return l >= required
}

// MarshalText encodes the level by name so cached and API payloads stay readable.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(b []byte) error {
	*l = ParseLevel(string(b))
	return nil
}

// Permission is a "<resource>:<level>" code, or the Wildcard.
type Permission string

// NewPermission builds the code for resource at level.
func NewPermission(resource string, level Level) Permission {
	return Permission(fmt.Sprintf("%s:%s", resource, level))
}

// Split returns the resource and level of a code. ok is false for the
// wildcard and for malformed codes.
func (p Permission) Split() (resource string, level Level, ok bool) {
	res, lvl, found := strings.Cut(string(p), ":")
	if !found || res == "" {
		return "", LevelNone, false
	}
	return res, ParseLevel(lvl), true
}

// Grant is the stored level of one resource.
type Grant struct {
	Resource  string     `json:"resource"`
	Level     Level      `json:"level"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the grant carries an expiry that lies before now.
func (g Grant) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && g.ExpiresAt.Before(now)
}

// PermissionSet is the resolved permissions of an identity. When Wildcard is
// set, Grants is irrelevant.
type PermissionSet struct {
	Wildcard bool             `json:"wildcard"`
	Grants   map[string]Grant `json:"grants"`
}

// NewPermissionSet returns an empty set.
func NewPermissionSet() PermissionSet {
	return PermissionSet{Grants: make(map[string]Grant)}
}

// ParsePermissionSet builds an active set from permission codes. Malformed
// codes are skipped; duplicates keep the highest level.
func ParsePermissionSet(codes []string) PermissionSet {
	set := NewPermissionSet()
	for _, code := range codes {
		if code == Wildcard {
			set.Wildcard = true
			continue
		}
		resource, level, ok := Permission(code).Split()
		if !ok {
			continue
		}
		if existing, found := set.Grants[resource]; found && existing.Level >= level {
			continue
		}
		set.Grants[resource] = Grant{Resource: resource, Level: level, Active: true}
	}
	return set
}

// Lookup returns the grant stored for resource.
func (s PermissionSet) Lookup(resource string) (Grant, bool) {
	g, ok := s.Grants[resource]
	return g, ok
}

// Overlay replaces the grant for g.Resource.
func (s *PermissionSet) Overlay(g Grant) {
	if s.Grants == nil {
		s.Grants = make(map[string]Grant)
	}
	s.Grants[g.Resource] = g
}

// Clone returns a deep copy.
func (s PermissionSet) Clone() PermissionSet {
	out := PermissionSet{Wildcard: s.Wildcard, Grants: make(map[string]Grant, len(s.Grants))}
	for k, g := range s.Grants {
		if g.ExpiresAt != nil {
			exp := *g.ExpiresAt
			g.ExpiresAt = &exp
		}
		out.Grants[k] = g
	}
	return out
}

// Codes lists the active, unexpired grants as sorted permission codes.
func (s PermissionSet) Codes(now time.Time) []string {
	if s.Wildcard {
		return []string{Wildcard}
	}
	codes := make([]string, 0, len(s.Grants))
	for _, g := range s.Grants {
		if !g.Active || g.Expired(now) || g.Level == LevelNone {
			continue
		}
		codes = append(codes, string(NewPermission(g.Resource, g.Level)))
	}
	sort.Strings(codes)
	return codes
}
