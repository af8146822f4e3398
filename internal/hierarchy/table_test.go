package hierarchy

import (
	"testing"
	"time"

	"github.com/medocupa/access-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Deterministic(t *testing.T) {
	for _, role := range model.AllRoles {
		first := Resolve(role)
		second := Resolve(role)
		assert.Equal(t, first, second, "role %s", role)
	}
}

func TestResolve_ReturnsIndependentCopies(t *testing.T) {
	set := Resolve(model.RoleReceptionist)
	set.Overlay(model.Grant{Resource: model.ResourceInventory, Level: model.LevelFull, Active: true})

	_, ok := Resolve(model.RoleReceptionist).Lookup(model.ResourceInventory)
	assert.False(t, ok)
}

func TestResolve_UnknownRoleIsEmpty(t *testing.T) {
	set := Resolve(model.RoleTag("janitor"))
	assert.False(t, set.Wildcard)
	assert.NotNil(t, set.Grants)
	assert.Empty(t, set.Grants)
	assert.Empty(t, Codes(model.RoleTag("janitor")))
}

func TestResolve_SuperAdminIsWildcard(t *testing.T) {
	assert.True(t, IsWildcard(model.RoleSuperAdmin))
	for _, role := range model.AllRoles[1:] {
		assert.False(t, IsWildcard(role), "role %s", role)
	}
}

func TestResolve_Receptionist(t *testing.T) {
	set := Resolve(model.RoleReceptionist)

	g, ok := set.Lookup(model.ResourcePatients)
	require.True(t, ok)
	assert.Equal(t, model.LevelFull, g.Level)
	assert.True(t, g.Active)

	_, ok = set.Lookup(model.ResourceInventory)
	assert.False(t, ok)
}

func TestCodes_RoundTrip(t *testing.T) {
	now := time.Now()
	for _, role := range model.AllRoles {
		codes := Codes(role)
		assert.ElementsMatch(t, codes, Resolve(role).Codes(now), "role %s", role)
	}
}

func TestRoles_CoversClosedSet(t *testing.T) {
	roles := Roles()
	require.Len(t, roles, len(model.AllRoles))
	for i, r := range roles {
		assert.Equal(t, model.AllRoles[i], r.Role)
		assert.NotEmpty(t, r.Permissions)
	}
}
