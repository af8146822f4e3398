package service

import (
	"context"
	"testing"

	"github.com/medocupa/access-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDemoDirectory_LookupIsCaseInsensitive(t *testing.T) {
	d, err := NewDemoDirectory(demoSecret, bcrypt.MinCost)
	require.NoError(t, err)

	identity, err := d.GetByEmail(context.Background(), "MEDICO@acme.demo")
	require.NoError(t, err)
	assert.Equal(t, model.RolePhysicianGeneralist, identity.Role)
	assert.Equal(t, DemoIdentityID("medico@acme.demo"), identity.ID)

	byID, err := d.GetByID(context.Background(), identity.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.Email, byID.Email)
}

func TestDemoDirectory_StableIDs(t *testing.T) {
	assert.Equal(t, DemoIdentityID("admin@acme.demo"), DemoIdentityID("Admin@ACME.demo"))
	assert.NotEqual(t, DemoIdentityID("admin@acme.demo"), DemoIdentityID("sede@acme.demo"))
}

func TestDemoDirectory_Unknown(t *testing.T) {
	d, err := NewDemoDirectory(demoSecret, bcrypt.MinCost)
	require.NoError(t, err)

	_, err = d.GetByEmail(context.Background(), "nadie@acme.demo")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
	_, err = d.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
	assert.ErrorIs(t, d.Update(model.Identity{ID: "missing"}), ErrIdentityNotFound)
}

func TestDemoDirectory_ReturnsCopies(t *testing.T) {
	d, err := NewDemoDirectory(demoSecret, bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()

	identity, err := d.GetByEmail(ctx, "recepcion@acme.demo")
	require.NoError(t, err)
	identity.Role = model.RoleSuperAdmin

	again, err := d.GetByEmail(ctx, "recepcion@acme.demo")
	require.NoError(t, err)
	assert.Equal(t, model.RoleReceptionist, again.Role)
}

func TestUserService_ListScopedToTenant(t *testing.T) {
	d, err := NewDemoDirectory(demoSecret, bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()
	svc := NewUserService(d)

	admin, err := d.GetByEmail(ctx, "admin@acme.demo")
	require.NoError(t, err)
	root, err := d.GetByEmail(ctx, "superadmin@medocupa.demo")
	require.NoError(t, err)

	scoped, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, scoped, len(DemoIdentities)-1)
	for _, identity := range scoped {
		assert.Equal(t, "acme", identity.TenantID)
		assert.Empty(t, identity.PasswordHash)
	}

	all, err := svc.List(ctx, root)
	require.NoError(t, err)
	assert.Len(t, all, len(DemoIdentities))
}
