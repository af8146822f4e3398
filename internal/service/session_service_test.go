package service

import (
	"context"
	"testing"

	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIn_ValidCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.sessions.SignIn(ctx, "  Recepcion@ACME.demo ", demoSecret)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, model.RoleReceptionist, res.Identity.Role)
	assert.Empty(t, res.Identity.PasswordHash)
	assert.True(t, f.mr.Exists(config.CacheKey.SessionKey(res.Identity.ID)))

	current, err := f.sessions.CurrentIdentity(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Identity.ID, current.ID)
	assert.Equal(t, "acme", current.TenantID)
	assert.Equal(t, "planta-norte", current.SiteID)

	queued, err := f.mr.List(config.WorkerKey.PersistAccessAuditQueue)
	require.NoError(t, err)
	assert.Len(t, queued, 1)
}

func TestSignIn_WrongSecretLeavesNoSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sessions.SignIn(ctx, "recepcion@acme.demo", "not-the-secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	id := DemoIdentityID("recepcion@acme.demo")
	assert.False(t, f.mr.Exists(config.CacheKey.SessionKey(id)))
}

func TestSignIn_UnknownEmailSameErrorAsWrongSecret(t *testing.T) {
	f := newFixture(t)

	_, err := f.sessions.SignIn(context.Background(), "nadie@acme.demo", demoSecret)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_SuspendedAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.sessions.SignIn(context.Background(), "suspendido@acme.demo", demoSecret)
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestSignOut_ClearsSessionAndBothCacheTiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.sessions.SignIn(ctx, "recepcion@acme.demo", demoSecret)
	require.NoError(t, err)

	require.True(t, f.authorizer.HasAccess(ctx, res.Identity, model.ResourcePatients, model.LevelFull))
	require.Equal(t, 1, f.memory.Len())
	require.True(t, f.mr.Exists(config.CacheKey.MenuPermissionsKey(res.Identity.ID)))

	f.sessions.SignOut(ctx, res.Identity)

	assert.Equal(t, 0, f.memory.Len())
	assert.False(t, f.mr.Exists(config.CacheKey.MenuPermissionsKey(res.Identity.ID)))

	_, err = f.sessions.CurrentIdentity(ctx, res.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSignOut_TwiceIsHarmless(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.sessions.SignIn(ctx, "medico@acme.demo", demoSecret)
	require.NoError(t, err)

	f.sessions.SignOut(ctx, res.Identity)
	f.sessions.SignOut(ctx, res.Identity)
	f.sessions.SignOut(ctx, nil)

	_, err = f.sessions.CurrentIdentity(ctx, res.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSignIn_NewSessionReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.sessions.SignIn(ctx, "enfermeria@acme.demo", demoSecret)
	require.NoError(t, err)
	second, err := f.sessions.SignIn(ctx, "enfermeria@acme.demo", demoSecret)
	require.NoError(t, err)

	_, err = f.sessions.CurrentIdentity(ctx, first.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	current, err := f.sessions.CurrentIdentity(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, second.Identity.ID, current.ID)
}

func TestCurrentIdentity_RejectsGarbageToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.sessions.CurrentIdentity(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.sessions.CurrentIdentity(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRefresh_RoleChangeDropsCachedPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.sessions.SignIn(ctx, "recepcion@acme.demo", demoSecret)
	require.NoError(t, err)
	require.False(t, f.authorizer.HasAccess(ctx, res.Identity, model.ResourceInventory, model.LevelRead))

	promoted := *res.Identity
	promoted.Role = model.RoleSiteAdmin
	require.NoError(t, f.directory.Update(promoted))

	fresh, err := f.sessions.Refresh(ctx, res.Identity)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSiteAdmin, fresh.Role)
	assert.Equal(t, 0, f.memory.Len())

	current, err := f.sessions.CurrentIdentity(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSiteAdmin, current.Role)
	assert.True(t, f.authorizer.HasAccess(ctx, current, model.ResourceInventory, model.LevelRead))
}

func TestRefresh_UnchangedScopeKeepsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.sessions.SignIn(ctx, "recepcion@acme.demo", demoSecret)
	require.NoError(t, err)
	f.authorizer.HasAccess(ctx, res.Identity, model.ResourcePatients, model.LevelRead)

	fresh, err := f.sessions.Refresh(ctx, res.Identity)
	require.NoError(t, err)
	assert.True(t, fresh.SameScope(res.Identity))
	assert.Equal(t, 1, f.memory.Len())
}

func TestRefresh_UnchangedScopeStillRewritesSessionRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.sessions.SignIn(ctx, "recepcion@acme.demo", demoSecret)
	require.NoError(t, err)
	f.authorizer.HasAccess(ctx, res.Identity, model.ResourcePatients, model.LevelRead)

	renamed := *res.Identity
	renamed.DisplayName = "Recepción Turno Tarde"
	require.NoError(t, f.directory.Update(renamed))

	fresh, err := f.sessions.Refresh(ctx, res.Identity)
	require.NoError(t, err)
	assert.Equal(t, "Recepción Turno Tarde", fresh.DisplayName)
	assert.Equal(t, 1, f.memory.Len())

	current, err := f.sessions.CurrentIdentity(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "Recepción Turno Tarde", current.DisplayName)
	assert.Empty(t, current.PasswordHash)
}

func TestRefresh_DeactivatedIdentityIsSignedOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.sessions.SignIn(ctx, "facturacion@acme.demo", demoSecret)
	require.NoError(t, err)

	disabled := *res.Identity
	disabled.Status = model.StatusInactive
	require.NoError(t, f.directory.Update(disabled))

	_, err = f.sessions.Refresh(ctx, res.Identity)
	assert.ErrorIs(t, err, ErrAccountInactive)

	_, err = f.sessions.CurrentIdentity(ctx, res.Token)
	assert.ErrorIs(t, err, ErrNoSession)
}
