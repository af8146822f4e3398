package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/medocupa/access-backend/internal/config"
	"github.com/medocupa/access-backend/internal/model"
	"github.com/medocupa/access-backend/internal/permcache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const demoSecret = "demo123"

type fixture struct {
	mr         *miniredis.Miniredis
	rdb        *redis.Client
	cfg        *config.Config
	directory  *DemoDirectory
	memory     *permcache.MemoryStore
	cache      *permcache.Cache
	notifier   *Notifier
	grants     *fakeGrants
	auth       *AuthService
	sessions   *SessionService
	authorizer *Authorizer
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	directory, err := NewDemoDirectory(demoSecret, bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		mr:        mr,
		rdb:       rdb,
		cfg:       cfg,
		directory: directory,
		memory:    permcache.NewMemoryStore(128, time.Hour),
		grants:    newFakeGrants(),
		now:       time.Now(),
	}
	f.cache = permcache.New(permcache.DefaultTTL, zerolog.Nop(), f.memory, permcache.NewRedisStore(rdb, time.Hour))
	f.cache.SetClock(f.clock)
	f.notifier = NewNotifier(rdb, zerolog.Nop())
	f.auth = NewAuthService(cfg, rdb)
	f.sessions = NewSessionService(f.auth, directory, f.cache, f.notifier, zerolog.Nop())
	f.authorizer = NewAuthorizer(f.cache, f.grants, zerolog.Nop())
	f.authorizer.SetClock(f.clock)
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) identity(t *testing.T, email string) *model.Identity {
	t.Helper()
	identity, err := f.directory.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	identity.PasswordHash = ""
	return identity
}

// fakeGrants is an in-memory GrantStore.
type fakeGrants struct {
	mu     sync.Mutex
	byUser map[string][]model.GrantOverride
	err    error
	calls  int
	seq    int
}

func newFakeGrants() *fakeGrants {
	return &fakeGrants{byUser: make(map[string][]model.GrantOverride)}
}

func (g *fakeGrants) ListByUser(_ context.Context, userID string) ([]model.GrantOverride, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	out := make([]model.GrantOverride, len(g.byUser[userID]))
	copy(out, g.byUser[userID])
	return out, nil
}

func (g *fakeGrants) Upsert(_ context.Context, o *model.GrantOverride) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	list := g.byUser[o.UserID]
	for i := range list {
		if list[i].Resource == o.Resource {
			o.ID = list[i].ID
			list[i] = *o
			return nil
		}
	}
	g.seq++
	o.ID = fmt.Sprintf("g-%d", g.seq)
	g.byUser[o.UserID] = append(list, *o)
	return nil
}

func (g *fakeGrants) Delete(_ context.Context, userID, grantID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	list := g.byUser[userID]
	for i := range list {
		if list[i].ID == grantID {
			g.byUser[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (g *fakeGrants) set(userID string, overrides ...model.GrantOverride) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.byUser[userID] = overrides
}

func (g *fakeGrants) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
