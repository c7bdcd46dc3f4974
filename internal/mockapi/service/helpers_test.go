package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/domain"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/service"
	"github.com/aussiebroadwan/lmsconsole/internal/mockapi/store"
	"github.com/aussiebroadwan/lmsconsole/pkg/cryptox"
	"github.com/aussiebroadwan/lmsconsole/pkg/jwtx"
)

const testIssuer = "lms-mock-test"

// cheapParams keeps argon2 fast in tests.
var cheapParams = cryptox.Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 16, SaltLength: 8}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type authFixture struct {
	store    *store.Memory
	auth     *service.AuthService
	verifier *jwtx.EdDSAVerifier
	clock    *fakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	key, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSigner("test", key)
	require.NoError(t, err)

	st := store.NewMemory()
	hasher := cryptox.NewHasher("pepper").WithParams(cheapParams)
	clock := &fakeClock{now: time.Now().UTC().Truncate(time.Second)}

	seeder := &service.SeedService{Store: st, Hasher: hasher}
	require.NoError(t, seeder.Seed(context.Background(), []service.SeedUser{
		{Email: "admin@lms.local", Name: "Admin", Role: domain.RoleAdmin, Password: "admin-pass"},
		{Email: "student@lms.local", Name: "Student", Role: domain.RoleStudent},
	}, false))

	return &authFixture{
		store: st,
		auth: &service.AuthService{
			Store:      st,
			Signer:     signer,
			Hasher:     hasher,
			Issuer:     testIssuer,
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
			Now:        clock.Now,
		},
		verifier: jwtx.NewVerifier(signer.PublicKey(), testIssuer, 0).WithClock(clock.Now),
		clock:    clock,
	}
}
