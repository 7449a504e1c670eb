package sessions_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/sessions"
	"github.com/jrsteele09/go-oauth-relay/sessions/cacherepo"
)

const testEmail = "john.doe@example.com"

func newService(ttl time.Duration) *sessions.Service {
	return sessions.NewService(cacherepo.New(ttl), ttl)
}

func TestCreateAndAuthenticate(t *testing.T) {
	service := newService(30 * time.Minute)

	session, err := service.Create(testEmail)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	authenticated, err := service.Authenticate(session.ID)
	require.NoError(t, err)
	require.Equal(t, testEmail, authenticated.UserEmail)
}

func TestAuthenticateUnknownSession(t *testing.T) {
	service := newService(30 * time.Minute)

	_, err := service.Authenticate("unknown")
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)

	_, err = service.Authenticate("")
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	service := newService(30 * time.Minute)
	session, err := service.Create(testEmail)
	require.NoError(t, err)

	sessions.NowTimeFunc = func() time.Time { return time.Now().Add(time.Hour) }
	defer func() { sessions.NowTimeFunc = time.Now }()

	_, err = service.Authenticate(session.ID)
	require.ErrorIs(t, err, errors.ErrSessionExpired)
}

func TestClaimsLiveWithTheSession(t *testing.T) {
	service := newService(30 * time.Minute)
	session, err := service.Create(testEmail)
	require.NoError(t, err)

	_, ok := service.GetClaim(session.ID, "provider-id")
	require.False(t, ok)

	require.NoError(t, service.AddClaim(session.ID, "provider-id", "u1"))

	claim, ok := service.GetClaim(session.ID, "provider-id")
	require.True(t, ok)
	require.Equal(t, "u1", claim)

	require.NoError(t, service.Destroy(session.ID))
	_, ok = service.GetClaim(session.ID, "provider-id")
	require.False(t, ok)
}

func TestAddClaimRequiresLiveSession(t *testing.T) {
	service := newService(30 * time.Minute)

	err := service.AddClaim("unknown", "provider-id", "u1")
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
}

// Claim writes and reads on the same session happen concurrently in the
// server (callback binding vs. any gated request). Run under -race.
func TestConcurrentClaimWritesAndReads(t *testing.T) {
	service := newService(30 * time.Minute)
	session, err := service.Create(testEmail)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(2)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = service.AddClaim(session.ID, fmt.Sprintf("claim-%d", g), "u1")
			}
		}(g)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, _ = service.GetClaim(session.ID, fmt.Sprintf("claim-%d", g))
			}
		}(g)
	}
	wg.Wait()

	// Concurrent writers may overwrite each other wholesale, but the
	// session must survive intact and a write after the storm must land.
	_, err = service.Authenticate(session.ID)
	require.NoError(t, err)

	require.NoError(t, service.AddClaim(session.ID, "provider-id", "u1"))
	claim, ok := service.GetClaim(session.ID, "provider-id")
	require.True(t, ok)
	require.Equal(t, "u1", claim)
}
