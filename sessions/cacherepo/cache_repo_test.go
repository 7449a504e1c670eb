package cacherepo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/sessions"
	"github.com/jrsteele09/go-oauth-relay/sessions/cacherepo"
)

func newSession(id string) sessions.Session {
	now := time.Now()
	return sessions.Session{
		ID:        id,
		UserEmail: "john.doe@example.com",
		Claims:    map[string]string{"provider-id": "u1"},
		CreatedAt: now,
		ExpiresAt: now.Add(30 * time.Minute),
	}
}

func TestRoundtrip(t *testing.T) {
	repo := cacherepo.New(30 * time.Minute)

	require.NoError(t, repo.Upsert("s1", newSession("s1")))

	got, err := repo.Get("s1")
	require.NoError(t, err)
	require.Equal(t, "s1", got.ID)
	require.Equal(t, map[string]string{"provider-id": "u1"}, got.Claims)

	_, err = repo.Get("unknown")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestStoredClaimsAreIsolatedFromCallers(t *testing.T) {
	repo := cacherepo.New(30 * time.Minute)

	stored := newSession("s1")
	require.NoError(t, repo.Upsert("s1", stored))

	// Mutating the map we passed in must not reach the stored session.
	stored.Claims["provider-id"] = "tampered"

	got, err := repo.Get("s1")
	require.NoError(t, err)
	require.Equal(t, "u1", got.Claims["provider-id"])

	// Mutating a returned session must not reach the stored session either.
	got.Claims["provider-id"] = "tampered"

	again, err := repo.Get("s1")
	require.NoError(t, err)
	require.Equal(t, "u1", again.Claims["provider-id"])
}

func TestDeleteRemovesSession(t *testing.T) {
	repo := cacherepo.New(30 * time.Minute)

	require.NoError(t, repo.Upsert("s1", newSession("s1")))
	require.NoError(t, repo.Delete("s1"))

	_, err := repo.Get("s1")
	require.ErrorIs(t, err, errors.ErrSessionNotFound)
}
