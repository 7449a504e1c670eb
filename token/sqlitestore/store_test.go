package sqlitestore_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/token"
	"github.com/jrsteele09/go-oauth-relay/token/sqlitestore"
)

func openStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	store, err := sqlitestore.Open(filepath.Join(t.TempDir(), "tokens.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetUnknownUserReturnsNoLinkedAccount(t *testing.T) {
	store := openStore(t)

	_, err := store.Get(context.Background(), "u1")
	require.ErrorIs(t, err, errors.ErrNoLinkedAccount)
}

func TestUpsertThenGetRoundTrips(t *testing.T) {
	store := openStore(t)
	expires := time.Now().Add(time.Hour).Truncate(time.Millisecond).UTC()
	record := &token.Record{
		UserID:       "u1",
		AccessToken:  "tok1",
		RefreshToken: "ref1",
		Expires:      expires,
	}

	require.NoError(t, store.Upsert(context.Background(), record))

	got, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, record, got)
}

func TestUpsertOverwritesExistingRecord(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &token.Record{
		UserID: "u1", AccessToken: "tok1", RefreshToken: "ref1",
		Expires: time.Now().UTC(),
	}))
	require.NoError(t, store.Upsert(ctx, &token.Record{
		UserID: "u1", AccessToken: "tok2", RefreshToken: "ref2",
		Expires: time.Now().Add(time.Hour).UTC(),
	}))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "tok2", got.AccessToken)
	require.Equal(t, "ref2", got.RefreshToken)
}

func TestGetIsIdempotent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, &token.Record{
		UserID: "u1", AccessToken: "tok1", RefreshToken: "ref1",
		Expires: time.Now().UTC(),
	}))

	first, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	second, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

// Concurrent upserts for the same key may race, but the stored record must
// always be one writer's record in full, never a mix.
func TestConcurrentUpsertsNeverInterleaveFields(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			suffix := []string{"a", "b"}[n]
			for j := 0; j < 25; j++ {
				_ = store.Upsert(ctx, &token.Record{
					UserID:       "u1",
					AccessToken:  "tok-" + suffix,
					RefreshToken: "ref-" + suffix,
					Expires:      time.Now().UTC(),
				})
			}
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, got.AccessToken[len("tok-"):], got.RefreshToken[len("ref-"):],
		"access and refresh tokens must come from the same writer")
}
