package token

import (
	"context"
	"time"
)

// Record is the persisted token state for one provider identity. The relay
// keeps at most one record per provider user id: the first successful
// handshake creates it and every later handshake or refresh overwrites the
// mutable fields in place.
type Record struct {
	UserID       string    // Provider-issued user id, unique key
	AccessToken  string    // Short-lived bearer credential
	RefreshToken string    // Long-lived credential used to mint new access tokens
	Expires      time.Time // Advisory expiry, not enforced by the store
}

// Repo is the durable token store. Upsert must be atomic per key: two
// concurrent upserts for the same user id may race (last writer wins) but
// must never interleave field-by-field.
type Repo interface {
	// Get returns the record for userID, or errors.ErrNoLinkedAccount
	// when no handshake ever completed for that identity.
	Get(ctx context.Context, userID string) (*Record, error)
	Upsert(ctx context.Context, record *Record) error
}
