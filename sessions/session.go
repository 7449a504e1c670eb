// Package sessions manages the relay's local cookie sessions. A session
// proves there is an authenticated local principal; claims attached to it
// (such as the bound provider identity) live and die with the session.
package sessions

import "time"

// Session is the server-side state behind one session cookie.
type Session struct {
	ID        string            // Unique session identifier (UUID)
	UserEmail string            // Local principal that authenticated
	Claims    map[string]string // Session-scoped facts, e.g. the provider-id claim
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Claim returns the named claim, or "" and false when absent.
func (s *Session) Claim(name string) (string, bool) {
	if s == nil || s.Claims == nil {
		return "", false
	}
	v, ok := s.Claims[name]
	return v, ok
}

// Repo stores sessions keyed by session id. Implementations may expire
// entries on their own once ExpiresAt passes.
type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
}
