package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth-relay/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Authenticator is the capability to verify that a session id belongs to a
// live authenticated session. The handshake binder re-checks this itself
// instead of trusting the surrounding callback context.
type Authenticator interface {
	Authenticate(sessionID string) (*Session, error)
}

// Service wraps a session repo with the session lifecycle and the claim
// capabilities the rest of the relay consumes.
type Service struct {
	repo Repo
	ttl  time.Duration
}

var _ Authenticator = (*Service)(nil)

func NewService(repo Repo, ttl time.Duration) *Service {
	return &Service{repo: repo, ttl: ttl}
}

// Create starts a new authenticated session for the given local principal
// and returns it. The caller sets the matching cookie.
func (s *Service) Create(userEmail string) (*Session, error) {
	now := NowTimeFunc()
	session := Session{
		ID:        uuid.NewString(),
		UserEmail: userEmail,
		Claims:    make(map[string]string),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Upsert(session.ID, session); err != nil {
		return nil, errors.Wrapf(err, "failed to store session")
	}
	return &session, nil
}

// Authenticate verifies the session exists and has not expired.
func (s *Service) Authenticate(sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, errors.ErrNotAuthenticated
	}
	session, err := s.repo.Get(sessionID)
	if err != nil {
		return nil, errors.ErrNotAuthenticated
	}
	if session.ExpiresAt.Before(NowTimeFunc()) {
		_ = s.repo.Delete(sessionID)
		return nil, errors.ErrSessionExpired
	}
	return &session, nil
}

// AddClaim attaches a name/value fact to an authenticated session. The
// session must still be live; the mutation is persisted immediately.
func (s *Service) AddClaim(sessionID, name, value string) error {
	session, err := s.Authenticate(sessionID)
	if err != nil {
		return err
	}
	if session.Claims == nil {
		session.Claims = make(map[string]string)
	}
	session.Claims[name] = value
	if err := s.repo.Upsert(session.ID, *session); err != nil {
		return errors.Wrapf(err, "failed to store session claim")
	}
	return nil
}

// GetClaim returns the named claim of an authenticated session.
func (s *Service) GetClaim(sessionID, name string) (string, bool) {
	session, err := s.Authenticate(sessionID)
	if err != nil {
		return "", false
	}
	return session.Claim(name)
}

// Destroy ends a session. Deleting an unknown session is not an error.
func (s *Service) Destroy(sessionID string) error {
	return s.repo.Delete(sessionID)
}
