package config

import "time"

type SessionConfig interface {
	GetSessionCookieName() string
	GetSessionTTL() time.Duration
	GetStateSecret() []byte
	GetStateTTL() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "session_id")
}

func (Session) GetSessionTTL() time.Duration {
	return 30 * time.Minute // Sessions expire after 30 minutes
}

// GetStateSecret signs the OAuth state token. Must be set to a stable value
// in production; the empty default only suits single-run development.
func (Session) GetStateSecret() []byte {
	return []byte(GetEnv("STATE_SECRET", "dev-state-secret"))
}

func (Session) GetStateTTL() time.Duration {
	return 15 * time.Minute
}
