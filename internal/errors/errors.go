package errors

import (
	"errors"
	"fmt"
)

// Common error types for the OAuth relay
var (
	// Session errors: no authenticated local session where one is required.
	// Surfaced as a re-authentication requirement.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")

	// Handshake errors: finalising the OAuth ticket failed. The whole
	// redirect flow must restart; no token record is written.
	ErrHandshakeFailed = errors.New("handshake failed")

	// Token errors
	ErrNoLinkedAccount = errors.New("no linked provider account")

	// Upstream errors: an outbound provider call failed (network, timeout,
	// non-2xx). Never retried by the relay itself.
	ErrUpstreamFailed = errors.New("provider request failed")

	// Storage errors: the token store is unavailable. Fatal for the
	// in-flight operation.
	ErrStorageUnavailable = errors.New("token storage unavailable")

	// User errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
