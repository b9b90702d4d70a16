package auth

import (
	"errors"
	"fmt"
)

// State tracks the login flow through the QR challenge.
type State int

const (
	StateUnauthenticated State = iota
	StateCredentialLoaded
	StateChallengeDisplayed
	StateChallengeRefreshing
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateCredentialLoaded:
		return "credential-loaded"
	case StateChallengeDisplayed:
		return "challenge-displayed"
	case StateChallengeRefreshing:
		return "challenge-refreshing"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrChallengeUnavailable means the login surface never reached the QR code
// layout within the bounded toggle attempts. It costs one outer trial, not
// the whole run.
var ErrChallengeUnavailable = errors.New("could not switch the login page to the QR challenge")

// LoginError is returned when all challenge trials are exhausted without an
// authenticated session. LastURL is where the browser ended up.
type LoginError struct {
	LastURL string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed, page never reached the authenticated area (last url: %s)", e.LastURL)
}
