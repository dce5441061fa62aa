package auth

import "errors"

// The service's error taxonomy is a closed set of sentinels. Callers map
// these exhaustively; anything else is an internal fault.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. The two cases are deliberately indistinguishable so login
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateSubject is returned by Signup when the username is taken.
	ErrDuplicateSubject = errors.New("username already registered")

	// ErrMissingToken is returned by Authenticate for an empty token.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken covers every way a presented token can fail
	// verification: malformed, bad signature, or expired.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSessionRevoked is returned for a cryptographically valid token
	// whose session is gone, either through logout or the sweep.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrInvalidSignupInput wraps validation failures on signup fields.
	ErrInvalidSignupInput = errors.New("invalid signup input")
)
