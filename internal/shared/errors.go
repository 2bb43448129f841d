package shared

import "errors"

// Sentinels shared by the services and handlers. Backend responses are
// mapped onto them so pages can branch without inspecting HTTP statuses.
var (
	// ErrNotFound is a missing record; the backend answered 404.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidCredentials is a rejected sign-in.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated means the session holds no usable backend tokens.
	ErrUnauthenticated = errors.New("session is not signed in")
)
