package types

import "errors"

// Sentinel errors returned by repositories and services. Handlers map these
// to HTTP status codes with errors.Is.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("resource already exists")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("operation not allowed")
)
