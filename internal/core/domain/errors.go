package domain

import "errors"

// Errors returned by the core services. Handlers map them to HTTP status codes
// with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrPersistence        = errors.New("persistence error")
)

// ErrNotFound is returned by repositories when no record matches a lookup.
var ErrNotFound = errors.New("record not found")
