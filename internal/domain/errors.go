package domain

import "errors"

// Sentinel errors shared by repositories and services.
// Adapters map these to transport status codes.
var (
	// ErrNotFound is returned when an entity does not exist or is not
	// owned by the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned on unique-constraint violations,
	// e.g. a duplicate category name for the same user and type.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalid wraps validation failures on user-supplied input.
	ErrInvalid = errors.New("invalid input")
)
