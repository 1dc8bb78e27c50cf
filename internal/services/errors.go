package services

import "errors"

// Errors shared by several services. Service-specific sentinels live next to their service.
var (
	ErrForbidden     = errors.New("forbidden")
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidID     = errors.New("invalid id")
)
