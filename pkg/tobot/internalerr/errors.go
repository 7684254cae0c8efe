package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrDuplicate        = errors.New("duplicate entry")
	ErrNoSignal         = errors.New("no usable signal")
	ErrNoMatch          = errors.New("no match")
	ErrUnavailable      = errors.New("collaborator unavailable")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
)
