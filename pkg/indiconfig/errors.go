package indiconfig

import "errors"

var (
	// ErrOwnedByRoot is returned when a config directory is owned by
	// root but the current process is not, matching the original's
	// IUGetConfigFP ownership check.
	ErrOwnedByRoot = errors.New("config directory owned by root")
	// ErrNotFound is returned by the typed Get* accessors when the
	// requested property or member has no saved value.
	ErrNotFound = errors.New("no saved value")
)
