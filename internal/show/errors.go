package show

import "errors"

// Sentinel errors for show folder operations.
var (
	// ErrShowNotFound is returned when a show folder or one of its three
	// CSV files does not exist.
	ErrShowNotFound = errors.New("show: not found")

	// ErrInvalidName is returned when a show name would escape the shows
	// directory (path separators, "..", or empty).
	ErrInvalidName = errors.New("show: invalid name")
)
