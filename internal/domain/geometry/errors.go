package geometry

import "errors"

// Sentinel kinds for geometry errors.
var (
	// ErrInvalidZone reports a zone id outside [1, ZoneCount]. Always a
	// caller error; zone queries never clamp silently.
	ErrInvalidZone = errors.New("invalid zone id")
)
