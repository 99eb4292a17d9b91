package tz

import "errors"

var (
	// ErrZoneNotFound is returned by registry lookups for unknown IDs.
	ErrZoneNotFound = errors.New("zone not found")

	// ErrInvalidLocalTime is returned by the conversion engine when the
	// requested local time falls in a DST gap (clocks skipped over it).
	// It is surfaced verbatim, never coerced to an adjacent valid time.
	ErrInvalidLocalTime = errors.New("local time does not exist in that zone (DST gap)")
)
