package bloom

import "errors"

// Sentinel errors returned by Filter methods. Wrap with fmt.Errorf("%w: ...")
// where additional context helps; callers can still errors.Is against these.
var (
	// ErrParameterMismatch is returned by set-algebra operations when the
	// operands differ in (np, nh, seedseed).
	ErrParameterMismatch = errors.New("bloom: parameter mismatch")

	// ErrTooManySeeds is returned at serialization time if the filter
	// somehow accumulated more than 255 seeds.
	ErrTooManySeeds = errors.New("bloom: too many seeds to serialize")

	// ErrOversize is returned when a construction or resize would make
	// np > 40 (m > 2^46).
	ErrOversize = errors.New("bloom: table would be too large")

	// ErrEmptyFilter is returned by Add and MayContainAndAdd on a filter
	// with np == 0 (no storage allocated). MayContain instead
	// deterministically returns false for such filters.
	ErrEmptyFilter = errors.New("bloom: filter has no storage (np == 0)")

	// ErrCorrupt is returned by Read when the byte stream is structurally
	// invalid (too short, inconsistent seed count, etc).
	ErrCorrupt = errors.New("bloom: corrupt or truncated data")
)
