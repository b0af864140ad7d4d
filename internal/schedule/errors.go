package schedule

import "errors"

// Domain errors for the schedule package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, schedule.ErrNotPrepared) {
//	    // no schedule has ever been prepared
//	}
var (
	// ErrValidation is returned when a prepare line fails validation
	// (unknown lamp name or non-numeric duration). No write occurs.
	ErrValidation = errors.New("schedule: validation failed")

	// ErrNotPrepared is returned when reading the store before any
	// schedule was ever written. This is a hard error by design: a go
	// with no prior prepare must fail rather than fire an empty default.
	ErrNotPrepared = errors.New("schedule: no schedule prepared")
)
