package outlet

import "errors"

// Domain errors for the outlet package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, outlet.ErrUnknownLamp) {
//	    // handle unknown lamp case
//	}
var (
	// ErrUnknownLamp is returned when a lamp name has no configured outlet.
	// The text goes over the wire verbatim; deployed clients match on it.
	ErrUnknownLamp = errors.New("unknown lamp")

	// ErrHardware is returned when the relay driver fails to apply or
	// read back an outlet state.
	ErrHardware = errors.New("outlet: hardware failure")
)
