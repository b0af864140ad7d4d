package sequencer

import "errors"

// Domain errors for the sequencer package.
var (
	// ErrBusy is returned when a fire request arrives while a sequence
	// is already armed, firing, or draining. The TCP accept loop is
	// sequential, so in practice only a non-TCP caller can hit this.
	ErrBusy = errors.New("sequencer: firing sequence already in progress")
)
