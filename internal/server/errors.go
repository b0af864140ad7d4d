package server

import "errors"

// Domain errors for the protocol handler.
var (
	// ErrUnknownCommand is returned when the first token of a command
	// line matches no dispatch entry.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrBadArguments is returned when a recognised command has a
	// malformed argument list.
	ErrBadArguments = errors.New("bad arguments")
)
