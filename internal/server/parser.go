package server

import "strings"

// Command is one parsed client command line. Name is the first
// whitespace-delimited token, Args the remaining tokens, and ArgsLine
// the raw remainder after the name with surrounding whitespace trimmed.
// ArgsLine preserves the original spacing between tokens so that
// prepare can persist exactly what the client sent.
type Command struct {
	Name     string
	Args     []string
	ArgsLine string
}

// ParseCommand splits a raw command line into its name and arguments.
// Leading and trailing whitespace, including the CR LF terminator, is
// ignored. An empty line yields a Command with an empty Name.
func ParseCommand(line string) Command {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{}
	}

	fields := strings.Fields(trimmed)
	return Command{
		Name:     fields[0],
		Args:     fields[1:],
		ArgsLine: strings.TrimSpace(strings.TrimPrefix(trimmed, fields[0])),
	}
}
