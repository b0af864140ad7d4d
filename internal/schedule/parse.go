package schedule

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lampctl/lampseq/internal/outlet"
)

// Entry is one lamp/duration pair of a firing schedule.
type Entry struct {
	Lamp    string  `json:"lamp"`
	Seconds float64 `json:"seconds"`
}

// Pairs tokenizes a raw schedule line into entries without checking lamp
// names against the outlet map.
//
// The line is whitespace-separated alternating lamp/time tokens:
//
//	"halogen 2 neon 0.5"
//
// Each time token must parse as a finite number. An odd token count or a
// bad number fails with ErrValidation naming the offending token. An
// empty line yields an empty schedule.
//
// The firing path uses Pairs directly and resolves lamp names itself, so
// that a schedule prepared under an older outlet configuration degrades
// per-entry instead of failing wholesale.
func Pairs(raw string) ([]Entry, error) {
	tokens := strings.Fields(raw)
	if len(tokens)%2 != 0 {
		return nil, fmt.Errorf("%w: odd token count, expected alternating lamp/time pairs", ErrValidation)
	}

	entries := make([]Entry, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		lamp := tokens[i]
		timeToken := tokens[i+1]

		secs, err := strconv.ParseFloat(timeToken, 64)
		if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
			return nil, fmt.Errorf("%w: time %q for lamp %q is not a finite number", ErrValidation, timeToken, lamp)
		}

		entries = append(entries, Entry{Lamp: lamp, Seconds: secs})
	}
	return entries, nil
}

// Parse validates a raw schedule line against the outlet map.
//
// Every lamp must resolve via the map and every time token must be a
// finite number; any failure rejects the whole line (all-or-nothing), so
// a failed prepare never clobbers a previously valid stored schedule.
//
// Returns:
//   - []Entry: The validated entries in line order
//   - error: ErrValidation (wrapped) naming the offending lamp or token
func Parse(m *outlet.Map, raw string) ([]Entry, error) {
	entries, err := Pairs(raw)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if _, err := m.Lookup(e.Lamp); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	return entries, nil
}
