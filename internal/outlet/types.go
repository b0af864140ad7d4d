package outlet

import (
	"fmt"
	"strings"
)

// Outlet maps one lamp name to a physical relay outlet index.
type Outlet struct {
	Name  string
	Index int
}

// Map is the static lookup between lamp names and outlet indices.
//
// It is built once at startup from configuration and never mutated.
// Order is configuration order; the table is small (a PDU has at most a
// handful of outlets), so lookups are linear scans.
type Map struct {
	outlets []Outlet
}

// NewMap builds a Map from the configured outlets.
//
// Names and indices must be unique; configuration validation enforces
// this before the process starts, so a violation here is a programming
// error and is rejected outright.
//
// Returns:
//   - *Map: Immutable lamp-to-outlet mapping
//   - error: If names or indices collide
func NewMap(outlets []Outlet) (*Map, error) {
	seenNames := make(map[string]bool, len(outlets))
	seenIndices := make(map[int]bool, len(outlets))
	for _, o := range outlets {
		if seenNames[o.Name] {
			return nil, fmt.Errorf("outlet name %q duplicated", o.Name)
		}
		if seenIndices[o.Index] {
			return nil, fmt.Errorf("outlet index %d duplicated", o.Index)
		}
		seenNames[o.Name] = true
		seenIndices[o.Index] = true
	}

	m := &Map{outlets: make([]Outlet, len(outlets))}
	copy(m.outlets, outlets)
	return m, nil
}

// Lookup returns the outlet index for a lamp name.
//
// Returns:
//   - int: The physical outlet index
//   - error: ErrUnknownLamp (wrapped with the name) if not mapped
func (m *Map) Lookup(name string) (int, error) {
	for _, o := range m.outlets {
		if o.Name == name {
			return o.Index, nil
		}
	}
	return 0, fmt.Errorf("%w : %s", ErrUnknownLamp, name)
}

// Outlets returns the mapping in configuration order.
// The returned slice is a copy; callers may not mutate the map.
func (m *Map) Outlets() []Outlet {
	out := make([]Outlet, len(m.outlets))
	copy(out, m.outlets)
	return out
}

// Len returns the number of configured outlets.
func (m *Map) Len() int {
	return len(m.outlets)
}

// Describe renders the outlet configuration for the getOutletsConfig
// command: "outlet0{index}={name}" pairs, comma-joined, in configuration
// order. The "outlet0" prefix (rather than zero-padding) is what the
// deployed controller clients parse; it is kept verbatim.
func (m *Map) Describe() string {
	parts := make([]string, len(m.outlets))
	for i, o := range m.outlets {
		parts[i] = fmt.Sprintf("outlet0%d=%s", o.Index, o.Name)
	}
	return strings.Join(parts, ",")
}

// StateString renders an outlet state for the wire protocol.
func StateString(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
