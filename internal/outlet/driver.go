package outlet

import (
	"fmt"
	"strings"
	"sync"
)

// Driver is the relay hardware capability injected into the sequencer
// and protocol handler.
//
// Implementations are assumed synchronous: Set applies the state and
// returns the read-back of what the hardware actually latched. The core
// never caches outlet state beyond the lifetime of one call.
type Driver interface {
	// Set switches an outlet and returns the applied state read back
	// from the hardware.
	Set(index int, on bool) (bool, error)

	// Get reads the current state of an outlet.
	Get(index int) (bool, error)
}

// SimDriver is an in-memory relay bank.
//
// It stands in for the physical PDU in tests and in "sim" driver mode.
// Unknown indices read as off, matching a relay bank with unwired
// positions.
//
// Thread Safety: safe for concurrent use.
type SimDriver struct {
	mu     sync.Mutex
	states map[int]bool
}

// NewSimDriver creates a simulated relay bank with every outlet off.
func NewSimDriver() *SimDriver {
	return &SimDriver{states: make(map[int]bool)}
}

// Set switches a simulated outlet and returns the applied state.
func (d *SimDriver) Set(index int, on bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.states[index] = on
	return on, nil
}

// Get reads a simulated outlet state.
func (d *SimDriver) Get(index int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.states[index], nil
}

// Snapshot renders the aggregate outlet state in configuration order:
// "lamp=on,lamp=off,...". This is the getState wire format and the final
// result of a firing sequence.
//
// Returns:
//   - string: Comma-joined lamp states
//   - error: ErrHardware (wrapped) if any outlet read fails
func Snapshot(m *Map, d Driver) (string, error) {
	parts := make([]string, 0, m.Len())
	for _, o := range m.Outlets() {
		on, err := d.Get(o.Index)
		if err != nil {
			return "", fmt.Errorf("%w: reading outlet %d (%s): %v", ErrHardware, o.Index, o.Name, err)
		}
		parts = append(parts, o.Name+"="+StateString(on))
	}
	return strings.Join(parts, ","), nil
}

// AllOff forces every outlet in the map off. It is the safety reset used
// before arming a sequence and unconditionally again when draining one.
//
// Returns:
//   - error: ErrHardware (wrapped) on the first outlet that fails
func AllOff(m *Map, d Driver) error {
	for _, o := range m.Outlets() {
		if _, err := d.Set(o.Index, false); err != nil {
			return fmt.Errorf("%w: forcing outlet %d (%s) off: %v", ErrHardware, o.Index, o.Name, err)
		}
	}
	return nil
}
