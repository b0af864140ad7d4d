// Package sequencer executes timed lamp firing sequences.
//
// This is the core of the lamp sequencer: it turns a prepared schedule
// into a firing plan, drives the relay bank through it, and streams
// every transition back to the requesting client.
//
// # Lifecycle
//
//	Idle → Armed → Firing → Draining → Idle
//
// Arming reads the schedule store and force-resets the whole outlet map.
// Firing records one shared start timestamp and switches every planned
// outlet on. Draining waits out the channel deadlines
// earliest-deadline-first, switching each channel off as its time
// elapses, and terminates once the longest channel is off. A final
// unconditional all-off pass runs regardless of outcome.
//
// # Simultaneity
//
// Channels are not run on parallel timers. All stop times derive from
// the single start timestamp and one goroutine sweeps the deadlines, so
// off-events fire in non-decreasing stop-time order with configuration
// order breaking ties. The only blocking point in the drain loop is the
// bounded abort read.
//
// # Abort
//
// Abort is cooperative and level-triggered. When the next deadline is
// more than the configured poll window away, the loop performs a bounded
// read on the client session; a line containing "abort" forces every
// remaining channel off in the next sweep. A vanished client (failed
// write or read) aborts the run the same way rather than leaving lamps
// burning unattended.
//
// Exactly one sequence may be armed, firing, or draining at a time;
// concurrent Fire calls fail fast with ErrBusy.
package sequencer
