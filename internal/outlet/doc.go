// Package outlet models the PDU relay bank the sequencer drives.
//
// It provides:
//
//   - Map: the static lamp-name-to-outlet-index lookup, loaded once from
//     configuration and immutable afterwards
//   - Driver: the injected relay hardware capability (Set with read-back,
//     Get), so the sequencer never talks to a process-wide singleton
//   - SimDriver: an in-memory relay bank for tests and sim mode
//   - Snapshot / AllOff: the two aggregate operations the protocol and
//     sequencer need
//
// Outlet state is owned by the hardware; this package never caches it
// beyond the lifetime of a single read.
package outlet
