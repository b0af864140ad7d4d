// Package schedule owns the prepared firing schedule: its wire format,
// validation, and persistence.
//
// A schedule is a raw line of alternating lamp/time pairs as received by
// the prepare command ("halogen 2 neon 0.5"). Parse validates it against
// the outlet map all-or-nothing; Pairs tokenizes without lamp resolution
// for the firing path, which drops unknown lamps per-entry instead.
//
// The Store interface is the pluggable persistence capability: the
// SQLite implementation gives the schedule durability across process
// restarts (it is the system's only durable artifact), the memory
// implementation serves tests.
package schedule
