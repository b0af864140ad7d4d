// Package influxdb provides optional firing run telemetry.
//
// It wraps the official influxdb-client-go v2 library with patterns for
// connection management, batched writes, and health monitoring. When
// enabled, each completed or aborted firing run is recorded as a point
// in the sequence_runs measurement so lamp usage can be trended over
// time without the sequencer itself keeping history.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via
// the SetOnError callback. Connection and health check errors are
// returned directly.
package influxdb
