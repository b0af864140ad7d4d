package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordSequence writes one completed firing run to the sequence_runs
// measurement.
//
// It satisfies the sequencer's Recorder interface. The write is
// non-blocking; data is batched and sent asynchronously, so a slow or
// absent telemetry backend never delays the command reply.
//
// Parameters:
//   - runID: Unique identifier for the run
//   - channels: Number of outlets that fired
//   - longest: Lamp name of the longest-burning channel (empty for no-op runs)
//   - elapsed: Wall time from switch-on to final all-off
//   - aborted: Whether the run was cut short by a client abort
func (c *Client) RecordSequence(runID string, channels int, longest string, elapsed time.Duration, aborted bool) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(sequencePoint(runID, channels, longest, elapsed, aborted, time.Now()))
}

// sequencePoint builds the data point for one firing run.
//
// runID is a field, not a tag: every run has a unique ID and tagging it
// would explode series cardinality.
func sequencePoint(runID string, channels int, longest string, elapsed time.Duration, aborted bool, at time.Time) *write.Point {
	status := "completed"
	if aborted {
		status = "aborted"
	}

	return write.NewPoint(
		"sequence_runs",
		map[string]string{
			"status":  status,
			"longest": longest,
		},
		map[string]interface{}{
			"run_id":          runID,
			"channels":        channels,
			"elapsed_seconds": elapsed.Seconds(),
		},
		at,
	)
}
