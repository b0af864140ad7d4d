package sequencer

import "time"

// State identifies where the sequencer is in its firing lifecycle.
//
// Transitions: Idle → Armed → Firing → Draining → Idle. At most one
// sequence may be anywhere past Idle at a time.
type State string

// Sequencer states.
const (
	StateIdle     State = "idle"
	StateArmed    State = "armed"
	StateFiring   State = "firing"
	StateDraining State = "draining"
)

// Channel is one planned outlet of a firing sequence.
//
// All channels share a single start timestamp; StopAt is start plus the
// channel's on-duration, so channels start simultaneously and stop
// independently.
type Channel struct {
	Lamp    string
	Outlet  int
	Seconds float64
	StopAt  time.Time
	On      bool
}

// Session is the client connection surface the sequencer streams to.
//
// Emit sends one event message (the protocol handler frames it for the
// wire). PollAbort performs a bounded read looking for an abort request
// and reports whether one arrived; a timeout is not an error.
type Session interface {
	Emit(msg string) error
	PollAbort(timeout time.Duration) (bool, error)
}

// Clock abstracts wall-clock reads and waits so tests can drive the
// drain loop deterministically. The real clock uses the monotonic
// reading embedded in time.Time, so schedule arithmetic is immune to
// wall-clock steps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// realClock implements Clock with the time package.
type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Publisher broadcasts lamp and sequence transitions to external
// observers (MQTT). Implementations must not block; errors are theirs
// to log.
type Publisher interface {
	PublishLampState(lamp string, on bool)
	PublishSequence(runID string, status string)
}

// Recorder exports per-run telemetry (InfluxDB). Implementations must
// not block; errors are theirs to log.
type Recorder interface {
	RecordSequence(runID string, channels int, longest string, elapsed time.Duration, aborted bool)
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// noopLogger discards all log output.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
