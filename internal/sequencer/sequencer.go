package sequencer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lampctl/lampseq/internal/outlet"
	"github.com/lampctl/lampseq/internal/schedule"
)

// offCompensation is subtracted from every requested duration to
// compensate for relay switch-off latency. Not yet calibrated on any
// supported PDU, so it stays at zero.
const offCompensation = 0.0

// Default drain-loop timing: the loop only listens for an abort when
// the next deadline is comfortably far away, and the listen itself is
// bounded.
const (
	defaultAbortPollWindow  = 5 * time.Second
	defaultAbortReadTimeout = 3 * time.Second
)

// Sequencer executes prepared firing schedules against the relay bank.
//
// A firing sequence turns every scheduled outlet on simultaneously (one
// shared start timestamp), waits out each channel's duration with an
// earliest-deadline-first wake policy, switches channels off as their
// time elapses, and streams every transition to the client session. The
// whole outlet map is forced off before and after every run.
//
// Thread Safety: Fire is safe for concurrent use; overlapping calls
// beyond the first fail with ErrBusy. At most one sequence exists
// system-wide.
type Sequencer struct {
	outlets *outlet.Map
	driver  outlet.Driver
	store   schedule.Store

	clock     Clock
	logger    Logger
	publisher Publisher
	recorder  Recorder

	abortPollWindow  time.Duration
	abortReadTimeout time.Duration

	// fireMu serializes firing sequences; TryLock gives ErrBusy
	// instead of queueing.
	fireMu sync.Mutex

	stateMu sync.RWMutex
	state   State
}

// New creates a Sequencer for the given outlet map, relay driver, and
// schedule store.
func New(outlets *outlet.Map, driver outlet.Driver, store schedule.Store) *Sequencer {
	return &Sequencer{
		outlets:          outlets,
		driver:           driver,
		store:            store,
		clock:            realClock{},
		logger:           noopLogger{},
		abortPollWindow:  defaultAbortPollWindow,
		abortReadTimeout: defaultAbortReadTimeout,
		state:            StateIdle,
	}
}

// SetLogger attaches a logger. Safe to leave unset.
func (s *Sequencer) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetClock replaces the wall clock, for tests.
func (s *Sequencer) SetClock(clock Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// SetPublisher attaches an optional state publisher (MQTT).
func (s *Sequencer) SetPublisher(p Publisher) {
	s.publisher = p
}

// SetRecorder attaches an optional telemetry recorder (InfluxDB).
func (s *Sequencer) SetRecorder(r Recorder) {
	s.recorder = r
}

// SetTiming overrides the drain-loop abort detection cadence.
func (s *Sequencer) SetTiming(pollWindow, readTimeout time.Duration) {
	if pollWindow > 0 {
		s.abortPollWindow = pollWindow
	}
	if readTimeout > 0 {
		s.abortReadTimeout = readTimeout
	}
}

// State returns the current lifecycle state.
func (s *Sequencer) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Sequencer) setState(state State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// Fire executes the prepared schedule, streaming events to session.
//
// The returned string is the final aggregate outlet state snapshot
// ("lamp=off,...") for the protocol handler to wrap as the command
// result. The schedule is read, not consumed: a second go refires the
// same schedule.
//
// Returns:
//   - string: Final state snapshot
//   - error: ErrBusy, schedule.ErrNotPrepared, schedule.ErrValidation,
//     or outlet.ErrHardware (all wrapped where context is added)
func (s *Sequencer) Fire(ctx context.Context, session Session) (string, error) {
	if !s.fireMu.TryLock() {
		return "", ErrBusy
	}
	defer s.fireMu.Unlock()

	s.setState(StateArmed)
	defer s.setState(StateIdle)

	// Read before touching hardware: a go with no prior prepare must
	// fail without mutating any outlet.
	raw, err := s.store.Read(ctx)
	if err != nil {
		return "", err
	}

	// Safety reset covers the whole map, not only scheduled outlets.
	if err := outlet.AllOff(s.outlets, s.driver); err != nil {
		return "", err
	}

	entries, err := schedule.Pairs(raw)
	if err != nil {
		return "", err
	}

	runID := uuid.NewString()
	s.logger.Info("arming firing sequence", "run_id", runID, "entries", len(entries))

	// Emit failures mean the client is gone; the run then aborts at the
	// next sweep rather than leaving lamps burning with nobody watching.
	clientGone := false
	emit := func(msg string) {
		if emitErr := session.Emit(msg); emitErr != nil {
			clientGone = true
			s.logger.Warn("client write failed mid-sequence", "run_id", runID, "error", emitErr)
		}
	}

	// Build the firing plan. Unknown lamps are a soft error here: they
	// are reported and dropped, the rest of the plan still fires.
	channels := make([]Channel, 0, len(entries))
	for _, e := range entries {
		idx, lookErr := s.outlets.Lookup(e.Lamp)
		if lookErr != nil {
			emit(lookErr.Error())
			s.logger.Warn("dropping unknown lamp from firing plan", "run_id", runID, "lamp", e.Lamp)
			continue
		}
		channels = append(channels, Channel{
			Lamp:    e.Lamp,
			Outlet:  idx,
			Seconds: e.Seconds - offCompensation,
		})
	}

	// Longest channel is the loop's completion sentinel; ties go to the
	// first-seen channel.
	longest := 0
	for i, ch := range channels {
		emit(fmt.Sprintf("%s %d %.2f", ch.Lamp, ch.Outlet, ch.Seconds))
		if ch.Seconds > channels[longest].Seconds {
			longest = i
		}
	}
	if len(channels) > 0 {
		emit(fmt.Sprintf("%d channels active, longest %s %.2f seconds",
			len(channels), channels[longest].Lamp, channels[longest].Seconds))
	} else {
		emit("0 channels active")
	}

	snap, err := outlet.Snapshot(s.outlets, s.driver)
	if err != nil {
		return "", err
	}
	emit(snap)

	// Fire: one shared start timestamp, so all channels start
	// simultaneously and stop times are start + duration.
	s.setState(StateFiring)
	s.publishSequence(runID, "started")
	start := s.clock.Now()

	for i := range channels {
		ch := &channels[i]
		ch.StopAt = start.Add(secondsToDuration(ch.Seconds))
		if _, setErr := s.driver.Set(ch.Outlet, true); setErr != nil {
			// Partial switch-on: force everything back off before failing.
			_ = outlet.AllOff(s.outlets, s.driver) //nolint:errcheck // Best effort on error path
			s.publishSequence(runID, "failed")
			return "", fmt.Errorf("%w: switching %s on: %v", outlet.ErrHardware, ch.Lamp, setErr)
		}
		ch.On = true
		emit(ch.Lamp + "=on")
		s.publishLamp(ch.Lamp, true)
	}

	// Drain: earliest-deadline-first. The loop terminates when the
	// longest channel goes off; under normal operation that channel is
	// by construction the last to finish, and under abort every channel
	// (the longest included) is forced off in the same sweep.
	s.setState(StateDraining)
	aborted := false
	var hwErr error

	for len(channels) > 0 {
		if ctx.Err() != nil || clientGone {
			aborted = true
		}

		now := s.clock.Now()
		for i := range channels {
			ch := &channels[i]
			if !ch.On || (!aborted && now.Before(ch.StopAt)) {
				continue
			}
			if _, setErr := s.driver.Set(ch.Outlet, false); setErr != nil {
				if hwErr == nil {
					hwErr = fmt.Errorf("%w: switching %s off: %v", outlet.ErrHardware, ch.Lamp, setErr)
				}
				s.logger.Error("failed to switch lamp off", "run_id", runID, "lamp", ch.Lamp, "error", setErr)
				ch.On = false
				continue
			}
			ch.On = false
			emit(ch.Lamp + "=off")
			s.publishLamp(ch.Lamp, false)
		}

		if !channels[longest].On {
			break
		}

		wait := nextDeadline(channels).Sub(s.clock.Now())
		switch {
		case wait > s.abortPollWindow:
			// Far from the next deadline: listen briefly for an abort.
			requested, pollErr := session.PollAbort(s.abortReadTimeout)
			if pollErr != nil {
				clientGone = true
				s.logger.Warn("abort poll failed", "run_id", runID, "error", pollErr)
			}
			if requested {
				aborted = true
				emit("abort requested, switching all channels off")
				s.logger.Info("firing sequence aborted by client", "run_id", runID)
			}
		case wait > 0:
			s.clock.Sleep(wait)
		}
	}

	// Belt-and-braces: everything off again, scheduled or not.
	if err := outlet.AllOff(s.outlets, s.driver); err != nil {
		return "", err
	}

	final, err := outlet.Snapshot(s.outlets, s.driver)
	if err != nil {
		return "", err
	}

	elapsed := s.clock.Now().Sub(start)
	status := "completed"
	if aborted {
		status = "aborted"
	}

	longestName := ""
	if len(channels) > 0 {
		longestName = channels[longest].Lamp
	}
	s.recordSequence(runID, len(channels), longestName, elapsed, aborted)
	s.publishSequence(runID, status)
	s.logger.Info("firing sequence finished",
		"run_id", runID,
		"status", status,
		"channels", len(channels),
		"elapsed", elapsed,
	)

	if hwErr != nil {
		return "", hwErr
	}
	return final, nil
}

// publishLamp forwards a lamp transition to the optional publisher.
func (s *Sequencer) publishLamp(lamp string, on bool) {
	if s.publisher != nil {
		s.publisher.PublishLampState(lamp, on)
	}
}

// publishSequence forwards a sequence lifecycle event to the optional publisher.
func (s *Sequencer) publishSequence(runID, status string) {
	if s.publisher != nil {
		s.publisher.PublishSequence(runID, status)
	}
}

// recordSequence forwards run telemetry to the optional recorder.
func (s *Sequencer) recordSequence(runID string, channels int, longest string, elapsed time.Duration, aborted bool) {
	if s.recorder != nil {
		s.recorder.RecordSequence(runID, channels, longest, elapsed, aborted)
	}
}

// nextDeadline returns the earliest stop time among channels still on.
// Callers only invoke it while at least one channel is on.
func nextDeadline(channels []Channel) time.Time {
	var next time.Time
	for _, ch := range channels {
		if ch.On && (next.IsZero() || ch.StopAt.Before(next)) {
			next = ch.StopAt
		}
	}
	return next
}

// secondsToDuration converts a fractional-second duration to time.Duration.
func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
