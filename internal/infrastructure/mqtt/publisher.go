package mqtt

import (
	"encoding/json"
	"time"
)

// StatePublisher mirrors lamp and sequence transitions onto MQTT topics.
//
// It satisfies the sequencer's Publisher interface. Publish failures are
// logged and swallowed; a broker outage must never stall or fail a
// firing sequence.
type StatePublisher struct {
	client *Client
	logger Logger
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// NewStatePublisher creates a StatePublisher over an established client.
func NewStatePublisher(client *Client, logger Logger) *StatePublisher {
	return &StatePublisher{
		client: client,
		logger: logger,
	}
}

// lampStatePayload is the JSON body for lamp state topics.
type lampStatePayload struct {
	Lamp      string `json:"lamp"`
	State     string `json:"state"`
	Timestamp string `json:"timestamp"`
}

// sequencePayload is the JSON body for sequence lifecycle events.
type sequencePayload struct {
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// PublishLampState publishes one lamp transition, retained.
func (p *StatePublisher) PublishLampState(lamp string, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	payload, err := json.Marshal(lampStatePayload{
		Lamp:      lamp,
		State:     state,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	if err := p.client.PublishRetained(Topics{}.LampState(lamp), payload); err != nil {
		if p.logger != nil {
			p.logger.Warn("lamp state publish failed", "lamp", lamp, "error", err)
		}
	}
}

// PublishSequence publishes one sequence lifecycle event, not retained.
func (p *StatePublisher) PublishSequence(runID string, status string) {
	payload, err := json.Marshal(sequencePayload{
		RunID:     runID,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	if err := p.client.Publish(Topics{}.SequenceStatus(), payload, byte(p.client.cfg.QoS), false); err != nil {
		if p.logger != nil {
			p.logger.Warn("sequence status publish failed", "run_id", runID, "error", err)
		}
	}
}
