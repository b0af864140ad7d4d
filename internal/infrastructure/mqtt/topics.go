package mqtt

// Topic structure for the lamp sequencer.
//
// All topics live under the "lampseq" root:
//
//	lampseq/system/status        Service online/offline (retained, LWT)
//	lampseq/lamp/{lamp}/state    Per-lamp on/off transitions (retained)
//	lampseq/sequence/status      Firing sequence lifecycle events
//
// Lamp state topics are retained so a late subscriber immediately sees
// the current outlet states without querying the TCP server.
const (
	// topicRoot is the prefix for all sequencer topics.
	topicRoot = "lampseq"
)

// Topics provides type-safe topic construction.
//
// Use the zero value:
//
//	topic := mqtt.Topics{}.LampState("halogen")
//	// Returns: "lampseq/lamp/halogen/state"
type Topics struct{}

// SystemStatus returns the service status topic.
//
// Payload: {"status":"online|offline","client_id":"...","timestamp":"..."}
func (Topics) SystemStatus() string {
	return topicRoot + "/system/status"
}

// LampState returns the state topic for a single lamp.
//
// Payload: {"lamp":"halogen","state":"on","timestamp":"..."}
func (Topics) LampState(lamp string) string {
	return topicRoot + "/lamp/" + lamp + "/state"
}

// SequenceStatus returns the firing sequence lifecycle topic.
//
// Payload: {"run_id":"...","status":"started|completed|aborted|failed","timestamp":"..."}
func (Topics) SequenceStatus() string {
	return topicRoot + "/sequence/status"
}
