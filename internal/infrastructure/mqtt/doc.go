// Package mqtt provides the optional outbound event mirror for the lamp
// sequencer.
//
// When enabled, lamp transitions and firing sequence lifecycle events
// are published to a broker so dashboards and loggers can observe runs
// without holding the (single-client) TCP command port. The surface is
// publish-only: the sequencer takes no commands from MQTT, and a broker
// outage never affects a firing sequence.
//
// Features:
//   - Automatic reconnection with exponential backoff
//   - Last Will and Testament for crash detection
//   - Retained lamp state topics for late subscribers
//   - TLS support
//
// Topics live under the lampseq/ root; see topics.go.
package mqtt
