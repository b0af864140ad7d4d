package mqtt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/lampctl/lampseq/internal/infrastructure/config"
)

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"system status", Topics{}.SystemStatus(), "lampseq/system/status"},
		{"lamp state", Topics{}.LampState("halogen"), "lampseq/lamp/halogen/state"},
		{"sequence status", Topics{}.SequenceStatus(), "lampseq/sequence/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "broker.lab",
			Port:     1883,
			ClientID: "lampseq-test",
		},
		Auth: config.MQTTAuthConfig{
			Username: "seq",
			Password: "secret",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     30,
		},
	}

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 {
		t.Fatalf("Servers = %d, want 1", len(opts.Servers))
	}
	if got := opts.Servers[0].String(); got != "tcp://broker.lab:1883" {
		t.Errorf("broker URL = %q", got)
	}
	if opts.ClientID != "lampseq-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "seq" {
		t.Errorf("Username = %q", opts.Username)
	}
	if !opts.AutoReconnect {
		t.Error("AutoReconnect not enabled")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "broker.lab",
			Port:     8883,
			TLS:      true,
			ClientID: "lampseq-test",
		},
	}

	opts := buildClientOptions(cfg)

	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("scheme = %q, want ssl", got)
	}
	if opts.TLSConfig == nil {
		t.Fatal("TLSConfig not set")
	}
	if opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Errorf("MinVersion = %d, want %d", opts.TLSConfig.MinVersion, tlsMinVersion)
	}
}

func TestStatusPayloads(t *testing.T) {
	for name, payload := range map[string]string{
		"online":  buildOnlinePayload("lampseq-1"),
		"offline": buildOfflinePayload("lampseq-1"),
	} {
		t.Run(name, func(t *testing.T) {
			var decoded map[string]string
			if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
				t.Fatalf("payload not valid JSON: %v", err)
			}
			if decoded["status"] != name {
				t.Errorf("status = %q, want %q", decoded["status"], name)
			}
			if decoded["client_id"] != "lampseq-1" {
				t.Errorf("client_id = %q", decoded["client_id"])
			}
			if decoded["timestamp"] == "" {
				t.Error("timestamp missing")
			}
		})
	}

	if !strings.Contains(buildOfflinePayload("x"), "graceful_shutdown") {
		t.Error("offline payload missing graceful_shutdown reason")
	}
}

func TestPublishValidation(t *testing.T) {
	c := &Client{}

	if err := c.Publish("", []byte("x"), 0, false); err != ErrInvalidTopic {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("lampseq/lamp/halogen/state", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("bad QoS error = %v, want ErrInvalidQoS", err)
	}
}

func TestPayloadShapes(t *testing.T) {
	lamp, err := json.Marshal(lampStatePayload{Lamp: "neon", State: "on", Timestamp: "t"})
	if err != nil {
		t.Fatalf("marshal lamp payload: %v", err)
	}
	if string(lamp) != `{"lamp":"neon","state":"on","timestamp":"t"}` {
		t.Errorf("lamp payload = %s", lamp)
	}

	seq, err := json.Marshal(sequencePayload{RunID: "r1", Status: "started", Timestamp: "t"})
	if err != nil {
		t.Fatalf("marshal sequence payload: %v", err)
	}
	if string(seq) != `{"run_id":"r1","status":"started","timestamp":"t"}` {
		t.Errorf("sequence payload = %s", seq)
	}
}
