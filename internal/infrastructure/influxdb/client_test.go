package influxdb

import (
	"errors"
	"testing"
	"time"

	"github.com/lampctl/lampseq/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestRecordSequenceSkipsWhenDisconnected(t *testing.T) {
	// A zero Client is disconnected; the write must be a silent no-op
	// rather than a panic on the nil write API.
	c := &Client{}
	c.RecordSequence("run-1", 2, "halogen", time.Second, false)
}

func TestSequencePoint(t *testing.T) {
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	p := sequencePoint("run-1", 3, "xenon", 90*time.Second, false, at)

	if p.Name() != "sequence_runs" {
		t.Errorf("measurement = %q", p.Name())
	}

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	if tags["status"] != "completed" {
		t.Errorf("status tag = %q, want completed", tags["status"])
	}
	if tags["longest"] != "xenon" {
		t.Errorf("longest tag = %q, want xenon", tags["longest"])
	}

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	if fields["run_id"] != "run-1" {
		t.Errorf("run_id field = %v", fields["run_id"])
	}
	if fields["elapsed_seconds"] != 90.0 {
		t.Errorf("elapsed_seconds field = %v", fields["elapsed_seconds"])
	}
	if !p.Time().Equal(at) {
		t.Errorf("point time = %v, want %v", p.Time(), at)
	}
}

func TestSequencePointAborted(t *testing.T) {
	p := sequencePoint("run-2", 1, "neon", time.Second, true, time.Now())

	for _, tag := range p.TagList() {
		if tag.Key == "status" {
			if tag.Value != "aborted" {
				t.Errorf("status tag = %q, want aborted", tag.Value)
			}
			return
		}
	}
	t.Error("status tag not found")
}
