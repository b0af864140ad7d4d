package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/lampctl/lampseq/internal/infrastructure/config"
	"github.com/lampctl/lampseq/internal/infrastructure/logging"
	"github.com/lampctl/lampseq/internal/outlet"
	"github.com/lampctl/lampseq/internal/schedule"
	"github.com/lampctl/lampseq/internal/sequencer"
)

// testHarness bundles a running server with its wiring so tests can
// reach both the wire and the internals.
type testHarness struct {
	addr   string
	driver *outlet.SimDriver
	store  *schedule.MemoryStore
	seq    *sequencer.Sequencer
	cancel context.CancelFunc
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	outlets, err := outlet.NewMap([]outlet.Outlet{
		{Name: "halogen", Index: 1},
		{Name: "neon", Index: 2},
	})
	if err != nil {
		t.Fatalf("NewMap() error = %v", err)
	}

	driver := outlet.NewSimDriver()
	store := schedule.NewMemoryStore()
	seq := sequencer.New(outlets, driver, store)
	// Tight abort timing keeps the abort tests fast.
	seq.SetTiming(50*time.Millisecond, 50*time.Millisecond)

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 0, IdleTimeout: 2}, outlets, driver, store, seq, logger)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = srv.Serve(ctx)
	}()

	h := &testHarness{
		addr:   srv.Addr().String(),
		driver: driver,
		store:  store,
		seq:    seq,
		cancel: cancel,
	}
	t.Cleanup(cancel)
	return h
}

// roundTrip sends one command and returns every sentinel-framed message
// received before the server closed the connection.
func (h *testHarness) roundTrip(t *testing.T, command string) []string {
	t.Helper()

	conn, err := net.Dial("tcp", h.addr)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "%s\r\n", command); err != nil {
		t.Fatalf("write command: %v", err)
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	return splitMessages(t, string(data))
}

func splitMessages(t *testing.T, data string) []string {
	t.Helper()

	if data == "" {
		return nil
	}
	if !strings.HasSuffix(data, Sentinel+"\n") {
		t.Fatalf("stream not sentinel-terminated: %q", data)
	}
	parts := strings.Split(data, Sentinel+"\n")
	return parts[:len(parts)-1]
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantName string
		wantArgs []string
		wantLine string
	}{
		{"bare command", "getState\r\n", "getState", []string{}, ""},
		{"with args", "switch halogen on\r\n", "switch", []string{"halogen", "on"}, "halogen on"},
		{"prepare keeps remainder", "prepare halogen 1 neon 0.5\n", "prepare", []string{"halogen", "1", "neon", "0.5"}, "halogen 1 neon 0.5"},
		{"empty line", "\r\n", "", nil, ""},
		{"surrounding whitespace", "  go  \r\n", "go", []string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseCommand(tt.line)
			if cmd.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", cmd.Name, tt.wantName)
			}
			if len(cmd.Args) != len(tt.wantArgs) {
				t.Fatalf("Args = %v, want %v", cmd.Args, tt.wantArgs)
			}
			for i := range cmd.Args {
				if cmd.Args[i] != tt.wantArgs[i] {
					t.Errorf("Args[%d] = %q, want %q", i, cmd.Args[i], tt.wantArgs[i])
				}
			}
			if cmd.ArgsLine != tt.wantLine {
				t.Errorf("ArgsLine = %q, want %q", cmd.ArgsLine, tt.wantLine)
			}
		})
	}
}

func TestPrepareAndIntrospection(t *testing.T) {
	h := newTestHarness(t)

	got := h.roundTrip(t, "prepare halogen 1 neon 0.5")
	if len(got) != 1 || got[0] != "OK;;OK" {
		t.Fatalf("prepare reply = %v, want [OK;;OK]", got)
	}

	raw, err := h.store.Read(context.Background())
	if err != nil {
		t.Fatalf("store.Read() error = %v", err)
	}
	if raw != "halogen 1 neon 0.5" {
		t.Errorf("stored schedule = %q, want verbatim line", raw)
	}

	got = h.roundTrip(t, "getState")
	if len(got) != 1 || got[0] != "OK;;halogen=off,neon=off" {
		t.Errorf("getState reply = %v", got)
	}

	got = h.roundTrip(t, "getOutletsConfig")
	if len(got) != 1 || got[0] != "OK;;outlet01=halogen,outlet02=neon" {
		t.Errorf("getOutletsConfig reply = %v", got)
	}
}

func TestPrepareRejectsInvalidLine(t *testing.T) {
	h := newTestHarness(t)

	if got := h.roundTrip(t, "prepare halogen 1 xenon 2"); len(got) != 1 ||
		!strings.HasPrefix(got[0], "FAILED;;") || !strings.Contains(got[0], "unknown lamp : xenon") {
		t.Errorf("unknown lamp reply = %v", got)
	}

	if got := h.roundTrip(t, "prepare halogen abc"); len(got) != 1 ||
		!strings.HasPrefix(got[0], "FAILED;;") {
		t.Errorf("bad duration reply = %v", got)
	}

	// Failed prepares must not disturb an existing schedule.
	h.roundTrip(t, "prepare halogen 1")
	h.roundTrip(t, "prepare halogen 1 xenon 2")
	raw, err := h.store.Read(context.Background())
	if err != nil || raw != "halogen 1" {
		t.Errorf("stored schedule after failed prepare = %q, %v", raw, err)
	}
}

func TestSwitchCommand(t *testing.T) {
	h := newTestHarness(t)

	if got := h.roundTrip(t, "switch halogen on"); len(got) != 1 || got[0] != "OK;;halogen=on" {
		t.Fatalf("switch on reply = %v", got)
	}
	if on, _ := h.driver.Get(1); !on {
		t.Error("outlet 1 not on after switch")
	}

	if got := h.roundTrip(t, "getState"); got[0] != "OK;;halogen=on,neon=off" {
		t.Errorf("getState after switch = %v", got)
	}

	if got := h.roundTrip(t, "switch halogen off"); got[0] != "OK;;halogen=off" {
		t.Errorf("switch off reply = %v", got)
	}

	if got := h.roundTrip(t, "switch xenon on"); !strings.Contains(got[0], "unknown lamp : xenon") {
		t.Errorf("unknown lamp reply = %v", got)
	}
	if got := h.roundTrip(t, "switch halogen sideways"); !strings.HasPrefix(got[0], "FAILED;;") {
		t.Errorf("bad state reply = %v", got)
	}
	if got := h.roundTrip(t, "switch halogen"); !strings.HasPrefix(got[0], "FAILED;;") {
		t.Errorf("missing arg reply = %v", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	h := newTestHarness(t)

	got := h.roundTrip(t, "reboot")
	if len(got) != 1 || got[0] != "FAILED;;unknown command : reboot" {
		t.Errorf("reply = %v", got)
	}
}

func TestGoWithoutPrepare(t *testing.T) {
	h := newTestHarness(t)

	got := h.roundTrip(t, "go")
	if len(got) != 1 || !strings.HasPrefix(got[0], "FAILED;;") ||
		!strings.Contains(got[0], "no schedule prepared") {
		t.Errorf("reply = %v", got)
	}
}

func TestGoStreamsSequence(t *testing.T) {
	h := newTestHarness(t)

	h.roundTrip(t, "prepare halogen 0.06 neon 0.03")
	got := h.roundTrip(t, "go")

	want := []string{
		"halogen 1 0.06",
		"neon 2 0.03",
		"2 channels active, longest halogen 0.06 seconds",
		"halogen=off,neon=off",
		"halogen=on",
		"neon=on",
		"neon=off",
		"halogen=off",
		"OK;;halogen=off,neon=off",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d messages %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	for _, idx := range []int{1, 2} {
		if on, _ := h.driver.Get(idx); on {
			t.Errorf("outlet %d still on after sequence", idx)
		}
	}
}

func TestGoAborts(t *testing.T) {
	h := newTestHarness(t)

	h.roundTrip(t, "prepare halogen 30")

	conn, err := net.Dial("tcp", h.addr)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "go\r\n"); err != nil {
		t.Fatalf("write go: %v", err)
	}
	// Give the sequence time to arm before requesting the abort.
	time.Sleep(100 * time.Millisecond)
	if _, err := fmt.Fprintf(conn, "abort\r\n"); err != nil {
		t.Fatalf("write abort: %v", err)
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	got := splitMessages(t, string(data))

	var sawAbort bool
	for _, msg := range got {
		if msg == "abort requested, switching all channels off" {
			sawAbort = true
		}
	}
	if !sawAbort {
		t.Fatalf("no abort event in stream: %v", got)
	}
	if got[len(got)-1] != "OK;;halogen=off,neon=off" {
		t.Errorf("final reply = %q", got[len(got)-1])
	}
	if on, _ := h.driver.Get(1); on {
		t.Error("outlet 1 still on after abort")
	}
}
