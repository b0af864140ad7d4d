package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/lampctl/lampseq/internal/infrastructure/config"
	"github.com/lampctl/lampseq/internal/infrastructure/logging"
	"github.com/lampctl/lampseq/internal/outlet"
	"github.com/lampctl/lampseq/internal/schedule"
	"github.com/lampctl/lampseq/internal/sequencer"
)

// Firer runs the prepared schedule against a client session.
type Firer interface {
	Fire(ctx context.Context, session sequencer.Session) (string, error)
}

// Server is the TCP command front end. It accepts connections one at a
// time and serves exactly one command per connection; the sequential
// accept loop is what makes a firing sequence exclusive on the wire.
type Server struct {
	addr        string
	idleTimeout time.Duration

	outlets *outlet.Map
	driver  outlet.Driver
	store   schedule.Store
	seq     Firer
	logger  *logging.Logger

	publisher sequencer.Publisher

	ln net.Listener
}

// New creates a Server wired to the given outlet map, hardware driver,
// schedule store and sequencer.
func New(cfg config.ServerConfig, outlets *outlet.Map, driver outlet.Driver, store schedule.Store, seq Firer, logger *logging.Logger) *Server {
	return &Server{
		addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		idleTimeout: time.Duration(cfg.IdleTimeout) * time.Second,
		outlets:     outlets,
		driver:      driver,
		store:       store,
		seq:         seq,
		logger:      logger.With("component", "server"),
	}
}

// SetPublisher installs an optional lamp state publisher used by the
// switch command. Must be called before Serve.
func (s *Server) SetPublisher(p sequencer.Publisher) {
	s.publisher = p
}

// Listen binds the TCP listener. Split from Serve so callers can learn
// the bound address (port 0 in tests) before serving.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.logger.Info("command server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listener address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve runs the accept loop until ctx is cancelled. Connections are
// handled strictly in sequence.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	// Unblock Accept on shutdown.
	go func() {
		<-ctx.Done()
		_ = s.ln.Close() //nolint:errcheck // Shutdown path
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}
		s.handleConn(ctx, conn)
	}
}

// handleConn serves one command on one connection, then closes it.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close() //nolint:errcheck // Read-mostly socket

	sess := newSession(conn, s.idleTimeout)

	line, err := sess.readCommand()
	if err != nil {
		s.logger.Debug("connection closed before command", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	cmd := ParseCommand(line)
	s.logger.Debug("command received", "remote", conn.RemoteAddr().String(), "command", cmd.Name)

	result, err := s.dispatch(ctx, cmd, sess)
	if err != nil {
		s.logger.Warn("command failed", "command", cmd.Name, "error", err)
		_ = sess.send(statusFailed + statusSep + err.Error()) //nolint:errcheck // Client may be gone
		return
	}
	if sendErr := sess.send(statusOK + statusSep + result); sendErr != nil {
		s.logger.Warn("reply write failed", "command", cmd.Name, "error", sendErr)
	}
}

// Reply framing.
const (
	statusOK     = "OK"
	statusFailed = "FAILED"
	statusSep    = ";;"
)

// dispatch routes one parsed command. The returned string is the result
// payload for an OK reply.
func (s *Server) dispatch(ctx context.Context, cmd Command, sess *session) (string, error) {
	switch cmd.Name {
	case "prepare":
		return s.handlePrepare(ctx, cmd.ArgsLine)
	case "getState":
		return outlet.Snapshot(s.outlets, s.driver)
	case "getOutletsConfig":
		return s.outlets.Describe(), nil
	case "switch":
		return s.handleSwitch(cmd.Args)
	case "go":
		defer sess.restoreIdleDeadline()
		return s.seq.Fire(ctx, sess)
	default:
		return "", fmt.Errorf("%w : %s", ErrUnknownCommand, cmd.Name)
	}
}

// handlePrepare validates the schedule line against the outlet map and
// persists it verbatim. Validation is all-or-nothing: a single unknown
// lamp or bad duration rejects the whole line and the previous schedule
// stays in place.
func (s *Server) handlePrepare(ctx context.Context, rawLine string) (string, error) {
	if _, err := schedule.Parse(s.outlets, rawLine); err != nil {
		return "", err
	}
	if err := s.store.Write(ctx, rawLine); err != nil {
		return "", fmt.Errorf("persist schedule: %w", err)
	}
	s.logger.Info("schedule prepared", "raw", rawLine)
	return "OK", nil
}

// handleSwitch drives a single outlet immediately, outside any firing
// sequence. The reply echoes the state actually applied by the driver.
func (s *Server) handleSwitch(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("%w: switch wants <lamp> <on|off>", ErrBadArguments)
	}

	lamp := args[0]
	var on bool
	switch args[1] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return "", fmt.Errorf("%w: switch state must be on or off, got %q", ErrBadArguments, args[1])
	}

	idx, err := s.outlets.Lookup(lamp)
	if err != nil {
		return "", err
	}

	applied, err := s.driver.Set(idx, on)
	if err != nil {
		return "", fmt.Errorf("%w: switching %s: %v", outlet.ErrHardware, lamp, err)
	}

	if s.publisher != nil {
		s.publisher.PublishLampState(lamp, applied)
	}
	return lamp + "=" + outlet.StateString(applied), nil
}
