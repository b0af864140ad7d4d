package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Sentinel terminates every message sent to the client. Clients frame
// the stream by splitting on it; it is followed by a single newline.
const Sentinel = "tcpover"

// writeTimeout bounds each outbound write so a stalled client cannot
// wedge the accept loop.
const writeTimeout = 5 * time.Second

// session wraps one accepted connection. It frames outbound messages
// with the sentinel and performs the bounded abort reads the sequencer
// requests mid-drain.
type session struct {
	conn        net.Conn
	reader      *bufio.Reader
	idleTimeout time.Duration
}

func newSession(conn net.Conn, idleTimeout time.Duration) *session {
	return &session{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		idleTimeout: idleTimeout,
	}
}

// readCommand reads one command line, bounded by the idle timeout.
func (s *session) readCommand() (string, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
		return "", fmt.Errorf("set read deadline: %w", err)
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return line, nil
}

// Emit sends one event message to the client, sentinel-framed.
func (s *session) Emit(msg string) error {
	return s.send(msg)
}

// PollAbort performs one read bounded by timeout and reports whether
// the client asked to abort. Any received text containing the literal
// substring "abort" counts; a deadline expiry means no request and is
// not an error.
func (s *session) PollAbort(timeout time.Duration) (bool, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false, fmt.Errorf("set read deadline: %w", err)
	}

	line, err := s.reader.ReadString('\n')
	if strings.Contains(line, "abort") {
		return true, nil
	}
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return false, nil
		}
		return false, err
	}
	return false, nil
}

// restoreIdleDeadline resets the read deadline to the idle timeout
// after a streaming command returns control to the connection loop.
func (s *session) restoreIdleDeadline() {
	_ = s.conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
}

// send writes msg followed by the sentinel and a newline.
func (s *session) send(msg string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := fmt.Fprintf(s.conn, "%s%s\n", msg, Sentinel); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}
