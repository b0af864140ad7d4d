// Package api provides the read-only HTTP monitor for the lamp
// sequencer.
//
// The TCP command port serves one client at a time by design, so the
// HTTP surface exists for everything that should not compete with a
// firing sequence: health probes, dashboards, and quick state checks.
// It never mutates outlets or the prepared schedule.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lampctl/lampseq/internal/infrastructure/config"
	"github.com/lampctl/lampseq/internal/infrastructure/logging"
	"github.com/lampctl/lampseq/internal/outlet"
	"github.com/lampctl/lampseq/internal/schedule"
	"github.com/lampctl/lampseq/internal/sequencer"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// StateReader reports the sequencer's current lifecycle state.
type StateReader interface {
	State() sequencer.State
}

// Deps holds the dependencies required by the monitor server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Outlets   *outlet.Map
	Driver    outlet.Driver
	Store     schedule.Store
	Sequencer StateReader
	Version   string
}

// Server is the HTTP monitor server.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg     config.APIConfig
	logger  *logging.Logger
	outlets *outlet.Map
	driver  outlet.Driver
	store   schedule.Store
	seq     StateReader
	version string
	server  *http.Server
}

// New creates a new monitor server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Outlets == nil {
		return nil, fmt.Errorf("outlet map is required")
	}
	if deps.Driver == nil {
		return nil, fmt.Errorf("driver is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("schedule store is required")
	}
	if deps.Sequencer == nil {
		return nil, fmt.Errorf("sequencer is required")
	}

	return &Server{
		cfg:     deps.Config,
		logger:  deps.Logger.With("component", "api"),
		outlets: deps.Outlets,
		driver:  deps.Driver,
		store:   deps.Store,
		seq:     deps.Sequencer,
		version: deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// The listener runs in a background goroutine; stop it with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("monitor server error", "error", err)
		}
	}()

	s.logger.Info("monitor server listening", "addr", s.server.Addr)
	return nil
}

// Close gracefully shuts down the monitor server.
//
// It waits up to gracefulShutdownTimeout for in-flight requests to
// complete before forcing the listener closed.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("monitor server shutdown: %w", err)
	}
	return nil
}
