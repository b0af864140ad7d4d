package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lampctl/lampseq/internal/outlet"
	"github.com/lampctl/lampseq/internal/schedule"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	// API v1 routes, all read-only
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/outlets", s.handleOutlets)
		r.Get("/state", s.handleState)
		r.Get("/schedule", s.handleSchedule)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"sequencer": s.seq.State(),
	})
}

// OutletStatus is one lamp's configuration and live state.
type OutletStatus struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	State string `json:"state"`
}

// handleOutlets returns the configured lamps with their live states, in
// configuration order.
func (s *Server) handleOutlets(w http.ResponseWriter, _ *http.Request) {
	outlets := s.outlets.Outlets()
	statuses := make([]OutletStatus, 0, len(outlets))
	for _, o := range outlets {
		on, err := s.driver.Get(o.Index)
		if err != nil {
			writeInternalError(w, "reading outlet state: "+err.Error())
			return
		}
		statuses = append(statuses, OutletStatus{
			Name:  o.Name,
			Index: o.Index,
			State: outlet.StateString(on),
		})
	}
	writeJSON(w, http.StatusOK, statuses)
}

// handleState returns the sequencer lifecycle state plus the aggregate
// outlet snapshot in the same format the TCP getState command uses.
func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	snap, err := outlet.Snapshot(s.outlets, s.driver)
	if err != nil {
		writeInternalError(w, "reading outlet state: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sequencer": s.seq.State(),
		"outlets":   snap,
	})
}

// ScheduleResponse is the prepared schedule, raw and parsed.
type ScheduleResponse struct {
	Raw     string           `json:"raw"`
	Entries []schedule.Entry `json:"entries"`
}

// handleSchedule returns the currently prepared schedule, or 404 if
// nothing has ever been prepared.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	raw, err := s.store.Read(r.Context())
	if err != nil {
		if errors.Is(err, schedule.ErrNotPrepared) {
			writeNotFound(w, "no schedule prepared")
			return
		}
		writeInternalError(w, "reading schedule: "+err.Error())
		return
	}

	// The line was validated at prepare time; a parse failure here means
	// the store was tampered with out of band.
	entries, err := schedule.Pairs(raw)
	if err != nil {
		writeInternalError(w, "stored schedule unparseable: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ScheduleResponse{
		Raw:     raw,
		Entries: entries,
	})
}
