package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// FlushHandler drains every pending write queue on demand. Callers that need
// durability beyond the flush interval hit this after their mutation.
func (s *Server) FlushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		if err := s.Store.Flush(r.Context()); err != nil {
			log.Error("Explicit flush failed", "error", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "Flushed!")
	}
}

func (s *Server) PendingWritesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.Store.PendingWrites())
	}
}

func (s *Server) CacheTimesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		times := s.Store.CacheTimes()
		out := make(map[string]string, len(times))
		for title, at := range times {
			out[title] = at.UTC().Format(time.RFC3339)
		}
		writeJSON(w, out)
	}
}

func (s *Server) GateStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := s.Gate.Status(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, status)
	}
}

func (s *Server) GateToggleHandler(enable bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		command := r.URL.Query().Get("command")
		if command == "" {
			http.Error(w, "missing command parameter", http.StatusBadRequest)
			return
		}
		var err error
		if enable {
			err = s.Gate.Enable(r.Context(), command)
		} else {
			err = s.Gate.Disable(r.Context(), command)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, "Command %s enabled=%t", command, enable)
	}
}

// RosterHandler dumps one team's denormalized roster row, or all of them.
func (s *Server) RosterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := r.URL.Query().Get("team")
		if team != "" {
			row, err := s.Tables.VwRoster.ByTeamName(r.Context(), team)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			writeJSON(w, row.ToMap())
			return
		}
		rows, err := s.Tables.VwRoster.All(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		out := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.ToMap())
		}
		writeJSON(w, out)
	}
}

// ExpireInvitesHandler sweeps pending team invites past their expiry.
func (s *Server) ExpireInvitesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		count, err := s.Service.ExpireTeamInvites(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]int{"expired": count})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
