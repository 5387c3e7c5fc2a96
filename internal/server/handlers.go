package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/ssq/internal/models"
	"github.com/woozymasta/ssq/internal/probe"
	"github.com/woozymasta/ssq/internal/vars"
	"github.com/woozymasta/ssq/pkg/ssq"
)

// handleInfo probes a server and returns the snapshot.
// Query params: ?target=1.2.3.4:27015
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	target, ok := s.target(w, r)
	if !ok {
		return
	}

	snap := s.prober.Probe(target)

	if s.storage != nil {
		if err := s.storage.InsertSnapshot(snap); err != nil {
			log.Error().Err(err).Str("target", snap.Target).Msg("Failed to save snapshot")
		}
	}

	status := http.StatusOK
	if !snap.Online {
		status = http.StatusGatewayTimeout
	}
	respondJSON(w, status, snap)
}

// handlePlayers returns the live player list of a server.
// Query params: ?target=1.2.3.4:27015
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	target, ok := s.target(w, r)
	if !ok {
		return
	}

	players, err := s.prober.Client().QueryPlayers(target.Host, target.Port)
	if err != nil {
		log.Debug().Err(err).Str("host", target.Host).Int("port", target.Port).Msg("Player query failed")
		respondJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, players)
}

// handleHistory returns stored snapshots of a target, newest first.
// Query params: ?target=1.2.3.4:27015&limit=50
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		http.Error(w, "History disabled", http.StatusNotFound)
		return
	}

	target, ok := s.target(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := s.storage.GetSnapshots(net.JoinHostPort(target.Host, strconv.Itoa(target.Port)), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch snapshots")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []models.Record{}
	}

	respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, vars.Info())
}

// target reads the target query parameter, answering 400 when it is missing or invalid.
func (s *Server) target(w http.ResponseWriter, r *http.Request) (models.Target, bool) {
	raw := r.URL.Query().Get("target")
	if raw == "" {
		http.Error(w, "Missing target", http.StatusBadRequest)
		return models.Target{}, false
	}

	target, err := probe.ParseTarget(raw, s.defaultPort)
	if err != nil {
		http.Error(w, "Invalid target", http.StatusBadRequest)
		return models.Target{}, false
	}

	return target, true
}

// errorStatus maps query error kinds onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ssq.ErrResolve):
		return http.StatusBadRequest
	case errors.Is(err, ssq.ErrUnreachable):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
