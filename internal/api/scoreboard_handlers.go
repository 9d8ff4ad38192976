package api

import (
	"fmt"
	"net/http"
)

func (s *Server) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	// Serve the latest published snapshot when one exists; it is at most
	// one refresh interval stale, which the leaderboard view tolerates.
	if s.Refresher != nil {
		if snap, ok := s.Refresher.Latest(id); ok && r.URL.Query().Get("fresh") != "true" {
			respondJSON(w, http.StatusOK, snap)
			return
		}
	}

	standings, err := s.Scoreboard.Standings(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"contestId": id,
		"standings": standings,
	})
}

func (s *Server) handleRecentSolves(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	feed, err := s.Scoreboard.RecentSolves(r.Context(), id, queryInt(r, "limit", 20))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, feed)
}

func (s *Server) handleExportScoreboard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=scoreboard-%d.xlsx", id))
	if err := s.Scoreboard.ExportXLSX(r.Context(), id, w); err != nil {
		handleError(w, r, err)
	}
}
