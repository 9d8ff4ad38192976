package api

import (
	"net/http"
	"time"
)

type createContestRequest struct {
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Password string    `json:"password"`
}

type authorizeRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleListContests(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	views, err := s.Contests.List(r.Context(), user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetContest(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.Contests.View(r.Context(), id, user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCreateContest(w http.ResponseWriter, r *http.Request) {
	var req createContestRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	contest, err := s.Contests.Create(r.Context(), req.Title, req.StartsAt, req.EndsAt, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, contest)
}

func (s *Server) handleJoinContest(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Contests.Join(r.Context(), id, user.ID); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"joined": true})
}

// handleAuthorizeContest checks the contest password. A success grants
// sticky access that outlives this session.
func (s *Server) handleAuthorizeContest(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req authorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Contests.Authorize(r.Context(), id, user.ID, req.Password); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"authorized": true})
}
