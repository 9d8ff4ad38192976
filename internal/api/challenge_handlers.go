package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rmello/flagforge/internal/errors"
	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/refresh"
	"github.com/rmello/flagforge/internal/services"
)

type createChallengeRequest struct {
	ContestID  *int64 `json:"contestId"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Flag       string `json:"flag"`
	Points     int    `json:"points"`
	Difficulty int    `json:"difficulty"`
}

type submitRequest struct {
	Flag string `json:"flag"`
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	filter := models.ChallengeFilter{
		Category: r.URL.Query().Get("category"),
		Wargame:  r.URL.Query().Get("wargame") == "true",
		Limit:    queryInt(r, "limit", 0),
		Offset:   queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("contestId"); raw != "" {
		contestID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || contestID <= 0 {
			handleError(w, r, errors.NewBadRequestError("invalid contestId"))
			return
		}
		filter.ContestID = &contestID
	}

	views, err := s.Challenges.ListForUser(r.Context(), user, filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	ch, err := s.Challenges.GetForUser(r.Context(), user, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	ch.Flag = ""
	respondJSON(w, http.StatusOK, ch)
}

func (s *Server) handleChallengeBloods(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	bloods, err := s.Challenges.Bloods(r.Context(), user, id, 3)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, bloods)
}

func (s *Server) handleChallengeStats(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.Challenges.Stats(r.Context(), user, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req createChallengeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	ch, err := s.Challenges.Create(r.Context(), models.Challenge{
		ContestID:  req.ContestID,
		Title:      req.Title,
		Category:   req.Category,
		Flag:       req.Flag,
		Points:     req.Points,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	ch.Flag = ""
	respondJSON(w, http.StatusCreated, ch)
}

type updatePointsRequest struct {
	Points int `json:"points"`
}

// handleUpdatePoints rescores a challenge, e.g. after difficulty votes.
// Existing solve records keep the points they were credited with.
func (s *Server) handleUpdatePoints(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req updatePointsRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.Challenges.UpdatePoints(r.Context(), id, req.Points); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"updated": true})
}

// handleSubmit runs the submit pipeline and maps the typed outcome onto the
// wire contract: accepted solves answer success with the points awarded,
// everything else answers success=false with a specific reason.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	challengeID, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.Submissions.Submit(r.Context(), user, challengeID, req.Flag)
	if err != nil {
		handleError(w, r, err)
		return
	}

	switch result.Status {
	case services.StatusAccepted:
		s.scheduleSnapshot(r.Context(), challengeID)

		respondJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"pointsAwarded": result.PointsAwarded,
			"firstBlood":    result.FirstBlood,
		})
	case services.StatusDenied:
		respondJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"reason":  string(result.Reason),
		})
	default:
		respondJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"reason":  string(result.Status),
		})
	}
	log.Debug("submission handled: status=%s", result.Status)
}

// scheduleSnapshot refreshes the contest leaderboard off the request path.
func (s *Server) scheduleSnapshot(ctx context.Context, challengeID int64) {
	if s.Refresher == nil || s.SnapshotPool == nil {
		return
	}
	ch, err := s.Challenges.Get(ctx, challengeID)
	if err != nil || ch.ContestID == nil {
		return
	}
	s.SnapshotPool.Submit(refresh.SnapshotJob{Scheduler: s.Refresher, ContestID: *ch.ContestID})
}
