package api

import (
	"github.com/rmello/flagforge/internal/refresh"
	"github.com/rmello/flagforge/internal/services"
	"github.com/rmello/flagforge/internal/worker"
)

// Server holds the wired services behind the HTTP handlers.
type Server struct {
	Auth         services.AuthService
	Challenges   services.ChallengeService
	Contests     services.ContestService
	Submissions  services.SubmissionService
	Scoreboard   services.ScoreboardService
	Refresher    *refresh.Scheduler
	SnapshotPool *worker.Pool
}
