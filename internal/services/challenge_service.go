package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/rmello/flagforge/internal/errors"
	"github.com/rmello/flagforge/internal/gate"
	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/ranking"
	"github.com/rmello/flagforge/internal/repository"
)

// BloodEntry names one of the earliest solvers of a challenge.
type BloodEntry struct {
	UserID   int64     `json:"userId"`
	Username string    `json:"username"`
	SolvedAt time.Time `json:"solvedAt"`
}

// ChallengeStats describes the solve history of one challenge: how many
// solves it has, every solver in solve order, and the first bloods.
type ChallengeStats struct {
	ChallengeID int64        `json:"challengeId"`
	SolveCount  int          `json:"solveCount"`
	Solvers     []BloodEntry `json:"solvers"`
	Bloods      []BloodEntry `json:"bloods"`
}

// ChallengeView is a challenge as shown to a given user.
type ChallengeView struct {
	models.Challenge
	Solved bool `json:"solved"`
}

// ChallengeService handles challenge management and gated listings
type ChallengeService interface {
	Create(ctx context.Context, ch models.Challenge) (*models.Challenge, error)
	Get(ctx context.Context, id int64) (*models.Challenge, error)
	GetForUser(ctx context.Context, user *models.User, id int64) (*models.Challenge, error)
	ListForUser(ctx context.Context, user *models.User, filter models.ChallengeFilter) ([]ChallengeView, error)
	Bloods(ctx context.Context, user *models.User, challengeID int64, n int) ([]BloodEntry, error)
	Stats(ctx context.Context, user *models.User, challengeID int64) (*ChallengeStats, error)
	UpdatePoints(ctx context.Context, id int64, points int) error
}

type challengeService struct {
	challenges repository.ChallengeRepository
	solves     repository.SolveRepository
	users      repository.UserRepository
	contests   ContestService
}

// NewChallengeService creates a new ChallengeService
func NewChallengeService(challenges repository.ChallengeRepository, solves repository.SolveRepository, users repository.UserRepository, contests ContestService) ChallengeService {
	return &challengeService{challenges: challenges, solves: solves, users: users, contests: contests}
}

func (s *challengeService) Create(ctx context.Context, ch models.Challenge) (*models.Challenge, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating challenge: title=%s", ch.Title)

	if ch.Title == "" {
		return nil, errors.NewValidationError("title", "cannot be empty")
	}
	if ch.Flag == "" {
		return nil, errors.NewValidationError("flag", "cannot be empty")
	}
	if ch.Points <= 0 {
		return nil, errors.NewValidationError("points", "must be positive")
	}
	if ch.Difficulty <= 0 {
		ch.Difficulty = 1
	}
	if ch.ContestID != nil {
		if _, err := s.contests.Get(ctx, *ch.ContestID); err != nil {
			return nil, err
		}
	}

	id, err := s.challenges.Insert(ctx, ch)
	if err != nil {
		log.Error("failed to insert challenge: %v", err)
		return nil, errors.NewInternalError(err)
	}
	created, err := s.challenges.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	log.Info("challenge created: id=%d, title=%s", created.ID, created.Title)
	return created, nil
}

func (s *challengeService) Get(ctx context.Context, id int64) (*models.Challenge, error) {
	ch, err := s.challenges.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("challenge", id)
		}
		return nil, errors.NewInternalError(err)
	}
	return ch, nil
}

// ListForUser lists challenges the user is allowed to see. Contest listings
// go through the view gate; a denial surfaces as a forbidden error with the
// gate's reason so the caller can tell which precondition failed. Without a
// contest filter only wargame challenges are listed, so contest challenges
// are reachable solely through their contest once its gate passes.
func (s *challengeService) ListForUser(ctx context.Context, user *models.User, filter models.ChallengeFilter) ([]ChallengeView, error) {
	log := logger.FromContext(ctx)

	var solvedIDs map[int64]bool
	if filter.ContestID == nil {
		filter.Wargame = true
	} else {
		if err := s.ensureViewable(ctx, user, *filter.ContestID); err != nil {
			return nil, err
		}
		if user != nil {
			solvedIDs = make(map[int64]bool)
			ids, err := s.solvedInContest(ctx, *filter.ContestID, user.ID)
			if err != nil {
				log.Warn("failed to load solved challenges: %v", err)
			}
			for _, id := range ids {
				solvedIDs[id] = true
			}
		}
	}

	challenges, err := s.challenges.List(ctx, filter)
	if err != nil {
		log.Error("failed to list challenges: %v", err)
		return nil, errors.NewInternalError(err)
	}

	views := make([]ChallengeView, 0, len(challenges))
	for _, ch := range challenges {
		ch.Flag = ""
		views = append(views, ChallengeView{Challenge: ch, Solved: solvedIDs[ch.ID]})
	}
	return views, nil
}

// GetForUser fetches a challenge through the view gate. A contest-bound
// challenge the user may not see answers forbidden with the gate's reason,
// so hidden contest content never leaks through by-id lookups.
func (s *challengeService) GetForUser(ctx context.Context, user *models.User, id int64) (*models.Challenge, error) {
	ch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.ContestID != nil {
		if err := s.ensureViewable(ctx, user, *ch.ContestID); err != nil {
			return nil, err
		}
	}
	return ch, nil
}

func (s *challengeService) ensureViewable(ctx context.Context, user *models.User, contestID int64) error {
	contest, err := s.contests.Get(ctx, contestID)
	if err != nil {
		return err
	}
	authorized := false
	if user != nil {
		authorized = user.IsAdmin || s.contests.IsAuthorized(ctx, contest.ID, user.ID)
	}
	if decision := gate.CanView(user, contest, authorized, nowUTC()); !decision.Allowed {
		return errors.NewForbiddenError(string(decision.Reason))
	}
	return nil
}

func (s *challengeService) solvedInContest(ctx context.Context, contestID, userID int64) ([]int64, error) {
	cid := contestID
	solves, err := s.solves.List(ctx, models.SolveFilter{UserID: userID, ContestID: &cid})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(solves))
	for _, sv := range solves {
		ids = append(ids, sv.ChallengeID)
	}
	return ids, nil
}

// Bloods returns the first n solvers of a challenge in solve order.
func (s *challengeService) Bloods(ctx context.Context, user *models.User, challengeID int64, n int) ([]BloodEntry, error) {
	log := logger.FromContext(ctx)

	if _, err := s.GetForUser(ctx, user, challengeID); err != nil {
		return nil, err
	}
	solves, err := s.solves.ListByChallenge(ctx, challengeID)
	if err != nil {
		log.Error("failed to list solves: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.solverEntries(ctx, ranking.Bloods(solves, n)), nil
}

// Stats returns the solve history of a challenge: every solver in solve
// order plus the first three bloods.
func (s *challengeService) Stats(ctx context.Context, user *models.User, challengeID int64) (*ChallengeStats, error) {
	log := logger.FromContext(ctx)

	ch, err := s.GetForUser(ctx, user, challengeID)
	if err != nil {
		return nil, err
	}
	solves, err := s.solves.ListByChallenge(ctx, challengeID)
	if err != nil {
		log.Error("failed to list solves: %v", err)
		return nil, errors.NewInternalError(err)
	}

	solvers := s.solverEntries(ctx, ranking.Bloods(solves, len(solves)))
	bloods := solvers
	if len(bloods) > 3 {
		bloods = bloods[:3]
	}
	return &ChallengeStats{
		ChallengeID: ch.ID,
		SolveCount:  ch.SolveCount,
		Solvers:     solvers,
		Bloods:      bloods,
	}, nil
}

func (s *challengeService) solverEntries(ctx context.Context, solves []models.SolveRecord) []BloodEntry {
	entries := make([]BloodEntry, 0, len(solves))
	for _, sv := range solves {
		entry := BloodEntry{UserID: sv.UserID, SolvedAt: sv.SolvedAt}
		if u, err := s.users.Get(ctx, sv.UserID); err == nil {
			entry.Username = u.Username
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *challengeService) UpdatePoints(ctx context.Context, id int64, points int) error {
	log := logger.FromContext(ctx)
	log.Debug("updating challenge points: id=%d, points=%d", id, points)

	if points <= 0 {
		return errors.NewValidationError("points", "must be positive")
	}
	if err := s.challenges.UpdatePoints(ctx, id, points); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("challenge", id)
		}
		return errors.NewInternalError(err)
	}
	return nil
}
