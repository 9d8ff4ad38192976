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
	"github.com/rmello/flagforge/internal/verifier"
)

// SubmitStatus classifies the outcome of a flag submission. Wrong flags and
// duplicate solves are outcomes, not errors; only store failures surface as
// errors from Submit.
type SubmitStatus string

const (
	StatusAccepted      SubmitStatus = "accepted"
	StatusIncorrect     SubmitStatus = "incorrect"
	StatusAlreadySolved SubmitStatus = "already_solved"
	StatusDenied        SubmitStatus = "denied"
)

// SubmitResult is the typed outcome of one submission.
type SubmitResult struct {
	Status        SubmitStatus
	PointsAwarded int
	Reason        gate.Reason
	FirstBlood    bool
}

// SubmissionService runs the submit pipeline: access gate, flag check,
// atomic scoring commit
type SubmissionService interface {
	Submit(ctx context.Context, user *models.User, challengeID int64, flag string) (*SubmitResult, error)
}

type submissionService struct {
	challenges repository.ChallengeRepository
	solves     repository.SolveRepository
	contests   ContestService
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(challenges repository.ChallengeRepository, solves repository.SolveRepository, contests ContestService) SubmissionService {
	return &submissionService{challenges: challenges, solves: solves, contests: contests}
}

func (s *submissionService) Submit(ctx context.Context, user *models.User, challengeID int64, flag string) (*SubmitResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("flag submission: user_id=%d, challenge_id=%d", user.ID, challengeID)

	if !verifier.Valid(flag) {
		return nil, errors.NewValidationError("flag", "cannot be empty")
	}

	// The flag is always re-read from the store at verification time.
	ch, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("challenge", challengeID)
		}
		log.Error("failed to load challenge: %v", err)
		return nil, errors.NewUnavailableError(err)
	}

	decision, err := s.gateCheck(ctx, user, ch)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		log.Debug("submission denied: user_id=%d, challenge_id=%d, reason=%s", user.ID, challengeID, decision.Reason)
		return &SubmitResult{Status: StatusDenied, Reason: decision.Reason}, nil
	}

	if !verifier.Matches(ch.Flag, flag) {
		log.Debug("wrong flag: user_id=%d, challenge_id=%d", user.ID, challengeID)
		return &SubmitResult{Status: StatusIncorrect}, nil
	}

	record, err := s.solves.CommitSolve(ctx, user.ID, *ch)
	if err != nil {
		if stderrors.Is(err, repository.ErrAlreadySolved) {
			return &SubmitResult{Status: StatusAlreadySolved}, nil
		}
		log.Error("failed to commit solve: %v", err)
		return nil, errors.NewUnavailableError(err)
	}

	result := &SubmitResult{Status: StatusAccepted, PointsAwarded: record.Points}
	result.FirstBlood = s.isFirstBlood(ctx, challengeID, record.ID)
	log.Info("flag accepted: user_id=%d, challenge_id=%d, points=%d, first_blood=%t",
		user.ID, challengeID, record.Points, result.FirstBlood)
	return result, nil
}

func (s *submissionService) gateCheck(ctx context.Context, user *models.User, ch *models.Challenge) (gate.Decision, error) {
	if ch.ContestID == nil {
		return gate.CanSubmit(user, nil, false, false, nowUTC()), nil
	}

	contest, err := s.contests.Get(ctx, *ch.ContestID)
	if err != nil {
		return gate.Decision{}, err
	}
	joined, err := s.contests.HasJoined(ctx, contest.ID, user.ID)
	if err != nil {
		return gate.Decision{}, errors.NewUnavailableError(err)
	}
	authorized := user.IsAdmin || s.contests.IsAuthorized(ctx, contest.ID, user.ID)
	return gate.CanSubmit(user, contest, joined, authorized, nowUTC()), nil
}

func nowUTC() time.Time { return time.Now().UTC() }

// isFirstBlood re-derives solve order from the stored records so the answer
// does not depend on which request committed last.
func (s *submissionService) isFirstBlood(ctx context.Context, challengeID, recordID int64) bool {
	solves, err := s.solves.ListByChallenge(ctx, challengeID)
	if err != nil {
		return false
	}
	fb := ranking.FirstBlood(solves)
	return fb != nil && fb.ID == recordID
}
