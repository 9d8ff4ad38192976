package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rmello/flagforge/internal/models"
)

// ErrAlreadySolved is returned by CommitSolve when a solve record already
// exists for the (user, challenge) pair. It marks an idempotent no-op, not
// a failure: nothing was credited and nothing needs compensation.
var ErrAlreadySolved = errors.New("challenge already solved by user")

// UserRepository handles account data access
type UserRepository interface {
	Insert(ctx context.Context, user models.User) (int64, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// ChallengeRepository handles challenge data access
type ChallengeRepository interface {
	Insert(ctx context.Context, ch models.Challenge) (int64, error)
	Get(ctx context.Context, id int64) (*models.Challenge, error)
	List(ctx context.Context, filter models.ChallengeFilter) ([]models.Challenge, error)
	UpdatePoints(ctx context.Context, id int64, points int) error
}

// ContestRepository handles contest and authorization-grant data access
type ContestRepository interface {
	Insert(ctx context.Context, c models.Contest) (int64, error)
	Get(ctx context.Context, id int64) (*models.Contest, error)
	List(ctx context.Context) ([]models.Contest, error)
	UpsertGrant(ctx context.Context, contestID, userID int64, expiresAt time.Time) error
	GetGrant(ctx context.Context, contestID, userID int64) (*models.AccessGrant, error)
}

// ParticipantRepository handles contest membership and standings access
type ParticipantRepository interface {
	Join(ctx context.Context, contestID, userID int64) error
	Get(ctx context.Context, contestID, userID int64) (*models.Participant, error)
	SolvedChallengeIDs(ctx context.Context, contestID, userID int64) ([]int64, error)
	Standings(ctx context.Context, contestID int64) ([]models.Standing, error)
}

// SolveRepository is the scoring ledger's data access. CommitSolve applies
// one verified solve atomically: the solve record, the challenge counter,
// the participant aggregate and the user's global point bucket all change
// in a single transaction or not at all.
type SolveRepository interface {
	CommitSolve(ctx context.Context, userID int64, ch models.Challenge) (*models.SolveRecord, error)
	ListByChallenge(ctx context.Context, challengeID int64) ([]models.SolveRecord, error)
	List(ctx context.Context, filter models.SolveFilter) ([]models.SolveRecord, error)
	RecentFeed(ctx context.Context, contestID int64, limit int) ([]models.SolveFeedEntry, error)
}
