package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/repository"
)

type participantRepository struct {
	db *sql.DB
}

// NewParticipantRepository creates a new ParticipantRepository implementation
func NewParticipantRepository(db *sql.DB) repository.ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Join(ctx context.Context, contestID, userID int64) error {
	log := logger.FromContext(ctx).WithPrefix("participant_repo")
	log.Debug("joining contest: contest_id=%d, user_id=%d", contestID, userID)

	// Joining twice is a no-op so the score and last solve survive retries.
	_, err := r.db.ExecContext(ctx, `
INSERT INTO participants (contest_id, user_id)
VALUES (?, ?)
ON CONFLICT(contest_id, user_id) DO NOTHING
`, contestID, userID)
	if err != nil {
		log.Error("failed to join contest: %v", err)
	}
	return err
}

func (r *participantRepository) Get(ctx context.Context, contestID, userID int64) (*models.Participant, error) {
	log := logger.FromContext(ctx).WithPrefix("participant_repo")
	log.Debug("getting participant: contest_id=%d, user_id=%d", contestID, userID)

	var p models.Participant
	err := r.db.QueryRowContext(ctx, `
SELECT contest_id, user_id, score, last_solve_at, joined_at
FROM participants
WHERE contest_id = ? AND user_id = ?
`, contestID, userID).Scan(&p.ContestID, &p.UserID, &p.Score, &p.LastSolveAt, &p.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("participant not found: contest_id=%d, user_id=%d", contestID, userID)
		} else {
			log.Error("failed to get participant: %v", err)
		}
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) SolvedChallengeIDs(ctx context.Context, contestID, userID int64) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("participant_repo")
	log.Debug("listing solved challenges: contest_id=%d, user_id=%d", contestID, userID)

	rows, err := r.db.QueryContext(ctx, `
SELECT challenge_id
FROM solves
WHERE contest_id = ? AND user_id = ?
ORDER BY solved_at ASC
`, contestID, userID)
	if err != nil {
		log.Error("failed to list solved challenges: %v", err)
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan challenge id: %v", err)
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Standings returns one unranked row per participant. Ranks are assigned by
// the ranking package so the ordering rules live in exactly one place.
func (r *participantRepository) Standings(ctx context.Context, contestID int64) ([]models.Standing, error) {
	log := logger.FromContext(ctx).WithPrefix("participant_repo")
	log.Debug("loading standings: contest_id=%d", contestID)

	rows, err := r.db.QueryContext(ctx, `
SELECT p.user_id, u.username, p.score, p.last_solve_at
FROM participants p
JOIN users u ON u.id = p.user_id
WHERE p.contest_id = ?
`, contestID)
	if err != nil {
		log.Error("failed to load standings: %v", err)
		return nil, err
	}
	defer rows.Close()
	var standings []models.Standing
	for rows.Next() {
		var s models.Standing
		if err := rows.Scan(&s.UserID, &s.Username, &s.Score, &s.LastSolveAt); err != nil {
			log.Error("failed to scan standing row: %v", err)
			return nil, err
		}
		standings = append(standings, s)
	}
	log.Debug("loaded %d standings", len(standings))
	return standings, rows.Err()
}
