package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/repository"
)

type solveRepository struct {
	db *sql.DB
}

// NewSolveRepository creates a new SolveRepository implementation
func NewSolveRepository(db *sql.DB) repository.SolveRepository {
	return &solveRepository{db: db}
}

// CommitSolve credits one verified solve in a single transaction. The unique
// index on (user_id, challenge_id) is the authoritative duplicate check: a
// conflicting insert changes no rows and the whole commit becomes a no-op
// reported as ErrAlreadySolved. SolvedAt is assigned here, never by callers.
func (r *solveRepository) CommitSolve(ctx context.Context, userID int64, ch models.Challenge) (*models.SolveRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("solve_repo")
	log.Debug("committing solve: user_id=%d, challenge_id=%d, points=%d", userID, ch.ID, ch.Points)

	record := models.SolveRecord{
		UserID:      userID,
		ChallengeID: ch.ID,
		ContestID:   ch.ContestID,
		Points:      ch.Points,
		Category:    ch.Category,
		SolvedAt:    time.Now().UTC(),
	}

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO solves (user_id, challenge_id, contest_id, points, category, solved_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, challenge_id) DO NOTHING
`, record.UserID, record.ChallengeID, record.ContestID, record.Points, record.Category, record.SolvedAt)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrAlreadySolved
		}
		if record.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
UPDATE challenges SET solve_count = solve_count + 1 WHERE id = ?
`, ch.ID); err != nil {
			return err
		}

		if ch.ContestID != nil {
			res, err := tx.ExecContext(ctx, `
UPDATE participants
SET score = score + ?, last_solve_at = ?
WHERE contest_id = ? AND user_id = ?
`, record.Points, record.SolvedAt, *ch.ContestID, userID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("user %d is not a participant of contest %d", userID, *ch.ContestID)
			}
			_, err = tx.ExecContext(ctx, `
UPDATE users SET ctf_points = ctf_points + ? WHERE id = ?
`, record.Points, userID)
			return err
		}

		_, err = tx.ExecContext(ctx, `
UPDATE users SET wargame_points = wargame_points + ? WHERE id = ?
`, record.Points, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadySolved) {
			log.Debug("solve already recorded: user_id=%d, challenge_id=%d", userID, ch.ID)
		} else {
			log.Error("failed to commit solve: %v", err)
		}
		return nil, err
	}

	log.Info("solve committed: user_id=%d, challenge_id=%d, points=%d", userID, ch.ID, record.Points)
	return &record, nil
}

func (r *solveRepository) ListByChallenge(ctx context.Context, challengeID int64) ([]models.SolveRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("solve_repo")
	log.Debug("listing solves: challenge_id=%d", challengeID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, challenge_id, contest_id, points, category, solved_at
FROM solves
WHERE challenge_id = ?
ORDER BY solved_at ASC, id ASC
`, challengeID)
	if err != nil {
		log.Error("failed to list solves: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanSolves(rows, log)
}

func (r *solveRepository) List(ctx context.Context, filter models.SolveFilter) ([]models.SolveRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("solve_repo")
	log.Debug("listing solves with filter: user_id=%d, challenge_id=%d, contest_id=%v",
		filter.UserID, filter.ChallengeID, filter.ContestID)

	query := sqlBuilder.Select(
		"id", "user_id", "challenge_id", "contest_id", "points", "category", "solved_at",
	).From("solves")

	if filter.UserID != 0 {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.ChallengeID != 0 {
		query = query.Where(squirrel.Eq{"challenge_id": filter.ChallengeID})
	}
	if filter.ContestID != nil {
		query = query.Where(squirrel.Eq{"contest_id": *filter.ContestID})
	}

	query = query.OrderBy("solved_at ASC", "id ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list solves: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanSolves(rows, log)
}

func (r *solveRepository) RecentFeed(ctx context.Context, contestID int64, limit int) ([]models.SolveFeedEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("solve_repo")
	log.Debug("loading recent feed: contest_id=%d, limit=%d", contestID, limit)

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT u.username, s.challenge_id, c.title, s.points, s.solved_at
FROM solves s
JOIN users u ON u.id = s.user_id
JOIN challenges c ON c.id = s.challenge_id
WHERE s.contest_id = ?
ORDER BY s.solved_at DESC, s.id DESC
LIMIT ?
`, contestID, limit)
	if err != nil {
		log.Error("failed to load recent feed: %v", err)
		return nil, err
	}
	defer rows.Close()
	var feed []models.SolveFeedEntry
	for rows.Next() {
		var e models.SolveFeedEntry
		if err := rows.Scan(&e.Username, &e.ChallengeID, &e.ChallengeTitle, &e.Points, &e.SolvedAt); err != nil {
			log.Error("failed to scan feed row: %v", err)
			return nil, err
		}
		feed = append(feed, e)
	}
	log.Debug("loaded %d feed entries", len(feed))
	return feed, rows.Err()
}

func scanSolves(rows *sql.Rows, log *logger.Logger) ([]models.SolveRecord, error) {
	var solves []models.SolveRecord
	for rows.Next() {
		var s models.SolveRecord
		if err := rows.Scan(&s.ID, &s.UserID, &s.ChallengeID, &s.ContestID, &s.Points, &s.Category, &s.SolvedAt); err != nil {
			log.Error("failed to scan solve row: %v", err)
			return nil, err
		}
		solves = append(solves, s)
	}
	return solves, rows.Err()
}
