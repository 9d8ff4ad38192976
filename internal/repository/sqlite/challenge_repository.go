package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/repository"
)

type challengeRepository struct {
	db *sql.DB
}

// NewChallengeRepository creates a new ChallengeRepository implementation
func NewChallengeRepository(db *sql.DB) repository.ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Insert(ctx context.Context, ch models.Challenge) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("challenge_repo")
	log.Debug("inserting challenge: title=%s, points=%d", ch.Title, ch.Points)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO challenges (contest_id, title, category, flag, points, difficulty)
VALUES (?, ?, ?, ?, ?, ?)
`, ch.ContestID, ch.Title, ch.Category, ch.Flag, ch.Points, ch.Difficulty)
	if err != nil {
		log.Error("failed to insert challenge: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get challenge id: %v", err)
		return 0, err
	}
	log.Debug("challenge inserted: id=%d", id)
	return id, nil
}

func (r *challengeRepository) Get(ctx context.Context, id int64) (*models.Challenge, error) {
	log := logger.FromContext(ctx).WithPrefix("challenge_repo")
	log.Debug("getting challenge: id=%d", id)

	var ch models.Challenge
	err := r.db.QueryRowContext(ctx, `
SELECT id, contest_id, title, category, flag, points, difficulty, solve_count, created_at
FROM challenges
WHERE id = ?
`, id).Scan(&ch.ID, &ch.ContestID, &ch.Title, &ch.Category, &ch.Flag, &ch.Points, &ch.Difficulty, &ch.SolveCount, &ch.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("challenge not found: id=%d", id)
		} else {
			log.Error("failed to get challenge: %v", err)
		}
		return nil, err
	}
	return &ch, nil
}

func (r *challengeRepository) List(ctx context.Context, filter models.ChallengeFilter) ([]models.Challenge, error) {
	log := logger.FromContext(ctx).WithPrefix("challenge_repo")
	log.Debug("listing challenges with filter: contest_id=%v, category=%s", filter.ContestID, filter.Category)

	query := sqlBuilder.Select(
		"id", "contest_id", "title", "category", "flag", "points", "difficulty", "solve_count", "created_at",
	).From("challenges")

	// Dynamic WHERE clauses. A nil ContestID filter means "no contest filter",
	// not "wargame only"; wargame listings pass Wargame=true instead.
	if filter.Wargame {
		query = query.Where(squirrel.Eq{"contest_id": nil})
	} else if filter.ContestID != nil {
		query = query.Where(squirrel.Eq{"contest_id": *filter.ContestID})
	}
	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}

	query = query.OrderBy("category ASC", "points ASC", "id ASC")

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
		log.Error("failed to list challenges: %v", err)
		return nil, err
	}
	defer rows.Close()
	var challenges []models.Challenge
	for rows.Next() {
		var ch models.Challenge
		if err := rows.Scan(&ch.ID, &ch.ContestID, &ch.Title, &ch.Category, &ch.Flag, &ch.Points, &ch.Difficulty, &ch.SolveCount, &ch.CreatedAt); err != nil {
			log.Error("failed to scan challenge row: %v", err)
			return nil, err
		}
		challenges = append(challenges, ch)
	}
	log.Debug("found %d challenges", len(challenges))
	return challenges, rows.Err()
}

func (r *challengeRepository) UpdatePoints(ctx context.Context, id int64, points int) error {
	log := logger.FromContext(ctx).WithPrefix("challenge_repo")
	log.Debug("updating challenge points: id=%d, points=%d", id, points)

	res, err := r.db.ExecContext(ctx, `UPDATE challenges SET points = ? WHERE id = ?`, points, id)
	if err != nil {
		log.Error("failed to update challenge points: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
