package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/repository"
)

type contestRepository struct {
	db *sql.DB
}

// NewContestRepository creates a new ContestRepository implementation
func NewContestRepository(db *sql.DB) repository.ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) Insert(ctx context.Context, c models.Contest) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("contest_repo")
	log.Debug("inserting contest: title=%s", c.Title)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO contests (title, starts_at, ends_at, password_hash)
VALUES (?, ?, ?, ?)
`, c.Title, c.StartsAt, c.EndsAt, c.PasswordHash)
	if err != nil {
		log.Error("failed to insert contest: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get contest id: %v", err)
		return 0, err
	}
	log.Debug("contest inserted: id=%d", id)
	return id, nil
}

func (r *contestRepository) Get(ctx context.Context, id int64) (*models.Contest, error) {
	log := logger.FromContext(ctx).WithPrefix("contest_repo")
	log.Debug("getting contest: id=%d", id)

	var c models.Contest
	err := r.db.QueryRowContext(ctx, `
SELECT id, title, starts_at, ends_at, password_hash, created_at
FROM contests
WHERE id = ?
`, id).Scan(&c.ID, &c.Title, &c.StartsAt, &c.EndsAt, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("contest not found: id=%d", id)
		} else {
			log.Error("failed to get contest: %v", err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *contestRepository) List(ctx context.Context) ([]models.Contest, error) {
	log := logger.FromContext(ctx).WithPrefix("contest_repo")
	log.Debug("listing contests")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, starts_at, ends_at, password_hash, created_at
FROM contests
ORDER BY starts_at DESC
`)
	if err != nil {
		log.Error("failed to list contests: %v", err)
		return nil, err
	}
	defer rows.Close()
	var contests []models.Contest
	for rows.Next() {
		var c models.Contest
		if err := rows.Scan(&c.ID, &c.Title, &c.StartsAt, &c.EndsAt, &c.PasswordHash, &c.CreatedAt); err != nil {
			log.Error("failed to scan contest row: %v", err)
			return nil, err
		}
		contests = append(contests, c)
	}
	log.Debug("found %d contests", len(contests))
	return contests, rows.Err()
}

func (r *contestRepository) UpsertGrant(ctx context.Context, contestID, userID int64, expiresAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("contest_repo")
	log.Debug("upserting grant: contest_id=%d, user_id=%d", contestID, userID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO access_grants (contest_id, user_id, granted_at, expires_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(contest_id, user_id) DO UPDATE SET
    granted_at = excluded.granted_at,
    expires_at = excluded.expires_at
`, contestID, userID, time.Now().UTC(), expiresAt)
	if err != nil {
		log.Error("failed to upsert grant: %v", err)
	}
	return err
}

func (r *contestRepository) GetGrant(ctx context.Context, contestID, userID int64) (*models.AccessGrant, error) {
	log := logger.FromContext(ctx).WithPrefix("contest_repo")
	log.Debug("getting grant: contest_id=%d, user_id=%d", contestID, userID)

	var g models.AccessGrant
	err := r.db.QueryRowContext(ctx, `
SELECT contest_id, user_id, granted_at, expires_at
FROM access_grants
WHERE contest_id = ? AND user_id = ?
`, contestID, userID).Scan(&g.ContestID, &g.UserID, &g.GrantedAt, &g.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("grant not found: contest_id=%d, user_id=%d", contestID, userID)
		} else {
			log.Error("failed to get grant: %v", err)
		}
		return nil, err
	}
	return &g, nil
}
