package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rmello/flagforge/internal/errors"
	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/ranking"
	"github.com/rmello/flagforge/internal/repository"
)

// ScoreboardService computes ranked standings and the recent-solves feed
type ScoreboardService interface {
	Standings(ctx context.Context, contestID int64) ([]models.Standing, error)
	RecentSolves(ctx context.Context, contestID int64, limit int) ([]models.SolveFeedEntry, error)
	ExportXLSX(ctx context.Context, contestID int64, w io.Writer) error
}

type scoreboardService struct {
	contests     ContestService
	participants repository.ParticipantRepository
	solves       repository.SolveRepository
}

// NewScoreboardService creates a new ScoreboardService
func NewScoreboardService(contests ContestService, participants repository.ParticipantRepository, solves repository.SolveRepository) ScoreboardService {
	return &scoreboardService{contests: contests, participants: participants, solves: solves}
}

// Standings returns the contest leaderboard, ranked on read from the stored
// scores and last solve times.
func (s *scoreboardService) Standings(ctx context.Context, contestID int64) ([]models.Standing, error) {
	log := logger.FromContext(ctx)

	if _, err := s.contests.Get(ctx, contestID); err != nil {
		return nil, err
	}
	rows, err := s.participants.Standings(ctx, contestID)
	if err != nil {
		log.Error("failed to load standings: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return ranking.Rank(rows), nil
}

func (s *scoreboardService) RecentSolves(ctx context.Context, contestID int64, limit int) ([]models.SolveFeedEntry, error) {
	log := logger.FromContext(ctx)

	if _, err := s.contests.Get(ctx, contestID); err != nil {
		return nil, err
	}
	feed, err := s.solves.RecentFeed(ctx, contestID, limit)
	if err != nil {
		log.Error("failed to load recent solves: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return feed, nil
}

// ExportXLSX writes the ranked standings as a spreadsheet for offline
// archival of contest results.
func (s *scoreboardService) ExportXLSX(ctx context.Context, contestID int64, w io.Writer) error {
	log := logger.FromContext(ctx)

	contest, err := s.contests.Get(ctx, contestID)
	if err != nil {
		return err
	}
	standings, err := s.Standings(ctx, contestID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Scoreboard"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.NewInternalError(err)
	}

	headers := []string{"Rank", "Username", "Score", "Last Solve"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return errors.NewInternalError(err)
		}
	}

	for row, st := range standings {
		lastSolve := ""
		if st.LastSolveAt != nil {
			lastSolve = st.LastSolveAt.UTC().Format("2006-01-02 15:04:05")
		}
		values := []interface{}{st.Rank, st.Username, st.Score, lastSolve}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.NewInternalError(err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		log.Error("failed to write scoreboard export: %v", err)
		return errors.NewInternalError(fmt.Errorf("export scoreboard for contest %q: %w", contest.Title, err))
	}
	log.Info("scoreboard exported: contest_id=%d, rows=%d", contestID, len(standings))
	return nil
}
