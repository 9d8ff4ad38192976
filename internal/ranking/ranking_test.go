package ranking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/ranking"
)

func tp(t time.Time) *time.Time { return &t }

func TestRank_TiesShareRankEarlierSolveFirst(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	t2 := t1.Add(-10 * time.Minute)

	standings := []models.Standing{
		{UserID: 1, Username: "A", Score: 100, LastSolveAt: tp(t1)},
		{UserID: 2, Username: "B", Score: 100, LastSolveAt: tp(t2)},
		{UserID: 3, Username: "C", Score: 50},
	}

	ranked := ranking.Rank(standings)
	require.Len(t, ranked, 3)

	// B solved earlier so B orders first, but A shares rank 1; C is third
	// and takes rank 3, not 2.
	assert.Equal(t, "B", ranked[0].Username)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "A", ranked[1].Username)
	assert.Equal(t, 1, ranked[1].Rank)
	assert.Equal(t, "C", ranked[2].Username)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestRank_NoSolvesSortLastAmongEqualScores(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	standings := []models.Standing{
		{UserID: 1, Username: "idle", Score: 0},
		{UserID: 2, Username: "solver", Score: 0, LastSolveAt: tp(t1)},
	}

	ranked := ranking.Rank(standings)
	require.Len(t, ranked, 2)
	assert.Equal(t, "solver", ranked[0].Username)
	assert.Equal(t, "idle", ranked[1].Username)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 1, ranked[1].Rank)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	standings := []models.Standing{
		{UserID: 1, Score: 10},
		{UserID: 2, Score: 20},
	}
	_ = ranking.Rank(standings)
	assert.Equal(t, int64(1), standings[0].UserID)
	assert.Equal(t, 0, standings[0].Rank)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, ranking.Rank(nil))
}

func TestFirstBlood_ReadOrderIndependent(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	t3 := t1.Add(2 * time.Minute)

	solves := []models.SolveRecord{
		{ID: 3, UserID: 30, SolvedAt: t3},
		{ID: 1, UserID: 10, SolvedAt: t1},
		{ID: 2, UserID: 20, SolvedAt: t2},
	}

	fb := ranking.FirstBlood(solves)
	require.NotNil(t, fb)
	assert.Equal(t, int64(10), fb.UserID)

	// Same result when the records arrive in a different order.
	reversed := []models.SolveRecord{solves[2], solves[0], solves[1]}
	fb = ranking.FirstBlood(reversed)
	require.NotNil(t, fb)
	assert.Equal(t, int64(10), fb.UserID)
}

func TestFirstBlood_TimestampTieFallsBackToID(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	solves := []models.SolveRecord{
		{ID: 8, UserID: 80, SolvedAt: t1},
		{ID: 5, UserID: 50, SolvedAt: t1},
	}

	fb := ranking.FirstBlood(solves)
	require.NotNil(t, fb)
	assert.Equal(t, int64(50), fb.UserID)
}

func TestFirstBlood_NoSolves(t *testing.T) {
	assert.Nil(t, ranking.FirstBlood(nil))
}

func TestBloods_TopThree(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var solves []models.SolveRecord
	for i := 0; i < 5; i++ {
		solves = append(solves, models.SolveRecord{
			ID:       int64(5 - i),
			UserID:   int64(100 + 5 - i),
			SolvedAt: t1.Add(time.Duration(5-i) * time.Minute),
		})
	}

	bloods := ranking.Bloods(solves, 3)
	require.Len(t, bloods, 3)
	assert.Equal(t, int64(101), bloods[0].UserID)
	assert.Equal(t, int64(102), bloods[1].UserID)
	assert.Equal(t, int64(103), bloods[2].UserID)
}
