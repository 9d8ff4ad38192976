// Package ranking derives leaderboard orderings and first-blood attribution
// from stored scores and solve records. Everything here is a pure function
// of its inputs so rankings can be recomputed on every read.
package ranking

import (
	"sort"

	"github.com/rmello/flagforge/internal/models"
)

// Rank orders standings by score descending, breaking ties by earlier last
// solve. Participants with no solves sort last among equal scores. Equal
// scores share a rank; the next distinct score takes the rank of its
// position, so scores 100, 100, 50 rank 1, 1, 3.
func Rank(standings []models.Standing) []models.Standing {
	ranked := make([]models.Standing, len(standings))
	copy(ranked, standings)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch {
		case a.LastSolveAt == nil && b.LastSolveAt == nil:
			return a.UserID < b.UserID
		case a.LastSolveAt == nil:
			return false
		case b.LastSolveAt == nil:
			return true
		case !a.LastSolveAt.Equal(*b.LastSolveAt):
			return a.LastSolveAt.Before(*b.LastSolveAt)
		}
		return a.UserID < b.UserID
	})

	for i := range ranked {
		if i > 0 && ranked[i].Score == ranked[i-1].Score {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}
	return ranked
}

// FirstBlood returns the earliest solve of a challenge, or nil if it has
// none. The input order does not matter; ties on the server timestamp fall
// back to record ID, which follows insertion order.
func FirstBlood(solves []models.SolveRecord) *models.SolveRecord {
	ordered := Bloods(solves, 1)
	if len(ordered) == 0 {
		return nil
	}
	return &ordered[0]
}

// Bloods returns up to n solves of one challenge in solve order. n <= 0
// means all of them.
func Bloods(solves []models.SolveRecord, n int) []models.SolveRecord {
	ordered := make([]models.SolveRecord, len(solves))
	copy(ordered, solves)

	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].SolvedAt.Equal(ordered[j].SolvedAt) {
			return ordered[i].SolvedAt.Before(ordered[j].SolvedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	if n > 0 && len(ordered) > n {
		ordered = ordered[:n]
	}
	return ordered
}
