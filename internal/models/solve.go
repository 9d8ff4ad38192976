package models

import "time"

// SolveRecord is the immutable, append-only evidence that a user solved a
// challenge. SolvedAt is always server-assigned; Points are locked at the
// value the challenge carried when the solve was committed.
type SolveRecord struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	ChallengeID int64     `json:"challengeId"`
	ContestID   *int64    `json:"contestId,omitempty"`
	Points      int       `json:"points"`
	Category    string    `json:"category"`
	SolvedAt    time.Time `json:"solvedAt"`
}

// SolveFilter narrows solve listings.
type SolveFilter struct {
	UserID      int64
	ChallengeID int64
	ContestID   *int64
	Limit       int
	Offset      int
}

// SolveFeedEntry is one row of the recent-solves activity feed.
type SolveFeedEntry struct {
	Username       string    `json:"username"`
	ChallengeID    int64     `json:"challengeId"`
	ChallengeTitle string    `json:"challengeTitle"`
	Points         int       `json:"points"`
	SolvedAt       time.Time `json:"solvedAt"`
}
