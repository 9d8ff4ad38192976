package models

import "time"

// Participant is a user's standing within one contest. Score equals the sum
// of the points of their solve records in the contest, credited at the time
// each solve was recorded. A nil LastSolveAt means no accepted solves yet.
type Participant struct {
	ContestID   int64      `json:"contestId"`
	UserID      int64      `json:"userId"`
	Score       int        `json:"score"`
	LastSolveAt *time.Time `json:"lastSolveAt,omitempty"`
	JoinedAt    time.Time  `json:"joinedAt"`
}

// Standing is one row of a computed leaderboard. Rank is derived from
// (Score, LastSolveAt) on every read and is never authoritative storage.
type Standing struct {
	Rank        int        `json:"rank"`
	UserID      int64      `json:"userId"`
	Username    string     `json:"username"`
	Score       int        `json:"score"`
	LastSolveAt *time.Time `json:"lastSolveAt,omitempty"`
}
