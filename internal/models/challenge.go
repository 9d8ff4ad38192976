package models

import "time"

// Challenge is a single solvable problem. A nil ContestID marks a wargame
// challenge with no time window. Flag is the authoritative secret and must
// never leave the server.
type Challenge struct {
	ID         int64     `json:"id"`
	ContestID  *int64    `json:"contestId,omitempty"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Flag       string    `json:"-"`
	Points     int       `json:"points"`
	Difficulty int       `json:"difficulty"`
	SolveCount int       `json:"solveCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ChallengeFilter narrows challenge listings. Wargame selects challenges
// with no contest; it takes precedence over ContestID.
type ChallengeFilter struct {
	ContestID *int64
	Wargame   bool
	Category  string
	Limit     int
	Offset    int
}
