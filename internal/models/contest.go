package models

import "time"

// Contest is a time-boxed group of challenges. Its status is always derived
// from the window and the current clock, never persisted.
type Contest struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt"`
	PasswordHash *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PasswordProtected reports whether joining the contest view requires a
// password authorization grant.
func (c Contest) PasswordProtected() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}

// AccessGrant records a successful contest password check so repeated
// visits skip re-authentication. Expired grants are treated as absent.
type AccessGrant struct {
	ContestID int64     `json:"contestId"`
	UserID    int64     `json:"userId"`
	GrantedAt time.Time `json:"grantedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the grant is still usable at the given time.
func (g AccessGrant) Valid(now time.Time) bool {
	return now.Before(g.ExpiresAt)
}
