package models

import "time"

// User is a platform account. Point totals are split into the wargame and
// CTF buckets and only ever grow through accepted solves.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"displayName"`
	PasswordHash  string    `json:"-"`
	IsAdmin       bool      `json:"isAdmin"`
	WargamePoints int       `json:"wargamePoints"`
	CTFPoints     int       `json:"ctfPoints"`
	CreatedAt     time.Time `json:"createdAt"`
}
