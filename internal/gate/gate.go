// Package gate decides whether a user may view or submit against a contest
// or challenge right now. State is always computed from the clock and the
// contest window, never stored, so client and server cannot drift apart.
package gate

import (
	"time"

	"github.com/rmello/flagforge/internal/models"
)

// State of a contest (or a wargame challenge) at a given instant.
type State string

const (
	// StateOpen marks wargame challenges with no time window.
	StateOpen State = "open"
	// StateLocked means the contest is password protected and the user
	// holds no valid grant.
	StateLocked     State = "locked"
	StateNotStarted State = "not_started"
	StateActive     State = "active"
	StateEnded      State = "ended"
)

// Reason explains a denial. Reasons are user-facing and deliberately
// specific so a rejection tells the user which precondition failed.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNotStarted    Reason = "not_started"
	ReasonEnded         Reason = "ended"
	ReasonNotJoined     Reason = "not_joined"
	ReasonNotAuthorized Reason = "not_authorized"
)

// Decision is the gate's verdict for one user against one contest.
type Decision struct {
	Allowed bool
	State   State
	Reason  Reason
}

func allow(state State) Decision {
	return Decision{Allowed: true, State: state}
}

func deny(state State, reason Reason) Decision {
	return Decision{Allowed: false, State: state, Reason: reason}
}

// ContestState computes the contest's state for a user with the given
// authorization. Locked masks the time window: an unauthorized user of a
// password-protected contest sees Locked regardless of the clock.
func ContestState(c *models.Contest, authorized bool, now time.Time) State {
	if c == nil {
		return StateOpen
	}
	if c.PasswordProtected() && !authorized {
		return StateLocked
	}
	return WindowState(c.StartsAt, c.EndsAt, now)
}

// WindowState computes the time-window state alone. The start instant is
// inside the window; the first instant after the end is outside it.
func WindowState(startsAt, endsAt, now time.Time) State {
	switch {
	case now.Before(startsAt):
		return StateNotStarted
	case now.After(endsAt):
		return StateEnded
	default:
		return StateActive
	}
}

// CanView reports whether the user may see the contest's challenges. A nil
// contest is a wargame challenge and is always visible. Ended contests stay
// visible for review.
func CanView(user *models.User, c *models.Contest, authorized bool, now time.Time) Decision {
	if c == nil {
		return allow(StateOpen)
	}
	if user != nil && user.IsAdmin {
		return allow(WindowState(c.StartsAt, c.EndsAt, now))
	}
	state := WindowState(c.StartsAt, c.EndsAt, now)
	if state == StateNotStarted {
		return deny(state, ReasonNotStarted)
	}
	if c.PasswordProtected() && !authorized {
		return deny(StateLocked, ReasonNotAuthorized)
	}
	return allow(state)
}

// CanSubmit reports whether the user may submit a flag. Preconditions are
// checked in a fixed order so the reason names the first failing one:
// time window, then membership, then password authorization. Admins bypass
// every check.
func CanSubmit(user *models.User, c *models.Contest, joined, authorized bool, now time.Time) Decision {
	if c == nil {
		return allow(StateOpen)
	}
	if user != nil && user.IsAdmin {
		return allow(WindowState(c.StartsAt, c.EndsAt, now))
	}

	state := WindowState(c.StartsAt, c.EndsAt, now)
	switch state {
	case StateNotStarted:
		return deny(state, ReasonNotStarted)
	case StateEnded:
		return deny(state, ReasonEnded)
	}
	if !joined {
		return deny(state, ReasonNotJoined)
	}
	if c.PasswordProtected() && !authorized {
		return deny(StateLocked, ReasonNotAuthorized)
	}
	return allow(state)
}
