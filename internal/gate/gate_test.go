package gate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rmello/flagforge/internal/gate"
	"github.com/rmello/flagforge/internal/models"
)

var (
	start = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	end   = start.Add(8 * time.Hour)
)

func contest(passwordProtected bool) *models.Contest {
	c := &models.Contest{ID: 1, Title: "finals", StartsAt: start, EndsAt: end}
	if passwordProtected {
		hash := "bcrypt-hash"
		c.PasswordHash = &hash
	}
	return c
}

func user(admin bool) *models.User {
	return &models.User{ID: 7, Username: "nina", IsAdmin: admin}
}

func TestWindowState_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want gate.State
	}{
		{"before start", start.Add(-time.Millisecond), gate.StateNotStarted},
		{"at start", start, gate.StateActive},
		{"mid window", start.Add(time.Hour), gate.StateActive},
		{"at end", end, gate.StateActive},
		{"just past end", end.Add(time.Millisecond), gate.StateEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.WindowState(start, end, tt.now))
		})
	}
}

func TestCanSubmit_BoundaryInstants(t *testing.T) {
	c := contest(false)

	// Allowed at the exact start instant.
	d := gate.CanSubmit(user(false), c, true, false, start)
	assert.True(t, d.Allowed)
	assert.Equal(t, gate.StateActive, d.State)

	// Denied one millisecond after the end.
	d = gate.CanSubmit(user(false), c, true, false, end.Add(time.Millisecond))
	assert.False(t, d.Allowed)
	assert.Equal(t, gate.ReasonEnded, d.Reason)
}

func TestCanSubmit_ReasonOrdering(t *testing.T) {
	c := contest(true)
	u := user(false)

	// Not started outranks everything else even when the user is neither
	// joined nor authorized.
	d := gate.CanSubmit(u, c, false, false, start.Add(-time.Hour))
	assert.Equal(t, gate.ReasonNotStarted, d.Reason)

	// During the window, membership is checked before the password grant.
	d = gate.CanSubmit(u, c, false, false, start.Add(time.Hour))
	assert.Equal(t, gate.ReasonNotJoined, d.Reason)

	d = gate.CanSubmit(u, c, true, false, start.Add(time.Hour))
	assert.Equal(t, gate.ReasonNotAuthorized, d.Reason)
	assert.Equal(t, gate.StateLocked, d.State)

	d = gate.CanSubmit(u, c, true, true, start.Add(time.Hour))
	assert.True(t, d.Allowed)
	assert.Equal(t, gate.ReasonNone, d.Reason)
}

func TestCanSubmit_AdminBypassesEverything(t *testing.T) {
	c := contest(true)
	admin := user(true)

	for _, now := range []time.Time{start.Add(-time.Hour), start.Add(time.Hour), end.Add(time.Hour)} {
		d := gate.CanSubmit(admin, c, false, false, now)
		assert.True(t, d.Allowed, "admin denied at %v", now)
	}
}

func TestCanSubmit_WargameAlwaysOpen(t *testing.T) {
	d := gate.CanSubmit(user(false), nil, false, false, time.Now())
	assert.True(t, d.Allowed)
	assert.Equal(t, gate.StateOpen, d.State)
}

func TestCanView(t *testing.T) {
	u := user(false)

	// Hidden before start.
	d := gate.CanView(u, contest(false), false, start.Add(-time.Minute))
	assert.False(t, d.Allowed)
	assert.Equal(t, gate.ReasonNotStarted, d.Reason)

	// Visible after the end for review.
	d = gate.CanView(u, contest(false), false, end.Add(time.Hour))
	assert.True(t, d.Allowed)
	assert.Equal(t, gate.StateEnded, d.State)

	// Password gate applies to viewing too.
	d = gate.CanView(u, contest(true), false, start.Add(time.Hour))
	assert.False(t, d.Allowed)
	assert.Equal(t, gate.ReasonNotAuthorized, d.Reason)

	d = gate.CanView(u, contest(true), true, start.Add(time.Hour))
	assert.True(t, d.Allowed)
}

func TestContestState_LockedMasksWindow(t *testing.T) {
	c := contest(true)
	assert.Equal(t, gate.StateLocked, gate.ContestState(c, false, start.Add(time.Hour)))
	assert.Equal(t, gate.StateActive, gate.ContestState(c, true, start.Add(time.Hour)))
	assert.Equal(t, gate.StateOpen, gate.ContestState(nil, false, time.Now()))
}
