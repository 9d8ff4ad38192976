package refresh_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/refresh"
)

type stubBoard struct {
	standingsCalls atomic.Int64
	standings      []models.Standing
}

func (b *stubBoard) Standings(ctx context.Context, contestID int64) ([]models.Standing, error) {
	b.standingsCalls.Add(1)
	return b.standings, nil
}

func (b *stubBoard) RecentSolves(ctx context.Context, contestID int64, limit int) ([]models.SolveFeedEntry, error) {
	return nil, nil
}

func waitSnapshot(t *testing.T, ch <-chan refresh.Snapshot) refresh.Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return refresh.Snapshot{}
	}
}

func TestScheduler_PublishesOnInterval(t *testing.T) {
	board := &stubBoard{standings: []models.Standing{{UserID: 1, Username: "alice", Score: 100}}}
	s := refresh.NewScheduler(board, 20*time.Millisecond)

	s.Start(context.Background())
	defer s.Stop()

	ch, cancel := s.Subscribe(42)
	defer cancel()

	snap := waitSnapshot(t, ch)
	assert.Equal(t, int64(42), snap.ContestID)
	require.Len(t, snap.Standings, 1)
	assert.Equal(t, "alice", snap.Standings[0].Username)

	// The loop keeps publishing as long as a subscriber exists.
	waitSnapshot(t, ch)
	assert.GreaterOrEqual(t, board.standingsCalls.Load(), int64(2))
}

func TestScheduler_KickForcesImmediateRefresh(t *testing.T) {
	board := &stubBoard{}
	// Interval long enough that only Kick can produce a snapshot in time.
	s := refresh.NewScheduler(board, time.Hour)

	s.Start(context.Background())
	defer s.Stop()

	ch, cancel := s.Subscribe(7)
	defer cancel()

	s.Kick(7)
	snap := waitSnapshot(t, ch)
	assert.Equal(t, int64(7), snap.ContestID)

	latest, ok := s.Latest(7)
	assert.True(t, ok)
	assert.Equal(t, snap.GeneratedAt, latest.GeneratedAt)
}

func TestScheduler_NoSubscribersNoRefresh(t *testing.T) {
	board := &stubBoard{}
	s := refresh.NewScheduler(board, 10*time.Millisecond)

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int64(0), board.standingsCalls.Load())
}

func TestScheduler_StopEndsLoop(t *testing.T) {
	board := &stubBoard{}
	s := refresh.NewScheduler(board, 10*time.Millisecond)

	s.Start(context.Background())
	ch, cancel := s.Subscribe(1)
	waitSnapshot(t, ch)
	cancel()

	s.Stop()
	calls := board.standingsCalls.Load()

	// No more refreshes after Stop returns.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, board.standingsCalls.Load())
}

func TestScheduler_LateSubscriberGetsLatestSnapshot(t *testing.T) {
	board := &stubBoard{}
	s := refresh.NewScheduler(board, time.Hour)

	s.Start(context.Background())
	defer s.Stop()

	first, cancelFirst := s.Subscribe(9)
	s.Kick(9)
	waitSnapshot(t, first)
	cancelFirst()

	// A subscriber arriving after the publish still sees the cached state.
	late, cancelLate := s.Subscribe(9)
	defer cancelLate()
	snap := waitSnapshot(t, late)
	assert.Equal(t, int64(9), snap.ContestID)
}
