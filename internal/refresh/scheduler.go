// Package refresh republishes leaderboard state on a fixed interval so
// connected views stay eventually consistent without polling the store
// themselves.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
)

// Board is the slice of the scoreboard layer the scheduler reads from.
type Board interface {
	Standings(ctx context.Context, contestID int64) ([]models.Standing, error)
	RecentSolves(ctx context.Context, contestID int64, limit int) ([]models.SolveFeedEntry, error)
}

// Snapshot is one published view of a contest's leaderboard.
type Snapshot struct {
	ContestID    int64                   `json:"contestId"`
	Standings    []models.Standing       `json:"standings"`
	RecentSolves []models.SolveFeedEntry `json:"recentSolves"`
	GeneratedAt  time.Time               `json:"generatedAt"`
}

const feedLimit = 20

type subscriber struct {
	contestID int64
	ch        chan Snapshot
}

// Scheduler periodically rebuilds a snapshot for every contest that has at
// least one subscriber and pushes it to them. Slow subscribers miss
// snapshots instead of blocking the refresh loop.
type Scheduler struct {
	board    Board
	interval time.Duration
	log      *logger.Logger

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	latest map[int64]Snapshot

	kick   chan int64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler that refreshes every interval.
func NewScheduler(board Board, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		board:    board,
		interval: interval,
		log:      logger.Default().WithPrefix("refresh"),
		subs:     make(map[*subscriber]struct{}),
		latest:   make(map[int64]Snapshot),
		kick:     make(chan int64, 16),
	}
}

// Start launches the refresh loop. Stop or cancelling ctx ends it.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.log.Info("refresh scheduler started: interval=%s", s.interval)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("refresh scheduler stopped")
				return
			case <-ticker.C:
				s.refreshAll(ctx)
			case contestID := <-s.kick:
				s.refreshOne(ctx, contestID)
			}
		}
	}()
}

// Stop ends the refresh loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

// Kick requests an immediate refresh of one contest, e.g. right after an
// accepted solve. It never blocks; if the queue is full a periodic refresh
// will catch up soon anyway.
func (s *Scheduler) Kick(contestID int64) {
	select {
	case s.kick <- contestID:
	default:
	}
}

// Subscribe returns a channel of snapshots for the contest and a cancel
// function that must be called when the view goes away.
func (s *Scheduler) Subscribe(contestID int64) (<-chan Snapshot, func()) {
	sub := &subscriber{contestID: contestID, ch: make(chan Snapshot, 1)}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	latest, ok := s.latest[contestID]
	s.mu.Unlock()

	if ok {
		sub.ch <- latest
	}

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	}
	return sub.ch, cancel
}

// RefreshNow rebuilds and publishes a contest snapshot synchronously.
func (s *Scheduler) RefreshNow(ctx context.Context, contestID int64) {
	s.refreshOne(ctx, contestID)
}

// Latest returns the most recently published snapshot for a contest.
func (s *Scheduler) Latest(contestID int64) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.latest[contestID]
	return snap, ok
}

func (s *Scheduler) refreshAll(ctx context.Context) {
	s.mu.Lock()
	contests := make(map[int64]struct{})
	for sub := range s.subs {
		contests[sub.contestID] = struct{}{}
	}
	s.mu.Unlock()

	for contestID := range contests {
		s.refreshOne(ctx, contestID)
	}
}

func (s *Scheduler) refreshOne(ctx context.Context, contestID int64) {
	standings, err := s.board.Standings(ctx, contestID)
	if err != nil {
		s.log.Warn("failed to refresh standings: contest_id=%d: %v", contestID, err)
		return
	}
	feed, err := s.board.RecentSolves(ctx, contestID, feedLimit)
	if err != nil {
		s.log.Warn("failed to refresh recent solves: contest_id=%d: %v", contestID, err)
		return
	}

	snap := Snapshot{
		ContestID:    contestID,
		Standings:    standings,
		RecentSolves: feed,
		GeneratedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.latest[contestID] = snap
	var targets []*subscriber
	for sub := range s.subs {
		if sub.contestID == contestID {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range targets {
		select {
		case sub.ch <- snap:
		default:
			// Drop the stale snapshot so the fresh one fits.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- snap:
			default:
			}
		}
	}
	s.log.Debug("snapshot published: contest_id=%d, standings=%d", contestID, len(snap.Standings))
}
