package refresh

import (
	"context"
	"fmt"
)

// SnapshotJob rebuilds one contest's snapshot off the request path. Submit
// handlers enqueue it after an accepted solve so the leaderboard updates
// without waiting for the next periodic tick.
type SnapshotJob struct {
	Scheduler *Scheduler
	ContestID int64
}

func (j SnapshotJob) Name() string {
	return fmt.Sprintf("snapshot-contest-%d", j.ContestID)
}

func (j SnapshotJob) Run(ctx context.Context) error {
	j.Scheduler.RefreshNow(ctx, j.ContestID)
	return nil
}
