// Package submitclient is the client side of flag submission. It bounds
// every network call with a timeout, retries transient failures with linear
// backoff, and parks at most one failed attempt for a later resend. Resending
// is safe because the server treats a duplicate solve as an idempotent
// already_solved outcome instead of crediting twice.
package submitclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rmello/flagforge/internal/logger"
)

// ErrPending is returned when an attempt exhausted its retries and was
// parked in the pending slot for a later Retry.
var ErrPending = errors.New("submission pending, retry when back online")

// ErrNoPending is returned by Retry when nothing is parked.
var ErrNoPending = errors.New("no pending submission")

const (
	defaultTimeout = 15 * time.Second
	maxAttempts    = 3
	backoffStep    = time.Second
)

// Outcome is the server's verdict on one submission.
type Outcome struct {
	Success       bool   `json:"success"`
	PointsAwarded int    `json:"pointsAwarded,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// Attempt is one queued submission. Exactly one can be pending at a time; a
// newer submission replaces it.
type Attempt struct {
	ChallengeID int64
	Flag        string
	QueuedAt    time.Time
}

// Client submits flags against a server with bounded retries.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	pending *Attempt
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each network call. The default is 15 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a submission client authenticated by a bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logger.Default().WithPrefix("submitclient"),
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Submit sends a flag, retrying transient failures up to three times with
// linear backoff (1s, 2s, 3s). If every attempt fails the submission is
// parked as pending, replacing any previous pending attempt, and ErrPending
// is returned.
func (c *Client) Submit(ctx context.Context, challengeID int64, flag string) (*Outcome, error) {
	outcome, retryable, err := c.send(ctx, challengeID, flag)
	if err == nil {
		return outcome, nil
	}
	if !retryable {
		return nil, err
	}

	c.log.Warn("submission failed, parking as pending: challenge_id=%d: %v", challengeID, err)
	c.mu.Lock()
	c.pending = &Attempt{ChallengeID: challengeID, Flag: flag, QueuedAt: time.Now().UTC()}
	c.mu.Unlock()
	return nil, fmt.Errorf("%w: %v", ErrPending, err)
}

// Retry resends the pending attempt, if any. On success (including an
// already_solved verdict) the slot is cleared; on failure the attempt stays
// parked for another Retry.
func (c *Client) Retry(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	attempt := c.pending
	c.mu.Unlock()
	if attempt == nil {
		return nil, ErrNoPending
	}

	outcome, retryable, err := c.send(ctx, attempt.ChallengeID, attempt.Flag)
	if err != nil {
		if !retryable {
			// The attempt became terminally invalid, e.g. access revoked
			// while offline. Drop it instead of resurrecting it forever.
			c.Cancel()
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPending, err)
	}

	c.mu.Lock()
	if c.pending == attempt {
		c.pending = nil
	}
	c.mu.Unlock()
	return outcome, nil
}

// Pending returns a copy of the parked attempt, if any.
func (c *Client) Pending() (Attempt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Attempt{}, false
	}
	return *c.pending, true
}

// Cancel discards the parked attempt.
func (c *Client) Cancel() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

func (c *Client) send(ctx context.Context, challengeID int64, flag string) (*Outcome, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome, retryable, err := c.post(ctx, challengeID, flag)
		if err == nil {
			return outcome, false, nil
		}
		lastErr = err
		if !retryable {
			return nil, false, err
		}
		c.log.Debug("attempt %d/%d failed: challenge_id=%d: %v", attempt, maxAttempts, challengeID, err)
		if attempt < maxAttempts {
			if err := c.sleep(ctx, time.Duration(attempt)*backoffStep); err != nil {
				return nil, true, err
			}
		}
	}
	return nil, true, lastErr
}

// post performs one HTTP call. The second return value reports whether the
// failure is transient: network errors and 5xx responses are retried, 4xx
// responses are not.
func (c *Client) post(ctx context.Context, challengeID int64, flag string) (*Outcome, bool, error) {
	body, err := json.Marshal(map[string]string{"flag": flag})
	if err != nil {
		return nil, false, err
	}

	url := fmt.Sprintf("%s/api/challenges/%d/submit", c.baseURL, challengeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("server error: %s", resp.Status)
	}
	// Any 4xx carries the error envelope, not an Outcome; the verdict
	// rejections the client cares about all come back as 200.
	if resp.StatusCode >= 400 {
		return nil, false, fmt.Errorf("request rejected: %s", resp.Status)
	}

	var outcome Outcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	return &outcome, false, nil
}
