package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rmello/flagforge/internal/cache"
	"github.com/rmello/flagforge/internal/errors"
	"github.com/rmello/flagforge/internal/gate"
	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/repository"
)

// ContestView is a contest with its computed state for the requesting user.
type ContestView struct {
	models.Contest
	State  gate.State `json:"state"`
	Joined bool       `json:"joined"`
}

// ContestService handles contest lifecycle, membership and password gates
type ContestService interface {
	Create(ctx context.Context, title string, startsAt, endsAt time.Time, password string) (*models.Contest, error)
	Get(ctx context.Context, id int64) (*models.Contest, error)
	View(ctx context.Context, id int64, user *models.User) (*ContestView, error)
	List(ctx context.Context, user *models.User) ([]ContestView, error)
	Join(ctx context.Context, contestID, userID int64) error
	Authorize(ctx context.Context, contestID, userID int64, password string) error
	IsAuthorized(ctx context.Context, contestID, userID int64) bool
	HasJoined(ctx context.Context, contestID, userID int64) (bool, error)
}

type grantKey struct {
	ContestID int64
	UserID    int64
}

type contestService struct {
	contests     repository.ContestRepository
	participants repository.ParticipantRepository
	grants       *cache.TTL[grantKey, bool]
	grantTTL     time.Duration
}

// NewContestService creates a new ContestService. grantTTL bounds both the
// stored authorization grant and its cache entry.
func NewContestService(contests repository.ContestRepository, participants repository.ParticipantRepository, grantTTL time.Duration) ContestService {
	return &contestService{
		contests:     contests,
		participants: participants,
		grants:       cache.NewTTL[grantKey, bool](grantTTL),
		grantTTL:     grantTTL,
	}
}

func (s *contestService) Create(ctx context.Context, title string, startsAt, endsAt time.Time, password string) (*models.Contest, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating contest: title=%s", title)

	if title == "" {
		return nil, errors.NewValidationError("title", "cannot be empty")
	}
	if !endsAt.After(startsAt) {
		return nil, errors.NewValidationError("endsAt", "must be after startsAt")
	}

	c := models.Contest{Title: title, StartsAt: startsAt.UTC(), EndsAt: endsAt.UTC()}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("failed to hash contest password: %v", err)
			return nil, errors.NewInternalError(err)
		}
		h := string(hash)
		c.PasswordHash = &h
	}

	id, err := s.contests.Insert(ctx, c)
	if err != nil {
		log.Error("failed to insert contest: %v", err)
		return nil, errors.NewInternalError(err)
	}

	created, err := s.contests.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	log.Info("contest created: id=%d, title=%s", created.ID, created.Title)
	return created, nil
}

func (s *contestService) Get(ctx context.Context, id int64) (*models.Contest, error) {
	c, err := s.contests.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("contest", id)
		}
		return nil, errors.NewInternalError(err)
	}
	return c, nil
}

// View returns one contest with its state derived for the requesting user.
func (s *contestService) View(ctx context.Context, id int64, user *models.User) (*ContestView, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.viewFor(ctx, *c, user, time.Now().UTC())
	return &view, nil
}

func (s *contestService) List(ctx context.Context, user *models.User) ([]ContestView, error) {
	log := logger.FromContext(ctx)

	contests, err := s.contests.List(ctx)
	if err != nil {
		log.Error("failed to list contests: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := time.Now().UTC()
	views := make([]ContestView, 0, len(contests))
	for _, c := range contests {
		views = append(views, s.viewFor(ctx, c, user, now))
	}
	return views, nil
}

func (s *contestService) viewFor(ctx context.Context, c models.Contest, user *models.User, now time.Time) ContestView {
	view := ContestView{Contest: c}
	authorized := false
	if user != nil {
		authorized = user.IsAdmin || s.IsAuthorized(ctx, c.ID, user.ID)
		if joined, err := s.HasJoined(ctx, c.ID, user.ID); err == nil {
			view.Joined = joined
		}
	}
	view.State = gate.ContestState(&c, authorized, now)
	return view
}

func (s *contestService) Join(ctx context.Context, contestID, userID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("join request: contest_id=%d, user_id=%d", contestID, userID)

	c, err := s.Get(ctx, contestID)
	if err != nil {
		return err
	}
	if gate.WindowState(c.StartsAt, c.EndsAt, time.Now().UTC()) == gate.StateEnded {
		return errors.NewForbiddenError("contest has ended")
	}

	if err := s.participants.Join(ctx, contestID, userID); err != nil {
		log.Error("failed to join contest: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("user joined contest: contest_id=%d, user_id=%d", contestID, userID)
	return nil
}

// Authorize checks the contest password and, on success, persists a sticky
// grant so later visits skip the password prompt until it expires.
func (s *contestService) Authorize(ctx context.Context, contestID, userID int64, password string) error {
	log := logger.FromContext(ctx)
	log.Debug("authorize request: contest_id=%d, user_id=%d", contestID, userID)

	c, err := s.Get(ctx, contestID)
	if err != nil {
		return err
	}
	if !c.PasswordProtected() {
		return nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*c.PasswordHash), []byte(password)); err != nil {
		log.Debug("wrong contest password: contest_id=%d, user_id=%d", contestID, userID)
		return errors.NewUnauthorizedError("wrong contest password")
	}

	expiresAt := time.Now().UTC().Add(s.grantTTL)
	if err := s.contests.UpsertGrant(ctx, contestID, userID, expiresAt); err != nil {
		log.Error("failed to persist grant: %v", err)
		return errors.NewInternalError(err)
	}
	s.grants.SetUntil(grantKey{contestID, userID}, true, expiresAt)
	log.Info("authorization granted: contest_id=%d, user_id=%d, expires_at=%s", contestID, userID, expiresAt.Format(time.RFC3339))
	return nil
}

// IsAuthorized consults the cache first; a miss or expired entry falls back
// to the stored grant, which also survives across devices.
func (s *contestService) IsAuthorized(ctx context.Context, contestID, userID int64) bool {
	key := grantKey{contestID, userID}
	if ok, hit := s.grants.Get(key); hit {
		return ok
	}

	g, err := s.contests.GetGrant(ctx, contestID, userID)
	if err != nil {
		return false
	}
	now := time.Now().UTC()
	if !g.Valid(now) {
		return false
	}
	s.grants.SetUntil(key, true, g.ExpiresAt)
	return true
}

func (s *contestService) HasJoined(ctx context.Context, contestID, userID int64) (bool, error) {
	_, err := s.participants.Get(ctx, contestID, userID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check participant: %w", err)
	}
	return true, nil
}
