package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rmello/flagforge/internal/errors"
	"github.com/rmello/flagforge/internal/logger"
	"github.com/rmello/flagforge/internal/models"
	"github.com/rmello/flagforge/internal/repository"
)

// AuthService handles registration, login and token issuance
type AuthService interface {
	Register(ctx context.Context, username, displayName, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	ParseToken(tokenString string) (*TokenClaims, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// TokenClaims is the identity carried by a bearer token.
type TokenClaims struct {
	UserID  int64
	IsAdmin bool
}

type authService struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{users: users, secret: []byte(secret), tokenTTL: tokenTTL}
}

func (s *authService) Register(ctx context.Context, username, displayName, password string) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("registering user: username=%s", username)

	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return nil, errors.NewValidationError("username", "must be at least 3 characters")
	}
	if len(password) < 8 {
		return nil, errors.NewValidationError("password", "must be at least 8 characters")
	}
	if displayName == "" {
		displayName = username
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, errors.NewValidationError("username", "already taken")
	} else if !stderrors.Is(err, sql.ErrNoRows) {
		log.Error("failed to check username: %v", err)
		return nil, errors.NewInternalError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, errors.NewInternalError(err)
	}

	user := models.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	id, err := s.users.Insert(ctx, user)
	if err != nil {
		log.Error("failed to insert user: %v", err)
		return nil, errors.NewInternalError(err)
	}

	created, err := s.users.Get(ctx, id)
	if err != nil {
		log.Error("failed to load created user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("user registered: id=%d, username=%s", created.ID, created.Username)
	return created, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("login attempt: username=%s", username)

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", nil, errors.NewUnauthorizedError("invalid username or password")
		}
		log.Error("failed to load user: %v", err)
		return "", nil, errors.NewInternalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Debug("password mismatch: username=%s", username)
		return "", nil, errors.NewUnauthorizedError("invalid username or password")
	}

	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		log.Error("failed to sign token: %v", err)
		return "", nil, errors.NewInternalError(err)
	}

	log.Info("user logged in: id=%d, username=%s", user.ID, user.Username)
	return signed, user, nil
}

func (s *authService) ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewUnauthorizedError("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.NewUnauthorizedError("invalid token claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, errors.NewUnauthorizedError("invalid token subject")
	}
	role, _ := claims["role"].(string)

	return &TokenClaims{UserID: int64(sub), IsAdmin: role == "admin"}, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("user", id)
		}
		return nil, errors.NewInternalError(err)
	}
	return user, nil
}
