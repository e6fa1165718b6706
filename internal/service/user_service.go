package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/finpilot-backend/internal/api/request"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/model"
	"github.com/ndewijer/finpilot-backend/internal/repository"
	"github.com/ndewijer/finpilot-backend/internal/session"
)

// UserService handles accounts and sign-in.
type UserService struct {
	userRepo *repository.UserRepository
	sessions *session.Manager
	log      zerolog.Logger
}

// NewUserService creates a new UserService with the provided dependencies.
func NewUserService(userRepo *repository.UserRepository, sessions *session.Manager, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		sessions: sessions,
		log:      log.With().Str("component", "users").Logger(),
	}
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Token     string     `json:"token"`
	ExpiresIn int64      `json:"expires_in"`
	User      model.User `json:"user"`
}

// Signup creates an account and signs it in.
// Emails are stored lower-cased; a taken email returns apperrors.ErrDuplicateEmail.
func (s *UserService) Signup(ctx context.Context, req request.SignupRequest) (AuthResult, error) {
	email := normalizeEmail(req.Email)

	hash, err := session.HashPassword(req.Password)
	if err != nil {
		return AuthResult{}, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	user := model.User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.InsertUser(ctx, user); err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("Account created")

	return s.issue(user)
}

// Login verifies credentials and returns a new session token.
// Unknown emails and wrong passwords both return apperrors.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req request.LoginRequest) (AuthResult, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return AuthResult{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, err
	}

	if !session.CheckPassword(user.PasswordHash, req.Password) {
		s.log.Debug().Str("user_id", user.ID).Msg("Login rejected")
		return AuthResult{}, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Me returns the account behind a session.
func (s *UserService) Me(ctx context.Context, sess session.Session) (model.User, error) {
	return s.userRepo.GetUserByID(ctx, sess.UserID)
}

func (s *UserService) issue(user model.User) (AuthResult, error) {
	token, err := s.sessions.Issue(session.Session{UserID: user.ID, Email: user.Email})
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToCreateSession, err)
	}

	return AuthResult{
		Token:     token,
		ExpiresIn: int64(s.sessions.TTL().Seconds()),
		User:      user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
