package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quillpost/app/apperr"
	"quillpost/app/auth"
	"quillpost/app/logctx"
	"quillpost/app/models"
	"quillpost/app/repositories"
)

// maxPasswordLength is the longest input bcrypt accepts.
const maxPasswordLength = 72

// Session is what register and login hand back to the client.
type Session struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	userRepo repositories.UserRepository
	tokens   *auth.Tokens
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, tokens *auth.Tokens, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	user := &models.User{Name: name, Email: email}
	user.Normalize()
	user.BeforeCreate()

	if err := user.Validate(); err != nil {
		return nil, apperr.Validation(models.ValidationMessage(err))
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", auth.MinPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return nil, apperr.Validation("password must be at most %d characters", maxPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperr.Transient(err, "failed to hash password")
	}
	user.PasswordHash = hash

	err = s.userRepo.Create(user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, apperr.Conflict("email is already registered")
	}
	if err != nil {
		return nil, apperr.Transient(err, "failed to create user")
	}

	logctx.Logger(ctx, s.logger).Info("user registered", "user_id", user.ID)
	return s.session(user)
}

// Login checks the credentials and issues a token. An unknown email and a
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.BadCredentials("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Transient(err, "failed to load user")
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		logctx.Logger(ctx, s.logger).Warn("failed login", "user_id", user.ID)
		return nil, apperr.BadCredentials("invalid email or password")
	}

	return s.session(user)
}

// CurrentUser loads the account behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("user %d not found", userID)
	}
	if err != nil {
		return nil, apperr.Transient(err, "failed to load user")
	}
	return user, nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Transient(err, "failed to issue token")
	}
	return &Session{User: user, Token: token, ExpiresAt: expires}, nil
}
