package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"colisflow/internal/core/apperror"
	appctx "colisflow/internal/core/context"
	"colisflow/internal/core/id"
	"colisflow/pkg/logger"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	// GetByUsername returns a NOT_FOUND AppError on a miss.
	GetByUsername(ctx context.Context, username string) (*User, error)
	TouchLastLogin(ctx context.Context, userID id.ID, at time.Time) error
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Service provides authentication logic.
type Service struct {
	users UserRepository
	jwt   *JWTService
}

// NewService creates a new auth service.
func NewService(users UserRepository, jwtService *JWTService) *Service {
	return &Service{users: users, jwt: jwtService}
}

// CreateUserInput describes a new operator account.
type CreateUserInput struct {
	Username string
	Password string
	FullName string
	Roles    []string
	IsAdmin  bool
}

// CreateUser hashes the password and stores the account.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		).WithDetail("field", "password")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := NewUser(in.Username, hash)
	user.FullName = in.FullName
	user.Roles = in.Roles
	user.IsAdmin = in.IsAdmin
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login authenticates user and returns an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	user, err := s.users.GetByUsername(ctx, NormalizeUsername(creds.Username))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		logger.Warn(ctx, "login rejected", "username", user.Username)
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	access, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn(ctx, "failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "username", user.Username)

	return &Token{AccessToken: access, ExpiresAt: expiresAt, TokenType: "Bearer"}, user, nil
}

// Me returns the account behind the request context.
func (s *Service) Me(ctx context.Context) (*User, error) {
	uc := appctx.GetUser(ctx)
	if uc == nil {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	userID, err := id.Parse(uc.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid token subject")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// HashPassword returns the bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
