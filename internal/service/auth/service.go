// Package auth implements password login: credential verification against
// the users table and access-token issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/opc-efiling/drafting-backend/internal/auth"
	"github.com/opc-efiling/drafting-backend/internal/domain"
)

// userRepo defines the user repository interface needed by the auth service.
type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// jwtManager defines the token management interface needed by the auth service.
type jwtManager interface {
	GenerateAccessToken(userID uuid.UUID, roles []domain.Role) (string, error)
}

// Service implements auth operations.
type Service struct {
	log   *slog.Logger
	users userRepo
	jwt   jwtManager
}

// NewService creates a new auth service instance.
func NewService(log *slog.Logger, users userRepo, jwt jwtManager) *Service {
	return &Service{
		log:   log.With("service", "auth"),
		users: users,
		jwt:   jwt,
	}
}

// LoginResult is the successful login payload.
type LoginResult struct {
	AccessToken string
	User        *domain.User
}

// Login verifies the email/password pair and issues an access token carrying
// the user's role set. Unknown email and wrong password both surface as
// domain.ErrUnauthorized so the response does not reveal which part failed.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, domain.NewValidationError("credentials", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.log.InfoContext(ctx, "login rejected", slog.String("email", email))
		return nil, domain.ErrUnauthorized
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.log.InfoContext(ctx, "login succeeded", slog.String("user_id", user.ID.String()))
	return &LoginResult{AccessToken: token, User: user}, nil
}

// GetUser resolves a user by ID for identity display.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("user_id", "must not be empty")
	}
	return s.users.GetByID(ctx, id)
}
