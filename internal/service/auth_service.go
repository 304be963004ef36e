package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/compliance-service/internal/auth"
	"github.com/spec-kit/compliance-service/internal/config"
	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/repository"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// AuthService coordinates reviewer registration and login.
type AuthService struct {
	reviewers  repository.ReviewerRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	ReviewerRepo repository.ReviewerRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		reviewers:  deps.ReviewerRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterInput describes a reviewer registration.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.ReviewerRole
	Department string
	Expertise  []domain.ModuleType
}

// Register creates a new reviewer account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Reviewer, string, time.Time, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}
	if input.Role == "" {
		input.Role = domain.RoleReviewer
	}

	if _, err := s.reviewers.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewValidationError("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", time.Time{}, apperrors.NewStoreError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	reviewer := &domain.Reviewer{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Department:   strings.TrimSpace(input.Department),
		Expertise:    input.Expertise,
		Active:       true,
	}
	if err := s.reviewers.Create(ctx, reviewer); err != nil {
		return nil, "", time.Time{}, apperrors.NewStoreError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(reviewer.ID, reviewer.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return reviewer, token, exp, nil
}

// Login authenticates a reviewer and returns a role-bearing token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Reviewer, string, time.Time, error) {
	reviewer, err := s.reviewers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewStoreError(err)
	}
	if !reviewer.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("reviewer inactive")
	}
	if err := auth.ComparePassword(reviewer.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(reviewer.ID, reviewer.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return reviewer, token, exp, nil
}
