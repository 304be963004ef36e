package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compliance-service/internal/config"
	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/repository/memory"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

func newAuthFixture(t *testing.T) (*memory.Store, *AuthService) {
	t.Helper()
	store := memory.NewStore()
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 30
	cfg.Auth.BcryptCost = 4
	service := NewAuthService(cfg, AuthDependencies{ReviewerRepo: store.Reviewers()})
	return store, service
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	_, service := newAuthFixture(t)

	reviewer, token, _, err := service.Register(ctx, RegisterInput{
		Name:       "Pat",
		Email:      "Pat@Example.com",
		Password:   "hunter2",
		Department: "compliance",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "pat@example.com", reviewer.Email)
	require.Equal(t, domain.RoleReviewer, reviewer.Role)
	require.True(t, reviewer.Active)

	claims, err := service.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, reviewer.ID, claims.ReviewerID)

	logged, _, _, err := service.Login(ctx, "pat@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, reviewer.ID, logged.ID)

	_, _, _, err = service.Login(ctx, "pat@example.com", "wrong")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	_, service := newAuthFixture(t)

	_, _, _, err := service.Register(ctx, RegisterInput{Name: "Pat", Email: "pat@example.com", Password: "hunter2"})
	require.NoError(t, err)

	_, _, _, err = service.Register(ctx, RegisterInput{Name: "Pat", Email: "pat@example.com", Password: "hunter2"})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeValidationFailed, apperrors.ToDomainError(err).Code)
}

func TestLogin_RejectsInactiveReviewer(t *testing.T) {
	ctx := context.Background()
	store, service := newAuthFixture(t)

	reviewer, _, _, err := service.Register(ctx, RegisterInput{Name: "Pat", Email: "pat@example.com", Password: "hunter2"})
	require.NoError(t, err)

	reviewer.Active = false
	require.NoError(t, store.Reviewers().Create(ctx, reviewer))

	_, _, _, err = service.Login(ctx, "pat@example.com", "hunter2")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeUnauthorized, apperrors.ToDomainError(err).Code)
}
