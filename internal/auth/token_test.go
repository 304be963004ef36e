package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/compliance-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)

	token, expiresAt, err := manager.GenerateToken("r-1", domain.RoleApprovalManager)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "r-1", claims.ReviewerID)
	require.Equal(t, domain.RoleApprovalManager, claims.Role)
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 30)
	verifier := NewTokenManager("secret-b", 30)

	token, _, err := issuer.GenerateToken("r-1", domain.RoleReviewer)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)
	_, err := manager.ParseToken("not.a.token")
	require.Error(t, err)
}

func TestPasswordHashAndCompare(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)

	require.NoError(t, ComparePassword(hash, "hunter2"))
	require.Error(t, ComparePassword(hash, "hunter3"))
}
