package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-service/internal/domain"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// RequireRole ensures the authenticated reviewer holds one of the allowed
// roles. With no arguments it only requires authentication.
func RequireRole(allowed ...domain.ReviewerRole) fiber.Handler {
	allowedSet := make(map[domain.ReviewerRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Reviewer == nil {
			return apperrors.NewUnauthorized("reviewer required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Reviewer.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// HasRole reports whether role is in the allowed set. It backs the
// service-level authorization checks.
func HasRole(role domain.ReviewerRole, allowed []domain.ReviewerRole) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}
