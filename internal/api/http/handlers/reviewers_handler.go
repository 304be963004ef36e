package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-service/internal/api/dto"
	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/service"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// ReviewersHandler exposes registration and login for reviewers.
type ReviewersHandler struct {
	auth *service.AuthService
}

// NewReviewersHandler constructs handler.
func NewReviewersHandler(authService *service.AuthService) *ReviewersHandler {
	return &ReviewersHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *ReviewersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	reviewer, token, exp, err := h.auth.Register(c.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		Expertise:  req.Expertise,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: exp, Reviewer: reviewerResponse(reviewer)},
	})
}

// Login handles POST /auth/login.
func (h *ReviewersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	reviewer, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: exp, Reviewer: reviewerResponse(reviewer)},
	})
}

func reviewerResponse(reviewer *domain.Reviewer) dto.ReviewerResponse {
	return dto.ReviewerResponse{
		ID:         reviewer.ID,
		Name:       reviewer.Name,
		Email:      reviewer.Email,
		Role:       reviewer.Role,
		Department: reviewer.Department,
		Expertise:  reviewer.Expertise,
	}
}
