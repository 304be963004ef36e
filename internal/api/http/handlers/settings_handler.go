package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-service/internal/api/dto"
	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/service"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// SettingsHandler exposes assignment engine configuration.
type SettingsHandler struct {
	assignments *service.AssignmentService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(assignmentService *service.AssignmentService) *SettingsHandler {
	return &SettingsHandler{assignments: assignmentService}
}

// GetSettings GET /settings/assignment.
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings := h.assignments.StrategySettings()
	return c.JSON(fiber.Map{"data": settingsResponse(settings)})
}

// UpdateSettings PUT /settings/assignment.
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.UpdateStrategySettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.assignments.UpdateStrategySettings(service.StrategySettingsUpdate{
		Strategy:      req.Strategy,
		MaxAssignees:  req.MaxAssignees,
		DepartmentMap: req.DepartmentMap,
		ExpertiseMap:  req.ExpertiseMap,
		AssignerRoles: req.AssignerRoles,
		EligibleRoles: req.EligibleRoles,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settingsResponse(updated)})
}

func settingsResponse(settings domain.StrategySettings) dto.StrategySettingsResponse {
	return dto.StrategySettingsResponse{
		Strategy:      settings.Strategy,
		MaxAssignees:  settings.MaxAssignees,
		DepartmentMap: settings.DepartmentMap,
		ExpertiseMap:  settings.ExpertiseMap,
		AssignerRoles: settings.AssignerRoles,
		EligibleRoles: settings.EligibleRoles,
	}
}
