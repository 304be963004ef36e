package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-service/internal/api/dto"
	"github.com/spec-kit/compliance-service/internal/auth"
	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/service"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// AssignmentsHandler manages assignment endpoints.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
	items       *service.ItemService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService, itemService *service.ItemService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignmentService, items: itemService}
}

// AutoAssign POST /items/:id/assign/auto.
func (h *AssignmentsHandler) AutoAssign(c *fiber.Ctx) error {
	var req dto.AutoAssignRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	result, err := h.assignments.AutoAssign(c.Context(), c.Params("id"), req.ForceAssign)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignResponse(result)})
}

// ManualAssign POST /items/:id/assign.
func (h *AssignmentsHandler) ManualAssign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Reviewer == nil {
		return apperrors.NewUnauthorized("reviewer required")
	}
	var req dto.ManualAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.AssigneeIDs) == 0 {
		return apperrors.NewValidationError("assignee_ids required", nil)
	}

	result, err := h.assignments.ManualAssign(c.Context(), principal.Reviewer, c.Params("id"), req.AssigneeIDs, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignResponse(result)})
}

// ListItemAssignments GET /items/:id/assignments.
func (h *AssignmentsHandler) ListItemAssignments(c *fiber.Ctx) error {
	assignments, err := h.items.ListItemAssignments(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponses(assignments)})
}

// ListMyAssignments GET /assignments/my.
func (h *AssignmentsHandler) ListMyAssignments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Reviewer == nil {
		return apperrors.NewUnauthorized("reviewer required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	assignments, err := h.items.ListReviewerAssignments(c.Context(), principal.Reviewer.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponses(assignments)})
}

func assignResponse(result *service.AssignResult) dto.AssignResponse {
	return dto.AssignResponse{
		ItemID:    result.ItemID,
		Assignees: result.Assignees,
		Strategy:  result.Strategy,
		Automatic: result.Automatic,
	}
}

func assignmentResponses(assignments []domain.Assignment) []dto.AssignmentResponse {
	resp := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		resp = append(resp, dto.AssignmentResponse{
			ID:             a.ID,
			ItemID:         a.ItemID,
			AssignedTo:     a.AssignedTo,
			AssignedBy:     a.AssignedBy,
			Status:         a.Status,
			IsAutoAssigned: a.IsAutoAssigned,
			AssignedAt:     a.AssignedAt,
			Deadline:       a.Deadline,
			CompletedAt:    a.CompletedAt,
			Notes:          a.Notes,
		})
	}
	return resp
}
